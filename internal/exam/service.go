// Package exam is the front-end-neutral entry point for everything a user
// can do: pick a test, answer it, submit it, and look at their record.
// The Telegram bot, the terminal UI and the HTTP surface all call Service.
package exam

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/proctor/internal/achievements"
	"github.com/abhisek/proctor/internal/bank"
	"github.com/abhisek/proctor/internal/session"
	"github.com/abhisek/proctor/internal/stats"
	"github.com/abhisek/proctor/internal/store"
)

var (
	// ErrNotAdmin is returned when a non-admin asks for aggregate stats.
	ErrNotAdmin = errors.New("not an admin")

	// ErrEmptySubmission is returned for a text submission with no
	// characters besides whitespace.
	ErrEmptySubmission = errors.New("empty submission")
)

// Service wires the bank, the session manager and the history store.
type Service struct {
	bank     *bank.Bank
	sessions *session.Manager
	repo     store.HistoryRepo
	admins   []int64
	logger   *zap.Logger
}

// NewService creates a Service. admins may be empty.
func NewService(b *bank.Bank, mgr *session.Manager, repo store.HistoryRepo, admins []int64, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		bank:     b,
		sessions: mgr,
		repo:     repo,
		admins:   slices.Clone(admins),
		logger:   logger,
	}
}

// Sessions exposes the manager so front ends can install a notifier.
func (s *Service) Sessions() *session.Manager { return s.sessions }

// Tests lists the available tests ordered by ID.
func (s *Service) Tests() []bank.Summary { return s.bank.List() }

// Test returns one test.
func (s *Service) Test(id string) (*bank.Test, error) { return s.bank.Get(id) }

// BookletPath returns the PDF booklet path for a test, or "".
func (s *Service) BookletPath(t *bank.Test) string { return s.bank.PDFPath(t) }

// IsAdmin reports whether userID may see aggregate stats.
func (s *Service) IsAdmin(userID int64) bool { return slices.Contains(s.admins, userID) }

// StartTest starts a fresh attempt, replacing any session the user has.
func (s *Service) StartTest(ctx context.Context, userID int64, testID string) (session.View, error) {
	return s.sessions.Start(ctx, userID, testID)
}

// AnswerSelected records a button answer. When that answer completes the
// sheet the session is submitted and the outcome returned.
func (s *Service) AnswerSelected(ctx context.Context, userID int64, question int, option string) (session.View, *session.Outcome, error) {
	return s.AnswerSelectedFor(ctx, userID, "", question, option)
}

// AnswerSelectedFor is AnswerSelected for the attempt named by ref. A press
// on a keyboard left over from an earlier attempt fails with
// session.ErrSessionSuperseded.
func (s *Service) AnswerSelectedFor(ctx context.Context, userID int64, ref string, question int, option string) (session.View, *session.Outcome, error) {
	v, err := s.sessions.RecordAnswerFor(ctx, userID, ref, question, option)
	if err != nil {
		return v, nil, err
	}
	if v.NextUnanswered >= 0 {
		return v, nil, nil
	}
	out, err := s.sessions.SubmitIfCompleteFor(ctx, userID, v.SessionID)
	if err != nil {
		// A timer may have won between the two calls.
		return v, nil, err
	}
	v, _ = s.sessions.Status(userID)
	return v, out, nil
}

// Finish submits a button-mode session. Every question must be answered.
func (s *Service) Finish(ctx context.Context, userID int64) (*session.Outcome, error) {
	return s.sessions.SubmitIfComplete(ctx, userID)
}

// FinishFor is Finish for the attempt named by ref.
func (s *Service) FinishFor(ctx context.Context, userID int64, ref string) (*session.Outcome, error) {
	return s.sessions.SubmitIfCompleteFor(ctx, userID, ref)
}

// SubmitTextAnswers submits a comma-separated answer sheet such as
// "A, B, C". Fields are trimmed; empty fields count as answers.
func (s *Service) SubmitTextAnswers(ctx context.Context, userID int64, text string) (*session.Outcome, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptySubmission
	}
	return s.sessions.SubmitAll(ctx, userID, SplitAnswers(text))
}

// SplitAnswers splits a comma-separated answer sheet and trims each field.
func SplitAnswers(text string) []string {
	parts := strings.Split(text, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// Status returns the user's current session.
func (s *Service) Status(userID int64) (session.View, error) {
	return s.sessions.Status(userID)
}

// LastResult returns the user's latest graded outcome since their last
// start, for the details view.
func (s *Service) LastResult(userID int64) (*session.Outcome, bool) {
	return s.sessions.LastOutcome(userID)
}

// RequestStats summarizes the user's history.
func (s *Service) RequestStats(ctx context.Context, userID int64) (stats.UserSummary, error) {
	sum, _, err := stats.ForUser(ctx, s.repo, userID)
	if err != nil {
		s.logger.Warn("stats unavailable", zap.Int64("user_id", userID), zap.Error(err))
		return stats.UserSummary{}, err
	}
	return sum, nil
}

// RequestHistory returns the user's summary together with every attempt,
// oldest first.
func (s *Service) RequestHistory(ctx context.Context, userID int64) (stats.UserSummary, []store.AttemptRecord, error) {
	sum, history, err := stats.ForUser(ctx, s.repo, userID)
	if err != nil {
		s.logger.Warn("history unavailable", zap.Int64("user_id", userID), zap.Error(err))
		return stats.UserSummary{}, nil, err
	}
	return sum, history, nil
}

// RequestAchievements returns the full catalog marked with what the user
// has earned.
func (s *Service) RequestAchievements(ctx context.Context, userID int64) ([]achievements.Status, error) {
	_, history, err := stats.ForUser(ctx, s.repo, userID)
	if err != nil {
		return nil, err
	}
	return achievements.Statuses(history), nil
}

// AdminAggregateStats returns stats across every user.
func (s *Service) AdminAggregateStats(ctx context.Context, userID int64) (stats.Aggregate, error) {
	if !s.IsAdmin(userID) {
		return stats.Aggregate{}, fmt.Errorf("%w: user %d", ErrNotAdmin, userID)
	}
	return stats.ForAll(ctx, s.repo)
}

// AggregateStats returns stats across every user without an admin check.
// Local operator tools use it.
func (s *Service) AggregateStats(ctx context.Context) (stats.Aggregate, error) {
	return stats.ForAll(ctx, s.repo)
}

