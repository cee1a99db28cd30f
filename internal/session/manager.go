// Package session runs the lifecycle of timed exam attempts: one live
// session per user, a hard deadline per session, and grading plus
// achievement evaluation when the session is submitted.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/proctor/internal/achievements"
	"github.com/abhisek/proctor/internal/bank"
	"github.com/abhisek/proctor/internal/grading"
	"github.com/abhisek/proctor/internal/metrics"
	"github.com/abhisek/proctor/internal/store"
)

// notifyTimeout bounds a single expiry notification.
const notifyTimeout = 30 * time.Second

// Notifier tells a user their time ran out. It is called from the timer
// goroutine, at most once per session.
type Notifier interface {
	NotifyTimeExpired(ctx context.Context, userID int64, testName string) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, userID int64, testName string) error

func (f NotifierFunc) NotifyTimeExpired(ctx context.Context, userID int64, testName string) error {
	return f(ctx, userID, testName)
}

// Outcome is the result of a successful submission.
type Outcome struct {
	SessionID    string
	UserID       int64
	Test         *bank.Test
	Result       grading.Result
	Achievements []achievements.ID
	Record       store.AttemptRecord

	// PersistErr is set when the attempt was graded but could not be saved.
	// The result is still valid and should be shown.
	PersistErr error

	// HistoryErr is set when prior history could not be read; history-based
	// achievements were skipped.
	HistoryErr error
}

// Config configures a Manager.
type Config struct {
	// TimeLimit is the hard limit per attempt.
	TimeLimit time.Duration

	Clock    Clock            // default RealClock()
	Notifier Notifier         // may be set later with SetNotifier
	Logger   *zap.Logger      // default no-op
	Metrics  *metrics.Metrics // optional
}

// Manager owns every live session.
type Manager struct {
	bank    *bank.Bank
	repo    store.HistoryRepo
	clock   Clock
	limit   time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics

	// mu guards the maps, the generation counter and the notifier. Lock
	// order is mu, then Session.mu.
	mu       sync.Mutex
	sessions map[int64]*Session
	outcomes map[int64]*Outcome
	gen      uint64
	notifier Notifier
}

// NewManager creates a Manager drawing tests from b and recording attempts
// in repo.
func NewManager(b *bank.Bank, repo store.HistoryRepo, cfg Config) *Manager {
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Manager{
		bank:     b,
		repo:     repo,
		clock:    cfg.Clock,
		limit:    cfg.TimeLimit,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
		sessions: make(map[int64]*Session),
		outcomes: make(map[int64]*Outcome),
		notifier: cfg.Notifier,
	}
}

// SetNotifier replaces the expiry notifier.
func (m *Manager) SetNotifier(n Notifier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifier = n
}

// TimeLimit returns the per-attempt limit.
func (m *Manager) TimeLimit() time.Duration { return m.limit }

// Start begins a new attempt at testID, discarding any session the user
// already has. The previous session's timer is stopped; if it fires anyway
// it finds a different generation and does nothing.
func (m *Manager) Start(ctx context.Context, userID int64, testID string) (View, error) {
	test, err := m.bank.Get(testID)
	if err != nil {
		return View{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.gen++
	gen := m.gen
	now := m.clock.Now()
	s := newSession(uuid.NewString(), userID, test, now, m.limit, gen)
	s.timer = m.clock.AfterFunc(m.limit, func() { m.expire(userID, gen) })

	if old := m.sessions[userID]; old != nil {
		old.mu.Lock()
		if old.timer != nil {
			old.timer.Stop()
		}
		if old.state == StateInProgress {
			old.state = StateSuperseded
			m.metrics.Superseded()
			m.logger.Info("session superseded",
				zap.Int64("user_id", userID),
				zap.String("session_id", old.ID),
				zap.String("test_id", old.Test.ID))
		}
		old.mu.Unlock()
	}
	m.sessions[userID] = s
	delete(m.outcomes, userID)

	m.metrics.Started(test.ID)
	m.logger.Info("session started",
		zap.Int64("user_id", userID),
		zap.String("session_id", s.ID),
		zap.String("test_id", test.ID),
		zap.Duration("limit", m.limit))

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(now), nil
}

// RecordAnswer sets the answer for question index, overwriting any earlier
// answer to it.
func (m *Manager) RecordAnswer(ctx context.Context, userID int64, index int, answer string) (View, error) {
	return m.RecordAnswerFor(ctx, userID, "", index, answer)
}

// RecordAnswerFor is RecordAnswer bound to the attempt named by ref (a full
// session ID or its Ref). If the user has started another attempt since,
// it returns ErrSessionSuperseded and records nothing.
func (m *Manager) RecordAnswerFor(ctx context.Context, userID int64, ref string, index int, answer string) (View, error) {
	s, err := m.currentFor(userID, ref)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkOpen(); err != nil {
		return s.view(m.clock.Now()), err
	}
	if index < 0 || index >= len(s.answers) {
		return s.view(m.clock.Now()), fmt.Errorf("%w: %d not in [0, %d)", ErrQuestionOutOfRange, index, len(s.answers))
	}
	s.answers[index] = answer
	s.answered[index] = true
	return s.view(m.clock.Now()), nil
}

// SubmitAll submits a full answer list. The count must match the test's
// question count; otherwise the session is left untouched.
func (m *Manager) SubmitAll(ctx context.Context, userID int64, answers []string) (*Outcome, error) {
	s, err := m.current(userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if err := s.checkOpen(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	submitted := slices.Clone(answers)
	res, err := grading.Grade(s.Test, submitted)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	copy(s.answers, submitted)
	for i := range s.answered {
		s.answered[i] = true
	}
	m.beginCompletion(s)
	s.mu.Unlock()

	return m.complete(ctx, s, res)
}

// SubmitIfComplete submits the answers recorded so far. Every question
// must have an answer.
func (m *Manager) SubmitIfComplete(ctx context.Context, userID int64) (*Outcome, error) {
	return m.SubmitIfCompleteFor(ctx, userID, "")
}

// SubmitIfCompleteFor is SubmitIfComplete bound to the attempt named by ref.
func (m *Manager) SubmitIfCompleteFor(ctx context.Context, userID int64, ref string) (*Outcome, error) {
	s, err := m.currentFor(userID, ref)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if err := s.checkOpen(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if i := s.firstUnanswered(); i >= 0 {
		missing := 0
		for _, ok := range s.answered {
			if !ok {
				missing++
			}
		}
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: %d of %d questions unanswered, first is %d",
			ErrIncompleteSubmission, missing, len(s.answered), i+1)
	}
	res, err := grading.Grade(s.Test, slices.Clone(s.answers))
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	m.beginCompletion(s)
	s.mu.Unlock()

	return m.complete(ctx, s, res)
}

// Status returns a snapshot of the user's current session, open or closed.
func (m *Manager) Status(userID int64) (View, error) {
	s, err := m.current(userID)
	if err != nil {
		return View{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(m.clock.Now()), nil
}

// LastOutcome returns the outcome of the user's most recent submission
// since their last Start.
func (m *Manager) LastOutcome(userID int64) (*Outcome, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.outcomes[userID]
	return o, ok
}

// Shutdown stops every pending deadline timer. Sessions are not persisted
// and are lost.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		s.mu.Lock()
		if s.timer != nil {
			s.timer.Stop()
		}
		s.mu.Unlock()
	}
}

func (m *Manager) current(userID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNoActiveSession
	}
	return s, nil
}

// currentFor is current, failing with ErrSessionSuperseded when the user's
// session is not the one ref names.
func (m *Manager) currentFor(userID int64, ref string) (*Session, error) {
	s, err := m.current(userID)
	if err != nil {
		return nil, err
	}
	if !s.matches(ref) {
		return nil, ErrSessionSuperseded
	}
	return s, nil
}

// beginCompletion moves s out of InProgress. Callers hold s.mu.
func (m *Manager) beginCompletion(s *Session) {
	s.state = StateCompleting
	if s.timer != nil {
		s.timer.Stop()
	}
}

// complete runs the post-grading pipeline for a session in
// StateCompleting: evaluate achievements against prior history, append the
// record, then close the session as Graded.
func (m *Manager) complete(ctx context.Context, s *Session, res grading.Result) (*Outcome, error) {
	log := m.logger.With(
		zap.Int64("user_id", s.UserID),
		zap.String("session_id", s.ID),
		zap.String("test_id", s.Test.ID))

	out := &Outcome{
		SessionID: s.ID,
		UserID:    s.UserID,
		Test:      s.Test,
		Result:    res,
	}

	history, err := m.repo.ReadAll(ctx, s.UserID)
	switch {
	case err == nil:
		out.Achievements = achievements.Evaluate(history, res)
	case errors.Is(err, store.ErrNotFound):
		out.Achievements = achievements.Evaluate(nil, res)
	default:
		out.HistoryErr = err
		out.Achievements = achievements.EvaluateResult(res)
		log.Warn("could not read history, skipping history-based achievements", zap.Error(err))
	}

	out.Record = store.AttemptRecord{
		ID:          uuid.NewString(),
		TestID:      s.Test.ID,
		TestName:    s.Test.Name,
		Result:      res,
		CompletedAt: m.clock.Now().UTC(),
	}
	if err := m.repo.Append(ctx, s.UserID, out.Record); err != nil {
		out.PersistErr = err
		m.metrics.PersistFailed()
		log.Error("could not persist graded attempt", zap.Error(err))
	}

	s.mu.Lock()
	s.state = StateGraded
	s.result = &out.Result
	s.mu.Unlock()

	m.mu.Lock()
	if m.sessions[s.UserID] == s {
		m.outcomes[s.UserID] = out
	}
	m.mu.Unlock()

	m.metrics.Graded(s.Test.ID, res.Percentage)
	for _, id := range out.Achievements {
		m.metrics.Awarded(string(id))
	}
	log.Info("session graded",
		zap.Int("correct", res.CorrectCount),
		zap.Int("total", res.TotalQuestions),
		zap.Float64("percentage", res.Percentage),
		zap.Int("achievements", len(out.Achievements)))

	return out, nil
}

// expire is the deadline callback. It closes the session only if gen is
// still the user's current session and the session is still in progress;
// otherwise a submission or a newer Start won and this is a no-op.
func (m *Manager) expire(userID int64, gen uint64) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	if !ok || s.generation != gen {
		m.mu.Unlock()
		return
	}
	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		m.mu.Unlock()
		return
	}
	s.state = StateExpired
	s.timedOut = true
	testName, testID, sessionID := s.Test.Name, s.Test.ID, s.ID
	s.mu.Unlock()
	notifier := m.notifier
	m.mu.Unlock()

	m.metrics.Expired(testID)
	m.logger.Info("session expired",
		zap.Int64("user_id", userID),
		zap.String("session_id", sessionID),
		zap.String("test_id", testID))

	if notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	if err := notifier.NotifyTimeExpired(ctx, userID, testName); err != nil {
		m.logger.Warn("expiry notification failed",
			zap.Int64("user_id", userID),
			zap.String("session_id", sessionID),
			zap.Error(err))
	}
}
