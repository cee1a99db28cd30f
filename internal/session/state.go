package session

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/abhisek/proctor/internal/bank"
	"github.com/abhisek/proctor/internal/grading"
)

var (
	// ErrNoActiveSession is returned when the user has never started a test
	// (or the process restarted since).
	ErrNoActiveSession = errors.New("no active session")

	// ErrSessionClosed is returned for input to a session that has already
	// been submitted or has expired.
	ErrSessionClosed = errors.New("session closed")

	// ErrSessionExpired is the ErrSessionClosed returned when the session
	// was closed by the time limit.
	ErrSessionExpired = fmt.Errorf("%w: time limit reached", ErrSessionClosed)

	// ErrSessionSuperseded is the ErrSessionClosed returned for input aimed
	// at an attempt the user has since replaced with a new one.
	ErrSessionSuperseded = fmt.Errorf("%w: replaced by a newer attempt", ErrSessionClosed)

	// ErrIncompleteSubmission is returned when a button-mode session is
	// submitted with unanswered questions.
	ErrIncompleteSubmission = errors.New("incomplete submission")

	// ErrQuestionOutOfRange is returned for an answer to a question index
	// the test does not have.
	ErrQuestionOutOfRange = errors.New("question index out of range")
)

// State is the lifecycle state of a session.
type State int

const (
	StateInProgress State = iota // Accepting answers
	StateCompleting              // Submission won; grading and persisting
	StateGraded                  // Result recorded
	StateExpired                 // Time limit reached before submission
	StateSuperseded              // Replaced by a newer Start
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "in_progress"
	case StateCompleting:
		return "completing"
	case StateGraded:
		return "graded"
	case StateExpired:
		return "expired"
	case StateSuperseded:
		return "superseded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Closed reports whether the session is in a terminal state.
func (s State) Closed() bool {
	return s == StateGraded || s == StateExpired || s == StateSuperseded
}

// Session is one user's attempt at one test. All mutable fields are guarded
// by mu; the deadline timer and user input race for the transition out of
// StateInProgress under it.
type Session struct {
	mu sync.Mutex

	// ID is a random identifier for logs.
	ID string

	UserID int64
	Test   *bank.Test

	// answers holds one slot per question. A slot is set only when
	// answered[i] is true, so an empty string is a valid answer.
	answers  []string
	answered []bool

	state    State
	timedOut bool

	CreatedAt time.Time
	Deadline  time.Time

	// generation is unique per Start. A timer callback captures it and does
	// nothing unless it still names the user's current session.
	generation uint64

	timer Timer

	result *grading.Result
}

func newSession(id string, userID int64, test *bank.Test, now time.Time, limit time.Duration, gen uint64) *Session {
	n := test.QuestionCount()
	return &Session{
		ID:         id,
		UserID:     userID,
		Test:       test,
		answers:    make([]string, n),
		answered:   make([]bool, n),
		state:      StateInProgress,
		CreatedAt:  now,
		Deadline:   now.Add(limit),
		generation: gen,
	}
}

// RefLen is the length of a short session reference.
const RefLen = 8

// Ref returns the short reference for a session ID, small enough to embed in
// button payloads.
func Ref(sessionID string) string {
	if len(sessionID) <= RefLen {
		return sessionID
	}
	return sessionID[:RefLen]
}

// matches reports whether ref names s. An empty ref matches any session.
func (s *Session) matches(ref string) bool {
	return ref == "" || ref == s.ID || ref == Ref(s.ID)
}

// checkOpen returns nil if the session accepts input. Callers hold s.mu.
func (s *Session) checkOpen() error {
	switch s.state {
	case StateInProgress:
		return nil
	case StateExpired:
		return ErrSessionExpired
	default:
		return ErrSessionClosed
	}
}

// firstUnanswered returns the lowest unset slot, or -1. Callers hold s.mu.
func (s *Session) firstUnanswered() int {
	return slices.Index(s.answered, false)
}

// View is a read-only snapshot of a session.
type View struct {
	SessionID     string
	UserID        int64
	TestID        string
	TestName      string
	QuestionCount int
	State         State
	TimedOut      bool

	Answers  []string
	Answered []bool

	// NextUnanswered is the lowest unanswered question index, or -1 when
	// every question has an answer.
	NextUnanswered int

	StartedAt time.Time
	Deadline  time.Time
	Remaining time.Duration

	// Result is set once the session is graded.
	Result *grading.Result
}

// AnsweredCount returns how many questions have an answer.
func (v View) AnsweredCount() int {
	n := 0
	for _, a := range v.Answered {
		if a {
			n++
		}
	}
	return n
}

// view snapshots the session. Callers hold s.mu.
func (s *Session) view(now time.Time) View {
	remaining := s.Deadline.Sub(now)
	if remaining < 0 || s.state != StateInProgress {
		remaining = 0
	}
	return View{
		SessionID:      s.ID,
		UserID:         s.UserID,
		TestID:         s.Test.ID,
		TestName:       s.Test.Name,
		QuestionCount:  s.Test.QuestionCount(),
		State:          s.state,
		TimedOut:       s.timedOut,
		Answers:        slices.Clone(s.answers),
		Answered:       slices.Clone(s.answered),
		NextUnanswered: s.firstUnanswered(),
		StartedAt:      s.CreatedAt,
		Deadline:       s.Deadline,
		Remaining:      remaining,
		Result:         s.result,
	}
}
