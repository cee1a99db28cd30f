package session

import (
	"context"
	"errors"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/proctor/internal/bank"
	"github.com/abhisek/proctor/internal/exam"
	"github.com/abhisek/proctor/internal/grading"
	"github.com/abhisek/proctor/internal/router"
	"github.com/abhisek/proctor/internal/screen"
	"github.com/abhisek/proctor/internal/screens/summary"
	sess "github.com/abhisek/proctor/internal/session"
	"github.com/abhisek/proctor/internal/ui/components"
	"github.com/abhisek/proctor/internal/ui/layout"
)

// SessionScreen runs one timed attempt.
type SessionScreen struct {
	svc    *exam.Service
	userID int64
	testID string // empty resumes the running session

	test    *bank.Test
	view    sess.View
	booklet string
	limit   time.Duration

	current int
	picker  components.OptionPicker
	input   components.AnswerSheetInput

	confirmQuit bool
	expired     bool
	submitting  bool
	notice      string
	errMsg      string
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)

// New starts testID for userID when the screen initializes. Any session the
// user already has is superseded.
func New(svc *exam.Service, userID int64, testID string) *SessionScreen {
	return &SessionScreen{svc: svc, userID: userID, testID: testID, limit: svc.Sessions().TimeLimit()}
}

// Resume reattaches to the user's running session.
func Resume(svc *exam.Service, userID int64) *SessionScreen {
	return New(svc, userID, "")
}

func (s *SessionScreen) Init() tea.Cmd {
	return tea.Batch(s.start(), tickCmd())
}

func (s *SessionScreen) Title() string {
	if s.test != nil {
		return s.test.Name
	}
	return "Test"
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.errMsg != "" || s.expired:
		return []layout.KeyHint{{Key: "any key", Description: "Back"}}
	case s.confirmQuit:
		return []layout.KeyHint{
			{Key: "Y", Description: "Leave"},
			{Key: "N", Description: "Keep going"},
		}
	case s.test != nil && s.test.HasOptions():
		return []layout.KeyHint{
			{Key: "1-9", Description: "Answer"},
			{Key: "←→", Description: "Question"},
			{Key: "F", Description: "Finish"},
			{Key: "Esc", Description: "Leave"},
		}
	}
	return []layout.KeyHint{
		{Key: "Enter", Description: "Submit"},
		{Key: "Esc", Description: "Leave"},
	}
}

func (s *SessionScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderError(width, s.errMsg)
	case s.expired:
		return renderExpired(width, s.view.TestName)
	case s.test == nil:
		return renderLoading(width)
	case s.confirmQuit:
		return renderQuitConfirm(width)
	}
	return s.renderQuestionView(width)
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case startedMsg:
		return s.handleStarted(msg)

	case timerTickMsg:
		return s.handleTick()

	case ExpiredMsg:
		if msg.UserID == s.userID && s.test != nil && msg.TestName == s.test.Name {
			s.expired = true
		}
		return s, nil

	case answerRecordedMsg:
		return s.handleRecorded(msg)

	case submittedMsg:
		return s.handleSubmitted(msg)

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}

	if s.test != nil && !s.test.HasOptions() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *SessionScreen) start() tea.Cmd {
	svc, userID, testID := s.svc, s.userID, s.testID
	return func() tea.Msg {
		var (
			v   sess.View
			err error
		)
		if testID == "" {
			v, err = svc.Status(userID)
		} else {
			v, err = svc.StartTest(context.Background(), userID, testID)
		}
		if err != nil {
			return startedMsg{Err: err}
		}
		t, err := svc.Test(v.TestID)
		if err != nil {
			return startedMsg{Err: err}
		}
		return startedMsg{Test: t, View: v, Booklet: svc.BookletPath(t)}
	}
}

func (s *SessionScreen) handleStarted(msg startedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.test = msg.Test
	s.view = msg.View
	s.booklet = msg.Booklet
	if s.view.State != sess.StateInProgress {
		s.expired = s.view.State == sess.StateExpired
		if !s.expired {
			s.errMsg = sess.ErrSessionClosed.Error()
		}
		return s, nil
	}

	if s.test.HasOptions() {
		s.current = max(s.view.NextUnanswered, 0)
		s.resetPicker()
		return s, nil
	}
	s.input = components.NewAnswerSheetInput(s.test.QuestionCount())
	return s, s.input.Init()
}

func (s *SessionScreen) handleTick() (screen.Screen, tea.Cmd) {
	if s.expired || s.errMsg != "" {
		return s, nil
	}
	if s.test == nil || s.submitting {
		return s, tickCmd()
	}
	v, err := s.svc.Status(s.userID)
	if err != nil || v.SessionID != s.view.SessionID {
		// Superseded from another front end.
		s.errMsg = sess.ErrSessionSuperseded.Error()
		return s, nil
	}
	s.view = v
	switch {
	case v.State == sess.StateExpired:
		s.expired = true
		return s, nil
	case v.State.Closed():
		s.errMsg = sess.ErrSessionClosed.Error()
		return s, nil
	}
	return s, tickCmd()
}

func (s *SessionScreen) handleRecorded(msg answerRecordedMsg) (screen.Screen, tea.Cmd) {
	if msg.Err != nil {
		return s.handleError(msg.Err)
	}
	if msg.Outcome != nil {
		return s, showSummary(msg.Outcome)
	}
	s.view = msg.View
	switch {
	case s.current+1 < s.test.QuestionCount():
		s.current++
	case msg.View.NextUnanswered >= 0:
		s.current = msg.View.NextUnanswered
	}
	s.resetPicker()
	return s, nil
}

func (s *SessionScreen) handleSubmitted(msg submittedMsg) (screen.Screen, tea.Cmd) {
	s.submitting = false
	if msg.Err != nil {
		return s.handleError(msg.Err)
	}
	return s, showSummary(msg.Outcome)
}

func (s *SessionScreen) handleError(err error) (screen.Screen, tea.Cmd) {
	s.resetPicker()
	switch {
	case errors.Is(err, sess.ErrSessionExpired):
		s.expired = true
	case errors.Is(err, grading.ErrAnswerCountMismatch):
		s.notice = "Wrong number of answers: " + err.Error()
	case errors.Is(err, sess.ErrIncompleteSubmission):
		s.notice = "Not every question has an answer yet."
	case errors.Is(err, exam.ErrEmptySubmission):
		s.notice = "Type your answers first."
	default:
		s.errMsg = err.Error()
	}
	return s, nil
}

func (s *SessionScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.errMsg != "" || s.expired {
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	if s.test == nil || s.submitting {
		return s, nil
	}

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.confirmQuit = false
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if key == "esc" {
		s.confirmQuit = true
		return s, nil
	}

	if s.test.HasOptions() {
		return s.handleOptionKey(msg)
	}

	if key == "enter" {
		s.notice = ""
		s.submitting = true
		return s, s.submitSheet(s.input.Value())
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *SessionScreen) handleOptionKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "left", "h":
		if s.current > 0 {
			s.current--
			s.resetPicker()
		}
		return s, nil
	case "right", "l":
		if s.current < s.test.QuestionCount()-1 {
			s.current++
			s.resetPicker()
		}
		return s, nil
	case "f", "F":
		s.notice = ""
		s.submitting = true
		return s, s.finish()
	}

	s.picker, _ = s.picker.Update(msg)
	if !s.picker.Picked {
		return s, nil
	}
	s.notice = ""
	return s, s.record(s.current, s.picker.Choice())
}

func (s *SessionScreen) resetPicker() {
	if s.test == nil || !s.test.HasOptions() {
		return
	}
	recorded := ""
	if s.current < len(s.view.Answered) && s.view.Answered[s.current] {
		recorded = s.view.Answers[s.current]
	}
	q := s.test.Questions[s.current]
	s.picker = components.NewOptionPicker(q.Prompt, q.Options, recorded)
}

func (s *SessionScreen) record(index int, option string) tea.Cmd {
	svc, userID, id := s.svc, s.userID, s.view.SessionID
	return func() tea.Msg {
		v, out, err := svc.AnswerSelectedFor(context.Background(), userID, id, index, option)
		return answerRecordedMsg{View: v, Outcome: out, Err: err}
	}
}

func (s *SessionScreen) finish() tea.Cmd {
	svc, userID, id := s.svc, s.userID, s.view.SessionID
	return func() tea.Msg {
		out, err := svc.FinishFor(context.Background(), userID, id)
		return submittedMsg{Outcome: out, Err: err}
	}
}

func (s *SessionScreen) submitSheet(text string) tea.Cmd {
	svc, userID := s.svc, s.userID
	return func() tea.Msg {
		out, err := svc.SubmitTextAnswers(context.Background(), userID, text)
		return submittedMsg{Outcome: out, Err: err}
	}
}

func (s *SessionScreen) bookletNote() string {
	if s.test.PDFFile == "" {
		return ""
	}
	if _, err := os.Stat(s.booklet); err != nil {
		return "PDF file not found: " + s.test.PDFFile
	}
	return "Booklet: " + s.booklet
}

func showSummary(out *sess.Outcome) tea.Cmd {
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: summary.New(out)}
	}
}

// tickCmd returns a 1-second tick command.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
