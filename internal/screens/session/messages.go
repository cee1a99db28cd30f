package session

import (
	"time"

	"github.com/abhisek/proctor/internal/bank"
	sess "github.com/abhisek/proctor/internal/session"
)

// ExpiredMsg is delivered by the program when the session timer fires.
type ExpiredMsg struct {
	UserID   int64
	TestName string
}

// startedMsg is sent once the attempt has been started or resumed.
type startedMsg struct {
	Test    *bank.Test
	View    sess.View
	Booklet string
	Err     error
}

// timerTickMsg is sent every second to update the countdown.
type timerTickMsg time.Time

// answerRecordedMsg is sent after a button-mode answer is stored.
type answerRecordedMsg struct {
	View    sess.View
	Outcome *sess.Outcome
	Err     error
}

// submittedMsg is sent after a submission attempt.
type submittedMsg struct {
	Outcome *sess.Outcome
	Err     error
}
