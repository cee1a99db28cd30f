// Package grading scores a submission against a test's answer keys.
package grading

import (
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/proctor/internal/bank"
)

// ErrAnswerCountMismatch is returned when the number of submitted answers
// differs from the number of questions.
var ErrAnswerCountMismatch = errors.New("answer count mismatch")

// Detail is the outcome for one question.
type Detail struct {
	Number    int    `json:"question_number"` // 1-based
	Submitted string `json:"user_answer"`
	Expected  string `json:"correct_answer"`
	Correct   bool   `json:"is_correct"`
}

// Result is a graded submission.
type Result struct {
	CorrectCount   int      `json:"correct_count"`
	TotalQuestions int      `json:"total_questions"`
	Percentage     float64  `json:"percentage"`
	Details        []Detail `json:"detailed_results"`
}

// Normalize prepares an answer for comparison: surrounding whitespace is
// removed and letters are upper-cased, so "a", " A " and "a " all equal "A".
func Normalize(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Equal reports whether two answers match after normalization.
func Equal(submitted, expected string) bool {
	return Normalize(submitted) == Normalize(expected)
}

// Grade scores submitted against test's keys. It is pure: the same inputs
// always produce the same Result.
func Grade(test *bank.Test, submitted []string) (Result, error) {
	total := len(test.AnswerKeys)
	if len(submitted) != total {
		return Result{}, fmt.Errorf("%w: expected %d answers, got %d",
			ErrAnswerCountMismatch, total, len(submitted))
	}

	res := Result{
		TotalQuestions: total,
		Details:        make([]Detail, total),
	}
	for i, key := range test.AnswerKeys {
		ok := Equal(submitted[i], key)
		if ok {
			res.CorrectCount++
		}
		res.Details[i] = Detail{
			Number:    i + 1,
			Submitted: submitted[i],
			Expected:  key,
			Correct:   ok,
		}
	}
	res.Percentage = RoundPercent(res.CorrectCount, total)
	return res, nil
}

// RoundPercent returns correct/total*100 rounded half-up to two decimals.
// The rounding is done in integer hundredths of a percent on the exact
// ratio, so 1/8 gives 12.5 and 1/32 gives 3.13 with no float drift.
func RoundPercent(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	// hundredths = round(correct * 10000 / total)
	num := int64(correct) * 10000
	den := int64(total)
	hundredths := (2*num + den) / (2 * den)
	return float64(hundredths) / 100
}

// Band is the qualitative rating attached to a score.
type Band int

const (
	BandNeedsReview Band = iota
	BandSatisfactory
	BandGood
	BandExcellent
)

// BandFor rates a percentage.
func BandFor(percentage float64) Band {
	switch {
	case percentage >= 90:
		return BandExcellent
	case percentage >= 70:
		return BandGood
	case percentage >= 50:
		return BandSatisfactory
	default:
		return BandNeedsReview
	}
}

func (b Band) String() string {
	switch b {
	case BandExcellent:
		return "Excellent"
	case BandGood:
		return "Good"
	case BandSatisfactory:
		return "Satisfactory"
	default:
		return "Needs review"
	}
}

// Message is the one-line feedback shown with a result.
func (b Band) Message() string {
	switch b {
	case BandExcellent:
		return "Excellent! An outstanding result."
	case BandGood:
		return "Good! Solid knowledge."
	case BandSatisfactory:
		return "Satisfactory. There is room to improve."
	default:
		return "Time to review the material."
	}
}

// Incorrect returns the details of wrongly answered questions.
func (r Result) Incorrect() []Detail {
	var out []Detail
	for _, d := range r.Details {
		if !d.Correct {
			out = append(out, d)
		}
	}
	return out
}
