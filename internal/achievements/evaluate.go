// Package achievements decides which badges a graded attempt unlocks.
//
// Earned status is never stored; it is recomputed from the user's history
// whenever it is needed.
package achievements

import (
	"github.com/abhisek/proctor/internal/grading"
	"github.com/abhisek/proctor/internal/store"
)

// persistentAt is the attempt number that unlocks Persistent.
const persistentAt = 5

// Evaluate returns the achievements unlocked by latest, given the user's
// history before it was recorded. Rules are independent; the result is in
// catalog order.
func Evaluate(historyBefore []store.AttemptRecord, latest grading.Result) []ID {
	var out []ID
	if len(historyBefore) == 0 {
		out = append(out, FirstTest)
	}
	out = append(out, resultBadges(latest)...)
	if len(historyBefore) == persistentAt-1 {
		out = append(out, Persistent)
	}
	return sortCatalogOrder(out)
}

// EvaluateResult returns only the achievements that depend on latest
// alone. Used when the history could not be read.
func EvaluateResult(latest grading.Result) []ID {
	return resultBadges(latest)
}

func resultBadges(r grading.Result) []ID {
	var out []ID
	if r.Percentage >= 90 {
		out = append(out, Excellent)
	}
	if r.Percentage == 100 {
		out = append(out, Perfectionist)
	}
	// Speedster has no completion-time signal to work from and is never
	// awarded.
	return out
}

// Earned replays a full history and returns every achievement the user has
// unlocked, each once, in catalog order.
func Earned(history []store.AttemptRecord) []ID {
	seen := make(map[ID]bool)
	for i, rec := range history {
		for _, id := range Evaluate(history[:i], rec.Result) {
			seen[id] = true
		}
	}
	var out []ID
	for _, id := range AllIDs() {
		if seen[id] {
			out = append(out, id)
		}
	}
	return out
}

// Status pairs a catalog entry with whether the user holds it.
type Status struct {
	Achievement
	Earned bool `json:"earned"`
}

// Statuses returns the full catalog annotated from history.
func Statuses(history []store.AttemptRecord) []Status {
	earned := make(map[ID]bool)
	for _, id := range Earned(history) {
		earned[id] = true
	}
	cat := Catalog()
	out := make([]Status, len(cat))
	for i, a := range cat {
		out[i] = Status{Achievement: a, Earned: earned[a.ID]}
	}
	return out
}

func sortCatalogOrder(ids []ID) []ID {
	if len(ids) < 2 {
		return ids
	}
	set := make(map[ID]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	out := make([]ID, 0, len(ids))
	for _, id := range AllIDs() {
		if set[id] {
			out = append(out, id)
		}
	}
	return out
}
