package achievements

import (
	"reflect"
	"testing"

	"github.com/abhisek/proctor/internal/grading"
	"github.com/abhisek/proctor/internal/store"
)

func result(pct float64) grading.Result {
	return grading.Result{Percentage: pct}
}

func history(pcts ...float64) []store.AttemptRecord {
	out := make([]store.AttemptRecord, len(pcts))
	for i, p := range pcts {
		out[i] = store.AttemptRecord{TestID: "t", Result: result(p)}
	}
	return out
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		before []store.AttemptRecord
		latest float64
		want   []ID
	}{
		{"first perfect attempt", nil, 100, []ID{FirstTest, Excellent, Perfectionist}},
		{"first mediocre attempt", nil, 40, []ID{FirstTest}},
		{"second attempt at 90", history(50), 90, []ID{Excellent}},
		{"just under excellent", history(50), 89.99, nil},
		{"fifth attempt", history(10, 20, 30, 40), 60, []ID{Persistent}},
		{"fifth attempt perfect", history(10, 20, 30, 40), 100, []ID{Excellent, Perfectionist, Persistent}},
		{"fourth attempt", history(10, 20, 30), 60, nil},
		{"sixth attempt", history(10, 20, 30, 40, 50), 60, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.before, result(tt.latest))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluate_SpeedsterNeverAwarded(t *testing.T) {
	for _, n := range []int{0, 1, 4, 10} {
		h := make([]store.AttemptRecord, n)
		for _, id := range Evaluate(h, result(100)) {
			if id == Speedster {
				t.Fatalf("speedster awarded with %d prior attempts", n)
			}
		}
	}
}

func TestEvaluateResult(t *testing.T) {
	got := EvaluateResult(result(100))
	want := []ID{Excellent, Perfectionist}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EvaluateResult(100) = %v, want %v", got, want)
	}
	if got := EvaluateResult(result(70)); len(got) != 0 {
		t.Errorf("EvaluateResult(70) = %v, want none", got)
	}
}

func TestEarned(t *testing.T) {
	if got := Earned(nil); len(got) != 0 {
		t.Errorf("Earned(nil) = %v", got)
	}

	got := Earned(history(40, 95, 60, 70, 80, 100))
	want := []ID{FirstTest, Excellent, Perfectionist, Persistent}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Earned() = %v, want %v", got, want)
	}
}

func TestStatuses(t *testing.T) {
	st := Statuses(history(100))
	if len(st) != len(AllIDs()) {
		t.Fatalf("len = %d, want %d", len(st), len(AllIDs()))
	}
	earned := map[ID]bool{}
	for _, s := range st {
		earned[s.ID] = s.Earned
	}
	for id, want := range map[ID]bool{
		FirstTest: true, Excellent: true, Perfectionist: true,
		Persistent: false, Speedster: false,
	} {
		if earned[id] != want {
			t.Errorf("%s earned = %v, want %v", id, earned[id], want)
		}
	}
}

func TestCatalog(t *testing.T) {
	for _, id := range AllIDs() {
		a, ok := Lookup(id)
		if !ok {
			t.Errorf("%s missing from catalog", id)
			continue
		}
		if a.Name == "" || a.Description == "" {
			t.Errorf("%s has empty name or description", id)
		}
		if id.Icon() == "✦" {
			t.Errorf("%s has no icon", id)
		}
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("Lookup of unknown id succeeded")
	}
	if ID("nope").DisplayName() != "nope" {
		t.Error("unknown id display name should fall back to the id")
	}
}
