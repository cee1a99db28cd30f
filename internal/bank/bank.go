// Package bank loads the read-only catalog of tests.
package bank

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// ErrTestNotFound is returned when a test ID does not resolve.
var ErrTestNotFound = errors.New("test not found")

// MaxIDLen bounds a test ID. IDs are carried in Telegram callback data,
// which is limited to 64 bytes including the button prefix.
const MaxIDLen = 48

// ErrInvalidTest marks a test definition that violates its invariants.
var ErrInvalidTest = errors.New("invalid test")

// Bank is the process-wide question bank. It is populated once and never
// mutated afterwards, so it is safe for concurrent use without locking.
type Bank struct {
	tests  map[string]*Test
	ids    []string // sorted
	pdfDir string
}

// New builds a bank from already-constructed tests. Every test is checked
// for a non-empty ID, at least one question and one answer key per question.
func New(tests ...*Test) (*Bank, error) {
	b := &Bank{tests: make(map[string]*Test, len(tests))}
	for _, t := range tests {
		if err := check(t); err != nil {
			return nil, err
		}
		if _, dup := b.tests[t.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate test id %q", ErrInvalidTest, t.ID)
		}
		b.tests[t.ID] = t
		b.ids = append(b.ids, t.ID)
	}
	slices.Sort(b.ids)
	return b, nil
}

// Load reads every *.json file in dir. The test ID is the file name without
// its extension. Files that fail to parse or validate are logged and
// skipped. A missing directory yields an empty bank.
func Load(dir, pdfDir string, logger *zap.Logger) (*Bank, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("tests directory does not exist", zap.String("dir", dir))
			b, _ := New()
			b.pdfDir = pdfDir
			return b, nil
		}
		return nil, fmt.Errorf("read tests dir: %w", err)
	}

	var tests []*Test
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		id := strings.TrimSuffix(e.Name(), ".json")
		path := filepath.Join(dir, e.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("skipping unreadable test file", zap.String("path", path), zap.Error(err))
			continue
		}
		t, err := Parse(id, data)
		if err != nil {
			logger.Warn("skipping invalid test file", zap.String("path", path), zap.Error(err))
			continue
		}
		tests = append(tests, t)
		logger.Debug("loaded test", zap.String("test_id", id), zap.Int("questions", t.QuestionCount()))
	}

	b, err := New(tests...)
	if err != nil {
		return nil, err
	}
	b.pdfDir = pdfDir
	logger.Info("question bank loaded", zap.Int("tests", len(b.ids)), zap.String("dir", dir))
	return b, nil
}

// Parse decodes and validates one test document.
func Parse(id string, data []byte) (*Test, error) {
	if err := validateDocument(data); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTest, err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTest, err)
	}

	n := len(f.CorrectAnswers)
	if f.QuestionsCount != 0 && f.QuestionsCount != n {
		return nil, fmt.Errorf("%w: questions_count is %d but %d answers are keyed",
			ErrInvalidTest, f.QuestionsCount, n)
	}

	questions := f.Questions
	if len(questions) == 0 {
		questions = placeholderQuestions(n)
	}

	t := &Test{
		ID:         id,
		Name:       f.Name,
		Questions:  questions,
		AnswerKeys: f.CorrectAnswers,
		PDFFile:    f.PDFFilename,
	}
	if err := check(t); err != nil {
		return nil, err
	}
	return t, nil
}

func check(t *Test) error {
	if t == nil || t.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidTest)
	}
	if len(t.ID) > MaxIDLen {
		return fmt.Errorf("%w: id %q is longer than %d bytes", ErrInvalidTest, t.ID, MaxIDLen)
	}
	if len(t.Questions) == 0 {
		return fmt.Errorf("%w: %s has no questions", ErrInvalidTest, t.ID)
	}
	if len(t.AnswerKeys) != len(t.Questions) {
		return fmt.Errorf("%w: %s has %d questions but %d answer keys",
			ErrInvalidTest, t.ID, len(t.Questions), len(t.AnswerKeys))
	}
	for i, q := range t.Questions {
		if len(q.Options) == 0 {
			continue
		}
		key := strings.TrimSpace(t.AnswerKeys[i])
		if !slices.ContainsFunc(q.Options, func(o string) bool {
			return strings.EqualFold(strings.TrimSpace(o), key)
		}) {
			return fmt.Errorf("%w: %s question %d key %q is not one of its options",
				ErrInvalidTest, t.ID, i+1, t.AnswerKeys[i])
		}
	}
	return nil
}

// Get returns the test with the given ID.
func (b *Bank) Get(id string) (*Test, error) {
	t, ok := b.tests[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrTestNotFound, id)
	}
	return t, nil
}

// All returns every test's summary keyed by ID.
func (b *Bank) All() map[string]Summary {
	out := make(map[string]Summary, len(b.tests))
	for id, t := range b.tests {
		out[id] = t.Summary()
	}
	return out
}

// List returns summaries ordered by test ID.
func (b *Bank) List() []Summary {
	out := make([]Summary, 0, len(b.ids))
	for _, id := range b.ids {
		out = append(out, b.tests[id].Summary())
	}
	return out
}

// Len returns the number of tests.
func (b *Bank) Len() int { return len(b.ids) }

// PDFPath returns the booklet path for t, or "" when it has none.
func (b *Bank) PDFPath(t *Test) string {
	if t.PDFFile == "" {
		return ""
	}
	return filepath.Join(b.pdfDir, t.PDFFile)
}
