package bank

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestParse_BookletTest(t *testing.T) {
	raw := `{
		"name": "Algebra I",
		"questions_count": 5,
		"correct_answers": ["A","B","C","D","A"],
		"pdf_filename": "algebra1.pdf"
	}`
	test, err := Parse("algebra1", []byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "algebra1", test.ID)
	assert.Equal(t, "Algebra I", test.Name)
	assert.Equal(t, 5, test.QuestionCount())
	assert.Equal(t, "Question 1", test.Questions[0].Prompt)
	assert.Equal(t, "Question 5", test.Questions[4].Prompt)
	assert.False(t, test.HasOptions())
	assert.Equal(t, "algebra1.pdf", test.PDFFile)
}

func TestParse_InlineQuestions(t *testing.T) {
	raw := `{
		"name": "Capitals",
		"correct_answers": ["b", "A"],
		"questions": [
			{"prompt": "Capital of France?", "options": ["A","B","C"]},
			{"prompt": "Capital of Peru?", "options": ["A","B"]}
		]
	}`
	test, err := Parse("capitals", []byte(raw))
	require.NoError(t, err)
	assert.True(t, test.HasOptions())
	assert.Equal(t, "Capital of France?", test.Questions[0].Prompt)
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", `{`},
		{"missing name", `{"correct_answers":["A"]}`},
		{"no answers", `{"name":"x","correct_answers":[]}`},
		{"count disagrees", `{"name":"x","questions_count":3,"correct_answers":["A","B"]}`},
		{"questions vs keys", `{"name":"x","correct_answers":["A","B"],"questions":[{"prompt":"q"}]}`},
		{"key not an option", `{"name":"x","correct_answers":["E"],"questions":[{"prompt":"q","options":["A","B"]}]}`},
		{"answer not string", `{"name":"x","correct_answers":[1]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("x", []byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidTest), "got %v", err)
		})
	}
}

func TestLoad_SkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.json", `{"name":"Bravo","correct_answers":["A","B"]}`)
	writeFile(t, dir, "a.json", `{"name":"Alpha","correct_answers":["C"]}`)
	writeFile(t, dir, "broken.json", `{"name":`)
	writeFile(t, dir, "notes.txt", `ignored`)
	writeFile(t, dir, strings.Repeat("x", MaxIDLen+1)+".json", `{"name":"Long","correct_answers":["A"]}`)

	b, err := Load(dir, "/pdfs", nil)
	require.NoError(t, err)

	assert.Equal(t, 2, b.Len())
	assert.Equal(t, []Summary{
		{ID: "a", Name: "Alpha", QuestionCount: 1},
		{ID: "b", Name: "Bravo", QuestionCount: 2},
	}, b.List())

	all := b.All()
	assert.Len(t, all, 2)
	assert.Equal(t, 2, all["b"].QuestionCount)

	_, err = b.Get("broken")
	assert.ErrorIs(t, err, ErrTestNotFound)
}

func TestLoad_MissingDirIsEmpty(t *testing.T) {
	b, err := Load(filepath.Join(t.TempDir(), "absent"), "", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Len())
	assert.Empty(t, b.List())
}

func TestGet(t *testing.T) {
	b, err := New(&Test{ID: "t1", Name: "One", Questions: placeholderQuestions(1), AnswerKeys: []string{"A"}})
	require.NoError(t, err)

	got, err := b.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, "One", got.Name)

	_, err = b.Get("t2")
	assert.ErrorIs(t, err, ErrTestNotFound)
}

func TestNew_RejectsInvariantViolations(t *testing.T) {
	_, err := New(&Test{ID: "t", Questions: placeholderQuestions(2), AnswerKeys: []string{"A"}})
	assert.ErrorIs(t, err, ErrInvalidTest)

	_, err = New(&Test{ID: "t"})
	assert.ErrorIs(t, err, ErrInvalidTest)

	_, err = New(&Test{ID: strings.Repeat("t", MaxIDLen+1), Questions: placeholderQuestions(1), AnswerKeys: []string{"A"}})
	assert.ErrorIs(t, err, ErrInvalidTest)

	one := &Test{ID: "t", Questions: placeholderQuestions(1), AnswerKeys: []string{"A"}}
	_, err = New(one, one)
	assert.ErrorIs(t, err, ErrInvalidTest)
}

func TestPDFPath(t *testing.T) {
	b, err := New()
	require.NoError(t, err)
	b.pdfDir = "/data/pdfs"

	assert.Equal(t, "", b.PDFPath(&Test{}))
	assert.Equal(t, filepath.Join("/data/pdfs", "x.pdf"), b.PDFPath(&Test{PDFFile: "x.pdf"}))
}
