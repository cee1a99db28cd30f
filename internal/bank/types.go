package bank

import "strconv"

// Question is one item of a test.
type Question struct {
	// Prompt is shown to the user. Generated as "Question N" for tests whose
	// questions live only in the PDF booklet.
	Prompt string `json:"prompt"`

	// Options are the answer labels offered as buttons. Nil means the
	// question is answered as free text.
	Options []string `json:"options,omitempty"`
}

// Test is an immutable examination loaded from the tests directory.
type Test struct {
	ID         string
	Name       string
	Questions  []Question
	AnswerKeys []string // parallel to Questions

	// PDFFile names the question booklet inside the PDF directory, if any.
	PDFFile string
}

// QuestionCount returns the number of questions.
func (t *Test) QuestionCount() int {
	return len(t.Questions)
}

// HasOptions reports whether every question offers button options. Such
// tests can be answered one question at a time; the rest take a single
// comma-separated text submission.
func (t *Test) HasOptions() bool {
	for _, q := range t.Questions {
		if len(q.Options) == 0 {
			return false
		}
	}
	return len(t.Questions) > 0
}

// Summary is the listing view of a test.
type Summary struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	QuestionCount int    `json:"question_count"`
}

func (t *Test) Summary() Summary {
	return Summary{ID: t.ID, Name: t.Name, QuestionCount: t.QuestionCount()}
}

// file is the on-disk JSON layout of a test.
type file struct {
	Name           string     `json:"name"`
	QuestionsCount int        `json:"questions_count,omitempty"`
	CorrectAnswers []string   `json:"correct_answers"`
	PDFFilename    string     `json:"pdf_filename,omitempty"`
	Questions      []Question `json:"questions,omitempty"`
}

func placeholderQuestions(n int) []Question {
	qs := make([]Question, n)
	for i := range qs {
		qs[i] = Question{Prompt: "Question " + strconv.Itoa(i+1)}
	}
	return qs
}
