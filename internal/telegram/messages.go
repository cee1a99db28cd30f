package telegram

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/abhisek/proctor/internal/achievements"
	"github.com/abhisek/proctor/internal/bank"
	"github.com/abhisek/proctor/internal/exam"
	"github.com/abhisek/proctor/internal/grading"
	"github.com/abhisek/proctor/internal/session"
	"github.com/abhisek/proctor/internal/stats"
)

// Callback data.
const (
	cbSelectTest   = "select_test"
	cbShowStats    = "show_stats"
	cbHelp         = "help"
	cbBackToMenu   = "back_to_menu"
	cbShowDetails  = "show_details"
	cbAchievements = "achievements"

	prefixTest   = "test_"
	prefixAnswer = "ans_"    // ans_<session ref>_<question>_<option>
	prefixFinish = "finish_" // finish_<session ref>
)

const answerFormat = "A,B,C,D,A,B,..."

func mainMenuText(limit time.Duration) string {
	return "📚 Test checker\n\n" +
		"The bot checks your answers to tests.\n" +
		"⏰ Time per test: " + exam.FormatLimit(limit) + "\n" +
		"Answer format: " + answerFormat + "\n\n" +
		"Choose a section:"
}

func mainMenuKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📝 Choose a test", cbSelectTest)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📊 Statistics", cbShowStats)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏆 Achievements", cbAchievements)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("ℹ️ Help", cbHelp)),
	)
}

func backKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Back to menu", cbBackToMenu)),
	)
}

func takeTestKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📝 Take a test", cbSelectTest)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🔙 Back to menu", cbBackToMenu)),
	)
}

const emptyBankText = "📝 Available tests\n\n" +
	"There are no tests yet.\n\n" +
	"To add a test:\n" +
	"1. Put a JSON file in data/tests/\n" +
	"2. Put its PDF in data/pdfs/"

func testListKeyboard(tests []bank.Summary) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(tests)+1)
	for _, t := range tests {
		label := fmt.Sprintf("%s (%d questions)", t.Name, t.QuestionCount)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, prefixTest+t.ID)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Back", cbBackToMenu)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func helpText(limit time.Duration) string {
	l := exam.FormatLimit(limit)
	return "ℹ️ Help\n\n" +
		"📚 A bot for checking tests\n\n" +
		"How to use it:\n" +
		"1. Tap 'Choose a test'\n" +
		"2. Pick the test you want\n" +
		"3. The bot sends a PDF with the questions\n" +
		"4. ⏰ You have " + l + " to solve it\n" +
		"5. Send your answers as: " + answerFormat + "\n" +
		"6. Get your result\n\n" +
		"Commands: /start /tests /stats /achievements /cancel /help\n\n" +
		"⏰ IMPORTANT: if you do not send your answers within " + l + ",\n" +
		"the test is closed automatically!"
}

// testIntro is the booklet caption, or the standalone message when there is
// no booklet to send.
func testIntro(t *bank.Test, limit time.Duration) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📄 %s\n\n", t.Name)
	fmt.Fprintf(&b, "📊 Questions: %d\n", t.QuestionCount())
	fmt.Fprintf(&b, "⏰ Time: %s\n\n", exam.FormatLimit(limit))
	if t.HasOptions() {
		b.WriteString("➡️ Answer each question with the buttons below, or send all answers as:\n")
	} else {
		fmt.Fprintf(&b, "➡️ When you are done, send %d answers as:\n", t.QuestionCount())
	}
	b.WriteString(answerFormat)
	return b.String()
}

func timerStartedText(t *bank.Test, limit time.Duration) string {
	return fmt.Sprintf("⏰ TIMER STARTED!\n\n"+
		"You have %s for the test '%s'.\n"+
		"When you finish, send your answers as: %s\n\n"+
		"⏱️ If you run out of time, the test is closed automatically.",
		exam.FormatLimit(limit), t.Name, answerFormat)
}

func timeExpiredText(testName string) string {
	return fmt.Sprintf("⏰ TIME IS UP!\n\n"+
		"The test '%s' is over.\n"+
		"You did not send your answers in time.\n\n"+
		"➡️ Use /start to begin a new test.", testName)
}

const (
	expiredText      = "❌ Time for this test has run out!\n\n➡️ Use /start to begin a new test."
	completedText    = "❌ This test is already finished.\n\n➡️ Use /start to begin a new test."
	supersededText   = "❌ These buttons belong to an earlier attempt. Use the buttons of your current test."
	noTestText       = "❌ No test selected. Choose one first."
	notAdminText     = "⛔ This command is for administrators only."
	noDetailsText    = "❌ No results found."
	unknownText      = "Unknown command. Use /help."
	persistWarnText  = "\n⚠️ Your result could not be saved to your history. It is still shown above."
	historyWarnText  = "\n⚠️ Your history could not be read, so some achievements were not checked."
	statsUnavailable = "❌ Statistics are unavailable right now. Try again later."
)

func questionText(t *bank.Test, v session.View, index int) string {
	q := t.Questions[index]
	var b strings.Builder
	fmt.Fprintf(&b, "❓ Question %d/%d\n\n%s", index+1, t.QuestionCount(), q.Prompt)
	fmt.Fprintf(&b, "\n\n⏱️ %s left, %d/%d answered",
		exam.FormatRemaining(v.Remaining), v.AnsweredCount(), v.QuestionCount)
	return b.String()
}

// questionKeyboard tags every button with the attempt's session ref so a
// press on an old keyboard cannot reach a newer attempt.
func questionKeyboard(t *bank.Test, sessionID string, index int) tgbotapi.InlineKeyboardMarkup {
	ref := session.Ref(sessionID)
	q := t.Questions[index]
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(q.Options))
	for i, opt := range q.Options {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(opt, fmt.Sprintf("%s%s_%d_%d", prefixAnswer, ref, index, i)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(
		row,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("🏁 Finish", prefixFinish+ref)),
	)
}

func resultText(o *session.Outcome) string {
	r := o.Result
	var b strings.Builder
	fmt.Fprintf(&b, "📊 RESULTS: %s\n\n", o.Test.Name)
	fmt.Fprintf(&b, "✅ Correct: %d/%d\n", r.CorrectCount, r.TotalQuestions)
	fmt.Fprintf(&b, "📈 Score: %s\n\n", exam.FormatPercent(r.Percentage))
	band := grading.BandFor(r.Percentage)
	fmt.Fprintf(&b, "%s %s\n", bandIcon(band), band.Message())

	if len(o.Achievements) > 0 {
		b.WriteString("\n🏆 New achievements:\n")
		for _, id := range o.Achievements {
			fmt.Fprintf(&b, "%s %s\n", id.Icon(), id.DisplayName())
		}
	}
	if o.HistoryErr != nil {
		b.WriteString(historyWarnText)
	}
	if o.PersistErr != nil {
		b.WriteString(persistWarnText)
	}
	return b.String()
}

func bandIcon(b grading.Band) string {
	switch b {
	case grading.BandExcellent:
		return "🎉"
	case grading.BandGood:
		return "👍"
	case grading.BandSatisfactory:
		return "⚠️"
	default:
		return "📚"
	}
}

func resultKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📋 Result details", cbShowDetails)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📊 Statistics", cbShowStats)),
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📝 New test", cbSelectTest)),
	)
}

func detailsText(r grading.Result) string {
	var b strings.Builder
	b.WriteString("📋 Result details:\n\n")
	for _, d := range r.Details {
		mark := "❌"
		if d.Correct {
			mark = "✅"
		}
		fmt.Fprintf(&b, "%s %2d: yours %s | correct %s\n", mark, d.Number, d.Submitted, d.Expected)
	}
	return b.String()
}

func statsText(s stats.UserSummary) string {
	if s.TotalTests == 0 {
		return "📊 Statistics\n\nYou have not completed any tests yet."
	}
	var b strings.Builder
	b.WriteString("📊 Your statistics\n\n")
	fmt.Fprintf(&b, "📈 Tests taken: %d\n", s.TotalTests)
	fmt.Fprintf(&b, "🏆 Average score: %.1f%%\n\n", s.AveragePercent)
	b.WriteString("📋 Recent tests:\n")
	for _, r := range s.Recent {
		fmt.Fprintf(&b, "• %s: %s\n", r.TestName, exam.FormatPercent(r.Percentage))
	}
	return b.String()
}

func achievementsText(list []achievements.Status) string {
	var b strings.Builder
	b.WriteString("🏆 Achievements\n\n")
	for _, s := range list {
		mark := "🔒"
		if s.Earned {
			mark = s.ID.Icon()
		}
		fmt.Fprintf(&b, "%s %s (%s): %s\n", mark, s.Name, s.Rarity.DisplayName(), s.Description)
	}
	return b.String()
}

func aggregateText(a stats.Aggregate) string {
	var b strings.Builder
	b.WriteString("🛠 Overall statistics\n\n")
	fmt.Fprintf(&b, "👥 Users: %d\n", a.Users)
	fmt.Fprintf(&b, "📝 Attempts: %d\n", a.Attempts)
	fmt.Fprintf(&b, "📈 Average score: %.1f%%\n", a.AveragePercent)
	if len(a.PerTest) > 0 {
		b.WriteString("\nBy test:\n")
		for _, t := range a.PerTest {
			fmt.Fprintf(&b, "• %s: %d attempts, %.1f%%\n", t.TestName, t.Attempts, t.AveragePercent)
		}
	}
	return b.String()
}
