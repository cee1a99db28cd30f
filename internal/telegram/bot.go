// Package telegram is the chat front end. It turns Telegram updates into
// exam.Service calls and renders the replies with inline keyboards.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/abhisek/proctor/internal/bank"
	"github.com/abhisek/proctor/internal/exam"
	"github.com/abhisek/proctor/internal/grading"
	"github.com/abhisek/proctor/internal/session"
)

// Sender is the part of *tgbotapi.BotAPI the bot uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Options configures a Bot.
type Options struct {
	// RatePerSecond and Burst bound outbound API calls. Zero disables the
	// limit.
	RatePerSecond float64
	Burst         int

	Logger *zap.Logger
}

// Bot handles updates for one bot account.
type Bot struct {
	api     Sender
	svc     *exam.Service
	limiter *rate.Limiter
	logger  *zap.Logger

	// chats maps a user to the private chat they last wrote from, so the
	// expiry notice reaches them.
	mu    sync.Mutex
	chats map[int64]int64
}

// New creates a Bot and installs it as the service's expiry notifier.
func New(api Sender, svc *exam.Service, opts Options) *Bot {
	lim := rate.NewLimiter(rate.Inf, 0)
	if opts.RatePerSecond > 0 {
		lim = rate.NewLimiter(rate.Limit(opts.RatePerSecond), max(opts.Burst, 1))
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	b := &Bot{
		api:     api,
		svc:     svc,
		limiter: lim,
		logger:  opts.Logger,
		chats:   make(map[int64]int64),
	}
	svc.Sessions().SetNotifier(b)
	return b
}

// Run handles updates until ctx is done or the channel closes.
func (b *Bot) Run(ctx context.Context, updates tgbotapi.UpdatesChannel) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			b.HandleUpdate(ctx, u)
		}
	}
}

// HandleUpdate dispatches one update.
func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	switch {
	case u.CallbackQuery != nil:
		b.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil:
		b.handleMessage(ctx, u.Message)
	}
}

// NotifyTimeExpired implements session.Notifier.
func (b *Bot) NotifyTimeExpired(ctx context.Context, userID int64, testName string) error {
	return b.send(ctx, tgbotapi.NewMessage(b.chatFor(userID), timeExpiredText(testName)))
}

func (b *Bot) remember(userID, chatID int64) {
	b.mu.Lock()
	b.chats[userID] = chatID
	b.mu.Unlock()
}

// chatFor falls back to the user ID, which is the private chat ID.
func (b *Bot) chatFor(userID int64) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id, ok := b.chats[userID]; ok {
		return id
	}
	return userID
}

func (b *Bot) handleMessage(ctx context.Context, m *tgbotapi.Message) {
	if m.From == nil || m.Chat == nil {
		return
	}
	userID, chatID := m.From.ID, m.Chat.ID
	b.remember(userID, chatID)

	if m.IsCommand() {
		b.handleCommand(ctx, userID, chatID, m.Command())
		return
	}
	if m.Document != nil && m.Text == "" {
		b.reply(ctx, chatID, "Send your answers as text: "+answerFormat)
		return
	}
	b.submitText(ctx, userID, chatID, m.Text)
}

func (b *Bot) handleCommand(ctx context.Context, userID, chatID int64, cmd string) {
	switch cmd {
	case "start":
		b.showMenu(ctx, chatID, 0)
	case "cancel":
		b.reply(ctx, chatID, "Back to the main menu.")
		b.showMenu(ctx, chatID, 0)
	case "help":
		b.show(ctx, chatID, 0, helpText(b.svc.Sessions().TimeLimit()), backKeyboard())
	case "tests":
		b.showTests(ctx, chatID, 0)
	case "stats":
		b.showStats(ctx, userID, chatID, 0)
	case "achievements":
		b.showAchievements(ctx, userID, chatID, 0)
	case "admin":
		b.showAggregate(ctx, userID, chatID)
	default:
		b.reply(ctx, chatID, unknownText)
	}
}

func (b *Bot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if _, err := b.request(ctx, tgbotapi.NewCallback(q.ID, "")); err != nil {
		b.logger.Warn("answer callback failed", zap.Error(err))
	}
	if q.From == nil || q.Message == nil || q.Message.Chat == nil {
		return
	}
	userID, chatID, msgID := q.From.ID, q.Message.Chat.ID, q.Message.MessageID
	b.remember(userID, chatID)

	data := q.Data
	switch {
	case data == cbSelectTest:
		b.showTests(ctx, chatID, msgID)
	case data == cbShowStats:
		b.showStats(ctx, userID, chatID, msgID)
	case data == cbAchievements:
		b.showAchievements(ctx, userID, chatID, msgID)
	case data == cbHelp:
		b.show(ctx, chatID, msgID, helpText(b.svc.Sessions().TimeLimit()), backKeyboard())
	case data == cbBackToMenu:
		b.showMenu(ctx, chatID, msgID)
	case data == cbShowDetails:
		b.showDetails(ctx, userID, chatID, msgID)
	case strings.HasPrefix(data, prefixFinish):
		b.finish(ctx, userID, chatID, strings.TrimPrefix(data, prefixFinish))
	case strings.HasPrefix(data, prefixTest):
		b.startTest(ctx, userID, chatID, strings.TrimPrefix(data, prefixTest))
	case strings.HasPrefix(data, prefixAnswer):
		b.answer(ctx, userID, chatID, strings.TrimPrefix(data, prefixAnswer))
	default:
		b.reply(ctx, chatID, unknownText)
	}
}

func (b *Bot) showMenu(ctx context.Context, chatID int64, msgID int) {
	b.show(ctx, chatID, msgID, mainMenuText(b.svc.Sessions().TimeLimit()), mainMenuKeyboard())
}

func (b *Bot) showTests(ctx context.Context, chatID int64, msgID int) {
	tests := b.svc.Tests()
	if len(tests) == 0 {
		b.show(ctx, chatID, msgID, emptyBankText, backKeyboard())
		return
	}
	b.show(ctx, chatID, msgID, "📝 Choose a test:", testListKeyboard(tests))
}

func (b *Bot) startTest(ctx context.Context, userID, chatID int64, testID string) {
	v, err := b.svc.StartTest(ctx, userID, testID)
	if errors.Is(err, bank.ErrTestNotFound) {
		b.reply(ctx, chatID, "❌ Test not found")
		return
	}
	if err != nil {
		b.logger.Error("start test failed", zap.Int64("user_id", userID), zap.Error(err))
		b.reply(ctx, chatID, "❌ Could not start the test.")
		return
	}
	t, err := b.svc.Test(testID)
	if err != nil {
		return
	}
	limit := b.svc.Sessions().TimeLimit()

	b.sendBooklet(ctx, chatID, t, limit)
	b.reply(ctx, chatID, timerStartedText(t, limit))
	if t.HasOptions() && v.NextUnanswered >= 0 {
		b.sendQuestion(ctx, chatID, t, v, v.NextUnanswered)
	}
}

// sendBooklet sends the test PDF with the intro as its caption. Without a
// readable booklet the intro goes out as plain text.
func (b *Bot) sendBooklet(ctx context.Context, chatID int64, t *bank.Test, limit time.Duration) {
	intro := testIntro(t, limit)
	path := b.svc.BookletPath(t)
	if path == "" {
		b.reply(ctx, chatID, intro)
		return
	}
	if _, err := os.Stat(path); err != nil {
		b.logger.Warn("booklet missing", zap.String("test_id", t.ID), zap.String("path", path), zap.Error(err))
		b.reply(ctx, chatID, fmt.Sprintf("❌ PDF file not found: %s\n\n%s", t.PDFFile, intro))
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = intro
	if err := b.send(ctx, doc); err != nil {
		b.reply(ctx, chatID, "❌ Could not send the PDF file\n\n"+intro)
	}
}

func (b *Bot) sendQuestion(ctx context.Context, chatID int64, t *bank.Test, v session.View, index int) {
	msg := tgbotapi.NewMessage(chatID, questionText(t, v, index))
	msg.ReplyMarkup = questionKeyboard(t, v.SessionID, index)
	_ = b.send(ctx, msg)
}

// answer handles "ans_<ref>_<question>_<option>".
func (b *Bot) answer(ctx context.Context, userID, chatID int64, data string) {
	parts := strings.Split(data, "_")
	if len(parts) != 3 {
		return
	}
	ref := parts[0]
	qi, err1 := strconv.Atoi(parts[1])
	oi, err2 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil {
		return
	}
	v, err := b.svc.Status(userID)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	if session.Ref(v.SessionID) != ref {
		b.reply(ctx, chatID, supersededText)
		return
	}
	t, err := b.svc.Test(v.TestID)
	if err != nil || qi < 0 || qi >= t.QuestionCount() || oi < 0 || oi >= len(t.Questions[qi].Options) {
		return
	}

	v, out, err := b.svc.AnswerSelectedFor(ctx, userID, ref, qi, t.Questions[qi].Options[oi])
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	if out != nil {
		b.sendResult(ctx, chatID, out)
		return
	}
	if v.NextUnanswered >= 0 {
		b.sendQuestion(ctx, chatID, t, v, v.NextUnanswered)
	}
}

func (b *Bot) finish(ctx context.Context, userID, chatID int64, ref string) {
	out, err := b.svc.FinishFor(ctx, userID, ref)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.sendResult(ctx, chatID, out)
}

func (b *Bot) submitText(ctx context.Context, userID, chatID int64, text string) {
	out, err := b.svc.SubmitTextAnswers(ctx, userID, text)
	if err != nil {
		b.replyError(ctx, chatID, err)
		return
	}
	b.sendResult(ctx, chatID, out)
}

func (b *Bot) sendResult(ctx context.Context, chatID int64, out *session.Outcome) {
	msg := tgbotapi.NewMessage(chatID, resultText(out))
	msg.ReplyMarkup = resultKeyboard()
	_ = b.send(ctx, msg)
}

// replyError maps service errors to user-facing text.
func (b *Bot) replyError(ctx context.Context, chatID int64, err error) {
	var text string
	switch {
	case errors.Is(err, session.ErrSessionExpired):
		text = expiredText
	case errors.Is(err, session.ErrSessionSuperseded):
		text = supersededText
	case errors.Is(err, session.ErrSessionClosed):
		text = completedText
	case errors.Is(err, session.ErrNoActiveSession):
		text = noTestText
	case errors.Is(err, exam.ErrEmptySubmission):
		text = "❌ Send your answers as: " + answerFormat
	case errors.Is(err, grading.ErrAnswerCountMismatch):
		text = "❌ " + err.Error()
	case errors.Is(err, session.ErrIncompleteSubmission):
		text = "❌ Not every question has an answer yet: " + err.Error()
	default:
		b.logger.Error("request failed", zap.Int64("chat_id", chatID), zap.Error(err))
		text = "❌ Something went wrong. Try again."
	}
	b.reply(ctx, chatID, text)
}

func (b *Bot) showDetails(ctx context.Context, userID, chatID int64, msgID int) {
	out, ok := b.svc.LastResult(userID)
	if !ok {
		b.show(ctx, chatID, msgID, noDetailsText, backKeyboard())
		return
	}
	b.show(ctx, chatID, msgID, detailsText(out.Result), backKeyboard())
}

func (b *Bot) showStats(ctx context.Context, userID, chatID int64, msgID int) {
	s, err := b.svc.RequestStats(ctx, userID)
	if err != nil {
		b.show(ctx, chatID, msgID, statsUnavailable, backKeyboard())
		return
	}
	b.show(ctx, chatID, msgID, statsText(s), takeTestKeyboard())
}

func (b *Bot) showAchievements(ctx context.Context, userID, chatID int64, msgID int) {
	list, err := b.svc.RequestAchievements(ctx, userID)
	if err != nil {
		b.show(ctx, chatID, msgID, statsUnavailable, backKeyboard())
		return
	}
	b.show(ctx, chatID, msgID, achievementsText(list), backKeyboard())
}

func (b *Bot) showAggregate(ctx context.Context, userID, chatID int64) {
	agg, err := b.svc.AdminAggregateStats(ctx, userID)
	if errors.Is(err, exam.ErrNotAdmin) {
		b.reply(ctx, chatID, notAdminText)
		return
	}
	if err != nil {
		b.reply(ctx, chatID, statsUnavailable)
		return
	}
	b.reply(ctx, chatID, aggregateText(agg))
}

// show edits msgID in place when it is set, otherwise sends a new message.
func (b *Bot) show(ctx context.Context, chatID int64, msgID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	if msgID != 0 {
		if err := b.send(ctx, tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, kb)); err == nil {
			return
		}
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	_ = b.send(ctx, msg)
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) {
	_ = b.send(ctx, tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) send(ctx context.Context, c tgbotapi.Chattable) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := b.api.Send(c); err != nil {
		b.logger.Warn("telegram send failed", zap.Error(err))
		return err
	}
	return nil
}

func (b *Bot) request(ctx context.Context, c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return b.api.Request(c)
}
