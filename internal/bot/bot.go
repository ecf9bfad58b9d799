package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"daily-close/internal/errvalues"
	"daily-close/internal/model"
	"daily-close/internal/service"
)

const (
	cbTogglePrefix = "toggle:"
	buttonTitleLen = 32
	pollTimeout    = 60
	// below Telegram's 4096 UTF-16 unit cap, tags included
	messageLimit = 4000
)

const helpText = "📋 <b>Daily Close</b>\n" +
	"• /today — today's tasks\n" +
	"• /add &lt;title&gt; — add a task for today\n" +
	"• /toggle &lt;id&gt; — close or reopen a task\n" +
	"• /stats — completion, streaks and weekly score\n" +
	"• /help — this message"

// telegramAPI is the part of *tgbotapi.BotAPI the bot talks to.
type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot is a single-chat Telegram front end. It answers commands from the
// configured chat and doubles as a notification channel.
type Bot struct {
	api     telegramAPI
	chatID  int64
	taskSvc service.TaskServiceI
	stats   service.StatsServiceI
}

func New(token string, chatID int64, taskSvc service.TaskServiceI, stats service.StatsServiceI) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	slog.Info("bot authorized", "account", api.Self.UserName)
	return newBot(api, chatID, taskSvc, stats), nil
}

func newBot(api telegramAPI, chatID int64, taskSvc service.TaskServiceI, stats service.StatsServiceI) *Bot {
	return &Bot{api: api, chatID: chatID, taskSvc: taskSvc, stats: stats}
}

// Send delivers a notification to the configured chat.
func (b *Bot) Send(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text := fmt.Sprintf("<b>%s</b>\n\n%s", escape(subject), escape(body))
	if err := b.sendText(b.chatID, text); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// Start polls updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = pollTimeout
	updates := b.api.GetUpdatesChan(updateConfig)

	slog.Info("bot polling started", "chat_id", b.chatID)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		b.handleUpdate(ctx, update)
	}
	return nil
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
			slog.Error("handle callback", "error", err)
		}
	case update.Message != nil:
		if err := b.handleMessage(ctx, update.Message); err != nil {
			slog.Error("handle message", "error", err)
		}
	}
}

func (b *Bot) allowed(chat *tgbotapi.Chat) bool {
	return chat != nil && chat.ID == b.chatID
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.allowed(msg.Chat) {
		slog.Debug("ignoring message from foreign chat")
		return nil
	}
	if !msg.IsCommand() {
		return b.sendText(msg.Chat.ID, "Send /help for the list of commands.")
	}
	slog.Info("bot command", "command", msg.Command())
	return b.handleCommand(ctx, msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start", "help":
		return b.sendText(msg.Chat.ID, helpText)
	case "today":
		return b.sendToday(ctx, msg.Chat.ID)
	case "add":
		return b.handleAdd(ctx, msg)
	case "toggle":
		return b.handleToggle(ctx, msg)
	case "stats":
		return b.handleStats(ctx, msg)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleAdd(ctx context.Context, msg *tgbotapi.Message) error {
	task, err := b.taskSvc.CreateTask(ctx, service.TaskInput{Title: msg.CommandArguments()})
	switch {
	case errors.Is(err, errvalues.ErrEmptyTitle):
		return b.sendText(msg.Chat.ID, "Usage: /add &lt;title&gt;")
	case errors.Is(err, errvalues.ErrTitleTooLong):
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Title too long (max %d characters).", model.MaxTitleLen))
	case err != nil:
		return err
	}
	slog.Info("task created via bot", "task_id", task.ID)
	return b.sendText(msg.Chat.ID, fmt.Sprintf("➕ <b>#%d</b> %s", task.ID, escape(task.Title)))
}

func (b *Bot) handleToggle(ctx context.Context, msg *tgbotapi.Message) error {
	id, err := parseCommandID(msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, "Usage: /toggle &lt;id&gt;")
	}
	text, err := b.toggle(ctx, id)
	if err != nil {
		return err
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleStats(ctx context.Context, msg *tgbotapi.Message) error {
	dash, err := b.stats.Dashboard(ctx)
	if err != nil {
		return err
	}
	return b.sendText(msg.Chat.ID, formatStats(dash))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb.Message == nil || !b.allowed(cb.Message.Chat) {
		return nil
	}
	id, err := parseTaskID(cb.Data, cbTogglePrefix)
	if err != nil {
		_, reqErr := b.api.Request(tgbotapi.NewCallback(cb.ID, "Unknown action"))
		return errors.Join(err, reqErr)
	}
	text, err := b.toggle(ctx, id)
	if err != nil {
		return err
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		return err
	}
	if err := b.sendText(cb.Message.Chat.ID, text); err != nil {
		return err
	}
	return b.sendToday(ctx, cb.Message.Chat.ID)
}

// toggle flips a task and returns the reply; a missing task is a reply, not an error.
func (b *Bot) toggle(ctx context.Context, id uint) (string, error) {
	task, err := b.taskSvc.ToggleTask(ctx, id)
	if errors.Is(err, errvalues.ErrTaskNotFound) {
		return "Task not found.", nil
	}
	if err != nil {
		return "", err
	}
	slog.Info("task toggled via bot", "task_id", task.ID, "status", task.Status)
	if task.IsClosed() {
		return fmt.Sprintf("✅ Closed «%s».", escape(task.Title)), nil
	}
	return fmt.Sprintf("↩️ Reopened «%s».", escape(task.Title)), nil
}

func (b *Bot) sendToday(ctx context.Context, chatID int64) error {
	tasks, err := b.taskSvc.ListToday(ctx)
	if err != nil {
		return err
	}
	day, err := b.stats.Today(ctx)
	if err != nil {
		return err
	}
	chunks := splitMessage(formatToday(tasks, day), messageLimit)
	for i, chunk := range chunks {
		msg := tgbotapi.NewMessage(chatID, chunk)
		msg.ParseMode = tgbotapi.ModeHTML
		if i == len(chunks)-1 {
			if kb, ok := taskKeyboard(tasks); ok {
				msg.ReplyMarkup = kb
			}
		}
		if _, err := b.api.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	for _, chunk := range splitMessage(text, messageLimit) {
		msg := tgbotapi.NewMessage(chatID, chunk)
		msg.ParseMode = tgbotapi.ModeHTML
		if _, err := b.api.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

// splitMessage breaks text on line boundaries into chunks of at most limit
// UTF-16 units. A single line longer than limit is cut at a rune boundary.
func splitMessage(text string, limit int) []string {
	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if chunk := strings.TrimRight(cur.String(), "\n"); strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
		cur.Reset()
		curLen = 0
	}
	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf16Len(line)
		if curLen+n > limit {
			flush()
		}
		for n > limit {
			head, tail := cutUTF16(line, limit)
			cur.WriteString(head)
			flush()
			line, n = tail, utf16Len(tail)
		}
		cur.WriteString(line)
		curLen += n
	}
	flush()
	return chunks
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

func cutUTF16(s string, limit int) (string, string) {
	n := 0
	for i, r := range s {
		l := utf16.RuneLen(r)
		if n+l > limit {
			return s[:i], s[i:]
		}
		n += l
	}
	return s, ""
}

func formatToday(tasks []model.Task, day model.DayStat) string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("<b>Today</b> %s: %d/%d closed (%d%%)\n", day.Date, day.Closed, day.Total, day.Percent))
	if len(tasks) == 0 {
		builder.WriteString("\nNo tasks yet. Add one with /add &lt;title&gt;.")
		return builder.String()
	}
	builder.WriteByte('\n')
	for _, task := range tasks {
		icon := "⬜"
		if task.IsClosed() {
			icon = "✅"
		}
		builder.WriteString(fmt.Sprintf("%s <b>#%d</b> %s\n", icon, task.ID, escape(task.Title)))
	}
	if msg := service.ContextMessage(day); msg != "" {
		builder.WriteString("\n")
		builder.WriteString(escape(msg))
	}
	return strings.TrimSpace(builder.String())
}

func formatStats(dash *model.Dashboard) string {
	return fmt.Sprintf(
		"📊 <b>Stats</b>\n"+
			"• Today: %d/%d closed (%d%%)\n"+
			"• Current streak: %d\n"+
			"• Longest streak: %d\n"+
			"• Weekly productivity score: %d",
		dash.Today.Closed, dash.Today.Total, dash.Today.Percent,
		dash.Streak, dash.LongestStreak, dash.WeeklyScore,
	)
}

func taskKeyboard(tasks []model.Task) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(tasks) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(tasks))
	for _, task := range tasks {
		label := "Close"
		if task.IsClosed() {
			label = "Reopen"
		}
		label = fmt.Sprintf("%s #%d %s", label, task.ID, shortTitle(task.Title, buttonTitleLen))
		data := cbTogglePrefix + strconv.FormatUint(uint64(task.ID), 10)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(label, data)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

func parseTaskID(data, prefix string) (uint, error) {
	if !strings.HasPrefix(data, prefix) {
		return 0, fmt.Errorf("unexpected callback %q", data)
	}
	return parseCommandID(strings.TrimPrefix(data, prefix))
}

func parseCommandID(s string) (uint, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	id, err := strconv.ParseUint(s, 10, 0)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return uint(id), nil
}

func shortTitle(title string, maxLen int) string {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) <= maxLen {
		return title
	}
	runes := []rune(title)
	return string(runes[:maxLen-1]) + "…"
}

func escape(s string) string {
	return html.EscapeString(s)
}
