package bot

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-close/internal/clock"
	"daily-close/internal/model"
	"daily-close/internal/repository"
	"daily-close/internal/service"
)

const ownerChat int64 = 4242

type fakeAPI struct {
	mu        sync.Mutex
	sent      []tgbotapi.MessageConfig
	callbacks []tgbotapi.CallbackConfig
	updates   chan tgbotapi.Update
	stopped   bool
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		f.callbacks = append(f.callbacks, cb)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	if !f.stopped {
		f.stopped = true
		close(f.updates)
	}
}

func (f *fakeAPI) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeAPI) last(t *testing.T) tgbotapi.MessageConfig {
	t.Helper()
	require.NotEmpty(t, f.sent)
	return f.sent[len(f.sent)-1]
}

func newTestBot(t *testing.T) (*Bot, *fakeAPI) {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "bot.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	loc, err := clock.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	clk := clock.NewFixed(loc, time.Date(2026, 10, 19, 10, 0, 0, 0, loc))
	tasks := repository.NewTaskRepository(db)

	api := &fakeAPI{updates: make(chan tgbotapi.Update, 8)}
	return newBot(api, ownerChat, service.NewTaskService(tasks, clk), service.NewStatsService(tasks, clk)), api
}

func command(chatID int64, text string) *tgbotapi.Message {
	name := strings.SplitN(text, " ", 2)[0]
	return &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: chatID},
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(name)},
		},
	}
}

func TestCommands(t *testing.T) {
	b, api := newTestBot(t)
	ctx := context.Background()

	require.NoError(t, b.handleMessage(ctx, command(ownerChat, "/help")))
	assert.Contains(t, api.last(t).Text, "/toggle")
	assert.Equal(t, tgbotapi.ModeHTML, api.last(t).ParseMode)

	require.NoError(t, b.handleMessage(ctx, command(ownerChat, "/today")))
	assert.Contains(t, api.last(t).Text, "No tasks yet")

	require.NoError(t, b.handleMessage(ctx, command(ownerChat, "/add   Pay <rent>  ")))
	assert.Equal(t, "➕ <b>#1</b> Pay &lt;rent&gt;", api.last(t).Text)

	require.NoError(t, b.handleMessage(ctx, command(ownerChat, "/add")))
	assert.Contains(t, api.last(t).Text, "Usage: /add")

	require.NoError(t, b.handleMessage(ctx, command(ownerChat, "/add "+strings.Repeat("x", model.MaxTitleLen+1))))
	assert.Contains(t, api.last(t).Text, "Title too long")

	require.NoError(t, b.handleMessage(ctx, command(ownerChat, "/today")))
	today := api.last(t)
	assert.Contains(t, today.Text, "0/1 closed (0%)")
	assert.Contains(t, today.Text, "#1</b> Pay &lt;rent&gt;")
	kb, ok := today.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 1)
	require.NotNil(t, kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "toggle:1", *kb.InlineKeyboard[0][0].CallbackData)

	require.NoError(t, b.handleMessage(ctx, command(ownerChat, "/toggle 1")))
	assert.Contains(t, api.last(t).Text, "Closed")

	require.NoError(t, b.handleMessage(ctx, command(ownerChat, "/stats")))
	stats := api.last(t).Text
	assert.Contains(t, stats, "Today: 1/1 closed (100%)")
	assert.Contains(t, stats, "Current streak: 1")
	assert.Contains(t, stats, "Weekly productivity score: 100")

	require.NoError(t, b.handleMessage(ctx, command(ownerChat, "/toggle 99")))
	assert.Equal(t, "Task not found.", api.last(t).Text)

	require.NoError(t, b.handleMessage(ctx, command(ownerChat, "/toggle abc")))
	assert.Contains(t, api.last(t).Text, "Usage: /toggle")

	require.NoError(t, b.handleMessage(ctx, command(ownerChat, "/nope")))
	assert.Contains(t, api.last(t).Text, "Unknown command")
}

func TestForeignChatIgnored(t *testing.T) {
	b, api := newTestBot(t)
	require.NoError(t, b.handleMessage(context.Background(), command(1, "/add sneaky")))
	assert.Empty(t, api.sent)

	day, err := b.stats.Today(context.Background())
	require.NoError(t, err)
	assert.Zero(t, day.Total)
}

func TestCallbackToggle(t *testing.T) {
	b, api := newTestBot(t)
	ctx := context.Background()
	require.NoError(t, b.handleMessage(ctx, command(ownerChat, "/add Stretch")))

	cb := &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		Data:    "toggle:1",
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: ownerChat}},
	}
	require.NoError(t, b.handleCallback(ctx, cb))
	require.Len(t, api.callbacks, 1)
	assert.Equal(t, "cb-1", api.callbacks[0].CallbackQueryID)
	assert.Contains(t, api.last(t).Text, "1/1 closed (100%)")
	assert.Contains(t, api.last(t).Text, service.MessageAllClosed)

	cb.Data = "delete:1"
	assert.Error(t, b.handleCallback(ctx, cb))
}

func TestSend(t *testing.T) {
	b, api := newTestBot(t)
	require.NoError(t, b.Send(context.Background(), "Daily Close Reminder", "• a & b"))
	msg := api.last(t)
	assert.Equal(t, ownerChat, msg.ChatID)
	assert.Equal(t, "<b>Daily Close Reminder</b>\n\n• a &amp; b", msg.Text)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.Send(ctx, "x", "y"), context.Canceled)
}

func TestStartStopsOnCancel(t *testing.T) {
	b, api := newTestBot(t)
	api.updates <- tgbotapi.Update{Message: command(ownerChat, "/help")}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Start(ctx) }()

	require.Eventually(t, func() bool { return api.sentCount() == 1 }, time.Second, 10*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("bot did not stop")
	}
}

func TestParseIDs(t *testing.T) {
	id, err := parseCommandID(" #12 ")
	require.NoError(t, err)
	assert.Equal(t, uint(12), id)

	for _, bad := range []string{"", "0", "-3", "abc"} {
		_, err := parseCommandID(bad)
		assert.Error(t, err, bad)
	}

	id, err = parseTaskID("toggle:7", cbTogglePrefix)
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)
	_, err = parseTaskID("complete:7", cbTogglePrefix)
	assert.Error(t, err)
}

func TestShortTitle(t *testing.T) {
	assert.Equal(t, "short", shortTitle("  short ", 10))
	assert.Equal(t, "abcd…", shortTitle("abcdefgh", 5))
	assert.Equal(t, "ёжик…", shortTitle("ёжики в тумане", 5))
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"short"}, splitMessage("short", 10))
	assert.Equal(t, []string{"aaa\nbbb", "ccc"}, splitMessage("aaa\nbbb\nccc", 8))
	assert.Equal(t, []string{"abcd", "efgh", "ij"}, splitMessage("abcdefghij", 4))
	// 😀 is two UTF-16 units
	assert.Equal(t, []string{"😀😀", "😀"}, splitMessage("😀😀😀", 4))
	assert.Empty(t, splitMessage("\n\n", 4))
}

func TestLongTodaySplits(t *testing.T) {
	b, api := newTestBot(t)
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		_, err := b.taskSvc.CreateTask(ctx, service.TaskInput{Title: strings.Repeat("x", model.MaxTitleLen)})
		require.NoError(t, err)
	}

	require.NoError(t, b.handleMessage(ctx, command(ownerChat, "/today")))
	require.Greater(t, len(api.sent), 1)
	for i, msg := range api.sent {
		assert.LessOrEqual(t, utf16Len(msg.Text), messageLimit)
		_, hasKeyboard := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
		assert.Equal(t, i == len(api.sent)-1, hasKeyboard)
	}
	assert.True(t, strings.HasPrefix(api.sent[0].Text, "<b>Today</b>"))
	assert.Contains(t, api.sent[0].Text, "#20</b>")
	assert.Contains(t, api.sent[len(api.sent)-1].Text, "#1</b>")
}

func TestSendLongBodySplits(t *testing.T) {
	b, api := newTestBot(t)
	lines := make([]string, 40)
	for i := range lines {
		lines[i] = "• " + strings.Repeat("y", model.MaxTitleLen)
	}

	require.NoError(t, b.Send(context.Background(), "Daily Close Reminder", strings.Join(lines, "\n")))
	require.Greater(t, len(api.sent), 1)
	assert.True(t, strings.HasPrefix(api.sent[0].Text, "<b>Daily Close Reminder</b>"))
	for _, msg := range api.sent {
		assert.LessOrEqual(t, utf16Len(msg.Text), messageLimit)
		assert.Equal(t, ownerChat, msg.ChatID)
	}
}
