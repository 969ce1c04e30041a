package notify

import (
	"context"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"medremind/internal/reminder"
)

// EventSink receives the user-response events parsed from button taps.
type EventSink interface {
	Handle(ctx context.Context, ev reminder.Event) error
}

// UserResolver maps a Telegram chat back to the bound user and exposes the
// settings a chat may change about itself.
type UserResolver interface {
	FindUserByChatID(ctx context.Context, chatID int64) (uint64, bool, error)
	SetTelegramChatID(ctx context.Context, userID uint64, chatID *int64) error
	SetQuietHours(ctx context.Context, userID uint64, startM, endM *int) error
	SetNotificationsEnabled(ctx context.Context, userID uint64, enabled bool) error
}

// Listener turns Telegram updates into reminder events: inline-keyboard taps
// become TAKEN/SKIPPED/SNOOZE, and /link binds a chat to a user.
type Listener struct {
	Bot    *tgbotapi.BotAPI
	Users  UserResolver
	Events EventSink
	Log    *zap.Logger
}

func (l *Listener) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := l.Bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			l.Bot.StopReceivingUpdates()
			l.Log.Info("telegram listener stopping")
			return
		case upd := <-updates:
			l.handleUpdate(ctx, upd)
		}
	}
}

func (l *Listener) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		l.handleMessage(ctx, upd.Message)
		return
	}
	if upd.CallbackQuery != nil {
		l.handleCallback(ctx, upd.CallbackQuery)
	}
}

func (l *Listener) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	chatID := msg.Chat.ID

	switch {
	case strings.HasPrefix(text, "/start"):
		l.reply(chatID, "Medication reminders arrive here once linked. Use /link <user id> to connect your account, /quiet to set quiet hours, /notify to pause delivery.")
	case strings.HasPrefix(text, "/link"):
		fields := strings.Fields(text)
		if len(fields) != 2 {
			l.reply(chatID, "Usage: /link <user id>")
			return
		}
		userID, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil || userID == 0 {
			l.reply(chatID, "That does not look like a user id.")
			return
		}
		if err := l.Users.SetTelegramChatID(ctx, userID, &chatID); err != nil {
			l.Log.Error("chat link failed", zap.Error(err))
			l.reply(chatID, "Could not link right now, try again later.")
			return
		}
		l.reply(chatID, "Linked. Reminders will arrive in this chat.")
	case strings.HasPrefix(text, "/unlink"):
		userID, ok, err := l.Users.FindUserByChatID(ctx, chatID)
		if err != nil || !ok {
			l.reply(chatID, "This chat is not linked.")
			return
		}
		if err := l.Users.SetTelegramChatID(ctx, userID, nil); err != nil {
			l.Log.Error("chat unlink failed", zap.Error(err))
			return
		}
		l.reply(chatID, "Unlinked.")
	case strings.HasPrefix(text, "/quiet"):
		l.handleQuiet(ctx, chatID, strings.Fields(text))
	case strings.HasPrefix(text, "/notify"):
		l.handleNotify(ctx, chatID, strings.Fields(text))
	}
}

// /quiet HH:MM HH:MM sets the do-not-disturb window, /quiet off clears it.
func (l *Listener) handleQuiet(ctx context.Context, chatID int64, fields []string) {
	userID, ok, err := l.Users.FindUserByChatID(ctx, chatID)
	if err != nil || !ok {
		l.reply(chatID, "This chat is not linked. Use /link <user id> first.")
		return
	}

	switch {
	case len(fields) == 2 && fields[1] == "off":
		if err := l.Users.SetQuietHours(ctx, userID, nil, nil); err != nil {
			l.Log.Error("quiet hours clear failed", zap.Error(err))
			return
		}
		l.reply(chatID, "Quiet hours cleared.")
	case len(fields) == 3:
		startM, err1 := parseClock(fields[1])
		endM, err2 := parseClock(fields[2])
		if err1 != nil || err2 != nil {
			l.reply(chatID, "Usage: /quiet HH:MM HH:MM")
			return
		}
		if err := l.Users.SetQuietHours(ctx, userID, &startM, &endM); err != nil {
			l.Log.Error("quiet hours update failed", zap.Error(err))
			return
		}
		l.reply(chatID, "Quiet hours set. Reminders in the window wait until it ends.")
	default:
		l.reply(chatID, "Usage: /quiet HH:MM HH:MM, or /quiet off")
	}
}

// /notify on|off toggles reminder delivery for the linked user.
func (l *Listener) handleNotify(ctx context.Context, chatID int64, fields []string) {
	userID, ok, err := l.Users.FindUserByChatID(ctx, chatID)
	if err != nil || !ok {
		l.reply(chatID, "This chat is not linked. Use /link <user id> first.")
		return
	}

	if len(fields) != 2 || (fields[1] != "on" && fields[1] != "off") {
		l.reply(chatID, "Usage: /notify on, or /notify off")
		return
	}

	enabled := fields[1] == "on"
	if err := l.Users.SetNotificationsEnabled(ctx, userID, enabled); err != nil {
		l.Log.Error("notifications toggle failed", zap.Error(err))
		return
	}
	if enabled {
		l.reply(chatID, "Reminders on.")
	} else {
		l.reply(chatID, "Reminders off. Doses still count as missed if untaken.")
	}
}

func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func (l *Listener) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data
	if !strings.HasPrefix(data, "dose:") || cb.Message == nil {
		return
	}

	parts := strings.Split(data, ":")
	if len(parts) != 4 {
		return
	}

	scheduleID, err1 := strconv.ParseUint(parts[2], 10, 64)
	plannedMillis, err2 := strconv.ParseInt(parts[3], 10, 64)
	if err1 != nil || err2 != nil {
		return
	}

	chatID := cb.Message.Chat.ID
	userID, ok, err := l.Users.FindUserByChatID(ctx, chatID)
	if err != nil {
		l.Log.Error("chat lookup failed", zap.Error(err))
		return
	}
	if !ok {
		l.answer(cb.ID, "This chat is not linked.")
		return
	}

	var kind reminder.Kind
	var ack string
	switch parts[1] {
	case actionTaken:
		kind, ack = reminder.EventTaken, "Recorded as taken."
	case actionSkip:
		kind, ack = reminder.EventSkipped, "Recorded as skipped."
	case actionSnooze:
		kind, ack = reminder.EventSnooze, "Snoozed."
	default:
		return
	}

	ev := reminder.Event{
		Kind:        kind,
		UserID:      userID,
		ScheduleID:  scheduleID,
		PlannedTime: time.UnixMilli(plannedMillis),
	}
	if err := l.Events.Handle(ctx, ev); err != nil {
		l.Log.Error("reminder event failed",
			zap.String("kind", string(kind)),
			zap.Uint64("userID", userID),
			zap.Uint64("scheduleID", scheduleID),
			zap.Error(err),
		)
		l.answer(cb.ID, "Something went wrong, try again.")
		return
	}

	l.answer(cb.ID, ack)
}

func (l *Listener) reply(chatID int64, text string) {
	if _, err := l.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		l.Log.Warn("telegram reply failed", zap.Error(err))
	}
}

func (l *Listener) answer(callbackID, text string) {
	if _, err := l.Bot.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		l.Log.Debug("callback answer ignored", zap.Error(err))
	}
}
