package notify

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"medremind/internal/reminder"
)

// ChatResolver maps a user to their Telegram chat binding, if any.
type ChatResolver interface {
	TelegramChatID(ctx context.Context, userID uint64) (int64, bool, error)
}

type sentMessage struct {
	chatID    int64
	messageID int
}

// TelegramPresenter delivers reminders as Telegram messages with a
// Taken/Skip/Snooze inline keyboard. Dismiss deletes the message.
type TelegramPresenter struct {
	Bot   *tgbotapi.BotAPI
	Chats ChatResolver
	Log   *zap.Logger

	mu   sync.Mutex
	sent map[string]sentMessage // occurrenceID -> delivered message
}

func NewTelegramPresenter(bot *tgbotapi.BotAPI, chats ChatResolver, log *zap.Logger) *TelegramPresenter {
	return &TelegramPresenter{
		Bot:   bot,
		Chats: chats,
		Log:   log,
		sent:  make(map[string]sentMessage),
	}
}

func (p *TelegramPresenter) Show(ctx context.Context, n reminder.Notification) error {
	chatID, ok, err := p.Chats.TelegramChatID(ctx, n.UserID)
	if err != nil {
		return fmt.Errorf("resolve chat: %w", err)
	}
	if !ok {
		// No binding is "could not notify", not a failure of the reminder.
		p.Log.Info("no telegram binding for user", zap.Uint64("userID", n.UserID))
		return nil
	}

	planned := n.PlannedTime.UnixMilli()
	msg := tgbotapi.NewMessage(chatID, n.Title+"\n"+n.Body)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Taken", callbackData(actionTaken, n.ScheduleID, planned)),
			tgbotapi.NewInlineKeyboardButtonData("Skip", callbackData(actionSkip, n.ScheduleID, planned)),
			tgbotapi.NewInlineKeyboardButtonData("Snooze", callbackData(actionSnooze, n.ScheduleID, planned)),
		),
	)

	out, err := p.Bot.Send(msg)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}

	p.mu.Lock()
	p.sent[n.OccurrenceID] = sentMessage{chatID: chatID, messageID: out.MessageID}
	p.mu.Unlock()
	return nil
}

func (p *TelegramPresenter) Dismiss(_ context.Context, occurrenceID string) error {
	p.mu.Lock()
	m, ok := p.sent[occurrenceID]
	if ok {
		delete(p.sent, occurrenceID)
	}
	p.mu.Unlock()

	if !ok {
		return nil
	}

	if _, err := p.Bot.Request(tgbotapi.NewDeleteMessage(m.chatID, m.messageID)); err != nil {
		// The user may have deleted the chat or the message already.
		p.Log.Debug("telegram dismiss ignored", zap.Error(err))
	}
	return nil
}

const (
	actionTaken  = "taken"
	actionSkip   = "skip"
	actionSnooze = "snooze"
)

func callbackData(action string, scheduleID uint64, plannedMillis int64) string {
	return fmt.Sprintf("dose:%s:%d:%d", action, scheduleID, plannedMillis)
}
