package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"lottery-ledger.backend/internal/domain/entities"
	"lottery-ledger.backend/pkg/logger"
)

// telegramSender is the part of *tgbotapi.BotAPI the notifier uses
type telegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

var newBotAPI = func(token string) (telegramSender, error) {
	return tgbotapi.NewBotAPI(token)
}

// adminTopics are the events the back office acts on
var adminTopics = map[string]bool{
	entities.TopicPlanIssued:          true,
	entities.TopicPlanConflictRefund:  true,
	entities.TopicWithdrawalCompleted: true,
	entities.TopicPaymentFailed:       true,
}

// TelegramNotifier sends admin alerts to one chat. Other topics are ignored.
type TelegramNotifier struct {
	bot    telegramSender
	chatID int64
}

// NewTelegramNotifier authorizes the bot token against the Telegram API
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := newBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return NewTelegramNotifierWithSender(bot, chatID), nil
}

// NewTelegramNotifierWithSender wraps an existing sender
func NewTelegramNotifierWithSender(bot telegramSender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{bot: bot, chatID: chatID}
}

// Notify formats the event and sends it to the admin chat
func (n *TelegramNotifier) Notify(ctx context.Context, event *entities.OutboxEvent) error {
	if !adminTopics[event.Topic] || n.chatID == 0 {
		return nil
	}

	msg := tgbotapi.NewMessage(n.chatID, formatAlert(event))
	if _, err := n.bot.Send(msg); err != nil {
		logger.Warn(ctx, "telegram alert failed", zap.String("topic", event.Topic), zap.Error(err))
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

func formatAlert(event *entities.OutboxEvent) string {
	var p entities.NotificationPayload
	if err := json.Unmarshal(event.Payload, &p); err != nil || p.ReferenceID == "" {
		return fmt.Sprintf("[%s] %s", event.Topic, string(event.Payload))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", event.Topic, p.ReferenceID)
	fmt.Fprintf(&b, "user: %s\n", p.UserID)
	fmt.Fprintf(&b, "amount: %s %s\n", p.Amount, p.Currency)
	fmt.Fprintf(&b, "status: %s", p.Status)
	if p.Message != "" {
		fmt.Fprintf(&b, "\n%s", p.Message)
	}
	return b.String()
}
