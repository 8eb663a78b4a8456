package reminders

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Vmp3/Inkspiration-sub001/internal/models"
)

// ChatSource resolves a platform user to their messenger chat.
type ChatSource interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// TelegramNotifier delivers reminders through a Telegram bot.
type TelegramNotifier struct {
	bot   *tgbotapi.BotAPI
	users ChatSource
}

// NewTelegramNotifier creates the notifier from a bot token.
func NewTelegramNotifier(token string, users ChatSource) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, users: users}, nil
}

// SendReminder sends the appointment reminder to the user's chat.
func (n *TelegramNotifier) SendReminder(ctx context.Context, userID int64, appointment *models.Appointment) error {
	user, err := n.users.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve user %d: %w", userID, err)
	}
	if user == nil || user.TelegramChatID == 0 {
		return &SendError{Code: 404, Message: fmt.Sprintf("user %d has no telegram chat", userID)}
	}

	text := fmt.Sprintf(
		"Reminder: your %s appointment is on %s at %s.",
		appointment.ServiceType,
		appointment.StartTime.Format("02.01.2006"),
		appointment.StartTime.Format("15:04"),
	)

	msg := tgbotapi.NewMessage(user.TelegramChatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		if tgErr, ok := err.(*tgbotapi.Error); ok {
			return &SendError{
				Code:       tgErr.Code,
				Message:    tgErr.Message,
				RetryAfter: tgErr.RetryAfter,
			}
		}
		return &SendError{Code: 500, Message: err.Error()}
	}
	return nil
}
