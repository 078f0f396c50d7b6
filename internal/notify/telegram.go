package notify

import (
	"encoding/json"
	"fmt"

	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramNotifier mirrors booking lifecycle events into a telegram chat so
// operators see activity without tailing logs.
type TelegramNotifier struct {
	sender domain.TelegramSender
	chatID int64
	logger *zerolog.Logger
}

func NewTelegramNotifier(sender domain.TelegramSender, chatID int64, logger *zerolog.Logger) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chatID: chatID, logger: logger}
}

// Attach subscribes the notifier to the booking lifecycle events.
func (n *TelegramNotifier) Attach(bus *events.EventBus) {
	for _, eventType := range []string{events.EventBookingCreated, events.EventBookingApproved, events.EventBookingRejected} {
		bus.Subscribe(eventType, n.handleEvent)
	}
}

func (n *TelegramNotifier) handleEvent(event *events.Event) error {
	var payload events.BookingEventPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		n.logger.Error().Err(err).Str("event_type", event.Type).Msg("decode event payload error")
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, formatBookingMessage(event.Type, &payload))
	msg.ParseMode = "Markdown"
	if _, err := n.sender.Send(msg); err != nil {
		n.logger.Error().Err(err).Str("event_type", event.Type).Msg("send notification error")
		return err
	}
	return nil
}

func formatBookingMessage(eventType string, p *events.BookingEventPayload) string {
	var action string
	switch eventType {
	case events.EventBookingCreated:
		action = "🆕 New booking"
	case events.EventBookingApproved:
		action = "✅ Booking approved"
	case events.EventBookingRejected:
		action = "❌ Booking rejected"
	default:
		action = eventType
	}

	return fmt.Sprintf("%s\n*%s* by %s\n%s — %s",
		action,
		p.ItemName,
		p.BookerName,
		p.Start.Format(models.TimeLayout),
		p.End.Format(models.TimeLayout),
	)
}
