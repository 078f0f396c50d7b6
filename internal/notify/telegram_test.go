package notify

import (
	"io"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shareit/internal/events"
	"shareit/internal/models"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func TestNotifierSendsOnBookingEvents(t *testing.T) {
	logger := zerolog.New(io.Discard)
	sender := &fakeSender{}
	bus := events.NewEventBus()

	notifier := NewTelegramNotifier(sender, 42, &logger)
	notifier.Attach(bus)

	payload := events.BookingEventPayload{
		BookingID: 1, ItemName: "drill", BookerName: "Booker", Status: models.StatusWaiting,
	}
	require.NoError(t, bus.PublishJSON(events.EventBookingCreated, payload))
	require.NoError(t, bus.PublishJSON(events.EventBookingApproved, payload))

	require.Len(t, sender.sent, 2)
	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Contains(t, msg.Text, "drill")
	assert.Contains(t, msg.Text, "New booking")

	approved, _ := sender.sent[1].(tgbotapi.MessageConfig)
	assert.Contains(t, approved.Text, "approved")
}

func TestNotifierIgnoresBadPayload(t *testing.T) {
	logger := zerolog.New(io.Discard)
	sender := &fakeSender{}
	notifier := NewTelegramNotifier(sender, 42, &logger)

	err := notifier.handleEvent(&events.Event{Type: events.EventBookingCreated, Payload: []byte("{broken")})
	assert.Error(t, err)
	assert.Empty(t, sender.sent)
}
