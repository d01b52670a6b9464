package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/logger"
)

type fakeBot struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

func newTestLogger(t *testing.T) logger.Logger {
	t.Helper()
	log, err := logger.InitLogger("slog", "test", "test", logger.WithLevel(logger.ErrorLevel))
	if err != nil {
		t.Fatalf("init test logger: %v", err)
	}
	return log
}

func testBooking() *domain.Booking {
	return &domain.Booking{
		ID:         "b1",
		Persons:    2,
		TravelDate: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
	}
}

func TestTelegramNotifier_Confirmed(t *testing.T) {
	bot := &fakeBot{}
	n := &TelegramNotifier{bot: bot, logger: newTestLogger(t)}
	chatID := int64(42)

	n.NotifyBookingConfirmed(context.Background(),
		&domain.User{TelegramChatID: &chatID},
		&domain.Listing{Title: "Goa Weekend", Destination: "Goa"},
		testBooking(),
	)

	require.Len(t, bot.sent, 1)
	assert.Equal(t, int64(42), bot.sent[0].ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdown, bot.sent[0].ParseMode)
	assert.Contains(t, bot.sent[0].Text, "Booking confirmed!")
	assert.Contains(t, bot.sent[0].Text, "Goa Weekend (Goa)")
	assert.Contains(t, bot.sent[0].Text, "14 Mar 2025")
	assert.Contains(t, bot.sent[0].Text, "Persons: 2")
}

func TestTelegramNotifier_CancelledWithoutListing(t *testing.T) {
	bot := &fakeBot{}
	n := &TelegramNotifier{bot: bot, logger: newTestLogger(t)}
	chatID := int64(42)

	b := testBooking()
	b.CancelReason = "listing removed"
	n.NotifyBookingCancelled(context.Background(), &domain.User{TelegramChatID: &chatID}, nil, b)

	require.Len(t, bot.sent, 1)
	assert.Contains(t, bot.sent[0].Text, "no longer listed")
	assert.Contains(t, bot.sent[0].Text, "Reason: listing removed")
}

func TestTelegramNotifier_SkipsWithoutChatID(t *testing.T) {
	bot := &fakeBot{}
	n := &TelegramNotifier{bot: bot, logger: newTestLogger(t)}

	n.NotifyBookingCreated(context.Background(), &domain.User{}, &domain.Listing{}, testBooking())

	assert.Empty(t, bot.sent)
}

func TestTelegramNotifier_SkipsCancelledContext(t *testing.T) {
	bot := &fakeBot{}
	n := &TelegramNotifier{bot: bot, logger: newTestLogger(t)}
	chatID := int64(42)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n.NotifyBookingCreated(ctx, &domain.User{TelegramChatID: &chatID}, &domain.Listing{}, testBooking())

	assert.Empty(t, bot.sent)
}

func TestTelegramNotifier_SendErrorIsSwallowed(t *testing.T) {
	bot := &fakeBot{err: errors.New("telegram down")}
	n := &TelegramNotifier{bot: bot, logger: newTestLogger(t)}
	chatID := int64(42)

	assert.NotPanics(t, func() {
		n.NotifyBookingCreated(context.Background(), &domain.User{TelegramChatID: &chatID}, &domain.Listing{}, testBooking())
	})
	assert.Len(t, bot.sent, 1)
}

func TestNewTelegramNotifier_EmptyTokenDisables(t *testing.T) {
	n, err := NewTelegramNotifier("", newTestLogger(t))
	require.NoError(t, err)

	chatID := int64(42)
	assert.NotPanics(t, func() {
		n.NotifyBookingCreated(context.Background(), &domain.User{TelegramChatID: &chatID}, nil, testBooking())
	})
}

func TestTelegramNotifier_EscapesUserText(t *testing.T) {
	bot := &fakeBot{}
	n := &TelegramNotifier{bot: bot, logger: newTestLogger(t)}
	chatID := int64(42)

	b := testBooking()
	b.CancelReason = "plans_changed *again*"
	n.NotifyBookingCancelled(context.Background(),
		&domain.User{TelegramChatID: &chatID},
		&domain.Listing{Title: "Sea_side [deluxe]", Destination: "Goa`s coast"},
		b,
	)

	require.Len(t, bot.sent, 1)
	text := bot.sent[0].Text
	assert.Contains(t, text, "*Booking cancelled*")
	assert.Contains(t, text, "Trip: Sea\\_side \\[deluxe] (Goa\\`s coast)")
	assert.Contains(t, text, "Reason: plans\\_changed \\*again\\*")
}
