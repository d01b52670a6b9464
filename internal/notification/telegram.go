package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/wb-go/wbf/logger"
)

const dateLayout = "02 Jan 2006"

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramNotifier struct {
	bot    sender
	logger logger.Logger
}

func NewTelegramNotifier(token string, logger logger.Logger) (*TelegramNotifier, error) {
	if token == "" {
		logger.Warn("telegram bot token is empty, notifications disabled")
		return &TelegramNotifier{bot: nil, logger: logger}, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramNotifier{bot: bot, logger: logger}, nil
}

func (n *TelegramNotifier) NotifyBookingCreated(ctx context.Context, user *domain.User, listing *domain.Listing, booking *domain.Booking) {
	n.send(ctx, user.TelegramChatID, bookingMessage("Booking received", listing, booking,
		"We will confirm it shortly."))
}

func (n *TelegramNotifier) NotifyBookingConfirmed(ctx context.Context, user *domain.User, listing *domain.Listing, booking *domain.Booking) {
	n.send(ctx, user.TelegramChatID, bookingMessage("Booking confirmed!", listing, booking,
		"Have a great trip."))
}

func (n *TelegramNotifier) NotifyBookingCancelled(ctx context.Context, user *domain.User, listing *domain.Listing, booking *domain.Booking) {
	footer := "Your seats have been released."
	if booking.CancelReason != "" {
		footer = "Reason: " + escape(booking.CancelReason)
	}
	n.send(ctx, user.TelegramChatID, bookingMessage("Booking cancelled", listing, booking, footer))
}

// bookingMessage renders a Markdown message. listing may be nil when it was
// deleted after the booking was made.
func bookingMessage(title string, listing *domain.Listing, booking *domain.Booking, footer string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\n", title)
	if listing != nil {
		fmt.Fprintf(&b, "Trip: %s (%s)\n", escape(listing.Title), escape(listing.Destination))
	} else {
		b.WriteString("Trip: no longer listed\n")
	}
	fmt.Fprintf(&b, "Travel date: %s\n", booking.TravelDate.Format(dateLayout))
	fmt.Fprintf(&b, "Persons: %d\n", booking.Persons)
	fmt.Fprintf(&b, "Booking: %s\n\n", booking.ID)
	b.WriteString(footer)
	return b.String()
}

// escape neutralises Markdown control characters in user supplied text.
func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

func (n *TelegramNotifier) send(ctx context.Context, chatID *int64, text string) {
	if n.bot == nil {
		n.logger.Debug("notification skipped (bot disabled)", logger.String("text", text))
		return
	}

	if chatID == nil {
		n.logger.Debug("notification skipped (no chat_id)", logger.String("text", text))
		return
	}

	if err := ctx.Err(); err != nil {
		n.logger.Debug("notification skipped (context cancelled)",
			logger.Int64("chat_id", *chatID),
		)
		return
	}

	msg := tgbotapi.NewMessage(*chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error("failed to send telegram notification",
			logger.Int64("chat_id", *chatID),
			logger.String("error", err.Error()),
		)
	}
}
