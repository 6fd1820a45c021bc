package notify

import (
	"errors"
	"fmt"
	"html"
	"strings"

	tele "gopkg.in/telebot.v3"

	"outage-checker/internal/logger"
	"outage-checker/internal/models"
)

// Sender is the part of *tele.Bot the notifier needs.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

var htmlOpts = &tele.SendOptions{ParseMode: tele.ModeHTML, DisableWebPagePreview: true}

// NewBot connects to the Telegram Bot API with token.
func NewBot(token string) (*tele.Bot, error) {
	if token == "" {
		return nil, errors.New("bot token is empty")
	}
	b, err := tele.NewBot(tele.Settings{Token: token})
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return b, nil
}

// TelegramNotifier posts outage schedules to a chat or channel.
type TelegramNotifier struct {
	bot Sender
	log logger.Logger
}

func NewNotifier(b Sender, log logger.Logger) *TelegramNotifier {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &TelegramNotifier{bot: b, log: log}
}

// SendSchedule sends one HTML message with the outage periods of every day.
func (n *TelegramNotifier) SendSchedule(chatID int64, addr models.Address, days []models.DaySchedule, updated string) error {
	msg := FormatSchedule(addr, days, updated)
	if _, err := n.bot.Send(&tele.Chat{ID: chatID}, msg, htmlOpts); err != nil {
		if isChatError(err) {
			return fmt.Errorf("bot cannot post to chat %d: %w", chatID, err)
		}
		return fmt.Errorf("send schedule to chat %d: %w", chatID, err)
	}
	n.log.Infof("schedule for %q sent to chat %d", addr.String(), chatID)
	return nil
}

// FormatSchedule renders days as a Telegram HTML message.
func FormatSchedule(addr models.Address, days []models.DaySchedule, updated string) string {
	var b strings.Builder
	fmt.Fprintf(&b, msgScheduleHeader, html.EscapeString(addr.String()))
	if len(days) == 0 {
		b.WriteString("\n" + msgNoData)
		return b.String()
	}
	for _, d := range days {
		fmt.Fprintf(&b, msgDayHeader, html.EscapeString(d.DayName), d.DateString(), html.EscapeString(d.Group))
		periods := d.OutagePeriods()
		if len(periods) == 0 {
			b.WriteString(msgNoOutages)
			continue
		}
		for _, p := range periods {
			fmt.Fprintf(&b, msgOutageLine, statusIcon(p.Status), p.Start, p.End)
		}
	}
	if updated != "" {
		fmt.Fprintf(&b, msgUpdated, html.EscapeString(updated))
	}
	return b.String()
}

func statusIcon(s models.PowerStatus) string {
	switch {
	case s.IsUncertain():
		return iconUncertain
	case s.IsPartial():
		return iconPartial
	}
	return iconOff
}

// isChatError reports whether a Telegram API error means the bot lost access to a chat.
func isChatError(err error) bool {
	return errors.Is(err, tele.ErrChatNotFound) ||
		errors.Is(err, tele.ErrKickedFromGroup) ||
		errors.Is(err, tele.ErrKickedFromSuperGroup) ||
		errors.Is(err, tele.ErrKickedFromChannel) ||
		errors.Is(err, tele.ErrNotChannelMember) ||
		errors.Is(err, tele.ErrNoRightsToSend)
}
