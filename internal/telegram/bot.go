package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// longPollTimeout is the getUpdates hold time in seconds. Sixty is the
// documented sweet spot: long enough to avoid busy polling, short enough
// that shutdown is not stuck behind an idle poll for long.
const longPollTimeout = 60

// Bot is the live Transport over the Telegram Bot API.
type Bot struct {
	api *tgbotapi.BotAPI
	log *slog.Logger
}

// Dial authenticates the token against the API and returns the transport.
func Dial(token string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &Bot{api: api, log: slog.Default()}, nil
}

// Username returns the bot account's @name, useful for startup logs.
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Updates long-polls the API and delivers normalized events. The channel
// closes once ctx is canceled and polling has stopped. Only the update
// types the bot handles are requested.
func (b *Bot) Updates(ctx context.Context) <-chan Update {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = longPollTimeout
	cfg.AllowedUpdates = []string{"message", "callback_query", "my_chat_member"}
	raw := b.api.GetUpdatesChan(cfg)

	out := make(chan Update)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				b.api.StopReceivingUpdates()
				return
			case u, ok := <-raw:
				if !ok {
					return
				}
				conv, ok := b.convert(u)
				if !ok {
					continue
				}
				select {
				case out <- conv:
				case <-ctx.Done():
					b.api.StopReceivingUpdates()
					return
				}
			}
		}
	}()
	return out
}

// convert normalizes a raw API update, acknowledging callback queries on
// the way so clients stop showing a spinner even if handling fails later.
func (b *Bot) convert(u tgbotapi.Update) (Update, bool) {
	switch {
	case u.Message != nil && u.Message.Chat != nil:
		return Update{
			Kind:    KindMessage,
			ChatID:  u.Message.Chat.ID,
			Text:    u.Message.Text,
			Private: u.Message.Chat.IsPrivate(),
		}, true

	case u.CallbackQuery != nil:
		cq := u.CallbackQuery
		if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
			b.log.Warn("callback ack failed", "error", err)
		}
		if cq.Message == nil || cq.Message.Chat == nil {
			return Update{}, false
		}
		return Update{
			Kind:   KindCallback,
			ChatID: cq.Message.Chat.ID,
			Callback: &Callback{
				Data:      cq.Data,
				MessageID: cq.Message.MessageID,
			},
		}, true

	case u.MyChatMember != nil:
		status := u.MyChatMember.NewChatMember.Status
		if status == "left" || status == "kicked" {
			return Update{
				Kind:   KindMembershipLoss,
				ChatID: u.MyChatMember.Chat.ID,
			}, true
		}
	}
	return Update{}, false
}

// Send delivers one message. The ctx parameter is part of the Transport
// contract; the underlying client manages its own HTTP timeouts.
func (b *Bot) Send(ctx context.Context, msg Outgoing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := tgbotapi.NewMessage(msg.ChatID, msg.Text)
	m.ParseMode = tgbotapi.ModeMarkdown
	m.DisableWebPagePreview = true
	if len(msg.Keyboard) > 0 {
		m.ReplyMarkup = inlineKeyboard(msg.Keyboard)
	}
	_, err := b.api.Send(m)
	return err
}

// Edit replaces the text and keyboard of an already-sent message.
func (b *Bot) Edit(ctx context.Context, ref MessageRef, msg Outgoing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, msg.Text)
	e.ParseMode = tgbotapi.ModeMarkdown
	if len(msg.Keyboard) > 0 {
		kb := inlineKeyboard(msg.Keyboard)
		e.ReplyMarkup = &kb
	}
	_, err := b.api.Request(e)
	return err
}

func inlineKeyboard(rows [][]Button) tgbotapi.InlineKeyboardMarkup {
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
		}
		out = append(out, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...)
}
