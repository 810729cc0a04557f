// Package telegram converts go-telegram-bot-api updates into domain updates.
// It performs no network I/O; polling and replying stay with the bot.
package telegram

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/stater/pkg/domain"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// ErrUnsupportedUpdate is returned for updates carrying no event the router knows.
var ErrUnsupportedUpdate = errors.New("unsupported telegram update")

// Normalize converts u. The original update is kept in Raw.
func Normalize(u tgbotapi.Update) (domain.Update, error) {
	out := domain.Update{ID: u.UpdateID, Raw: u}

	switch {
	case u.Message != nil:
		fromMessage(&out, domain.KindMessage, u.Message)
	case u.EditedMessage != nil:
		fromMessage(&out, domain.KindEditedMessage, u.EditedMessage)
	case u.ChannelPost != nil:
		fromMessage(&out, domain.KindChannelPost, u.ChannelPost)
	case u.EditedChannelPost != nil:
		fromMessage(&out, domain.KindEditedChannelPost, u.EditedChannelPost)

	case u.CallbackQuery != nil:
		q := u.CallbackQuery
		out.Kind = domain.KindCallbackQuery
		out.UserID = userID(q.From)
		out.CallbackData = q.Data
		if q.Message != nil && q.Message.Chat != nil {
			out.ChatID = q.Message.Chat.ID
			out.ReplyTo = q.Message.MessageID
		}
		setLanguage(&out, q.From)

	case u.InlineQuery != nil:
		out.Kind = domain.KindInlineQuery
		out.UserID = userID(u.InlineQuery.From)
		out.Query = u.InlineQuery.Query
		setLanguage(&out, u.InlineQuery.From)

	case u.ChosenInlineResult != nil:
		out.Kind = domain.KindChosenInlineResult
		out.UserID = userID(u.ChosenInlineResult.From)
		out.Query = u.ChosenInlineResult.Query

	case u.ShippingQuery != nil:
		out.Kind = domain.KindShippingQuery
		out.UserID = userID(u.ShippingQuery.From)
		out.Query = u.ShippingQuery.InvoicePayload

	case u.PreCheckoutQuery != nil:
		out.Kind = domain.KindPreCheckoutQuery
		out.UserID = userID(u.PreCheckoutQuery.From)
		out.Query = u.PreCheckoutQuery.InvoicePayload

	case u.PollAnswer != nil:
		out.Kind = domain.KindPollAnswer
		out.UserID = u.PollAnswer.User.ID

	case u.MyChatMember != nil:
		out.Kind = domain.KindMyChatMember
		out.ChatID = u.MyChatMember.Chat.ID
		out.UserID = u.MyChatMember.From.ID

	case u.ChatMember != nil:
		out.Kind = domain.KindChatMember
		out.ChatID = u.ChatMember.Chat.ID
		out.UserID = u.ChatMember.From.ID

	case u.ChatJoinRequest != nil:
		out.Kind = domain.KindChatJoinRequest
		out.ChatID = u.ChatJoinRequest.Chat.ID
		out.UserID = u.ChatJoinRequest.From.ID
		out.Text = u.ChatJoinRequest.Bio

	default:
		return out, fmt.Errorf("%w: update %d", ErrUnsupportedUpdate, u.UpdateID)
	}

	return out, nil
}

func fromMessage(out *domain.Update, kind domain.UpdateKind, m *tgbotapi.Message) {
	out.Kind = kind
	if m.Chat != nil {
		out.ChatID = m.Chat.ID
		setMeta(out, "chat_type", m.Chat.Type)
	}
	out.UserID = userID(m.From)
	setLanguage(out, m.From)

	out.Text = m.Text
	if out.Text == "" {
		out.Text = m.Caption
	}
	switch {
	case m.IsCommand():
		out.Command = strings.ToLower(m.Command())
		out.Args = strings.TrimSpace(m.CommandArguments())
	case len(m.Entities) == 0 && m.Text != "":
		// Relayed or hand-built messages may come without entities.
		out.Command, out.Args, _ = domain.ParseCommand(m.Text)
	}
	if m.ReplyToMessage != nil {
		out.ReplyTo = m.ReplyToMessage.MessageID
	}
	out.Attachments = attachments(m)
}

func attachments(m *tgbotapi.Message) []domain.AttachmentKind {
	var kinds []domain.AttachmentKind
	add := func(present bool, k domain.AttachmentKind) {
		if present {
			kinds = append(kinds, k)
		}
	}
	add(len(m.Photo) > 0, domain.AttachmentPhoto)
	add(m.Document != nil, domain.AttachmentDocument)
	add(m.Audio != nil, domain.AttachmentAudio)
	add(m.Video != nil, domain.AttachmentVideo)
	add(m.Voice != nil, domain.AttachmentVoice)
	add(m.Sticker != nil, domain.AttachmentSticker)
	add(m.Location != nil, domain.AttachmentLocation)
	add(m.Contact != nil, domain.AttachmentContact)
	add(m.Poll != nil, domain.AttachmentPoll)
	return kinds
}

func userID(u *tgbotapi.User) int64 {
	if u == nil {
		return 0
	}
	return u.ID
}

func setLanguage(out *domain.Update, u *tgbotapi.User) {
	if u != nil {
		setMeta(out, "language_code", strings.ToLower(u.LanguageCode))
	}
}

func setMeta(out *domain.Update, key, value string) {
	if value == "" {
		return
	}
	if out.Metadata == nil {
		out.Metadata = make(map[string]string)
	}
	out.Metadata[key] = value
}
