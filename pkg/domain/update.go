package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// UpdateKind is the tag of the Update union.
type UpdateKind string

const (
	// KindAny is the wildcard kind. It is valid in triggers, never on an update.
	KindAny UpdateKind = ""

	KindMessage            UpdateKind = "message"
	KindEditedMessage      UpdateKind = "edited_message"
	KindChannelPost        UpdateKind = "channel_post"
	KindEditedChannelPost  UpdateKind = "edited_channel_post"
	KindCallbackQuery      UpdateKind = "callback_query"
	KindInlineQuery        UpdateKind = "inline_query"
	KindChosenInlineResult UpdateKind = "chosen_inline_result"
	KindShippingQuery      UpdateKind = "shipping_query"
	KindPreCheckoutQuery   UpdateKind = "pre_checkout_query"
	KindPollAnswer         UpdateKind = "poll_answer"
	KindMyChatMember       UpdateKind = "my_chat_member"
	KindChatMember         UpdateKind = "chat_member"
	KindChatJoinRequest    UpdateKind = "chat_join_request"
)

// Kinds lists every concrete kind in a stable order.
var Kinds = []UpdateKind{
	KindMessage,
	KindEditedMessage,
	KindChannelPost,
	KindEditedChannelPost,
	KindCallbackQuery,
	KindInlineQuery,
	KindChosenInlineResult,
	KindShippingQuery,
	KindPreCheckoutQuery,
	KindPollAnswer,
	KindMyChatMember,
	KindChatMember,
	KindChatJoinRequest,
}

// Known reports whether k is a concrete kind.
func (k UpdateKind) Known() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// CarriesCommands reports whether updates of this kind may hold a bot command.
func (k UpdateKind) CarriesCommands() bool {
	switch k {
	case KindMessage, KindEditedMessage, KindChannelPost, KindEditedChannelPost:
		return true
	}
	return false
}

// userScoped kinds are keyed by the sender: the platform delivers them outside any chat.
func (k UpdateKind) userScoped() bool {
	switch k {
	case KindCallbackQuery, KindInlineQuery, KindChosenInlineResult,
		KindShippingQuery, KindPreCheckoutQuery, KindChatJoinRequest:
		return true
	}
	return false
}

func (k UpdateKind) String() string {
	if k == KindAny {
		return "*"
	}
	return string(k)
}

// AttachmentKind names a non-text payload carried by a message.
type AttachmentKind string

const (
	AttachmentPhoto    AttachmentKind = "photo"
	AttachmentDocument AttachmentKind = "document"
	AttachmentAudio    AttachmentKind = "audio"
	AttachmentVideo    AttachmentKind = "video"
	AttachmentVoice    AttachmentKind = "voice"
	AttachmentSticker  AttachmentKind = "sticker"
	AttachmentLocation AttachmentKind = "location"
	AttachmentContact  AttachmentKind = "contact"
	AttachmentPoll     AttachmentKind = "poll"
)

// Update is one incoming platform event, normalized.
// Which fields are populated depends on Kind.
type Update struct {
	ID   int        `json:"id"`
	Kind UpdateKind `json:"kind"`

	ChatID   int64 `json:"chat_id,omitempty"`
	UserID   int64 `json:"user_id,omitempty"`
	ThreadID int64 `json:"thread_id,omitempty"`

	// Text is the message text or caption.
	Text string `json:"text,omitempty"`
	// Command is the bot command without prefix or @botname, lowercased. Empty for plain text.
	Command string `json:"command,omitempty"`
	// Args is the raw text following the command.
	Args string `json:"args,omitempty"`

	CallbackData string           `json:"callback_data,omitempty"`
	Query        string           `json:"query,omitempty"`
	ReplyTo      int              `json:"reply_to,omitempty"`
	Attachments  []AttachmentKind `json:"attachments,omitempty"`

	// Metadata holds adapter-specific extras (language code, chat type...).
	Metadata map[string]string `json:"metadata,omitempty"`

	// Raw references the platform's original structure for handlers that need it.
	Raw any `json:"-"`
}

// NewMessage builds a message update, parsing a leading bot command out of text.
func NewMessage(chatID, userID int64, text string) Update {
	u := Update{
		Kind:   KindMessage,
		ChatID: chatID,
		UserID: userID,
		Text:   text,
	}
	u.Command, u.Args, _ = ParseCommand(text)
	return u
}

// ParseCommand splits "/cmd@bot args" into ("cmd", "args", true).
// The rules follow the platform's own: the command must be the first token.
func ParseCommand(text string) (command, args string, ok bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return "", "", false
	}

	first, rest := trimmed, ""
	if idx := strings.IndexFunc(trimmed, unicode.IsSpace); idx >= 0 {
		first, rest = trimmed[:idx], trimmed[idx:]
	}
	first = strings.TrimPrefix(first, "/")
	if idx := strings.IndexByte(first, '@'); idx >= 0 {
		first = first[:idx]
	}
	if first == "" {
		return "", "", false
	}
	return strings.ToLower(first), strings.TrimSpace(rest), true
}

// NormalizeCommand puts a client-supplied update into the shape adapters produce.
// An explicit Command is lowercased with its leading "/" and "@bot" suffix removed;
// a missing one is parsed from Text.
func (u *Update) NormalizeCommand() {
	if !u.Kind.CarriesCommands() {
		return
	}
	if u.Command == "" {
		u.Command, u.Args, _ = ParseCommand(u.Text)
		return
	}
	cmd := strings.TrimPrefix(strings.TrimSpace(u.Command), "/")
	if idx := strings.IndexByte(cmd, '@'); idx >= 0 {
		cmd = cmd[:idx]
	}
	u.Command = strings.ToLower(cmd)
	u.Args = strings.TrimSpace(u.Args)
}

// HasAttachment reports whether the update carries the given attachment.
func (u *Update) HasAttachment(kind AttachmentKind) bool {
	for _, a := range u.Attachments {
		if a == kind {
			return true
		}
	}
	return false
}

// Key returns the state key this update belongs to.
func (u *Update) Key() StateKey {
	if u.Kind.userScoped() {
		if u.UserID != 0 {
			return StateKey{ChatID: u.UserID}
		}
		return StateKey{ChatID: u.ChatID}
	}
	if u.ChatID == 0 {
		return StateKey{ChatID: u.UserID}
	}
	return StateKey{ChatID: u.ChatID, ThreadID: u.ThreadID}
}

// Validate reports ErrMalformedUpdate if the update cannot be routed or keyed.
func (u *Update) Validate() error {
	if u == nil {
		return fmt.Errorf("%w: nil update", ErrMalformedUpdate)
	}
	if !u.Kind.Known() {
		return fmt.Errorf("%w: unrecognized kind %q", ErrMalformedUpdate, string(u.Kind))
	}
	if u.Key().IsZero() {
		return fmt.Errorf("%w: %s update %d has neither chat nor user", ErrMalformedUpdate, u.Kind, u.ID)
	}
	if u.Command != "" && !u.Kind.CarriesCommands() {
		return fmt.Errorf("%w: %s update %d cannot carry command %q", ErrMalformedUpdate, u.Kind, u.ID, u.Command)
	}
	return nil
}
