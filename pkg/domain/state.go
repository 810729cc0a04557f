package domain

import "strconv"

// StateID identifies a conversational state. Its meaning belongs to the bot author.
type StateID string

// DefaultState is the state of a conversation that never entered an explicit one.
// Stores return it for unknown keys, and setting it clears the key.
const DefaultState StateID = ""

// String renders the state for logs, spelling out the default state.
func (s StateID) String() string {
	if s == DefaultState {
		return "<default>"
	}
	return string(s)
}

// StateKey identifies whose state is being read or written.
// If there is no chat the user ID is used as ChatID.
// ThreadID is set only for messages inside a forum topic.
type StateKey struct {
	ChatID   int64 `json:"chat_id"`
	ThreadID int64 `json:"thread_id,omitempty"`
}

// IsZero reports whether the key carries no identity at all.
func (k StateKey) IsZero() bool {
	return k.ChatID == 0
}

// String renders the key as chat:<id>[:thread:<id>], which is also the storage key format.
func (k StateKey) String() string {
	s := "chat:" + strconv.FormatInt(k.ChatID, 10)
	if k.ThreadID != 0 {
		s += ":thread:" + strconv.FormatInt(k.ThreadID, 10)
	}
	return s
}
