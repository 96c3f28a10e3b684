package core

import "time"

// Turn is one entry of a conversation history. Role is a free string on the
// wire; anything other than "user" is classified as an assistant-side turn.
// Either field may be missing in histories received from external callers —
// consumers must tolerate that rather than reject the turn.
type Turn struct {
	Role      string    `json:"role,omitempty"`
	Content   string    `json:"content,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// IsUser reports whether the turn was authored by the end user. A missing
// role defaults to the non-user class.
func (t Turn) IsUser() bool { return t.Role == "user" }

// ConversationStore persists ordered per-conversation turn histories. Both
// methods are safe for concurrent use.
type ConversationStore interface {
	// Append adds a turn to the end of the conversation history, creating the
	// conversation if it does not exist yet.
	Append(conversationID string, turn Turn) error

	// History returns a defensive copy of the full ordered turn history.
	// An unknown conversation yields an empty slice, not an error.
	History(conversationID string) ([]Turn, error)
}
