package chat

import "time"

// Role tags a user-facing message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is the UI-facing record of one utterance. Profiles store these verbatim
// as the interview history.
type Message struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage stamps a message with the current UTC time.
func NewMessage(role Role, text string) Message {
	return Message{Role: role, Text: text, Timestamp: time.Now().UTC()}
}
