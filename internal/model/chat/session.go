package chat

import (
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/salt-byte/cinematic-mirror/backend/internal/model/locale"
)

// Kind distinguishes the two conversation flavours sharing the session registry shape.
type Kind string

const (
	KindInterview    Kind = "interview"
	KindConsultation Kind = "consultation"
)

// Session is the in-memory state of an interview or consultation. Transcript is sent
// verbatim to the chat model and only ever grows; Messages is the display copy.
type Session struct {
	ID         string            `json:"id"`
	Kind       Kind              `json:"kind"`
	OwnerID    string            `json:"ownerId"`
	ProfileID  string            `json:"profileId,omitempty"`
	Locale     locale.Locale     `json:"locale"`
	Transcript []*schema.Message `json:"-"`
	Messages   []Message         `json:"messages"`
	TurnCount  int               `json:"turnCount"`
	// Finished reflects the latest turn only; Wrapped stays set once any turn finished.
	Finished  bool      `json:"finished"`
	Wrapped   bool      `json:"wrapped"`
	CreatedAt time.Time `json:"createdAt"`
}

// Round is the 1-based number of the round the session is in.
func (s Session) Round() int {
	return s.TurnCount + 1
}
