package profile

import (
	"time"

	"github.com/salt-byte/cinematic-mirror/backend/internal/model/character"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/chat"
)

// Angle is one facet of the subject as the director sees it.
type Angle struct {
	Label   string `json:"label"`
	Essence string `json:"essence"`
}

// VisualAdvice is the camera/lighting/motion triple.
type VisualAdvice struct {
	Camera   string `json:"camera"`
	Lighting string `json:"lighting"`
	Motion   string `json:"motion"`
}

// CharacterMatch is a resolved match. MatchRate is within [0,100].
type CharacterMatch struct {
	Name        string  `json:"name"`
	Movie       string  `json:"movie"`
	MatchRate   float64 `json:"matchRate"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
}

// PersonalityProfile is the durable output of a finished interview. It is created
// once and never updated.
type PersonalityProfile struct {
	ID               string              `json:"id"`
	OwnerID          string              `json:"userId"`
	Title            string              `json:"title"`
	Subtitle         string              `json:"subtitle"`
	Analysis         string              `json:"analysis"`
	Narrative        string              `json:"narrative"`
	Angles           []Angle             `json:"angles"`
	VisualAdvice     VisualAdvice        `json:"visualAdvice"`
	Matches          []CharacterMatch    `json:"matches"`
	StylingVariants  []character.Styling `json:"stylingVariants"`
	InterviewHistory []chat.Message      `json:"interviewHistory"`
	CreatedAt        time.Time           `json:"createdAt"`
}
