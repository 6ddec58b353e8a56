// Package consultation runs styling consultations grounded on a stored profile.
package consultation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/salt-byte/cinematic-mirror/backend/internal/metrics"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/chat"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/locale"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/profile"
	"github.com/salt-byte/cinematic-mirror/backend/internal/service/ai"
	chatservice "github.com/salt-byte/cinematic-mirror/backend/internal/service/chat"
	"github.com/salt-byte/cinematic-mirror/backend/internal/storage"
	"github.com/salt-byte/cinematic-mirror/backend/pkg/apperror"
)

var (
	// ErrEmptyMessage rejects blank user input.
	ErrEmptyMessage = apperror.Validation("EMPTY_MESSAGE", "message must not be empty")
	// ErrProfileNotFound is returned when the caller does not own the profile.
	ErrProfileNotFound = apperror.NotFound("PROFILE_NOT_FOUND", "profile not found")
)

// Service 负责造型咨询会话。
type Service struct {
	sessions      *chatservice.Store
	model         ai.ChatModel
	vision        ai.VisionModel
	profiles      storage.ProfileRepository
	metrics       *metrics.Metrics
	defaultLocale locale.Locale
}

// Deps groups the collaborators of the consultation service. Model and Vision may be nil.
type Deps struct {
	Sessions      *chatservice.Store
	Model         ai.ChatModel
	Vision        ai.VisionModel
	Profiles      storage.ProfileRepository
	Metrics       *metrics.Metrics
	DefaultLocale locale.Locale
}

// NewService 创建咨询服务。
func NewService(deps Deps) *Service {
	defaultLocale := deps.DefaultLocale
	if defaultLocale == "" {
		defaultLocale = locale.ZH
	}
	return &Service{
		sessions:      deps.Sessions,
		model:         deps.Model,
		vision:        deps.Vision,
		profiles:      deps.Profiles,
		metrics:       deps.Metrics,
		defaultLocale: defaultLocale,
	}
}

// StartResult carries the new session id and the templated welcome line.
type StartResult struct {
	SessionID      string       `json:"sessionId"`
	WelcomeMessage chat.Message `json:"welcomeMessage"`
}

// VideoRequest is one multimodal turn. Image may be empty.
type VideoRequest struct {
	OwnerID   string
	ProfileID string
	Message   string
	Image     []byte
	MimeType  string
	Locale    string
}

// VideoResult is the consultant's answer to a video-chat turn.
type VideoResult struct {
	Response string `json:"response"`
}

// StartConsultation opens a session grounded on one of the caller's profiles.
func (s *Service) StartConsultation(ctx context.Context, ownerID, profileID, rawLocale string) (StartResult, error) {
	if s.model == nil {
		return StartResult{}, ai.ErrUnavailable
	}

	p, err := s.loadProfile(ctx, ownerID, profileID)
	if err != nil {
		return StartResult{}, err
	}

	loc := locale.Parse(rawLocale, s.defaultLocale)
	tpl := templateFor(loc)
	welcome := chat.NewMessage(chat.RoleModel, tpl.WelcomeMessage(p))

	id := s.sessions.Create(chat.Session{
		Kind:      chat.KindConsultation,
		OwnerID:   ownerID,
		ProfileID: p.ID,
		Locale:    loc,
		Transcript: []*schema.Message{
			schema.SystemMessage(tpl.BuildSystemPrompt(p)),
			schema.AssistantMessage(welcome.Text, nil),
		},
		Messages: []chat.Message{welcome},
	})

	log.Printf("[consultation] started session=%s owner=%s profile=%s", id, ownerID, p.ID)
	return StartResult{SessionID: id, WelcomeMessage: welcome}, nil
}

// SendMessage advances a consultation. There is no turn ceiling.
func (s *Service) SendMessage(ctx context.Context, sessionID, text string) (chat.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return chat.Message{}, ErrEmptyMessage
	}

	session, err := s.consultation(sessionID)
	if err != nil {
		return chat.Message{}, err
	}
	if s.model == nil {
		return chat.Message{}, ai.ErrUnavailable
	}

	userTurn := schema.UserMessage(text)
	reply, err := ai.Complete(ctx, s.model, append(session.Transcript, userTurn))
	if err != nil {
		return chat.Message{}, ai.UpstreamError(err)
	}

	answer := chat.NewMessage(chat.RoleModel, reply)
	_, err = s.sessions.Mutate(sessionID, func(state *chat.Session) error {
		state.Transcript = append(state.Transcript, userTurn, schema.AssistantMessage(reply, nil))
		state.Messages = append(state.Messages, chat.NewMessage(chat.RoleUser, text), answer)
		state.TurnCount++
		return nil
	})
	if err != nil {
		return chat.Message{}, err
	}

	s.metrics.TurnCompleted(string(chat.KindConsultation))
	return answer, nil
}

// EndConsultation deletes the session.
func (s *Service) EndConsultation(sessionID string) error {
	if _, err := s.consultation(sessionID); err != nil {
		return err
	}
	s.sessions.Delete(sessionID)
	log.Printf("[consultation] ended session=%s", sessionID)
	return nil
}

// Session returns a snapshot of a live consultation.
func (s *Service) Session(sessionID string) (chat.Session, error) {
	return s.consultation(sessionID)
}

// VideoChat answers one multimodal turn. A failed vision call is retried exactly
// once as a text-only completion with a simpler prompt.
func (s *Service) VideoChat(ctx context.Context, req VideoRequest) (VideoResult, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" && len(req.Image) == 0 {
		return VideoResult{}, ErrEmptyMessage
	}

	p, err := s.loadProfile(ctx, req.OwnerID, req.ProfileID)
	if err != nil {
		return VideoResult{}, err
	}

	tpl := templateFor(locale.Parse(req.Locale, s.defaultLocale))
	system := tpl.BuildSystemPrompt(p)
	if message == "" {
		message = tpl.DefaultVideoAsk
	}

	if len(req.Image) > 0 && s.vision != nil {
		mimeType := req.MimeType
		if mimeType == "" {
			mimeType = "image/jpeg"
		}
		answer, err := s.vision.Describe(ctx, system, fmt.Sprintf(tpl.VisionTask, message), req.Image, mimeType)
		if err == nil && strings.TrimSpace(answer) != "" {
			return VideoResult{Response: answer}, nil
		}
		if err == nil {
			err = ai.ErrEmptyCompletion
		}
		s.metrics.VisionFallback()
		log.Printf("[consultation] vision call failed for profile=%s, retrying text-only: %v", p.ID, err)
	}

	if s.model == nil {
		return VideoResult{}, ai.ErrUnavailable
	}
	answer, err := ai.Complete(ctx, s.model, []*schema.Message{
		schema.SystemMessage(system + "\n\n" + tpl.TextOnlyTask),
		schema.UserMessage(message),
	})
	if err != nil {
		return VideoResult{}, ai.UpstreamError(err)
	}
	return VideoResult{Response: answer}, nil
}

func (s *Service) consultation(sessionID string) (chat.Session, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return chat.Session{}, err
	}
	if session.Kind != chat.KindConsultation {
		return chat.Session{}, chatservice.ErrSessionNotFound
	}
	return session, nil
}

func (s *Service) loadProfile(ctx context.Context, ownerID, profileID string) (profile.PersonalityProfile, error) {
	p, err := s.profiles.FindForOwner(ctx, profileID, ownerID)
	if errors.Is(err, storage.ErrNotFound) {
		return profile.PersonalityProfile{}, ErrProfileNotFound
	}
	if err != nil {
		return profile.PersonalityProfile{}, apperror.Upstream("PROFILE_LOAD_FAILED", "failed to load profile", err)
	}
	return p, nil
}
