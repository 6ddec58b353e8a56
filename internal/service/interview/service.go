// Package interview runs the screen-test interview and turns a finished transcript
// into a personality profile.
package interview

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/salt-byte/cinematic-mirror/backend/internal/metrics"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/character"
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
	// ErrProfileNotFound is returned for profiles that do not exist or belong to someone else.
	ErrProfileNotFound = apperror.NotFound("PROFILE_NOT_FOUND", "profile not found")
	// ErrProfileFormat is matched by every synthesis failure caused by unusable model output.
	ErrProfileFormat = apperror.ProfileFormat("profile generation returned an unreadable result, please retry", nil)
)

// Service 负责试镜访谈的生命周期。
type Service struct {
	sessions      *chatservice.Store
	model         ai.ChatModel
	catalog       character.Store
	profiles      storage.ProfileRepository
	shadows       storage.SessionShadowRepository
	metrics       *metrics.Metrics
	defaultLocale locale.Locale
}

// Deps groups the collaborators of the interview service. Model may be nil, in
// which case AI-backed operations return ai.ErrUnavailable.
type Deps struct {
	Sessions      *chatservice.Store
	Model         ai.ChatModel
	Catalog       character.Store
	Profiles      storage.ProfileRepository
	Shadows       storage.SessionShadowRepository
	Metrics       *metrics.Metrics
	DefaultLocale locale.Locale
}

// NewService 创建访谈服务。
func NewService(deps Deps) *Service {
	defaultLocale := deps.DefaultLocale
	if defaultLocale == "" {
		defaultLocale = locale.ZH
	}
	return &Service{
		sessions:      deps.Sessions,
		model:         deps.Model,
		catalog:       deps.Catalog,
		profiles:      deps.Profiles,
		shadows:       deps.Shadows,
		metrics:       deps.Metrics,
		defaultLocale: defaultLocale,
	}
}

// StartRequest carries the optional subject details for the director.
type StartRequest struct {
	OwnerID     string
	DisplayName string
	GenderHint  string
	Locale      string
}

// StartResult is returned once the opening line has been generated.
type StartResult struct {
	SessionID      string       `json:"sessionId"`
	InitialMessage chat.Message `json:"initialMessage"`
	Round          int          `json:"round"`
}

// TurnResult is the outcome of one user message.
type TurnResult struct {
	Response   string `json:"response"`
	IsFinished bool   `json:"isFinished"`
	Round      int    `json:"round"`
}

// SessionView is the resumable state of a live interview.
type SessionView struct {
	SessionID  string         `json:"sessionId"`
	Round      int            `json:"round"`
	IsFinished bool           `json:"isFinished"`
	Messages   []chat.Message `json:"messages"`
}

// StartInterview asks the model for the opening line and registers the session.
func (s *Service) StartInterview(ctx context.Context, req StartRequest) (StartResult, error) {
	if s.model == nil {
		return StartResult{}, ai.ErrUnavailable
	}

	loc := locale.Parse(req.Locale, s.defaultLocale)
	script := ScriptFor(loc)
	transcript := []*schema.Message{
		schema.SystemMessage(script.BuildSystemPrompt(req.DisplayName, req.GenderHint)),
		schema.UserMessage(script.BeginMessage),
	}

	opening, err := ai.Complete(ctx, s.model, transcript)
	if err != nil {
		return StartResult{}, ai.UpstreamError(err)
	}

	initial := chat.NewMessage(chat.RoleModel, opening)
	session := chat.Session{
		Kind:       chat.KindInterview,
		OwnerID:    req.OwnerID,
		Locale:     loc,
		Transcript: append(transcript, schema.AssistantMessage(opening, nil)),
		Messages:   []chat.Message{initial},
	}
	id := s.sessions.Create(session)

	s.sideEffect("create shadow row", id, func() error {
		return s.shadows.Create(ctx, storage.SessionShadow{
			ID:       id,
			OwnerID:  req.OwnerID,
			Status:   storage.StatusActive,
			Round:    1,
			Locale:   loc,
			Messages: session.Messages,
		})
	})

	log.Printf("[interview] started session=%s owner=%s locale=%s", id, req.OwnerID, loc)
	return StartResult{SessionID: id, InitialMessage: initial, Round: 1}, nil
}

// SendMessage appends the user's answer, asks the model with the entire
// transcript and applies the termination policy.
func (s *Service) SendMessage(ctx context.Context, sessionID, text string) (TurnResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return TurnResult{}, ErrEmptyMessage
	}

	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return TurnResult{}, err
	}
	if s.model == nil {
		return TurnResult{}, ai.ErrUnavailable
	}

	userTurn := schema.UserMessage(text)
	input := append(session.Transcript, userTurn)
	reply, err := ai.Complete(ctx, s.model, input)
	if err != nil {
		return TurnResult{}, ai.UpstreamError(err)
	}

	script := ScriptFor(session.Locale)
	wasWrapped := session.Wrapped
	updated, err := s.sessions.Mutate(sessionID, func(state *chat.Session) error {
		state.Transcript = append(state.Transcript, userTurn, schema.AssistantMessage(reply, nil))
		state.Messages = append(state.Messages,
			chat.NewMessage(chat.RoleUser, text),
			chat.NewMessage(chat.RoleModel, reply),
		)
		state.TurnCount++
		state.Finished = isFinished(script, state.Round(), reply)
		state.Wrapped = state.Wrapped || state.Finished
		return nil
	})
	if err != nil {
		return TurnResult{}, err
	}

	s.metrics.TurnCompleted(string(chat.KindInterview))
	if updated.Finished && !wasWrapped {
		s.metrics.InterviewFinished()
		log.Printf("[interview] session=%s finished at turn=%d", sessionID, updated.TurnCount)
	}

	status := storage.StatusActive
	if updated.Wrapped {
		status = storage.StatusFinished
	}
	s.sideEffect("update shadow row", sessionID, func() error {
		return s.shadows.UpdateProgress(ctx, sessionID, updated.Round(), status, updated.Messages)
	})

	return TurnResult{Response: reply, IsFinished: updated.Finished, Round: updated.Round()}, nil
}

// GetSession returns the live state of an interview.
func (s *Service) GetSession(sessionID string) (SessionView, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return SessionView{}, err
	}
	return SessionView{
		SessionID:  session.ID,
		Round:      session.Round(),
		IsFinished: session.Finished,
		Messages:   session.Messages,
	}, nil
}

// ListProfiles returns the caller's profiles, newest first.
func (s *Service) ListProfiles(ctx context.Context, ownerID string) ([]profile.PersonalityProfile, error) {
	profiles, err := s.profiles.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, apperror.Upstream("PROFILE_LIST_FAILED", "failed to list profiles", err)
	}
	return profiles, nil
}

// GetProfile returns one of the caller's profiles.
func (s *Service) GetProfile(ctx context.Context, ownerID, profileID string) (profile.PersonalityProfile, error) {
	p, err := s.profiles.FindForOwner(ctx, profileID, ownerID)
	if errors.Is(err, storage.ErrNotFound) {
		return profile.PersonalityProfile{}, ErrProfileNotFound
	}
	if err != nil {
		return profile.PersonalityProfile{}, apperror.Upstream("PROFILE_LOAD_FAILED", "failed to load profile", err)
	}
	return p, nil
}

// sideEffect runs a non-critical write. Failures are logged and never returned.
func (s *Service) sideEffect(action, sessionID string, fn func() error) {
	if s.shadows == nil {
		return
	}
	if err := fn(); err != nil {
		log.Printf("[interview] %s failed for session=%s: %v", action, sessionID, err)
	}
}
