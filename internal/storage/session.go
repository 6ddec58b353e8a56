package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/salt-byte/cinematic-mirror/backend/internal/model/chat"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/locale"
)

type sessionModel struct {
	ID        string         `gorm:"primaryKey;type:uuid"`
	UserID    string         `gorm:"column:user_id;index;not null"`
	Status    string         `gorm:"not null;default:'active'"`
	Round     int            `gorm:"not null;default:1"`
	Locale    string         `gorm:"not null;default:'zh'"`
	Messages  datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	ProfileID *string        `gorm:"column:profile_id;type:uuid"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (sessionModel) TableName() string {
	return "interview_sessions"
}

type sessionRepo struct {
	db *gorm.DB
}

// NewSessionShadowRepo returns a gorm-backed SessionShadowRepository.
func NewSessionShadowRepo(db *gorm.DB) SessionShadowRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, shadow SessionShadow) error {
	messages, err := encodeMessages(shadow.Messages)
	if err != nil {
		return err
	}
	model := sessionModel{
		ID:        shadow.ID,
		UserID:    shadow.OwnerID,
		Status:    shadow.Status,
		Round:     shadow.Round,
		Locale:    string(shadow.Locale),
		Messages:  messages,
		CreatedAt: shadow.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to insert interview session: %w", err)
	}
	return nil
}

func (r *sessionRepo) UpdateProgress(ctx context.Context, id string, round int, status string, messages []chat.Message) error {
	encoded, err := encodeMessages(messages)
	if err != nil {
		return err
	}
	return r.update(ctx, id, map[string]any{
		"round":    round,
		"status":   status,
		"messages": encoded,
	})
}

func (r *sessionRepo) Complete(ctx context.Context, id, profileID string) error {
	return r.update(ctx, id, map[string]any{
		"status":     StatusCompleted,
		"profile_id": profileID,
	})
}

func (r *sessionRepo) update(ctx context.Context, id string, fields map[string]any) error {
	result := r.db.WithContext(ctx).Model(&sessionModel{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update interview session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sessionRepo) Find(ctx context.Context, id string) (SessionShadow, error) {
	var model sessionModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return SessionShadow{}, ErrNotFound
	}
	if err != nil {
		return SessionShadow{}, fmt.Errorf("failed to get interview session: %w", err)
	}
	return sessionFromModel(model)
}

func sessionFromModel(model sessionModel) (SessionShadow, error) {
	shadow := SessionShadow{
		ID:        model.ID,
		OwnerID:   model.UserID,
		Status:    model.Status,
		Round:     model.Round,
		Locale:    locale.Parse(model.Locale, locale.ZH),
		Messages:  []chat.Message{},
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if model.ProfileID != nil {
		shadow.ProfileID = *model.ProfileID
	}
	if len(model.Messages) > 0 {
		if err := json.Unmarshal(model.Messages, &shadow.Messages); err != nil {
			return SessionShadow{}, fmt.Errorf("failed to decode messages of session %s: %w", model.ID, err)
		}
	}
	return shadow, nil
}

func encodeMessages(messages []chat.Message) (datatypes.JSON, error) {
	raw, err := json.Marshal(nonNil(messages))
	if err != nil {
		return nil, fmt.Errorf("failed to encode messages: %w", err)
	}
	return datatypes.JSON(raw), nil
}
