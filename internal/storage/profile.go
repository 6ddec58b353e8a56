package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/salt-byte/cinematic-mirror/backend/internal/model/character"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/chat"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/profile"
)

type profileModel struct {
	ID               string         `gorm:"primaryKey;type:uuid"`
	UserID           string         `gorm:"column:user_id;index;not null"`
	Title            string         `gorm:"not null;default:''"`
	Subtitle         string         `gorm:"not null;default:''"`
	Analysis         string         `gorm:"type:text"`
	Narrative        string         `gorm:"type:text"`
	Angles           datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	VisualAdvice     datatypes.JSON `gorm:"column:visual_advice;type:jsonb;not null;default:'{}'"`
	Matches          datatypes.JSON `gorm:"type:jsonb;not null;default:'[]'"`
	StylingVariants  datatypes.JSON `gorm:"column:styling_variants;type:jsonb;not null;default:'[]'"`
	InterviewHistory datatypes.JSON `gorm:"column:interview_history;type:jsonb;not null;default:'[]'"`
	CreatedAt        time.Time      `gorm:"index"`
}

func (profileModel) TableName() string {
	return "personality_profiles"
}

type profileRepo struct {
	db *gorm.DB
}

// NewProfileRepo returns a gorm-backed ProfileRepository.
func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Create(ctx context.Context, p profile.PersonalityProfile) error {
	model, err := profileToModel(p)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

func (r *profileRepo) FindForOwner(ctx context.Context, id, ownerID string) (profile.PersonalityProfile, error) {
	var model profileModel
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return profile.PersonalityProfile{}, ErrNotFound
	}
	if err != nil {
		return profile.PersonalityProfile{}, fmt.Errorf("failed to get profile: %w", err)
	}
	return profileFromModel(model)
}

func (r *profileRepo) ListByOwner(ctx context.Context, ownerID string) ([]profile.PersonalityProfile, error) {
	var models []profileModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", ownerID).Order("created_at DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	profiles := make([]profile.PersonalityProfile, 0, len(models))
	for _, model := range models {
		p, err := profileFromModel(model)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func profileToModel(p profile.PersonalityProfile) (profileModel, error) {
	model := profileModel{
		ID:        p.ID,
		UserID:    p.OwnerID,
		Title:     p.Title,
		Subtitle:  p.Subtitle,
		Analysis:  p.Analysis,
		Narrative: p.Narrative,
		CreatedAt: p.CreatedAt,
	}

	columns := []struct {
		dst *datatypes.JSON
		src any
	}{
		{&model.Angles, nonNil(p.Angles)},
		{&model.VisualAdvice, p.VisualAdvice},
		{&model.Matches, nonNil(p.Matches)},
		{&model.StylingVariants, nonNil(p.StylingVariants)},
		{&model.InterviewHistory, nonNil(p.InterviewHistory)},
	}
	for _, col := range columns {
		raw, err := json.Marshal(col.src)
		if err != nil {
			return profileModel{}, fmt.Errorf("failed to encode profile column: %w", err)
		}
		*col.dst = datatypes.JSON(raw)
	}
	return model, nil
}

func profileFromModel(model profileModel) (profile.PersonalityProfile, error) {
	p := profile.PersonalityProfile{
		ID:               model.ID,
		OwnerID:          model.UserID,
		Title:            model.Title,
		Subtitle:         model.Subtitle,
		Analysis:         model.Analysis,
		Narrative:        model.Narrative,
		Angles:           []profile.Angle{},
		Matches:          []profile.CharacterMatch{},
		StylingVariants:  []character.Styling{},
		InterviewHistory: []chat.Message{},
		CreatedAt:        model.CreatedAt,
	}

	columns := []struct {
		src datatypes.JSON
		dst any
	}{
		{model.Angles, &p.Angles},
		{model.VisualAdvice, &p.VisualAdvice},
		{model.Matches, &p.Matches},
		{model.StylingVariants, &p.StylingVariants},
		{model.InterviewHistory, &p.InterviewHistory},
	}
	for _, col := range columns {
		if len(col.src) == 0 {
			continue
		}
		if err := json.Unmarshal(col.src, col.dst); err != nil {
			return profile.PersonalityProfile{}, fmt.Errorf("failed to decode profile %s: %w", model.ID, err)
		}
	}
	return p, nil
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
