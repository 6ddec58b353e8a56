// Package storage holds the durable side of the backend: personality profiles and
// the shadow rows mirroring interview sessions. Postgres is reached through gorm;
// the memory implementations back local runs and tests.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/salt-byte/cinematic-mirror/backend/internal/config"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/chat"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/locale"
	"github.com/salt-byte/cinematic-mirror/backend/internal/model/profile"
)

// ErrNotFound is returned when a row does not exist or is not visible to the caller.
var ErrNotFound = errors.New("record not found")

// Shadow row statuses.
const (
	StatusActive    = "active"
	StatusFinished  = "finished"
	StatusCompleted = "completed"
)

// SessionShadow mirrors an interview session so a profile can still be generated
// after the in-memory session is lost.
type SessionShadow struct {
	ID        string
	OwnerID   string
	Status    string
	Round     int
	Locale    locale.Locale
	Messages  []chat.Message
	ProfileID string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileRepository persists immutable personality profiles.
type ProfileRepository interface {
	Create(ctx context.Context, p profile.PersonalityProfile) error
	FindForOwner(ctx context.Context, id, ownerID string) (profile.PersonalityProfile, error)
	ListByOwner(ctx context.Context, ownerID string) ([]profile.PersonalityProfile, error)
}

// SessionShadowRepository persists shadow rows.
type SessionShadowRepository interface {
	Create(ctx context.Context, shadow SessionShadow) error
	UpdateProgress(ctx context.Context, id string, round int, status string, messages []chat.Message) error
	Complete(ctx context.Context, id, profileID string) error
	Find(ctx context.Context, id string) (SessionShadow, error)
}

// Open 连接 Postgres 并按配置设置连接池。
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := gorm.Open(postgres.Open(cfg.URL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxConns)
	sqlDB.SetMaxIdleConns(cfg.MaxConns / 2)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if cfg.AutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Printf("[storage] schema migrated")
	}
	return db, nil
}

// Migrate creates or updates both tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&profileModel{}, &sessionModel{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
