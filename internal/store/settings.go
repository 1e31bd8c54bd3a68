// Package store persists per-user translation settings.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/eyepyon/waiwine/internal/errs"
	"github.com/eyepyon/waiwine/internal/model"
)

// Store is the durable settings collaborator consumed by the session
// registry. Load returns errs.ErrSettingsNotFound for unknown users.
type Store interface {
	Load(ctx context.Context, userID string) (model.TranslationSettings, error)
	Save(ctx context.Context, userID string, s model.TranslationSettings) error
}

// GormStore keeps settings in PostgreSQL.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Postgres-backed store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Load reads one user's settings row.
func (s *GormStore) Load(ctx context.Context, userID string) (model.TranslationSettings, error) {
	var ent model.TranslationSettingsEntity
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&ent).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.TranslationSettings{}, errs.ErrSettingsNotFound
		}
		return model.TranslationSettings{}, fmt.Errorf("load settings: %w", err)
	}
	return ent.Settings(), nil
}

// Save upserts one user's settings row.
func (s *GormStore) Save(ctx context.Context, userID string, settings model.TranslationSettings) error {
	var ent model.TranslationSettingsEntity
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&ent).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		ent = model.TranslationSettingsEntity{UserID: userID}
		ent.ApplySettings(settings)
		if err := s.db.WithContext(ctx).Create(&ent).Error; err != nil {
			return fmt.Errorf("create settings: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("save settings: %w", err)
	}
	ent.ApplySettings(settings)
	if err := s.db.WithContext(ctx).Save(&ent).Error; err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}

// MemoryStore is an in-memory Store for tests and store-less development.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]model.TranslationSettings

	// FailLoads makes Load return an error, simulating an unreachable store.
	FailLoads bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]model.TranslationSettings)}
}

func (m *MemoryStore) Load(ctx context.Context, userID string) (model.TranslationSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailLoads {
		return model.TranslationSettings{}, errs.ErrSettingsUnavailable
	}
	s, ok := m.data[userID]
	if !ok {
		return model.TranslationSettings{}, errs.ErrSettingsNotFound
	}
	return s, nil
}

func (m *MemoryStore) Save(ctx context.Context, userID string, s model.TranslationSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[userID] = s
	return nil
}
