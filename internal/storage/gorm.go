package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/Conceptual-Machines/chordsmith-api/internal/models"
	"github.com/Conceptual-Machines/chordsmith-api/internal/playback"
)

// GormStore persists performances in the database
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a database-backed store
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Save implements playback.Store
func (s *GormStore) Save(ctx context.Context, p *models.Performance) error {
	return s.db.WithContext(ctx).Create(p).Error
}

// Latest implements playback.Store
func (s *GormStore) Latest(ctx context.Context) (*models.Performance, error) {
	var p models.Performance
	err := s.db.WithContext(ctx).Order("created_at DESC").First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, playback.ErrNoPerformance
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Get returns a stored performance by ID
func (s *GormStore) Get(ctx context.Context, id string) (*models.Performance, error) {
	var p models.Performance
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, playback.ErrNoPerformance
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
