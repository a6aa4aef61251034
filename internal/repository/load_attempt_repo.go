package repository

import (
	"context"

	"github.com/timmy/pokedex/internal/domain"
	"gorm.io/gorm"
)

// LoadAttemptRepository stores remote load telemetry.
type LoadAttemptRepository struct {
	db *gorm.DB
}

// NewLoadAttemptRepository creates a new LoadAttemptRepository.
// Parameters:
//   - db: GORM database handle used for queries.
//
// Returns:
//   - *LoadAttemptRepository: repository instance bound to db.
func NewLoadAttemptRepository(db *gorm.DB) *LoadAttemptRepository {
	return &LoadAttemptRepository{db: db}
}

// Create inserts a load attempt.
func (r *LoadAttemptRepository) Create(ctx context.Context, attempt *domain.LoadAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}

// ListRecent returns up to limit attempts, newest first, optionally filtered by remote.
func (r *LoadAttemptRepository) ListRecent(ctx context.Context, remote string, limit int) ([]domain.LoadAttempt, error) {
	var attempts []domain.LoadAttempt
	query := r.db.WithContext(ctx).Model(&domain.LoadAttempt{})
	if remote != "" {
		query = query.Where("remote_name = ?", remote)
	}
	err := query.Order("observed_at DESC").Limit(limit).Find(&attempts).Error
	return attempts, err
}
