package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream/internal/models"
	"gorm.io/gorm"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Contains(ctx context.Context, userID, videoID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.WatchHistoryEntry{}).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check watch history: %w", err)
	}
	return count > 0, nil
}

// Append inserts a history entry. A duplicate from a racing append maps to
// models.ErrConflict; the recorder treats that as already recorded.
func (r *HistoryRepository) Append(ctx context.Context, entry *models.WatchHistoryEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("history entry already exists: %w", models.ErrConflict)
		}
		return fmt.Errorf("failed to append watch history: %w", err)
	}
	return nil
}

// ListByUser returns entries in insertion order, oldest first.
func (r *HistoryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.WatchHistoryEntry, error) {
	var entries []*models.WatchHistoryEntry
	if err := r.db.WithContext(ctx).
		Preload("Video.Owner").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list watch history: %w", err)
	}
	return entries, nil
}
