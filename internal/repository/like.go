package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream/internal/models"
	"gorm.io/gorm"
)

type LikeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) *LikeRepository {
	return &LikeRepository{db: db}
}

// Create inserts a like edge. A uniqueness violation surfaces as
// models.ErrConflict so the toggle engine can recover from a lost race.
func (r *LikeRepository) Create(ctx context.Context, like *models.Like) error {
	if err := r.db.WithContext(ctx).Create(like).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("like edge already exists: %w", models.ErrConflict)
		}
		return fmt.Errorf("failed to create like: %w", err)
	}
	return nil
}

func (r *LikeRepository) Delete(ctx context.Context, userID uuid.UUID, subject models.SubjectType, subjectID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND subject_type = ? AND subject_id = ?", userID, subject, subjectID).
		Delete(&models.Like{}).Error; err != nil {
		return fmt.Errorf("failed to delete like: %w", err)
	}
	return nil
}

func (r *LikeRepository) Get(ctx context.Context, userID uuid.UUID, subject models.SubjectType, subjectID uuid.UUID) (*models.Like, error) {
	var like models.Like
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND subject_type = ? AND subject_id = ?", userID, subject, subjectID).
		First(&like).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get like: %w", err)
	}
	return &like, nil
}

func (r *LikeRepository) CountBySubject(ctx context.Context, subject models.SubjectType, subjectID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("subject_type = ? AND subject_id = ?", subject, subjectID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count likes: %w", err)
	}
	return count, nil
}

func (r *LikeRepository) IsLiked(ctx context.Context, userID uuid.UUID, subject models.SubjectType, subjectID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND subject_type = ? AND subject_id = ?", userID, subject, subjectID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check like status: %w", err)
	}
	return count > 0, nil
}

// ListVideoLikesByUser returns the user's video-like edges, most recent first.
func (r *LikeRepository) ListVideoLikesByUser(ctx context.Context, userID uuid.UUID) ([]*models.Like, error) {
	var likes []*models.Like
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND subject_type = ?", userID, models.SubjectVideo).
		Order("created_at DESC").
		Find(&likes).Error; err != nil {
		return nil, fmt.Errorf("failed to list video likes by user: %w", err)
	}
	return likes, nil
}
