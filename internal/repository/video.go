package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream/internal/models"
	"gorm.io/gorm"
)

type VideoRepository struct {
	db *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{db: db}
}

func (r *VideoRepository) Create(ctx context.Context, video *models.Video) error {
	if err := r.db.WithContext(ctx).Create(video).Error; err != nil {
		return fmt.Errorf("failed to create video: %w", err)
	}
	return nil
}

func (r *VideoRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	var video models.Video
	if err := r.db.WithContext(ctx).
		Preload("Owner").
		First(&video, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return &video, nil
}

// List returns the full filtered, sorted candidate set. Pagination is a pure
// window applied by the caller after composition.
func (r *VideoRepository) List(ctx context.Context, filter models.VideoFilter) ([]*models.Video, error) {
	db := r.db.WithContext(ctx).Preload("Owner")

	if filter.PublishedOnly {
		db = db.Where("is_published = ?", true)
	}
	if filter.OwnerID != nil {
		db = db.Where("owner_id = ?", *filter.OwnerID)
	}
	if filter.Query != "" {
		pattern := "%" + strings.ToLower(filter.Query) + "%"
		db = db.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}

	var videos []*models.Video
	if err := db.Order(fmt.Sprintf("%s %s", sortBy, direction)).Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	return videos, nil
}

func (r *VideoRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, publishedOnly bool) ([]*models.Video, error) {
	db := r.db.WithContext(ctx).Preload("Owner").Where("owner_id = ?", ownerID)
	if publishedOnly {
		db = db.Where("is_published = ?", true)
	}

	var videos []*models.Video
	if err := db.Order("created_at DESC").Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("failed to list videos by owner: %w", err)
	}
	return videos, nil
}

func (r *VideoRepository) Update(ctx context.Context, video *models.Video) error {
	if err := r.db.WithContext(ctx).Save(video).Error; err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}
	return nil
}

func (r *VideoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Delete(&models.Video{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	return nil
}

// IncrementViews is a single counter-add in the store, never read-modify-write
// at the caller.
func (r *VideoRepository) IncrementViews(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Model(&models.Video{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error; err != nil {
		return fmt.Errorf("failed to increment views: %w", err)
	}
	return nil
}
