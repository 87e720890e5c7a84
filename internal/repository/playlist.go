package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream/internal/models"
	"gorm.io/gorm"
)

type PlaylistRepository struct {
	db *gorm.DB
}

func NewPlaylistRepository(db *gorm.DB) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

func (r *PlaylistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	if err := r.db.WithContext(ctx).Create(playlist).Error; err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	return nil
}

func (r *PlaylistRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Playlist, error) {
	var playlist models.Playlist
	if err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Videos", func(db *gorm.DB) *gorm.DB {
			return db.Order("playlist_videos.position ASC")
		}).
		Preload("Videos.Video.Owner").
		First(&playlist, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}
	return &playlist, nil
}

func (r *PlaylistRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Playlist, error) {
	var playlists []*models.Playlist
	if err := r.db.WithContext(ctx).
		Preload("Videos").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&playlists).Error; err != nil {
		return nil, fmt.Errorf("failed to list playlists by owner: %w", err)
	}
	return playlists, nil
}

func (r *PlaylistRepository) AddVideo(ctx context.Context, entry *models.PlaylistVideo) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to add video to playlist: %w", err)
	}
	return nil
}

// RemoveVideo drops every membership row for the video; a video re-added
// multiple times leaves the playlist entirely.
func (r *PlaylistRepository) RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("playlist_id = ? AND video_id = ?", playlistID, videoID).
		Delete(&models.PlaylistVideo{}).Error; err != nil {
		return fmt.Errorf("failed to remove video from playlist: %w", err)
	}
	return nil
}

func (r *PlaylistRepository) NextPosition(ctx context.Context, playlistID uuid.UUID) (int, error) {
	var max *int
	if err := r.db.WithContext(ctx).
		Model(&models.PlaylistVideo{}).
		Select("MAX(position)").
		Where("playlist_id = ?", playlistID).
		Scan(&max).Error; err != nil {
		return 0, fmt.Errorf("failed to get next playlist position: %w", err)
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}

func (r *PlaylistRepository) Update(ctx context.Context, playlist *models.Playlist) error {
	if err := r.db.WithContext(ctx).Save(playlist).Error; err != nil {
		return fmt.Errorf("failed to update playlist: %w", err)
	}
	return nil
}

func (r *PlaylistRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Where("playlist_id = ?", id).
		Delete(&models.PlaylistVideo{}).Error; err != nil {
		return fmt.Errorf("failed to delete playlist videos: %w", err)
	}
	if err := r.db.WithContext(ctx).Delete(&models.Playlist{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return nil
}
