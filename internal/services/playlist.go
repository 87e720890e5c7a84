package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream/internal/models"
	"github.com/vidstream/vidstream/pkg/logger"
)

type PlaylistService struct {
	playlistStore PlaylistStore
	videoStore    VideoStore
	userStore     UserStore
	likeStore     LikeStore
	timeout       time.Duration
	logger        *logger.Logger
}

func NewPlaylistService(playlistStore PlaylistStore, videoStore VideoStore, userStore UserStore, likeStore LikeStore, timeout time.Duration, logger *logger.Logger) *PlaylistService {
	return &PlaylistService{
		playlistStore: playlistStore,
		videoStore:    videoStore,
		userStore:     userStore,
		likeStore:     likeStore,
		timeout:       timeout,
		logger:        logger,
	}
}

type CreatePlaylistRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=1000"`
}

func (s *PlaylistService) CreatePlaylist(ctx context.Context, ownerID string, req *CreatePlaylistRequest) (*models.Playlist, error) {
	ownerUUID, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner ID %q: %w", ownerID, models.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	playlist := &models.Playlist{
		OwnerID:     ownerUUID,
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   time.Now(),
	}
	if err := s.playlistStore.Create(ctx, playlist); err != nil {
		return nil, storeErr(err)
	}

	s.logger.WithFields(map[string]interface{}{
		"playlist_id": playlist.ID,
		"owner_id":    ownerID,
	}).Info("Playlist created")

	return playlist, nil
}

func (s *PlaylistService) GetUserPlaylists(ctx context.Context, userID string) ([]*PlaylistView, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID %q: %w", userID, models.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	playlists, err := s.playlistStore.ListByOwner(ctx, userUUID)
	if err != nil {
		return nil, storeErr(err)
	}

	owner, err := s.userStore.GetByID(ctx, userUUID)
	if err != nil {
		return nil, storeErr(err)
	}

	views := make([]*PlaylistView, 0, len(playlists))
	for _, playlist := range playlists {
		views = append(views, &PlaylistView{
			ID:          playlist.ID,
			Name:        playlist.Name,
			Description: playlist.Description,
			CreatedAt:   playlist.CreatedAt,
			Owner:       ownerInfo(owner),
			VideoCount:  len(playlist.Videos),
		})
	}
	return views, nil
}

// GetPlaylist resolves the playlist's videos, in position order, to full
// video projections with owner and like-count joins.
func (s *PlaylistService) GetPlaylist(ctx context.Context, playlistID string) (*PlaylistView, error) {
	playlistUUID, err := uuid.Parse(playlistID)
	if err != nil {
		return nil, fmt.Errorf("invalid playlist ID %q: %w", playlistID, models.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	playlist, err := s.playlistStore.GetByID(ctx, playlistUUID)
	if err != nil {
		return nil, storeErr(err)
	}
	if playlist == nil {
		return nil, fmt.Errorf("playlist %s: %w", playlistUUID, models.ErrNotFound)
	}

	owner, err := s.userStore.GetByID(ctx, playlist.OwnerID)
	if err != nil {
		return nil, storeErr(err)
	}

	view := &PlaylistView{
		ID:          playlist.ID,
		Name:        playlist.Name,
		Description: playlist.Description,
		CreatedAt:   playlist.CreatedAt,
		Owner:       ownerInfo(owner),
		VideoCount:  len(playlist.Videos),
		Videos:      make([]*VideoSummary, 0, len(playlist.Videos)),
	}

	for _, entry := range playlist.Videos {
		video, err := s.videoStore.GetByID(ctx, entry.VideoID)
		if err != nil {
			return nil, storeErr(err)
		}
		if video == nil {
			continue
		}
		likes, err := s.likeStore.CountBySubject(ctx, models.SubjectVideo, video.ID)
		if err != nil {
			return nil, storeErr(err)
		}
		videoOwner, err := s.userStore.GetByID(ctx, video.OwnerID)
		if err != nil {
			return nil, storeErr(err)
		}
		view.Videos = append(view.Videos, &VideoSummary{
			ID:          video.ID,
			Title:       video.Title,
			Description: video.Description,
			Thumbnail:   video.Thumbnail,
			Duration:    video.Duration,
			Views:       video.Views,
			CreatedAt:   video.CreatedAt,
			Owner:       ownerInfo(videoOwner),
			LikesCount:  likes,
		})
	}
	return view, nil
}

// AddVideo appends the video to the playlist's tail. Membership is tested by
// equality when removing, so re-adding an already-present video is allowed
// and is an explicit caller choice.
func (s *PlaylistService) AddVideo(ctx context.Context, callerID, playlistID, videoID string) error {
	playlist, err := s.requireOwnedPlaylist(ctx, callerID, playlistID)
	if err != nil {
		return err
	}
	videoUUID, err := uuid.Parse(videoID)
	if err != nil {
		return fmt.Errorf("invalid video ID %q: %w", videoID, models.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	video, err := s.videoStore.GetByID(ctx, videoUUID)
	if err != nil {
		return storeErr(err)
	}
	if video == nil {
		return fmt.Errorf("video %s: %w", videoUUID, models.ErrNotFound)
	}

	position, err := s.playlistStore.NextPosition(ctx, playlist.ID)
	if err != nil {
		return storeErr(err)
	}

	entry := &models.PlaylistVideo{
		PlaylistID: playlist.ID,
		VideoID:    videoUUID,
		Position:   position,
		CreatedAt:  time.Now(),
	}
	if err := s.playlistStore.AddVideo(ctx, entry); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *PlaylistService) RemoveVideo(ctx context.Context, callerID, playlistID, videoID string) error {
	playlist, err := s.requireOwnedPlaylist(ctx, callerID, playlistID)
	if err != nil {
		return err
	}
	videoUUID, err := uuid.Parse(videoID)
	if err != nil {
		return fmt.Errorf("invalid video ID %q: %w", videoID, models.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.playlistStore.RemoveVideo(ctx, playlist.ID, videoUUID); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *PlaylistService) UpdatePlaylist(ctx context.Context, callerID, playlistID string, req *CreatePlaylistRequest) (*models.Playlist, error) {
	playlist, err := s.requireOwnedPlaylist(ctx, callerID, playlistID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	playlist.Name = req.Name
	playlist.Description = req.Description
	if err := s.playlistStore.Update(ctx, playlist); err != nil {
		return nil, storeErr(err)
	}
	return playlist, nil
}

func (s *PlaylistService) DeletePlaylist(ctx context.Context, callerID, playlistID string) error {
	playlist, err := s.requireOwnedPlaylist(ctx, callerID, playlistID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.playlistStore.Delete(ctx, playlist.ID); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *PlaylistService) requireOwnedPlaylist(ctx context.Context, callerID, playlistID string) (*models.Playlist, error) {
	callerUUID, err := uuid.Parse(callerID)
	if err != nil {
		return nil, fmt.Errorf("invalid caller ID %q: %w", callerID, models.ErrInvalidArgument)
	}
	playlistUUID, err := uuid.Parse(playlistID)
	if err != nil {
		return nil, fmt.Errorf("invalid playlist ID %q: %w", playlistID, models.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	playlist, err := s.playlistStore.GetByID(ctx, playlistUUID)
	if err != nil {
		return nil, storeErr(err)
	}
	if playlist == nil {
		return nil, fmt.Errorf("playlist %s: %w", playlistUUID, models.ErrNotFound)
	}
	if playlist.OwnerID != callerUUID {
		return nil, fmt.Errorf("playlist %s is not owned by caller: %w", playlistUUID, models.ErrUnauthorized)
	}
	return playlist, nil
}
