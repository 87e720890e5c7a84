package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream/internal/models"
	"github.com/vidstream/vidstream/pkg/logger"
)

// HistoryService records and reads watch history. The history behaves as an
// ordered set: one entry per (viewer, video), insertion order preserved.
type HistoryService struct {
	historyStore HistoryStore
	userStore    UserStore
	likeStore    LikeStore
	timeout      time.Duration
	logger       *logger.Logger
}

func NewHistoryService(historyStore HistoryStore, userStore UserStore, likeStore LikeStore, timeout time.Duration, logger *logger.Logger) *HistoryService {
	return &HistoryService{
		historyStore: historyStore,
		userStore:    userStore,
		likeStore:    likeStore,
		timeout:      timeout,
		logger:       logger,
	}
}

// Record appends the video to the viewer's history unless it is already
// there. The check-then-append is not serialized; the unique index backstops
// it, and a lost race reads as already recorded.
func (s *HistoryService) Record(ctx context.Context, viewerID, videoID uuid.UUID) error {
	seen, err := s.historyStore.Contains(ctx, viewerID, videoID)
	if err != nil {
		return storeErr(err)
	}
	if seen {
		return nil
	}

	entry := &models.WatchHistoryEntry{
		UserID:    viewerID,
		VideoID:   videoID,
		CreatedAt: time.Now(),
	}
	if err := s.historyStore.Append(ctx, entry); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil
		}
		return storeErr(err)
	}
	return nil
}

// GetWatchHistory resolves the viewer's history to video projections in
// viewing order, most recent last; newestFirst reverses it. Videos deleted
// since being watched are skipped.
func (s *HistoryService) GetWatchHistory(ctx context.Context, viewerID string, newestFirst bool) ([]*VideoSummary, error) {
	if viewerID == "" {
		return nil, fmt.Errorf("viewer required: %w", models.ErrUnauthorized)
	}
	viewerUUID, err := uuid.Parse(viewerID)
	if err != nil {
		return nil, fmt.Errorf("invalid viewer ID %q: %w", viewerID, models.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	entries, err := s.historyStore.ListByUser(ctx, viewerUUID)
	if err != nil {
		return nil, storeErr(err)
	}

	summaries := make([]*VideoSummary, 0, len(entries))
	for _, entry := range entries {
		video := entry.Video
		if video.ID == uuid.Nil {
			continue
		}
		owner, err := s.userStore.GetByID(ctx, video.OwnerID)
		if err != nil {
			return nil, storeErr(err)
		}
		likes, err := s.likeStore.CountBySubject(ctx, models.SubjectVideo, video.ID)
		if err != nil {
			return nil, storeErr(err)
		}
		summaries = append(summaries, &VideoSummary{
			ID:          video.ID,
			Title:       video.Title,
			Description: video.Description,
			Thumbnail:   video.Thumbnail,
			Duration:    video.Duration,
			Views:       video.Views,
			CreatedAt:   video.CreatedAt,
			Owner:       ownerInfo(owner),
			LikesCount:  likes,
		})
	}

	if newestFirst {
		for i, j := 0, len(summaries)-1; i < j; i, j = i+1, j-1 {
			summaries[i], summaries[j] = summaries[j], summaries[i]
		}
	}
	return summaries, nil
}
