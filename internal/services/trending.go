package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/vidstream/vidstream/internal/models"
	"github.com/vidstream/vidstream/pkg/logger"
)

// TrendingRanker exposes the ranked-set read used to serve the trending
// feed. The set itself is maintained by the engagement worker.
type TrendingRanker interface {
	ZRevRangeWithScores(ctx context.Context, key string, start, stop int64) ([]redis.Z, error)
}

type TrendingVideo struct {
	Score float64       `json:"score"`
	Video *VideoSummary `json:"video"`
}

type TrendingService struct {
	ranker         TrendingRanker
	videoStore     VideoStore
	userStore      UserStore
	likeStore      LikeStore
	key            string
	maxLimit       int
	storageTimeout time.Duration
	logger         *logger.Logger
}

func NewTrendingService(ranker TrendingRanker, videoStore VideoStore, userStore UserStore, likeStore LikeStore, key string, maxLimit int, timeout time.Duration, logger *logger.Logger) *TrendingService {
	return &TrendingService{
		ranker:         ranker,
		videoStore:     videoStore,
		userStore:      userStore,
		likeStore:      likeStore,
		key:            key,
		maxLimit:       maxLimit,
		storageTimeout: timeout,
		logger:         logger,
	}
}

// GetTrending returns the top-scored published videos. Members that no
// longer resolve to a published video are skipped, not surfaced as errors:
// the ranked set lags deletions until the worker trims it.
func (s *TrendingService) GetTrending(ctx context.Context, limit int) ([]*TrendingVideo, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive: %w", models.ErrInvalidArgument)
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	ctx, cancel := context.WithTimeout(ctx, s.storageTimeout)
	defer cancel()

	members, err := s.ranker.ZRevRangeWithScores(ctx, s.key, 0, int64(limit-1))
	if err != nil {
		return nil, fmt.Errorf("failed to read trending set: %w", storeErr(err))
	}

	results := make([]*TrendingVideo, 0, len(members))
	for _, member := range members {
		id, ok := member.Member.(string)
		if !ok {
			continue
		}
		videoUUID, err := uuid.Parse(id)
		if err != nil {
			continue
		}

		video, err := s.videoStore.GetByID(ctx, videoUUID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch trending video: %w", storeErr(err))
		}
		if video == nil || !video.IsPublished {
			continue
		}

		summary, err := s.composeSummary(ctx, video)
		if err != nil {
			return nil, err
		}
		results = append(results, &TrendingVideo{Score: member.Score, Video: summary})
	}
	return results, nil
}

func (s *TrendingService) composeSummary(ctx context.Context, video *models.Video) (*VideoSummary, error) {
	likes, err := s.likeStore.CountBySubject(ctx, models.SubjectVideo, video.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", storeErr(err))
	}
	owner, err := s.userStore.GetByID(ctx, video.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video owner: %w", storeErr(err))
	}
	return &VideoSummary{
		ID:          video.ID,
		Title:       video.Title,
		Description: video.Description,
		Thumbnail:   video.Thumbnail,
		Duration:    video.Duration,
		Views:       video.Views,
		CreatedAt:   video.CreatedAt,
		Owner:       ownerInfo(owner),
		LikesCount:  likes,
	}, nil
}
