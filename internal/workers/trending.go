package workers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vidstream/vidstream/pkg/cache"
	"github.com/vidstream/vidstream/pkg/logger"
	"github.com/vidstream/vidstream/pkg/queue"
)

// Engagement weights for the trending score. A view is the baseline; likes
// and comments signal stronger intent.
const (
	viewWeight    = 1.0
	likeWeight    = 3.0
	commentWeight = 2.0
)

// TrendingWorker consumes engagement events and maintains a Redis sorted
// set of video scores. The API reads this set to serve the trending feed.
type TrendingWorker struct {
	consumer *queue.KafkaConsumer
	cache    *cache.RedisClient
	key      string
	maxSize  int
	logger   *logger.Logger
}

func NewTrendingWorker(consumer *queue.KafkaConsumer, cache *cache.RedisClient, key string, maxSize int, logger *logger.Logger) *TrendingWorker {
	return &TrendingWorker{
		consumer: consumer,
		cache:    cache,
		key:      key,
		maxSize:  maxSize,
		logger:   logger,
	}
}

func (w *TrendingWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting trending worker...")

	return w.consumer.Subscribe(ctx, func(event queue.Event) error {
		w.logger.WithFields(map[string]interface{}{
			"event_type": event.Type,
			"timestamp":  event.Timestamp,
		}).Debug("Processing engagement event")

		switch event.Type {
		case queue.EventVideoViewed:
			return w.handleVideoViewed(ctx, event)
		case queue.EventLikeToggled:
			return w.handleLikeToggled(ctx, event)
		case queue.EventCommentCreated:
			return w.handleCommentCreated(ctx, event)
		default:
			// Subscription and publish events carry no per-video score.
			return nil
		}
	})
}

func (w *TrendingWorker) Stop() error {
	w.logger.Info("Stopping trending worker...")
	return w.consumer.Close()
}

func (w *TrendingWorker) handleVideoViewed(ctx context.Context, event queue.Event) error {
	var data queue.ViewEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("failed to decode view event: %w", err)
	}
	return w.bump(ctx, data.VideoID, viewWeight)
}

func (w *TrendingWorker) handleLikeToggled(ctx context.Context, event queue.Event) error {
	var data queue.LikeEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("failed to decode like event: %w", err)
	}
	if data.SubjectType != "video" {
		return nil
	}

	weight := likeWeight
	if !data.Active {
		weight = -likeWeight
	}
	return w.bump(ctx, data.SubjectID, weight)
}

func (w *TrendingWorker) handleCommentCreated(ctx context.Context, event queue.Event) error {
	var data queue.CommentEventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("failed to decode comment event: %w", err)
	}
	return w.bump(ctx, data.VideoID, commentWeight)
}

func (w *TrendingWorker) bump(ctx context.Context, videoID string, delta float64) error {
	if videoID == "" {
		return nil
	}

	if err := w.cache.ZIncrBy(ctx, w.key, delta, videoID); err != nil {
		return fmt.Errorf("failed to update trending score: %w", err)
	}

	return w.trim(ctx)
}

// trim keeps only the top maxSize members.
func (w *TrendingWorker) trim(ctx context.Context) error {
	count, err := w.cache.ZCard(ctx, w.key)
	if err != nil {
		return fmt.Errorf("failed to size trending set: %w", err)
	}
	if count <= int64(w.maxSize) {
		return nil
	}

	if err := w.cache.ZRemRangeByRank(ctx, w.key, 0, count-int64(w.maxSize)-1); err != nil {
		return fmt.Errorf("failed to trim trending set: %w", err)
	}
	return nil
}
