package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream/internal/models"
	"github.com/vidstream/vidstream/pkg/logger"
	"github.com/vidstream/vidstream/pkg/queue"
)

// TargetKind names what a toggle applies to: a like subject or a channel.
type TargetKind string

const (
	TargetVideo   TargetKind = "video"
	TargetComment TargetKind = "comment"
	TargetTweet   TargetKind = "tweet"
	TargetChannel TargetKind = "channel"
)

// EngagementService flips social-graph edges. The uniqueness guarantee lives
// in the store's composite unique indexes; the read-before-write here is only
// a fast path, and a lost race recovers through the conflict branch.
type EngagementService struct {
	userStore    UserStore
	videoStore   VideoStore
	commentStore CommentStore
	tweetStore   TweetStore
	likeStore    LikeStore
	subStore     SubscriptionStore
	producer     EventPublisher
	timeout      time.Duration
	logger       *logger.Logger
}

func NewEngagementService(
	userStore UserStore,
	videoStore VideoStore,
	commentStore CommentStore,
	tweetStore TweetStore,
	likeStore LikeStore,
	subStore SubscriptionStore,
	producer EventPublisher,
	timeout time.Duration,
	logger *logger.Logger,
) *EngagementService {
	return &EngagementService{
		userStore:    userStore,
		videoStore:   videoStore,
		commentStore: commentStore,
		tweetStore:   tweetStore,
		likeStore:    likeStore,
		subStore:     subStore,
		producer:     producer,
		timeout:      timeout,
		logger:       logger,
	}
}

// Toggle flips the edge between actor and target. The returned bool reports
// whether the edge exists after the call.
func (s *EngagementService) Toggle(ctx context.Context, actorID string, kind TargetKind, targetID string) (bool, error) {
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return false, fmt.Errorf("invalid actor ID %q: %w", actorID, models.ErrInvalidArgument)
	}

	targetUUID, err := uuid.Parse(targetID)
	if err != nil {
		return false, fmt.Errorf("invalid target ID %q: %w", targetID, models.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if kind == TargetChannel {
		return s.toggleSubscription(ctx, actorUUID, targetUUID)
	}

	subject := models.SubjectType(kind)
	if !subject.Valid() {
		return false, fmt.Errorf("unknown target kind %q: %w", kind, models.ErrInvalidArgument)
	}
	return s.toggleLike(ctx, actorUUID, subject, targetUUID)
}

func (s *EngagementService) toggleLike(ctx context.Context, actorID uuid.UUID, subject models.SubjectType, subjectID uuid.UUID) (bool, error) {
	// The subject must exist before any edge mutation.
	if err := s.checkSubject(ctx, subject, subjectID); err != nil {
		return false, err
	}

	existing, err := s.likeStore.Get(ctx, actorID, subject, subjectID)
	if err != nil {
		return false, storeErr(err)
	}

	var active bool
	if existing != nil {
		// Deleting an edge a concurrent toggle already removed is a no-op.
		if err := s.likeStore.Delete(ctx, actorID, subject, subjectID); err != nil {
			return false, storeErr(err)
		}
		active = false
	} else {
		like := &models.Like{
			UserID:      actorID,
			SubjectType: subject,
			SubjectID:   subjectID,
			CreatedAt:   time.Now(),
		}
		if err := s.likeStore.Create(ctx, like); err != nil {
			if !errors.Is(err, models.ErrConflict) {
				return false, storeErr(err)
			}
			// A concurrent toggle won the insert; confirm the edge is ours
			// and report it as active rather than failing.
			theirs, getErr := s.likeStore.Get(ctx, actorID, subject, subjectID)
			if getErr != nil {
				return false, storeErr(getErr)
			}
			if theirs == nil {
				return false, storeErr(err)
			}
		}
		active = true
	}

	s.publishEvent(ctx, actorID.String(), queue.EventLikeToggled, queue.LikeEventData{
		UserID:      actorID.String(),
		SubjectType: string(subject),
		SubjectID:   subjectID.String(),
		Active:      active,
	})

	s.logger.WithFields(map[string]interface{}{
		"user_id":      actorID,
		"subject_type": subject,
		"subject_id":   subjectID,
		"active":       active,
	}).Info("Like toggled")

	return active, nil
}

func (s *EngagementService) toggleSubscription(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error) {
	channel, err := s.userStore.GetByID(ctx, channelID)
	if err != nil {
		return false, storeErr(err)
	}
	if channel == nil {
		return false, fmt.Errorf("channel %s: %w", channelID, models.ErrNotFound)
	}

	// Subscribing to your own channel is allowed.
	existing, err := s.subStore.Get(ctx, subscriberID, channelID)
	if err != nil {
		return false, storeErr(err)
	}

	var active bool
	if existing != nil {
		if err := s.subStore.Delete(ctx, subscriberID, channelID); err != nil {
			return false, storeErr(err)
		}
		active = false
	} else {
		sub := &models.Subscription{
			SubscriberID: subscriberID,
			ChannelID:    channelID,
			CreatedAt:    time.Now(),
		}
		if err := s.subStore.Create(ctx, sub); err != nil {
			if !errors.Is(err, models.ErrConflict) {
				return false, storeErr(err)
			}
			theirs, getErr := s.subStore.Get(ctx, subscriberID, channelID)
			if getErr != nil {
				return false, storeErr(getErr)
			}
			if theirs == nil {
				return false, storeErr(err)
			}
		}
		active = true
	}

	s.publishEvent(ctx, subscriberID.String(), queue.EventSubscriptionToggled, queue.SubscriptionEventData{
		SubscriberID: subscriberID.String(),
		ChannelID:    channelID.String(),
		Active:       active,
	})

	s.logger.WithFields(map[string]interface{}{
		"subscriber_id": subscriberID,
		"channel_id":    channelID,
		"active":        active,
	}).Info("Subscription toggled")

	return active, nil
}

func (s *EngagementService) checkSubject(ctx context.Context, subject models.SubjectType, subjectID uuid.UUID) error {
	switch subject {
	case models.SubjectVideo:
		video, err := s.videoStore.GetByID(ctx, subjectID)
		if err != nil {
			return storeErr(err)
		}
		if video == nil {
			return fmt.Errorf("video %s: %w", subjectID, models.ErrNotFound)
		}
	case models.SubjectComment:
		comment, err := s.commentStore.GetByID(ctx, subjectID)
		if err != nil {
			return storeErr(err)
		}
		if comment == nil {
			return fmt.Errorf("comment %s: %w", subjectID, models.ErrNotFound)
		}
	case models.SubjectTweet:
		tweet, err := s.tweetStore.GetByID(ctx, subjectID)
		if err != nil {
			return storeErr(err)
		}
		if tweet == nil {
			return fmt.Errorf("tweet %s: %w", subjectID, models.ErrNotFound)
		}
	}
	return nil
}

func (s *EngagementService) publishEvent(ctx context.Context, key string, eventType queue.EventType, payload interface{}) {
	event, err := queue.NewEvent(eventType, payload)
	if err != nil {
		s.logger.WithError(err).Error("Failed to build engagement event")
		return
	}
	if err := s.producer.Publish(ctx, key, event); err != nil {
		s.logger.WithError(err).Error("Failed to publish engagement event")
	}
}

// GetLikedVideos lists the videos a user has liked, with owner and like-count
// joins, most recently liked first.
func (s *EngagementService) GetLikedVideos(ctx context.Context, userID string) ([]*VideoSummary, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID %q: %w", userID, models.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	likes, err := s.likeStore.ListVideoLikesByUser(ctx, userUUID)
	if err != nil {
		return nil, storeErr(err)
	}

	summaries := make([]*VideoSummary, 0, len(likes))
	for _, like := range likes {
		video, err := s.videoStore.GetByID(ctx, like.SubjectID)
		if err != nil {
			return nil, storeErr(err)
		}
		if video == nil {
			// The liked video was deleted; skip rather than fail the listing.
			continue
		}
		count, err := s.likeStore.CountBySubject(ctx, models.SubjectVideo, video.ID)
		if err != nil {
			return nil, storeErr(err)
		}
		// A missing owner degrades to a nil sub-field, not a failed listing.
		owner, err := s.userStore.GetByID(ctx, video.OwnerID)
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
			LikesCount:  count,
		})
	}
	return summaries, nil
}
