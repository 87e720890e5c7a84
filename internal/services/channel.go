package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream/internal/models"
	"github.com/vidstream/vidstream/pkg/logger"
)

// ChannelService composes channel-level views: the public profile with
// subscription counts and viewer flag, and the owner-only stats rollup.
type ChannelService struct {
	userStore  UserStore
	videoStore VideoStore
	likeStore  LikeStore
	subStore   SubscriptionStore
	timeout    time.Duration
	logger     *logger.Logger
}

func NewChannelService(userStore UserStore, videoStore VideoStore, likeStore LikeStore, subStore SubscriptionStore, timeout time.Duration, logger *logger.Logger) *ChannelService {
	return &ChannelService{
		userStore:  userStore,
		videoStore: videoStore,
		likeStore:  likeStore,
		subStore:   subStore,
		timeout:    timeout,
		logger:     logger,
	}
}

// GetChannelProfile resolves a channel by username, case-insensitively, and
// attaches derived counts. With no viewer context IsViewerSubscribed is false.
func (s *ChannelService) GetChannelProfile(ctx context.Context, username, viewerID string) (*ChannelProfile, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", models.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.userStore.GetByUsername(ctx, username)
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil {
		return nil, fmt.Errorf("channel %q: %w", username, models.ErrNotFound)
	}

	profile := &ChannelProfile{
		ID:         user.ID,
		Username:   user.Username,
		FullName:   user.FullName,
		Avatar:     user.Avatar,
		CoverImage: user.CoverImage,
	}

	profile.SubscribersCount, err = s.subStore.CountByChannel(ctx, user.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	profile.SubscribedToCount, err = s.subStore.CountBySubscriber(ctx, user.ID)
	if err != nil {
		return nil, storeErr(err)
	}

	if viewerID != "" {
		viewerUUID, err := uuid.Parse(viewerID)
		if err != nil {
			return nil, fmt.Errorf("invalid viewer ID %q: %w", viewerID, models.ErrInvalidArgument)
		}
		profile.IsViewerSubscribed, err = s.subStore.IsSubscribed(ctx, viewerUUID, user.ID)
		if err != nil {
			return nil, storeErr(err)
		}
	}

	return profile, nil
}

// GetChannelStats rolls up a channel's published videos. Only the channel
// owner may ask. Per-video like counts are computed first, then summed into
// the channel totals.
func (s *ChannelService) GetChannelStats(ctx context.Context, channelID, callerID string) (*ChannelStats, error) {
	channelUUID, err := uuid.Parse(channelID)
	if err != nil {
		return nil, fmt.Errorf("invalid channel ID %q: %w", channelID, models.ErrInvalidArgument)
	}
	if callerID != channelID {
		return nil, fmt.Errorf("channel stats are owner-only: %w", models.ErrUnauthorized)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	channel, err := s.userStore.GetByID(ctx, channelUUID)
	if err != nil {
		return nil, storeErr(err)
	}
	if channel == nil {
		return nil, fmt.Errorf("channel %s: %w", channelUUID, models.ErrNotFound)
	}

	videos, err := s.videoStore.ListByOwner(ctx, channelUUID, true)
	if err != nil {
		return nil, storeErr(err)
	}

	perVideoLikes := make([]int64, len(videos))
	for i, video := range videos {
		perVideoLikes[i], err = s.likeStore.CountBySubject(ctx, models.SubjectVideo, video.ID)
		if err != nil {
			return nil, storeErr(err)
		}
	}

	stats := &ChannelStats{
		ChannelID:   channelUUID,
		TotalVideos: int64(len(videos)),
	}
	for i, video := range videos {
		stats.TotalViews += video.Views
		stats.TotalLikes += perVideoLikes[i]
	}

	stats.TotalSubscribers, err = s.subStore.CountByChannel(ctx, channelUUID)
	if err != nil {
		return nil, storeErr(err)
	}

	return stats, nil
}

// GetChannelVideos lists a channel's uploads. The owner sees unpublished
// videos; everyone else sees published only.
func (s *ChannelService) GetChannelVideos(ctx context.Context, channelID, viewerID string) ([]*VideoSummary, error) {
	channelUUID, err := uuid.Parse(channelID)
	if err != nil {
		return nil, fmt.Errorf("invalid channel ID %q: %w", channelID, models.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	publishedOnly := viewerID != channelID
	videos, err := s.videoStore.ListByOwner(ctx, channelUUID, publishedOnly)
	if err != nil {
		return nil, storeErr(err)
	}

	summaries := make([]*VideoSummary, 0, len(videos))
	for _, video := range videos {
		likes, err := s.likeStore.CountBySubject(ctx, models.SubjectVideo, video.ID)
		if err != nil {
			return nil, storeErr(err)
		}
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
			LikesCount:  likes,
		})
	}
	return summaries, nil
}

func (s *ChannelService) GetSubscribers(ctx context.Context, channelID string) ([]*OwnerInfo, error) {
	channelUUID, err := uuid.Parse(channelID)
	if err != nil {
		return nil, fmt.Errorf("invalid channel ID %q: %w", channelID, models.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	users, err := s.subStore.ListSubscribers(ctx, channelUUID)
	if err != nil {
		return nil, storeErr(err)
	}
	return ownerInfos(users), nil
}

func (s *ChannelService) GetSubscribedChannels(ctx context.Context, subscriberID string) ([]*OwnerInfo, error) {
	subscriberUUID, err := uuid.Parse(subscriberID)
	if err != nil {
		return nil, fmt.Errorf("invalid subscriber ID %q: %w", subscriberID, models.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	users, err := s.subStore.ListChannels(ctx, subscriberUUID)
	if err != nil {
		return nil, storeErr(err)
	}
	return ownerInfos(users), nil
}

func ownerInfos(users []*models.User) []*OwnerInfo {
	infos := make([]*OwnerInfo, 0, len(users))
	for _, user := range users {
		infos = append(infos, ownerInfo(user))
	}
	return infos
}
