package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream/internal/models"
	"github.com/vidstream/vidstream/pkg/logger"
)

type TweetService struct {
	tweetStore TweetStore
	userStore  UserStore
	likeStore  LikeStore
	timeout    time.Duration
	logger     *logger.Logger
}

func NewTweetService(tweetStore TweetStore, userStore UserStore, likeStore LikeStore, timeout time.Duration, logger *logger.Logger) *TweetService {
	return &TweetService{
		tweetStore: tweetStore,
		userStore:  userStore,
		likeStore:  likeStore,
		timeout:    timeout,
		logger:     logger,
	}
}

type CreateTweetRequest struct {
	Content string `json:"content" binding:"required,min=1,max=280"`
}

func (s *TweetService) CreateTweet(ctx context.Context, userID string, req *CreateTweetRequest) (*models.Tweet, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID %q: %w", userID, models.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.userStore.GetByID(ctx, userUUID)
	if err != nil {
		return nil, storeErr(err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %s: %w", userUUID, models.ErrNotFound)
	}

	tweet := &models.Tweet{
		OwnerID:   userUUID,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}
	if err := s.tweetStore.Create(ctx, tweet); err != nil {
		return nil, storeErr(err)
	}

	s.logger.WithFields(map[string]interface{}{
		"tweet_id": tweet.ID,
		"user_id":  userID,
	}).Info("Tweet created")

	return tweet, nil
}

// GetUserTweets lists a user's tweets with like counts and the viewer flag.
func (s *TweetService) GetUserTweets(ctx context.Context, userID, viewerID string) ([]*TweetView, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID %q: %w", userID, models.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var viewerUUID *uuid.UUID
	if viewerID != "" {
		parsed, err := uuid.Parse(viewerID)
		if err != nil {
			return nil, fmt.Errorf("invalid viewer ID %q: %w", viewerID, models.ErrInvalidArgument)
		}
		viewerUUID = &parsed
	}

	tweets, err := s.tweetStore.ListByOwner(ctx, userUUID)
	if err != nil {
		return nil, storeErr(err)
	}

	owner, err := s.userStore.GetByID(ctx, userUUID)
	if err != nil {
		return nil, storeErr(err)
	}

	views := make([]*TweetView, 0, len(tweets))
	for _, tweet := range tweets {
		view := &TweetView{
			ID:        tweet.ID,
			Content:   tweet.Content,
			CreatedAt: tweet.CreatedAt,
			Owner:     ownerInfo(owner),
		}
		view.LikesCount, err = s.likeStore.CountBySubject(ctx, models.SubjectTweet, tweet.ID)
		if err != nil {
			return nil, storeErr(err)
		}
		if viewerUUID != nil {
			view.IsLikedByViewer, err = s.likeStore.IsLiked(ctx, *viewerUUID, models.SubjectTweet, tweet.ID)
			if err != nil {
				return nil, storeErr(err)
			}
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *TweetService) UpdateTweet(ctx context.Context, callerID, tweetID, content string) (*models.Tweet, error) {
	tweet, err := s.requireOwnedTweet(ctx, callerID, tweetID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tweet.Content = content
	if err := s.tweetStore.Update(ctx, tweet); err != nil {
		return nil, storeErr(err)
	}
	return tweet, nil
}

func (s *TweetService) DeleteTweet(ctx context.Context, callerID, tweetID string) error {
	tweet, err := s.requireOwnedTweet(ctx, callerID, tweetID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.tweetStore.Delete(ctx, tweet.ID); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *TweetService) requireOwnedTweet(ctx context.Context, callerID, tweetID string) (*models.Tweet, error) {
	callerUUID, err := uuid.Parse(callerID)
	if err != nil {
		return nil, fmt.Errorf("invalid caller ID %q: %w", callerID, models.ErrInvalidArgument)
	}
	tweetUUID, err := uuid.Parse(tweetID)
	if err != nil {
		return nil, fmt.Errorf("invalid tweet ID %q: %w", tweetID, models.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tweet, err := s.tweetStore.GetByID(ctx, tweetUUID)
	if err != nil {
		return nil, storeErr(err)
	}
	if tweet == nil {
		return nil, fmt.Errorf("tweet %s: %w", tweetUUID, models.ErrNotFound)
	}
	if tweet.OwnerID != callerUUID {
		return nil, fmt.Errorf("tweet %s is not owned by caller: %w", tweetUUID, models.ErrUnauthorized)
	}
	return tweet, nil
}
