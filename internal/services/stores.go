// Package services holds the engagement and view-composition logic. Services
// talk to the backing store through the narrow interfaces below, satisfied by
// the gorm repositories in production and by in-memory fakes in tests.
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream/internal/models"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

type VideoStore interface {
	Create(ctx context.Context, video *models.Video) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Video, error)
	List(ctx context.Context, filter models.VideoFilter) ([]*models.Video, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, publishedOnly bool) ([]*models.Video, error)
	Update(ctx context.Context, video *models.Video) error
	Delete(ctx context.Context, id uuid.UUID) error
	IncrementViews(ctx context.Context, id uuid.UUID) error
}

type CommentStore interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ListByVideo(ctx context.Context, videoID uuid.UUID) ([]*models.Comment, error)
	CountByVideo(ctx context.Context, videoID uuid.UUID) (int64, error)
	Update(ctx context.Context, comment *models.Comment) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type TweetStore interface {
	Create(ctx context.Context, tweet *models.Tweet) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Tweet, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Tweet, error)
	Update(ctx context.Context, tweet *models.Tweet) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type LikeStore interface {
	Create(ctx context.Context, like *models.Like) error
	Delete(ctx context.Context, userID uuid.UUID, subject models.SubjectType, subjectID uuid.UUID) error
	Get(ctx context.Context, userID uuid.UUID, subject models.SubjectType, subjectID uuid.UUID) (*models.Like, error)
	CountBySubject(ctx context.Context, subject models.SubjectType, subjectID uuid.UUID) (int64, error)
	IsLiked(ctx context.Context, userID uuid.UUID, subject models.SubjectType, subjectID uuid.UUID) (bool, error)
	ListVideoLikesByUser(ctx context.Context, userID uuid.UUID) ([]*models.Like, error)
}

type SubscriptionStore interface {
	Create(ctx context.Context, sub *models.Subscription) error
	Delete(ctx context.Context, subscriberID, channelID uuid.UUID) error
	Get(ctx context.Context, subscriberID, channelID uuid.UUID) (*models.Subscription, error)
	CountByChannel(ctx context.Context, channelID uuid.UUID) (int64, error)
	CountBySubscriber(ctx context.Context, subscriberID uuid.UUID) (int64, error)
	IsSubscribed(ctx context.Context, subscriberID, channelID uuid.UUID) (bool, error)
	ListSubscribers(ctx context.Context, channelID uuid.UUID) ([]*models.User, error)
	ListChannels(ctx context.Context, subscriberID uuid.UUID) ([]*models.User, error)
}

type HistoryStore interface {
	Contains(ctx context.Context, userID, videoID uuid.UUID) (bool, error)
	Append(ctx context.Context, entry *models.WatchHistoryEntry) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.WatchHistoryEntry, error)
}

type PlaylistStore interface {
	Create(ctx context.Context, playlist *models.Playlist) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Playlist, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Playlist, error)
	AddVideo(ctx context.Context, entry *models.PlaylistVideo) error
	RemoveVideo(ctx context.Context, playlistID, videoID uuid.UUID) error
	NextPosition(ctx context.Context, playlistID uuid.UUID) (int, error)
	Update(ctx context.Context, playlist *models.Playlist) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ViewCache caches composed feed pages; backed by redis in production.
type ViewCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// EventPublisher emits engagement events; backed by kafka in production.
// Publish failures are logged and never fail the calling operation.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}
