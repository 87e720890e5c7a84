package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Username   string         `json:"username" gorm:"uniqueIndex;not null"`
	Email      string         `json:"email" gorm:"uniqueIndex;not null"`
	Password   string         `json:"-" gorm:"not null"`
	FullName   string         `json:"full_name"`
	Avatar     string         `json:"avatar"`
	CoverImage string         `json:"cover_image"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// Subscription is the subscriber->channel edge. The composite unique index
// guarantees at most one edge per pair; the service-level check-then-act is
// only a fast path.
type Subscription struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	SubscriberID uuid.UUID `json:"subscriber_id" gorm:"type:uuid;not null;uniqueIndex:idx_subscriber_channel"`
	ChannelID    uuid.UUID `json:"channel_id" gorm:"type:uuid;not null;uniqueIndex:idx_subscriber_channel"`
	CreatedAt    time.Time `json:"created_at"`

	Subscriber User `json:"subscriber" gorm:"foreignKey:SubscriberID"`
	Channel    User `json:"channel" gorm:"foreignKey:ChannelID"`
}

// WatchHistoryEntry records one video in a user's watch history. Insertion
// order is viewing order; the unique index gives the history set semantics.
type WatchHistoryEntry struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_video_history"`
	VideoID   uuid.UUID `json:"video_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_video_history"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	User  User  `json:"-" gorm:"foreignKey:UserID"`
	Video Video `json:"video" gorm:"foreignKey:VideoID"`
}

func (User) TableName() string {
	return "users"
}

func (Subscription) TableName() string {
	return "subscriptions"
}

func (WatchHistoryEntry) TableName() string {
	return "watch_history"
}
