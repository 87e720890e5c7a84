package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubjectType names the kind of entity a Like applies to. A like carries
// exactly one subject, encoded as (subject_type, subject_id) rather than three
// nullable foreign keys.
type SubjectType string

const (
	SubjectVideo   SubjectType = "video"
	SubjectComment SubjectType = "comment"
	SubjectTweet   SubjectType = "tweet"
)

func (t SubjectType) Valid() bool {
	switch t {
	case SubjectVideo, SubjectComment, SubjectTweet:
		return true
	}
	return false
}

type Video struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID     uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	Title       string         `json:"title" gorm:"not null"`
	Description string         `json:"description" gorm:"type:text"`
	VideoURL    string         `json:"video_url" gorm:"not null"`
	Thumbnail   string         `json:"thumbnail"`
	Duration    float64        `json:"duration"`
	Views       int64          `json:"views" gorm:"default:0"`
	IsPublished bool           `json:"is_published" gorm:"default:false"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Owner User `json:"owner" gorm:"foreignKey:OwnerID"`
}

type Comment struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	VideoID   uuid.UUID      `json:"video_id" gorm:"type:uuid;not null;index"`
	OwnerID   uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null"`
	Content   string         `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Owner User  `json:"owner" gorm:"foreignKey:OwnerID"`
	Video Video `json:"-" gorm:"foreignKey:VideoID"`
}

type Tweet struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID   uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	Content   string         `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	Owner User `json:"owner" gorm:"foreignKey:OwnerID"`
}

// Like is the actor->subject edge. Like Subscription, the composite unique
// index is the real uniqueness guarantee; a duplicate insert fails fast so a
// racing toggle can treat it as "already liked".
type Like struct {
	ID          uuid.UUID   `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID      uuid.UUID   `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_like_edge"`
	SubjectType SubjectType `json:"subject_type" gorm:"not null;uniqueIndex:idx_like_edge"`
	SubjectID   uuid.UUID   `json:"subject_id" gorm:"type:uuid;not null;uniqueIndex:idx_like_edge"`
	CreatedAt   time.Time   `json:"created_at"`

	User User `json:"user" gorm:"foreignKey:UserID"`
}

type Playlist struct {
	ID          uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OwnerID     uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	Name        string         `json:"name" gorm:"not null"`
	Description string         `json:"description" gorm:"type:text"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Owner  User            `json:"owner" gorm:"foreignKey:OwnerID"`
	Videos []PlaylistVideo `json:"videos" gorm:"foreignKey:PlaylistID"`
}

// PlaylistVideo keeps playlist membership ordered by Position. There is no
// unique index here: re-adding the same video is an explicit caller choice.
type PlaylistVideo struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	PlaylistID uuid.UUID `json:"playlist_id" gorm:"type:uuid;not null;index"`
	VideoID    uuid.UUID `json:"video_id" gorm:"type:uuid;not null"`
	Position   int       `json:"position" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`

	Video Video `json:"video" gorm:"foreignKey:VideoID"`
}

// VideoFilter narrows and orders the video candidate set. Filtering and
// sorting are pushed down to the store; windowing happens afterwards.
type VideoFilter struct {
	Query         string
	OwnerID       *uuid.UUID
	PublishedOnly bool
	SortBy        string
	Ascending     bool
}

func (Video) TableName() string {
	return "videos"
}

func (Comment) TableName() string {
	return "comments"
}

func (Tweet) TableName() string {
	return "tweets"
}

func (Like) TableName() string {
	return "likes"
}

func (Playlist) TableName() string {
	return "playlists"
}

func (PlaylistVideo) TableName() string {
	return "playlist_videos"
}
