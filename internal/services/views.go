package services

import (
	"time"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream/internal/models"
)

// OwnerInfo is the public projection of a user nested inside a view. Password
// and email never appear here.
type OwnerInfo struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
	Avatar   string    `json:"avatar"`
}

func ownerInfo(user *models.User) *OwnerInfo {
	if user == nil || user.ID == uuid.Nil {
		return nil
	}
	return &OwnerInfo{
		ID:       user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Avatar:   user.Avatar,
	}
}

// ChannelProfile is the public channel page: allow-listed profile fields plus
// derived counts and the viewer-relative subscription flag.
type ChannelProfile struct {
	ID                 uuid.UUID `json:"id"`
	Username           string    `json:"username"`
	FullName           string    `json:"full_name"`
	Avatar             string    `json:"avatar"`
	CoverImage         string    `json:"cover_image"`
	SubscribersCount   int64     `json:"subscribers_count"`
	SubscribedToCount  int64     `json:"subscribed_to_count"`
	IsViewerSubscribed bool      `json:"is_viewer_subscribed"`
}

type ChannelStats struct {
	ChannelID        uuid.UUID `json:"channel_id"`
	TotalViews       int64     `json:"total_views"`
	TotalLikes       int64     `json:"total_likes"`
	TotalVideos      int64     `json:"total_videos"`
	TotalSubscribers int64     `json:"total_subscribers"`
}

type CommentView struct {
	ID              uuid.UUID  `json:"id"`
	Content         string     `json:"content"`
	CreatedAt       time.Time  `json:"created_at"`
	Owner           *OwnerInfo `json:"owner,omitempty"`
	LikesCount      int64      `json:"likes_count"`
	IsLikedByViewer bool       `json:"is_liked_by_viewer"`
}

type VideoDetail struct {
	ID              uuid.UUID      `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	VideoURL        string         `json:"video_url"`
	Thumbnail       string         `json:"thumbnail"`
	Duration        float64        `json:"duration"`
	Views           int64          `json:"views"`
	IsPublished     bool           `json:"is_published"`
	CreatedAt       time.Time      `json:"created_at"`
	Owner           *OwnerInfo     `json:"owner,omitempty"`
	LikesCount      int64          `json:"likes_count"`
	CommentsCount   int64          `json:"comments_count"`
	IsLikedByViewer bool           `json:"is_liked_by_viewer"`
	Comments        []*CommentView `json:"comments"`
}

// VideoSummary is the feed / listing projection of a video.
type VideoSummary struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Thumbnail   string     `json:"thumbnail"`
	Duration    float64    `json:"duration"`
	Views       int64      `json:"views"`
	CreatedAt   time.Time  `json:"created_at"`
	Owner       *OwnerInfo `json:"owner,omitempty"`
	LikesCount  int64      `json:"likes_count"`
}

type TweetView struct {
	ID              uuid.UUID  `json:"id"`
	Content         string     `json:"content"`
	CreatedAt       time.Time  `json:"created_at"`
	Owner           *OwnerInfo `json:"owner,omitempty"`
	LikesCount      int64      `json:"likes_count"`
	IsLikedByViewer bool       `json:"is_liked_by_viewer"`
}

type PlaylistView struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	Owner       *OwnerInfo      `json:"owner,omitempty"`
	VideoCount  int             `json:"video_count"`
	Videos      []*VideoSummary `json:"videos,omitempty"`
}
