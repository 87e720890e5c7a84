package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream/internal/config"
	"github.com/vidstream/vidstream/internal/models"
	"github.com/vidstream/vidstream/pkg/logger"
	"github.com/vidstream/vidstream/pkg/queue"
)

// feedSortKeys is the allow-list of sortable columns.
var feedSortKeys = map[string]bool{
	"created_at": true,
	"views":      true,
	"duration":   true,
	"title":      true,
}

// VideoService composes video view models: the single-video detail view and
// the filtered, sorted, windowed feed. Each view is a join pipeline over
// independently-owned collections; derived counts come from edge cardinality
// at read time, never from stored counters.
type VideoService struct {
	videoStore   VideoStore
	userStore    UserStore
	likeStore    LikeStore
	commentStore CommentStore
	history      *HistoryService
	cache        ViewCache
	producer     EventPublisher
	config       *config.FeedConfig
	logger       *logger.Logger
}

func NewVideoService(
	videoStore VideoStore,
	userStore UserStore,
	likeStore LikeStore,
	commentStore CommentStore,
	history *HistoryService,
	cache ViewCache,
	producer EventPublisher,
	config *config.FeedConfig,
	logger *logger.Logger,
) *VideoService {
	return &VideoService{
		videoStore:   videoStore,
		userStore:    userStore,
		likeStore:    likeStore,
		commentStore: commentStore,
		history:      history,
		cache:        cache,
		producer:     producer,
		config:       config,
		logger:       logger,
	}
}

type PublishVideoRequest struct {
	Title       string  `json:"title" binding:"required,min=1,max=200"`
	Description string  `json:"description" binding:"max=5000"`
	VideoURL    string  `json:"video_url" binding:"required,url"`
	Thumbnail   string  `json:"thumbnail"`
	Duration    float64 `json:"duration" binding:"gte=0"`
}

type UpdateVideoRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"max=5000"`
	Thumbnail   string `json:"thumbnail"`
}

// FeedQuery carries the feed inputs. Zero page/page size fall back to
// defaults; negative values are rejected.
type FeedQuery struct {
	Query    string
	OwnerID  string
	SortBy   string
	SortDir  string
	Page     int
	PageSize int
}

// GetVideoDetail builds the full detail view for one video. When a viewer is
// known their watch history is updated, and every successful fetch bumps the
// views counter by one: view semantics, not unique-viewer semantics.
func (s *VideoService) GetVideoDetail(ctx context.Context, videoID, viewerID string) (*VideoDetail, error) {
	videoUUID, err := uuid.Parse(videoID)
	if err != nil {
		return nil, fmt.Errorf("invalid video ID %q: %w", videoID, models.ErrInvalidArgument)
	}

	var viewerUUID *uuid.UUID
	if viewerID != "" {
		parsed, err := uuid.Parse(viewerID)
		if err != nil {
			return nil, fmt.Errorf("invalid viewer ID %q: %w", viewerID, models.ErrInvalidArgument)
		}
		viewerUUID = &parsed
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.StorageTimeout)
	defer cancel()

	video, err := s.videoStore.GetByID(ctx, videoUUID)
	if err != nil {
		return nil, storeErr(err)
	}
	if video == nil {
		return nil, fmt.Errorf("video %s: %w", videoUUID, models.ErrNotFound)
	}

	// An unpublished video is visible to its owner only; everyone else gets
	// the same answer as for a video that does not exist.
	if !video.IsPublished && (viewerUUID == nil || *viewerUUID != video.OwnerID) {
		return nil, fmt.Errorf("video %s: %w", videoUUID, models.ErrNotFound)
	}

	detail := &VideoDetail{
		ID:          video.ID,
		Title:       video.Title,
		Description: video.Description,
		VideoURL:    video.VideoURL,
		Thumbnail:   video.Thumbnail,
		Duration:    video.Duration,
		Views:       video.Views,
		IsPublished: video.IsPublished,
		CreatedAt:   video.CreatedAt,
	}

	// Owner join degrades to a nil sub-field if the owner row is gone.
	owner, err := s.userStore.GetByID(ctx, video.OwnerID)
	if err != nil {
		return nil, storeErr(err)
	}
	detail.Owner = ownerInfo(owner)

	detail.LikesCount, err = s.likeStore.CountBySubject(ctx, models.SubjectVideo, video.ID)
	if err != nil {
		return nil, storeErr(err)
	}

	if viewerUUID != nil {
		detail.IsLikedByViewer, err = s.likeStore.IsLiked(ctx, *viewerUUID, models.SubjectVideo, video.ID)
		if err != nil {
			return nil, storeErr(err)
		}
	}

	comments, err := s.commentStore.ListByVideo(ctx, video.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	detail.CommentsCount = int64(len(comments))
	detail.Comments = make([]*CommentView, 0, len(comments))
	for _, comment := range comments {
		view, err := s.composeComment(ctx, comment, viewerUUID)
		if err != nil {
			return nil, err
		}
		detail.Comments = append(detail.Comments, view)
	}

	// Side effects, each individually atomic, not atomic with each other.
	if viewerUUID != nil {
		if err := s.history.Record(ctx, *viewerUUID, video.ID); err != nil {
			s.logger.WithError(err).Error("Failed to record watch history")
		}
	}
	if err := s.videoStore.IncrementViews(ctx, video.ID); err != nil {
		s.logger.WithError(err).Error("Failed to increment views")
	} else {
		detail.Views = video.Views + 1
	}

	s.publishViewed(ctx, video, viewerID)

	return detail, nil
}

// ListVideos builds the feed: filter, compose, sort in the store, then take a
// pure page window over the candidate set.
func (s *VideoService) ListVideos(ctx context.Context, q FeedQuery, viewerID string) (*Page[*VideoSummary], error) {
	if q.Page < 0 || q.PageSize < 0 {
		return nil, fmt.Errorf("negative page bounds: %w", models.ErrInvalidArgument)
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = s.config.DefaultPageSize
	}
	if q.PageSize > s.config.MaxPageSize {
		q.PageSize = s.config.MaxPageSize
	}

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	if !feedSortKeys[sortBy] {
		return nil, fmt.Errorf("unknown sort key %q: %w", sortBy, models.ErrInvalidArgument)
	}
	ascending := q.SortDir == "asc"

	filter := models.VideoFilter{
		Query:         q.Query,
		PublishedOnly: true,
		SortBy:        sortBy,
		Ascending:     ascending,
	}
	if q.OwnerID != "" {
		ownerUUID, err := uuid.Parse(q.OwnerID)
		if err != nil {
			return nil, fmt.Errorf("invalid owner ID %q: %w", q.OwnerID, models.ErrInvalidArgument)
		}
		filter.OwnerID = &ownerUUID
		// Owners browsing their own uploads see unpublished ones too.
		if q.OwnerID == viewerID {
			filter.PublishedOnly = false
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.StorageTimeout)
	defer cancel()

	cacheKey := fmt.Sprintf("feed:%s:%s:%s:%v:%d:%d:%s",
		q.Query, q.OwnerID, sortBy, ascending, q.Page, q.PageSize, viewerID)
	var cached Page[*VideoSummary]
	if err := s.cache.GetJSON(ctx, cacheKey, &cached); err == nil && cached.PageSize > 0 {
		return &cached, nil
	}

	videos, err := s.videoStore.List(ctx, filter)
	if err != nil {
		return nil, storeErr(err)
	}

	summaries := make([]*VideoSummary, 0, len(videos))
	for _, video := range videos {
		summary, err := s.composeSummary(ctx, video)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}

	page := NewPage(summaries, q.Page, q.PageSize)

	if err := s.cache.SetJSON(ctx, cacheKey, page, s.config.CacheTTL); err != nil {
		s.logger.WithError(err).Error("Failed to cache feed page")
	}

	return &page, nil
}

func (s *VideoService) PublishVideo(ctx context.Context, ownerID string, req *PublishVideoRequest) (*models.Video, error) {
	ownerUUID, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, fmt.Errorf("invalid owner ID %q: %w", ownerID, models.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.StorageTimeout)
	defer cancel()

	owner, err := s.userStore.GetByID(ctx, ownerUUID)
	if err != nil {
		return nil, storeErr(err)
	}
	if owner == nil {
		return nil, fmt.Errorf("user %s: %w", ownerUUID, models.ErrNotFound)
	}

	video := &models.Video{
		OwnerID:     ownerUUID,
		Title:       req.Title,
		Description: req.Description,
		VideoURL:    req.VideoURL,
		Thumbnail:   req.Thumbnail,
		Duration:    req.Duration,
		IsPublished: true,
		CreatedAt:   time.Now(),
	}
	if err := s.videoStore.Create(ctx, video); err != nil {
		return nil, storeErr(err)
	}

	s.publishEvent(ctx, ownerID, queue.EventVideoPublished, queue.VideoEventData{
		VideoID: video.ID.String(),
		OwnerID: ownerID,
		Title:   video.Title,
	})

	s.logger.WithFields(map[string]interface{}{
		"video_id": video.ID,
		"owner_id": ownerID,
	}).Info("Video published")

	return video, nil
}

func (s *VideoService) UpdateVideo(ctx context.Context, callerID, videoID string, req *UpdateVideoRequest) (*models.Video, error) {
	video, err := s.requireOwnedVideo(ctx, callerID, videoID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.StorageTimeout)
	defer cancel()

	video.Title = req.Title
	video.Description = req.Description
	if req.Thumbnail != "" {
		video.Thumbnail = req.Thumbnail
	}
	if err := s.videoStore.Update(ctx, video); err != nil {
		return nil, storeErr(err)
	}
	return video, nil
}

func (s *VideoService) DeleteVideo(ctx context.Context, callerID, videoID string) error {
	video, err := s.requireOwnedVideo(ctx, callerID, videoID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.StorageTimeout)
	defer cancel()

	if err := s.videoStore.Delete(ctx, video.ID); err != nil {
		return storeErr(err)
	}

	s.logger.WithFields(map[string]interface{}{
		"video_id": video.ID,
		"owner_id": callerID,
	}).Info("Video deleted")

	return nil
}

func (s *VideoService) TogglePublishStatus(ctx context.Context, callerID, videoID string) (*models.Video, error) {
	video, err := s.requireOwnedVideo(ctx, callerID, videoID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.StorageTimeout)
	defer cancel()

	video.IsPublished = !video.IsPublished
	if err := s.videoStore.Update(ctx, video); err != nil {
		return nil, storeErr(err)
	}
	return video, nil
}

func (s *VideoService) requireOwnedVideo(ctx context.Context, callerID, videoID string) (*models.Video, error) {
	callerUUID, err := uuid.Parse(callerID)
	if err != nil {
		return nil, fmt.Errorf("invalid caller ID %q: %w", callerID, models.ErrInvalidArgument)
	}
	videoUUID, err := uuid.Parse(videoID)
	if err != nil {
		return nil, fmt.Errorf("invalid video ID %q: %w", videoID, models.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.StorageTimeout)
	defer cancel()

	video, err := s.videoStore.GetByID(ctx, videoUUID)
	if err != nil {
		return nil, storeErr(err)
	}
	if video == nil {
		return nil, fmt.Errorf("video %s: %w", videoUUID, models.ErrNotFound)
	}
	if video.OwnerID != callerUUID {
		return nil, fmt.Errorf("video %s is not owned by caller: %w", videoUUID, models.ErrUnauthorized)
	}
	return video, nil
}

func (s *VideoService) composeSummary(ctx context.Context, video *models.Video) (*VideoSummary, error) {
	likes, err := s.likeStore.CountBySubject(ctx, models.SubjectVideo, video.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	owner, err := s.userStore.GetByID(ctx, video.OwnerID)
	if err != nil {
		return nil, storeErr(err)
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

func (s *VideoService) composeComment(ctx context.Context, comment *models.Comment, viewerUUID *uuid.UUID) (*CommentView, error) {
	view := &CommentView{
		ID:        comment.ID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}

	owner, err := s.userStore.GetByID(ctx, comment.OwnerID)
	if err != nil {
		return nil, storeErr(err)
	}
	view.Owner = ownerInfo(owner)

	view.LikesCount, err = s.likeStore.CountBySubject(ctx, models.SubjectComment, comment.ID)
	if err != nil {
		return nil, storeErr(err)
	}

	if viewerUUID != nil {
		view.IsLikedByViewer, err = s.likeStore.IsLiked(ctx, *viewerUUID, models.SubjectComment, comment.ID)
		if err != nil {
			return nil, storeErr(err)
		}
	}
	return view, nil
}

func (s *VideoService) publishViewed(ctx context.Context, video *models.Video, viewerID string) {
	s.publishEvent(ctx, video.ID.String(), queue.EventVideoViewed, queue.ViewEventData{
		VideoID:  video.ID.String(),
		ViewerID: viewerID,
	})
}

func (s *VideoService) publishEvent(ctx context.Context, key string, eventType queue.EventType, payload interface{}) {
	event, err := queue.NewEvent(eventType, payload)
	if err != nil {
		s.logger.WithError(err).Error("Failed to build video event")
		return
	}
	if err := s.producer.Publish(ctx, key, event); err != nil {
		s.logger.WithError(err).Error("Failed to publish video event")
	}
}
