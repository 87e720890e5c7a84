package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vidstream/vidstream/internal/models"
	"github.com/vidstream/vidstream/pkg/logger"
	"github.com/vidstream/vidstream/pkg/queue"
)

type CommentService struct {
	videoStore   VideoStore
	commentStore CommentStore
	userStore    UserStore
	likeStore    LikeStore
	producer     EventPublisher
	timeout      time.Duration
	logger       *logger.Logger
}

func NewCommentService(videoStore VideoStore, commentStore CommentStore, userStore UserStore, likeStore LikeStore, producer EventPublisher, timeout time.Duration, logger *logger.Logger) *CommentService {
	return &CommentService{
		videoStore:   videoStore,
		commentStore: commentStore,
		userStore:    userStore,
		likeStore:    likeStore,
		producer:     producer,
		timeout:      timeout,
		logger:       logger,
	}
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,min=1,max=1000"`
}

func (s *CommentService) CreateComment(ctx context.Context, userID, videoID string, req *CreateCommentRequest) (*models.Comment, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID %q: %w", userID, models.ErrInvalidArgument)
	}
	videoUUID, err := uuid.Parse(videoID)
	if err != nil {
		return nil, fmt.Errorf("invalid video ID %q: %w", videoID, models.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	video, err := s.videoStore.GetByID(ctx, videoUUID)
	if err != nil {
		return nil, storeErr(err)
	}
	if video == nil {
		return nil, fmt.Errorf("video %s: %w", videoUUID, models.ErrNotFound)
	}

	comment := &models.Comment{
		VideoID:   videoUUID,
		OwnerID:   userUUID,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}
	if err := s.commentStore.Create(ctx, comment); err != nil {
		return nil, storeErr(err)
	}

	event, err := queue.NewEvent(queue.EventCommentCreated, queue.CommentEventData{
		CommentID: comment.ID.String(),
		UserID:    userID,
		VideoID:   videoID,
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to build comment created event")
	} else if err := s.producer.Publish(ctx, userID, event); err != nil {
		s.logger.WithError(err).Error("Failed to publish comment created event")
	}

	s.logger.WithFields(map[string]interface{}{
		"comment_id": comment.ID,
		"video_id":   videoID,
		"user_id":    userID,
	}).Info("Comment created")

	return comment, nil
}

// GetVideoComments returns one page of a video's comments, newest first, with
// owner and like joins and the viewer-relative like flag.
func (s *CommentService) GetVideoComments(ctx context.Context, videoID, viewerID string, page, pageSize int) (*Page[*CommentView], error) {
	videoUUID, err := uuid.Parse(videoID)
	if err != nil {
		return nil, fmt.Errorf("invalid video ID %q: %w", videoID, models.ErrInvalidArgument)
	}
	if page < 1 || pageSize < 1 {
		return nil, fmt.Errorf("page and page size must be positive: %w", models.ErrInvalidArgument)
	}

	var viewerUUID *uuid.UUID
	if viewerID != "" {
		parsed, err := uuid.Parse(viewerID)
		if err != nil {
			return nil, fmt.Errorf("invalid viewer ID %q: %w", viewerID, models.ErrInvalidArgument)
		}
		viewerUUID = &parsed
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	video, err := s.videoStore.GetByID(ctx, videoUUID)
	if err != nil {
		return nil, storeErr(err)
	}
	if video == nil {
		return nil, fmt.Errorf("video %s: %w", videoUUID, models.ErrNotFound)
	}

	comments, err := s.commentStore.ListByVideo(ctx, videoUUID)
	if err != nil {
		return nil, storeErr(err)
	}

	views := make([]*CommentView, 0, len(comments))
	for _, comment := range comments {
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
		views = append(views, view)
	}

	result := NewPage(views, page, pageSize)
	return &result, nil
}

func (s *CommentService) UpdateComment(ctx context.Context, callerID, commentID, content string) (*models.Comment, error) {
	comment, err := s.requireOwnedComment(ctx, callerID, commentID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	comment.Content = content
	if err := s.commentStore.Update(ctx, comment); err != nil {
		return nil, storeErr(err)
	}
	return comment, nil
}

func (s *CommentService) DeleteComment(ctx context.Context, callerID, commentID string) error {
	comment, err := s.requireOwnedComment(ctx, callerID, commentID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.commentStore.Delete(ctx, comment.ID); err != nil {
		return storeErr(err)
	}
	return nil
}

func (s *CommentService) requireOwnedComment(ctx context.Context, callerID, commentID string) (*models.Comment, error) {
	callerUUID, err := uuid.Parse(callerID)
	if err != nil {
		return nil, fmt.Errorf("invalid caller ID %q: %w", callerID, models.ErrInvalidArgument)
	}
	commentUUID, err := uuid.Parse(commentID)
	if err != nil {
		return nil, fmt.Errorf("invalid comment ID %q: %w", commentID, models.ErrInvalidArgument)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	comment, err := s.commentStore.GetByID(ctx, commentUUID)
	if err != nil {
		return nil, storeErr(err)
	}
	if comment == nil {
		return nil, fmt.Errorf("comment %s: %w", commentUUID, models.ErrNotFound)
	}
	if comment.OwnerID != callerUUID {
		return nil, fmt.Errorf("comment %s is not owned by caller: %w", commentUUID, models.ErrUnauthorized)
	}
	return comment, nil
}
