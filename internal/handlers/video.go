package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vidstream/vidstream/internal/middleware"
	"github.com/vidstream/vidstream/internal/services"
)

type VideoHandler struct {
	videoService    *services.VideoService
	channelService  *services.ChannelService
	trendingService *services.TrendingService
}

func NewVideoHandler(videoService *services.VideoService, channelService *services.ChannelService, trendingService *services.TrendingService) *VideoHandler {
	return &VideoHandler{
		videoService:    videoService,
		channelService:  channelService,
		trendingService: trendingService,
	}
}

// ListVideos serves the main feed. All filters are optional query params;
// anonymous viewers only see published videos.
func (h *VideoHandler) ListVideos(c *gin.Context) {
	q := services.FeedQuery{
		Query:   c.Query("query"),
		OwnerID: c.Query("owner_id"),
		SortBy:  c.Query("sort_by"),
		SortDir: c.Query("sort_dir"),
	}

	var err error
	if raw := c.Query("page"); raw != "" {
		if q.Page, err = strconv.Atoi(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page parameter"})
			return
		}
	}
	if raw := c.Query("page_size"); raw != "" {
		if q.PageSize, err = strconv.Atoi(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page_size parameter"})
			return
		}
	}

	page, err := h.videoService.ListVideos(c.Request.Context(), q, middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *VideoHandler) GetVideo(c *gin.Context) {
	detail, err := h.videoService.GetVideoDetail(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"video": detail})
}

func (h *VideoHandler) PublishVideo(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req services.PublishVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	video, err := h.videoService.PublishVideo(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Video published successfully",
		"video":   video,
	})
}

func (h *VideoHandler) UpdateVideo(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req services.UpdateVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	video, err := h.videoService.UpdateVideo(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Video updated successfully",
		"video":   video,
	})
}

func (h *VideoHandler) DeleteVideo(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.videoService.DeleteVideo(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Video deleted successfully"})
}

func (h *VideoHandler) TogglePublishStatus(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	video, err := h.videoService.TogglePublishStatus(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Publish status toggled",
		"is_published": video.IsPublished,
	})
}

// GetChannelStats is dashboard-only: the channel owner sees their own
// aggregate numbers, everyone else gets 401.
func (h *VideoHandler) GetChannelStats(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	stats, err := h.channelService.GetChannelStats(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (h *VideoHandler) GetChannelVideos(c *gin.Context) {
	videos, err := h.channelService.GetChannelVideos(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

func (h *VideoHandler) GetTrending(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
			return
		}
		limit = parsed
	}

	videos, err := h.trendingService.GetTrending(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trending": videos})
}
