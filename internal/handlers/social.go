package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vidstream/vidstream/internal/middleware"
	"github.com/vidstream/vidstream/internal/services"
)

// SocialHandler groups the engagement surface: like and subscription
// toggles, comments, tweets and playlists.
type SocialHandler struct {
	engagementService *services.EngagementService
	channelService    *services.ChannelService
	commentService    *services.CommentService
	tweetService      *services.TweetService
	playlistService   *services.PlaylistService
}

func NewSocialHandler(
	engagementService *services.EngagementService,
	channelService *services.ChannelService,
	commentService *services.CommentService,
	tweetService *services.TweetService,
	playlistService *services.PlaylistService,
) *SocialHandler {
	return &SocialHandler{
		engagementService: engagementService,
		channelService:    channelService,
		commentService:    commentService,
		tweetService:      tweetService,
		playlistService:   playlistService,
	}
}

func (h *SocialHandler) toggle(c *gin.Context, kind services.TargetKind) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	active, err := h.engagementService.Toggle(c.Request.Context(), userID, kind, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"active": active})
}

func (h *SocialHandler) ToggleVideoLike(c *gin.Context)   { h.toggle(c, services.TargetVideo) }
func (h *SocialHandler) ToggleCommentLike(c *gin.Context) { h.toggle(c, services.TargetComment) }
func (h *SocialHandler) ToggleTweetLike(c *gin.Context)   { h.toggle(c, services.TargetTweet) }
func (h *SocialHandler) ToggleSubscription(c *gin.Context) {
	h.toggle(c, services.TargetChannel)
}

func (h *SocialHandler) GetLikedVideos(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	videos, err := h.engagementService.GetLikedVideos(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

func (h *SocialHandler) GetSubscribers(c *gin.Context) {
	subscribers, err := h.channelService.GetSubscribers(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subscribers": subscribers})
}

func (h *SocialHandler) GetSubscribedChannels(c *gin.Context) {
	channels, err := h.channelService.GetSubscribedChannels(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

func (h *SocialHandler) CreateComment(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req services.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment added successfully",
		"comment": comment,
	})
}

func (h *SocialHandler) GetVideoComments(c *gin.Context) {
	page, pageSize := 1, 10
	var err error
	if raw := c.Query("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page parameter"})
			return
		}
	}
	if raw := c.Query("page_size"); raw != "" {
		if pageSize, err = strconv.Atoi(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page_size parameter"})
			return
		}
	}

	comments, err := h.commentService.GetVideoComments(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

func (h *SocialHandler) UpdateComment(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.UpdateComment(c.Request.Context(), userID, c.Param("id"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Comment updated successfully",
		"comment": comment,
	})
}

func (h *SocialHandler) DeleteComment(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.commentService.DeleteComment(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}

func (h *SocialHandler) CreateTweet(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req services.CreateTweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tweet, err := h.tweetService.CreateTweet(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Tweet created successfully",
		"tweet":   tweet,
	})
}

func (h *SocialHandler) GetUserTweets(c *gin.Context) {
	tweets, err := h.tweetService.GetUserTweets(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tweets": tweets})
}

func (h *SocialHandler) UpdateTweet(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tweet, err := h.tweetService.UpdateTweet(c.Request.Context(), userID, c.Param("id"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tweet updated successfully",
		"tweet":   tweet,
	})
}

func (h *SocialHandler) DeleteTweet(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.tweetService.DeleteTweet(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tweet deleted successfully"})
}

func (h *SocialHandler) CreatePlaylist(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req services.CreatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	playlist, err := h.playlistService.CreatePlaylist(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Playlist created successfully",
		"playlist": playlist,
	})
}

func (h *SocialHandler) GetUserPlaylists(c *gin.Context) {
	playlists, err := h.playlistService.GetUserPlaylists(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"playlists": playlists})
}

func (h *SocialHandler) GetPlaylist(c *gin.Context) {
	playlist, err := h.playlistService.GetPlaylist(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"playlist": playlist})
}

func (h *SocialHandler) AddVideoToPlaylist(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.playlistService.AddVideo(c.Request.Context(), userID, c.Param("id"), c.Param("videoId")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Video added to playlist"})
}

func (h *SocialHandler) RemoveVideoFromPlaylist(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.playlistService.RemoveVideo(c.Request.Context(), userID, c.Param("id"), c.Param("videoId")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Video removed from playlist"})
}

func (h *SocialHandler) UpdatePlaylist(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req services.CreatePlaylistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	playlist, err := h.playlistService.UpdatePlaylist(c.Request.Context(), userID, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Playlist updated successfully",
		"playlist": playlist,
	})
}

func (h *SocialHandler) DeletePlaylist(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.playlistService.DeletePlaylist(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Playlist deleted successfully"})
}
