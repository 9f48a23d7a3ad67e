package handlers

import (
	"errors"
	"net/http"
	"stagesite/logger"
	"stagesite/metrics"
	"stagesite/models"
	"stagesite/platform"
	"stagesite/utils"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type VideoResponse struct {
	ID           uint64        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Author       string        `json:"author"`
	Tags         []string      `json:"tags"`
	Platform     platform.Kind `json:"platform"`
	VideoID      string        `json:"video_id"`
	EmbedURL     string        `json:"embed_url"`
	WatchURL     string        `json:"watch_url"`
	ThumbnailURL string        `json:"thumbnail_url"`
	Duration     int           `json:"duration"`
	ViewCount    int64         `json:"view_count"`
	LikeCount    int64         `json:"like_count"`
	IsFeatured   bool          `json:"is_featured"`
	UploadedAt   time.Time     `json:"uploaded_at"`
}

type CounterResponse struct {
	Success   bool   `json:"success"`
	ViewCount *int64 `json:"view_count,omitempty"`
	LikeCount *int64 `json:"like_count,omitempty"`
}

func NewVideoResponse(v *models.Video) VideoResponse {
	return VideoResponse{
		ID:           v.ID,
		Title:        v.Title,
		Description:  v.Description,
		Author:       v.Author,
		Tags:         v.TagList(),
		Platform:     v.Platform,
		VideoID:      v.VideoID,
		EmbedURL:     v.EmbedURL(),
		WatchURL:     v.WatchURL(),
		ThumbnailURL: v.Thumbnail(),
		Duration:     v.Duration,
		ViewCount:    v.ViewCount,
		LikeCount:    v.LikeCount,
		IsFeatured:   v.IsFeatured,
		UploadedAt:   v.UploadedAt,
	}
}

// VideoGet does not count as a view
func VideoGet(c *gin.Context) {
	video, err := models.VideoByID(utils.StringToUint64(c.Param("id")))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return
	}
	if err != nil {
		logger.Get().Error().Err(err).Msg("cannot load video")
		c.JSON(http.StatusInternalServerError, DBErrorResponse)
		return
	}
	c.JSON(http.StatusOK, NewVideoResponse(&video))
}

func VideoView(c *gin.Context) {
	count, ok := increment(c, "view", models.VideoIncrementViews)
	if ok {
		c.JSON(http.StatusOK, CounterResponse{Success: true, ViewCount: &count})
	}
}

func VideoLike(c *gin.Context) {
	count, ok := increment(c, "like", models.VideoIncrementLikes)
	if ok {
		c.JSON(http.StatusOK, CounterResponse{Success: true, LikeCount: &count})
	}
}

func increment(c *gin.Context, event string, inc func(uint64) (int64, error)) (int64, bool) {
	count, err := inc(utils.StringToUint64(c.Param("id")))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, NotFoundResponse)
		return 0, false
	}
	if err != nil {
		logger.Get().Error().Err(err).Str("event", event).Msg("cannot update video counter")
		c.JSON(http.StatusInternalServerError, DBErrorResponse)
		return 0, false
	}
	metrics.VideoEvents.WithLabelValues(event).Inc()
	return count, true
}
