package models

import (
	"errors"
	"fmt"
	"stagesite/db"
	"stagesite/platform"
	"stagesite/storage"
	"strings"
	"time"

	"gorm.io/gorm"
)

const VideosPerPage = 9

type Video struct {
	ID          uint64        `gorm:"primaryKey"`
	Title       string        `gorm:"type:varchar(200);not null"`
	Description string        `gorm:"type:text"`
	Author      string        `gorm:"type:varchar(100)"`
	Tags        string        `gorm:"type:varchar(300)"` // comma separated
	Platform    platform.Kind `gorm:"type:varchar(20);not null;uniqueIndex:uniq_platform_video,priority:1"`
	// External id for youtube/vimeo, stored file name for local videos
	VideoID           string    `gorm:"type:varchar(200);not null;uniqueIndex:uniq_platform_video,priority:2"`
	VideoURL          string    `gorm:"type:varchar(500)"`
	LocalFilename     string    `gorm:"type:varchar(200)"`
	ThumbnailFilename string    `gorm:"type:varchar(200)"`
	ThumbnailURL      string    `gorm:"type:varchar(500)"`
	Duration          int       // seconds
	ViewCount         int64     `gorm:"not null;default:0"`
	LikeCount         int64     `gorm:"not null;default:0"`
	IsFeatured        bool      `gorm:"not null;default:false;index"`
	UploadedAt        time.Time `gorm:"autoCreateTime;index"`
	UpdatedAt         time.Time
}

// Variant returns the platform specific behaviour of the video
func (v Video) Variant() platform.Platform {
	p, err := platform.For(v.Platform)
	if err != nil {
		p, _ = platform.For(platform.Local)
	}
	return p
}

func (v Video) EmbedURL() string {
	return v.Variant().EmbedURL(v.VideoID)
}

func (v Video) WatchURL() string {
	return v.Variant().WatchURL(v.VideoID)
}

// Thumbnail prefers an uploaded thumbnail, then a stored URL, then whatever
// the platform can derive from the id
func (v Video) Thumbnail() string {
	if v.ThumbnailFilename != "" {
		return storage.URL(storage.DirThumbnails + "/" + v.ThumbnailFilename)
	}
	if v.ThumbnailURL != "" {
		return v.ThumbnailURL
	}
	return v.Variant().ThumbnailURL(v.VideoID)
}

func (v Video) TagList() []string {
	result := []string{}
	for _, tag := range strings.Split(v.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			result = append(result, tag)
		}
	}
	return result
}

// DurationText formats Duration as m:ss or h:mm:ss
func (v Video) DurationText() string {
	if v.Duration <= 0 {
		return ""
	}
	h, m, sec := v.Duration/3600, v.Duration/60%60, v.Duration%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}

// VideoExists reports whether another video already uses the (platform, id) pair
func VideoExists(kind platform.Kind, videoID string, excludeID uint64) bool {
	var count int64
	tx := db.Instance.Model(&Video{}).Where("platform = ? AND video_id = ?", kind, videoID)
	if excludeID > 0 {
		tx = tx.Where("id <> ?", excludeID)
	}
	tx.Count(&count)
	return count > 0
}

func (v *Video) Create() error {
	if VideoExists(v.Platform, v.VideoID, 0) {
		return ErrDuplicateVideo
	}
	v.ID = 0
	err := db.Instance.Create(v).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateVideo
	}
	return err
}

// Save updates the editable fields (counters are left alone)
func (v *Video) Save() error {
	if VideoExists(v.Platform, v.VideoID, v.ID) {
		return ErrDuplicateVideo
	}
	err := db.Instance.Model(v).Select("title", "description", "author", "tags", "platform", "video_id",
		"video_url", "local_filename", "thumbnail_filename", "thumbnail_url", "duration", "is_featured", "updated_at").
		Updates(v).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateVideo
	}
	return err
}

func VideoByID(id uint64) (video Video, err error) {
	err = db.Instance.First(&video, id).Error
	return
}

func VideoDelete(id uint64) error {
	return db.Instance.Delete(&Video{}, id).Error
}

// VideoIncrementViews is a plain read-modify-write, concurrent calls can lose updates
func VideoIncrementViews(id uint64) (int64, error) {
	return videoIncrement(id, "view_count", func(v *Video) *int64 { return &v.ViewCount })
}

// VideoIncrementLikes has the same caveat as VideoIncrementViews
func VideoIncrementLikes(id uint64) (int64, error) {
	return videoIncrement(id, "like_count", func(v *Video) *int64 { return &v.LikeCount })
}

func videoIncrement(id uint64, column string, counter func(*Video) *int64) (int64, error) {
	var video Video
	if err := db.Instance.Select("id", column).First(&video, id).Error; err != nil {
		return 0, err
	}
	value := counter(&video)
	*value++
	if err := db.Instance.Model(&Video{}).Where("id = ?", id).UpdateColumn(column, *value).Error; err != nil {
		return 0, err
	}
	return *value, nil
}

type VideoQuery struct {
	Page     int
	Query    string
	Platform platform.Kind
	Featured bool
}

type VideoPage struct {
	Videos     []Video
	Page       int
	TotalPages int
	Total      int64
}

func (p VideoPage) HasPrev() bool { return p.Page > 1 }
func (p VideoPage) HasNext() bool { return p.Page < p.TotalPages }
func (p VideoPage) PrevPage() int { return p.Page - 1 }
func (p VideoPage) NextPage() int { return p.Page + 1 }

// VideoSearch returns one page of videos, newest first
func VideoSearch(q VideoQuery) (result VideoPage, err error) {
	filter := func(tx *gorm.DB) *gorm.DB {
		if term := strings.ToLower(strings.TrimSpace(q.Query)); term != "" {
			like := "%" + term + "%"
			tx = tx.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(author) LIKE ? OR LOWER(tags) LIKE ?",
				like, like, like, like)
		}
		if q.Platform != "" {
			tx = tx.Where("platform = ?", q.Platform)
		}
		if q.Featured {
			tx = tx.Where("is_featured = ?", true)
		}
		return tx
	}
	if err = db.Instance.Model(&Video{}).Scopes(filter).Count(&result.Total).Error; err != nil {
		return
	}
	result.TotalPages = int((result.Total + VideosPerPage - 1) / VideosPerPage)
	if result.TotalPages == 0 {
		result.TotalPages = 1
	}
	result.Page = q.Page
	if result.Page < 1 {
		result.Page = 1
	}
	if result.Page > result.TotalPages {
		result.Page = result.TotalPages
	}
	err = db.Instance.Scopes(filter).
		Order("uploaded_at DESC, id DESC").
		Offset((result.Page - 1) * VideosPerPage).
		Limit(VideosPerPage).
		Find(&result.Videos).Error
	return
}

// VideoRelated returns up to n other videos from the same platform
func VideoRelated(v *Video, n int) (videos []Video, err error) {
	err = db.Instance.Where("platform = ? AND id <> ?", v.Platform, v.ID).
		Order("uploaded_at DESC, id DESC").Limit(n).Find(&videos).Error
	return
}

// VideoFeatured returns up to n featured videos, newest first
func VideoFeatured(n int) (videos []Video, err error) {
	err = db.Instance.Where("is_featured = ?", true).Order("uploaded_at DESC, id DESC").Limit(n).Find(&videos).Error
	return
}

func VideoRecent(n int) (videos []Video, err error) {
	err = db.Instance.Order("uploaded_at DESC, id DESC").Limit(n).Find(&videos).Error
	return
}

func VideoCount() (count int64) {
	db.Instance.Model(&Video{}).Count(&count)
	return
}
