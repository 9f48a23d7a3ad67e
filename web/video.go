package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"stagesite/auth"
	"stagesite/logger"
	"stagesite/media"
	"stagesite/metrics"
	"stagesite/models"
	"stagesite/platform"
	"stagesite/storage"
	"stagesite/utils"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	videoSaveFailedMessage = "영상 저장 중 오류가 발생했습니다."
	duplicateVideoMessage  = "이미 등록된 영상입니다."
	relatedVideos          = 3
	probeTimeout           = 30 * time.Second
)

// OEmbed fills in missing metadata of external videos. nil disables it
var OEmbed = platform.NewOEmbedClient()

type VideoForm struct {
	Title       string `form:"title" binding:"max=200"`
	Description string `form:"description" binding:"max=5000"`
	Author      string `form:"author" binding:"max=100"`
	Tags        string `form:"tags" binding:"max=300"`
	Platform    string `form:"platform" binding:"required,videoplatform"`
	VideoURL    string `form:"video_url" binding:"max=500"`
	Duration    int    `form:"duration" binding:"min=0"`
	Featured    string `form:"is_featured"`
}

// apply copies the form into v and stages any uploaded files in batch.
// A non empty result is the message to show the admin
func (f *VideoForm) apply(c *gin.Context, v *models.Video, batch *media.Batch) string {
	kind, err := platform.Parse(f.Platform)
	if err != nil {
		return "지원하지 않는 플랫폼입니다."
	}
	p, _ := platform.For(kind)
	v.Title = strings.TrimSpace(f.Title)
	v.Description = strings.TrimSpace(f.Description)
	v.Author = strings.TrimSpace(f.Author)
	v.Tags = strings.TrimSpace(f.Tags)
	v.Duration = f.Duration
	v.IsFeatured = checked(f.Featured)

	now := time.Now()
	var staged *media.Upload
	if p.External() {
		id, err := p.ExtractID(f.VideoURL)
		if err != nil {
			return fmt.Sprintf("올바른 %s URL을 입력해주세요.", p.Label())
		}
		if v.Platform != kind || v.VideoID != id {
			// a different video; whatever was fetched for the old one no longer applies
			v.ThumbnailURL = ""
		}
		v.VideoID = id
		v.VideoURL = strings.TrimSpace(f.VideoURL)
		v.LocalFilename = ""
	} else {
		file := formFile(c, "video_file")
		switch {
		case file != nil && file.Filename != "":
			upload, err := batch.AddFile(file, storage.DirVideos, "video", 1, now, media.AllowedVideo)
			if errors.Is(err, media.ErrNotAllowed) {
				return "지원하지 않는 영상 형식입니다. (mp4, mov, webm, m4v)"
			}
			if err != nil {
				logger.Get().Error().Err(err).Msg("cannot stage video")
				return videoSaveFailedMessage
			}
			staged = upload
			v.LocalFilename = upload.Filename
			v.VideoID = upload.Filename
			v.VideoURL = ""
			v.ThumbnailURL = ""
		case v.Platform != platform.Local || v.LocalFilename == "":
			return "영상 파일을 선택해주세요."
		}
	}
	v.Platform = kind

	if thumb := formFile(c, "thumbnail"); thumb != nil && thumb.Filename != "" {
		upload, err := batch.AddFile(thumb, storage.DirThumbnails, "thumb", 1, now, media.AllowedImage)
		switch {
		case err == nil:
			v.ThumbnailFilename = upload.Filename
		case !errors.Is(err, media.ErrNotAllowed):
			logger.Get().Error().Err(err).Msg("cannot stage thumbnail")
			return videoSaveFailedMessage
		}
	}
	if staged != nil {
		probe(c.Request.Context(), v, staged, batch, now)
	}
	return ""
}

// probe reads the duration of a freshly uploaded video and grabs a poster frame
// when no thumbnail was given. Both are optional
func probe(ctx context.Context, v *models.Video, upload *media.Upload, batch *media.Batch, at time.Time) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if v.Duration == 0 {
		if seconds, err := media.VideoDuration(ctx, upload); err == nil {
			v.Duration = seconds
		} else if !errors.Is(err, media.ErrToolMissing) {
			logger.Get().Warn().Err(err).Str("file", upload.Filename).Msg("cannot read video duration")
		}
	}
	if v.ThumbnailFilename == "" {
		if poster, err := batch.AddPoster(ctx, upload, "thumb", at); err == nil {
			v.ThumbnailFilename = poster.Filename
		} else if !errors.Is(err, media.ErrToolMissing) {
			logger.Get().Warn().Err(err).Str("file", upload.Filename).Msg("cannot extract poster frame")
		}
	}
}

// enrich asks the platform for a missing title (and Vimeo thumbnail/duration). Failures only get logged
func enrich(ctx context.Context, v *models.Video) {
	if OEmbed == nil || !v.Variant().External() {
		return
	}
	needTitle := v.Title == ""
	needVimeo := v.Platform == platform.Vimeo && (v.ThumbnailURL == "" || v.Duration == 0)
	if !needTitle && !needVimeo {
		return
	}
	info, err := OEmbed.Fetch(ctx, v.Platform, v.VideoID)
	if err != nil {
		logger.Get().Warn().Err(err).Str("platform", string(v.Platform)).Str("id", v.VideoID).Msg("oEmbed lookup failed")
		return
	}
	if needTitle {
		v.Title = utils.Truncate(strings.TrimSpace(info.Title), 199)
	}
	if v.Author == "" {
		v.Author = utils.Truncate(strings.TrimSpace(info.AuthorName), 99)
	}
	if v.Platform == platform.Vimeo {
		if v.ThumbnailURL == "" {
			v.ThumbnailURL = info.ThumbnailURL
		}
		if v.Duration == 0 {
			v.Duration = info.Duration
		}
	}
}

func platformLabel(k platform.Kind) string {
	p, err := platform.For(k)
	if err != nil {
		return string(k)
	}
	return p.Label()
}

func portfolioURL(q models.VideoQuery, page int) string {
	values := url.Values{}
	if q.Query != "" {
		values.Set("q", q.Query)
	}
	if q.Platform != "" {
		values.Set("platform", string(q.Platform))
	}
	if q.Featured {
		values.Set("featured", "1")
	}
	if page > 1 {
		values.Set("page", strconv.Itoa(page))
	}
	if len(values) == 0 {
		return "/portfolio"
	}
	return "/portfolio?" + values.Encode()
}

func Portfolio(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	q := models.VideoQuery{
		Page:     page,
		Query:    strings.TrimSpace(c.Query("q")),
		Featured: checked(c.Query("featured")),
	}
	if kind, err := platform.Parse(c.Query("platform")); err == nil {
		q.Platform = kind
	}
	result, err := models.VideoSearch(q)
	if err != nil {
		ServerError(c, err)
		return
	}
	render(c, http.StatusOK, "portfolio.tmpl", gin.H{
		"title":     "포트폴리오",
		"result":    result,
		"query":     q,
		"platforms": platform.Kinds(),
		"prev_url":  portfolioURL(q, result.PrevPage()),
		"next_url":  portfolioURL(q, result.NextPage()),
	})
}

func loadVideo(c *gin.Context) (*models.Video, bool) {
	id := utils.StringToUint64(c.Param("id"))
	if id == 0 {
		NotFound(c)
		return nil, false
	}
	video, err := models.VideoByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c)
		return nil, false
	}
	if err != nil {
		ServerError(c, err)
		return nil, false
	}
	return &video, true
}

// VideoView counts a view and shows the player
func VideoView(c *gin.Context) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	if views, err := models.VideoIncrementViews(video.ID); err != nil {
		logger.Get().Warn().Err(err).Uint64("video", video.ID).Msg("cannot count view")
	} else {
		video.ViewCount = views
		metrics.VideoEvents.WithLabelValues("view").Inc()
	}
	related, err := models.VideoRelated(video, relatedVideos)
	if err != nil {
		logger.Get().Warn().Err(err).Uint64("video", video.ID).Msg("cannot load related videos")
	}
	render(c, http.StatusOK, "video.tmpl", gin.H{
		"title":   video.Title,
		"video":   video,
		"related": related,
	})
}

func AddVideoForm(c *gin.Context, admin *models.AdminSession) {
	render(c, http.StatusOK, "video_form.tmpl", gin.H{
		"title":     "영상 추가",
		"action":    "/add_video",
		"video":     models.Video{Platform: platform.YouTube},
		"platforms": platform.Kinds(),
	})
}

func AddVideoSubmit(c *gin.Context, admin *models.AdminSession) {
	var form VideoForm
	if err := c.ShouldBind(&form); err != nil {
		if isTooLarge(err) {
			rejectTooLarge(c, false)
			return
		}
		redirectWithFlash(c, auth.FlashError, validationMessage(err), "/add_video")
		return
	}
	video := models.Video{}
	batch := media.NewBatch(storage.Default())
	if message := form.apply(c, &video, batch); message != "" {
		batch.Discard()
		redirectWithFlash(c, auth.FlashError, message, "/add_video")
		return
	}
	if models.VideoExists(video.Platform, video.VideoID, 0) {
		batch.Discard()
		redirectWithFlash(c, auth.FlashError, duplicateVideoMessage, "/add_video")
		return
	}
	enrich(c.Request.Context(), &video)
	if video.Title == "" {
		batch.Discard()
		redirectWithFlash(c, auth.FlashError, "제목 항목을 입력해주세요.", "/add_video")
		return
	}
	if err := video.Create(); err != nil {
		batch.Discard()
		message := videoSaveFailedMessage
		if errors.Is(err, models.ErrDuplicateVideo) {
			message = duplicateVideoMessage
		} else {
			logger.Get().Error().Err(err).Msg("cannot create video")
		}
		redirectWithFlash(c, auth.FlashError, message, "/add_video")
		return
	}
	if err := batch.Commit(); err != nil {
		logger.Get().Error().Err(err).Uint64("video", video.ID).Msg("cannot publish video files")
	}
	logger.Get().Info().Uint64("video", video.ID).Str("platform", string(video.Platform)).Str("admin", admin.AdminUser.Username).Msg("video added")
	redirectWithFlash(c, auth.FlashSuccess, "영상이 등록되었습니다.", fmt.Sprintf("/video/%d", video.ID))
}

func EditVideoForm(c *gin.Context, admin *models.AdminSession) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	render(c, http.StatusOK, "video_form.tmpl", gin.H{
		"title":     "영상 수정",
		"action":    fmt.Sprintf("/edit_video/%d", video.ID),
		"video":     video,
		"platforms": platform.Kinds(),
	})
}

// EditVideoSubmit deletes files the video no longer uses once the row is saved
func EditVideoSubmit(c *gin.Context, admin *models.AdminSession) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	editURL := fmt.Sprintf("/edit_video/%d", video.ID)
	var form VideoForm
	if err := c.ShouldBind(&form); err != nil {
		if isTooLarge(err) {
			rejectTooLarge(c, false)
			return
		}
		redirectWithFlash(c, auth.FlashError, validationMessage(err), editURL)
		return
	}
	previous := *video
	store := storage.Default()
	batch := media.NewBatch(store)
	if message := form.apply(c, video, batch); message != "" {
		batch.Discard()
		redirectWithFlash(c, auth.FlashError, message, editURL)
		return
	}
	if video.Title == "" {
		batch.Discard()
		redirectWithFlash(c, auth.FlashError, "제목 항목을 입력해주세요.", editURL)
		return
	}
	if err := video.Save(); err != nil {
		batch.Discard()
		message := videoSaveFailedMessage
		if errors.Is(err, models.ErrDuplicateVideo) {
			message = duplicateVideoMessage
		} else {
			logger.Get().Error().Err(err).Uint64("video", video.ID).Msg("cannot update video")
		}
		redirectWithFlash(c, auth.FlashError, message, editURL)
		return
	}
	if err := batch.Commit(); err != nil {
		logger.Get().Error().Err(err).Uint64("video", video.ID).Msg("cannot publish video files")
	}
	if previous.LocalFilename != "" && previous.LocalFilename != video.LocalFilename {
		removeLogged(store, storage.DirVideos, previous.LocalFilename)
	}
	if previous.ThumbnailFilename != "" && previous.ThumbnailFilename != video.ThumbnailFilename {
		removeLogged(store, storage.DirThumbnails, previous.ThumbnailFilename)
	}
	redirectWithFlash(c, auth.FlashSuccess, "영상이 수정되었습니다.", fmt.Sprintf("/video/%d", video.ID))
}

func removeLogged(store storage.StorageAPI, dir, filename string) {
	if err := media.Remove(store, dir, filename); err != nil {
		logger.Get().Warn().Err(err).Str("file", filename).Msg("cannot delete file")
	}
}

// DeleteVideo removes the local files before the row
func DeleteVideo(c *gin.Context, admin *models.AdminSession) {
	video, ok := loadVideo(c)
	if !ok {
		return
	}
	store := storage.Default()
	files := [][2]string{
		{storage.DirVideos, video.LocalFilename},
		{storage.DirThumbnails, video.ThumbnailFilename},
	}
	for _, f := range files {
		if err := media.Remove(store, f[0], f[1]); err != nil {
			logger.Get().Error().Err(err).Str("file", f[1]).Msg("cannot delete video file")
			redirectWithFlash(c, auth.FlashError, "삭제 중 오류가 발생했습니다.", fmt.Sprintf("/video/%d", video.ID))
			return
		}
	}
	if err := models.VideoDelete(video.ID); err != nil {
		logger.Get().Error().Err(err).Uint64("video", video.ID).Msg("cannot delete video")
		redirectWithFlash(c, auth.FlashError, "삭제 중 오류가 발생했습니다.", fmt.Sprintf("/video/%d", video.ID))
		return
	}
	logger.Get().Info().Uint64("video", video.ID).Str("admin", admin.AdminUser.Username).Msg("video deleted")
	redirectWithFlash(c, auth.FlashSuccess, "영상이 삭제되었습니다.", "/portfolio")
}
