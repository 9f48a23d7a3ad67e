package web

import (
	"errors"
	"fmt"
	"net/http"
	"stagesite/auth"
	"stagesite/logger"
	"stagesite/media"
	"stagesite/models"
	"stagesite/storage"
	"stagesite/utils"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	postSaveFailedMessage   = "게시글 저장 중 오류가 발생했습니다."
	postDeleteFailedMessage = "삭제 중 오류가 발생했습니다."
)

type PostForm struct {
	Title   string `form:"title" binding:"required,notblank,max=200"`
	Content string `form:"content" binding:"required,notblank"`
	Author  string `form:"author" binding:"required,notblank,max=100"`
}

func (f *PostForm) apply(p *models.Post) {
	p.Title = strings.TrimSpace(f.Title)
	p.Content = strings.TrimSpace(f.Content)
	p.Author = strings.TrimSpace(f.Author)
}

func Index(c *gin.Context) {
	posts, err := models.PostRecent(3)
	if err != nil {
		ServerError(c, err)
		return
	}
	videos, err := models.VideoFeatured(3)
	if err == nil && len(videos) == 0 {
		videos, err = models.VideoRecent(3)
	}
	if err != nil {
		ServerError(c, err)
		return
	}
	render(c, http.StatusOK, "index.tmpl", gin.H{
		"title":  "홈",
		"posts":  posts,
		"videos": videos,
	})
}

func Board(c *gin.Context) {
	posts, err := models.PostList()
	if err != nil {
		ServerError(c, err)
		return
	}
	render(c, http.StatusOK, "board.tmpl", gin.H{
		"title": "게시판",
		"posts": posts,
	})
}

// loadPost writes the error page itself when it returns false
func loadPost(c *gin.Context) (*models.Post, bool) {
	id := utils.StringToUint64(c.Param("id"))
	if id == 0 {
		NotFound(c)
		return nil, false
	}
	post, err := models.PostByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c)
		return nil, false
	}
	if err != nil {
		ServerError(c, err)
		return nil, false
	}
	return &post, true
}

func PostView(c *gin.Context) {
	post, ok := loadPost(c)
	if !ok {
		return
	}
	images := post.Images
	if len(images) == 0 && post.ImageFilename != "" {
		images = []models.PostImage{*post.PrimaryImage()}
	}
	render(c, http.StatusOK, "post.tmpl", gin.H{
		"title":  post.Title,
		"post":   post,
		"images": images,
	})
}

func WriteForm(c *gin.Context, admin *models.AdminSession) {
	render(c, http.StatusOK, "write.tmpl", gin.H{
		"title":  "글쓰기",
		"action": "/write",
		"post":   models.Post{},
	})
}

func WriteSubmit(c *gin.Context, admin *models.AdminSession) {
	var form PostForm
	if err := c.ShouldBind(&form); err != nil {
		if isTooLarge(err) {
			rejectTooLarge(c, false)
			return
		}
		redirectWithFlash(c, auth.FlashError, validationMessage(err), "/write")
		return
	}
	post := models.Post{}
	form.apply(&post)

	batch := media.NewBatch(storage.Default())
	uploads, err := batch.AddImages(formFiles(c, "images"), "post", time.Now())
	if err != nil {
		batch.Discard()
		logger.Get().Error().Err(err).Msg("cannot stage post images")
		redirectWithFlash(c, auth.FlashError, postSaveFailedMessage, "/write")
		return
	}
	if err = post.CreateWithImages(postImages(uploads)); err != nil {
		batch.Discard()
		logger.Get().Error().Err(err).Msg("cannot create post")
		redirectWithFlash(c, auth.FlashError, postSaveFailedMessage, "/write")
		return
	}
	if err = batch.Commit(); err != nil {
		logger.Get().Error().Err(err).Uint64("post", post.ID).Msg("cannot publish post images")
	}
	logger.Get().Info().Uint64("post", post.ID).Int("images", len(uploads)).Str("admin", admin.AdminUser.Username).Msg("post created")
	redirectWithFlash(c, auth.FlashSuccess, "게시글이 성공적으로 작성되었습니다!", "/board")
}

// postImages numbers the accepted uploads 1..n
func postImages(uploads []*media.Upload) []models.PostImage {
	images := make([]models.PostImage, 0, len(uploads))
	for i, upload := range uploads {
		images = append(images, models.PostImage{
			Filename:         upload.Filename,
			OriginalFilename: upload.OriginalName,
			DisplayOrder:     i + 1,
		})
	}
	return images
}

func EditForm(c *gin.Context, admin *models.AdminSession) {
	post, ok := loadPost(c)
	if !ok {
		return
	}
	render(c, http.StatusOK, "write.tmpl", gin.H{
		"title":  "글 수정",
		"action": fmt.Sprintf("/edit/%d", post.ID),
		"post":   post,
	})
}

// EditSubmit replaces all images only when at least one new image was accepted
func EditSubmit(c *gin.Context, admin *models.AdminSession) {
	post, ok := loadPost(c)
	if !ok {
		return
	}
	editURL := fmt.Sprintf("/edit/%d", post.ID)
	var form PostForm
	if err := c.ShouldBind(&form); err != nil {
		if isTooLarge(err) {
			rejectTooLarge(c, false)
			return
		}
		redirectWithFlash(c, auth.FlashError, validationMessage(err), editURL)
		return
	}
	form.apply(post)

	store := storage.Default()
	batch := media.NewBatch(store)
	uploads, err := batch.AddImages(formFiles(c, "images"), fmt.Sprintf("post%d", post.ID), time.Now())
	if err != nil {
		batch.Discard()
		logger.Get().Error().Err(err).Uint64("post", post.ID).Msg("cannot stage post images")
		redirectWithFlash(c, auth.FlashError, postSaveFailedMessage, editURL)
		return
	}
	var newImages []models.PostImage
	legacy := ""
	if len(uploads) > 0 {
		newImages = postImages(uploads)
		legacy, post.ImageFilename = post.ImageFilename, ""
	}
	removed, err := post.Update(newImages)
	if err != nil {
		batch.Discard()
		logger.Get().Error().Err(err).Uint64("post", post.ID).Msg("cannot update post")
		redirectWithFlash(c, auth.FlashError, postSaveFailedMessage, editURL)
		return
	}
	if err = batch.Commit(); err != nil {
		logger.Get().Error().Err(err).Uint64("post", post.ID).Msg("cannot publish post images")
	}
	if legacy != "" {
		removed = append(removed, models.PostImage{Filename: legacy})
	}
	for _, image := range removed {
		if err = media.Remove(store, storage.DirImages, image.Filename); err != nil {
			logger.Get().Warn().Err(err).Str("file", image.Filename).Msg("cannot delete replaced image")
		}
	}
	redirectWithFlash(c, auth.FlashSuccess, "게시글이 수정되었습니다.", fmt.Sprintf("/post/%d", post.ID))
}

// DeletePost removes the image files before the rows
func DeletePost(c *gin.Context, admin *models.AdminSession) {
	post, ok := loadPost(c)
	if !ok {
		return
	}
	store := storage.Default()
	filenames := []string{}
	for _, image := range post.Images {
		filenames = append(filenames, image.Filename)
	}
	if post.ImageFilename != "" {
		filenames = append(filenames, post.ImageFilename)
	}
	for _, filename := range filenames {
		if err := media.Remove(store, storage.DirImages, filename); err != nil {
			logger.Get().Error().Err(err).Str("file", filename).Msg("cannot delete post image")
			redirectWithFlash(c, auth.FlashError, postDeleteFailedMessage, fmt.Sprintf("/post/%d", post.ID))
			return
		}
	}
	if err := post.Delete(); err != nil {
		logger.Get().Error().Err(err).Uint64("post", post.ID).Msg("cannot delete post")
		redirectWithFlash(c, auth.FlashError, postDeleteFailedMessage, fmt.Sprintf("/post/%d", post.ID))
		return
	}
	logger.Get().Info().Uint64("post", post.ID).Str("admin", admin.AdminUser.Username).Msg("post deleted")
	redirectWithFlash(c, auth.FlashSuccess, "게시글이 삭제되었습니다.", "/board")
}

func SetPrimaryImage(c *gin.Context, admin *models.AdminSession) {
	postID := utils.StringToUint64(c.Param("id"))
	imageID := utils.StringToUint64(c.Param("image_id"))
	err := models.PostImageSetPrimary(postID, imageID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		NotFound(c)
		return
	}
	if err != nil {
		ServerError(c, err)
		return
	}
	redirectWithFlash(c, auth.FlashSuccess, "대표 이미지가 변경되었습니다.", fmt.Sprintf("/post/%d", postID))
}
