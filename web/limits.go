package web

import (
	"errors"
	"mime/multipart"
	"net/http"
	"stagesite/auth"

	"github.com/gin-gonic/gin"
)

const TooLargeMessage = "파일 크기가 너무 큽니다. (최대 16MB)"

// BodyLimit rejects requests over max bytes before any form parsing happens.
// Bodies without a declared length are capped while they are read
func BodyLimit(max int64, api bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > max {
			rejectTooLarge(c, api)
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}

func rejectTooLarge(c *gin.Context, api bool) {
	if api {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request too large"})
		return
	}
	auth.LoadSession(c).Flash(auth.FlashError, TooLargeMessage)
	c.Redirect(http.StatusFound, c.Request.URL.Path)
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// formFiles returns the uploaded files of a field, nil for non-multipart requests
func formFiles(c *gin.Context, field string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File[field]
}

func formFile(c *gin.Context, field string) *multipart.FileHeader {
	files := formFiles(c, field)
	if len(files) == 0 {
		return nil
	}
	return files[0]
}
