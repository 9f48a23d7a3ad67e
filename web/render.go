package web

import (
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"stagesite/auth"
	"stagesite/config"
	"stagesite/logger"
	"stagesite/media"
	"stagesite/storage"
	"stagesite/utils"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

var templates *template.Template

var FuncMap = template.FuncMap{
	"date": func(t time.Time) string {
		return t.Format("2006.01.02")
	},
	"datetime": func(t time.Time) string {
		return t.Format("2006.01.02 15:04")
	},
	"truncate": utils.Truncate,
	"add":      func(a, b int) int { return a + b },
	"sub":      func(a, b int) int { return a - b },
	"image_url": func(filename string) string {
		return storage.URL(storage.DirImages + "/" + filename)
	},
	"thumb_url": func(filename string) string {
		return media.ThumbnailURL(currentStorage(), filename)
	},
	"platform_label": platformLabel,
	"year": func() int {
		return time.Now().Year()
	},
}

func currentStorage() (s storage.StorageAPI) {
	defer func() {
		if recover() != nil {
			s = nil
		}
	}()
	return storage.Default()
}

// LoadTemplates parses every *.tmpl under dir. The engine renders through the returned set
func LoadTemplates(dir string) (*template.Template, error) {
	t, err := template.New("").Funcs(FuncMap).ParseGlob(filepath.Join(dir, "*.tmpl"))
	if err != nil {
		templates = nil
		return nil, errors.Wrapf(err, "parse templates in %s", dir)
	}
	templates = t
	return t, nil
}

func hasTemplate(name string) bool {
	return templates != nil && templates.Lookup(name) != nil
}

// render adds what every page needs (admin flag, flashes, login path) and writes the template
func render(c *gin.Context, status int, name string, data gin.H) {
	if !hasTemplate(name) {
		logger.Get().Error().Str("template", name).Msg("template not found")
		fallbackPage(c, http.StatusInternalServerError)
		return
	}
	if data == nil {
		data = gin.H{}
	}
	session := auth.LoadSession(c)
	_, isAdmin := session.Admin()
	data["is_admin"] = isAdmin
	data["flashes"] = session.Flashes()
	data["login_path"] = config.ADMIN_LOGIN_PATH
	data["path"] = c.Request.URL.Path
	c.HTML(status, name, data)
}

// NotFound renders 404.tmpl, or plain HTML when it is missing
func NotFound(c *gin.Context) {
	if !hasTemplate("404.tmpl") {
		fallbackPage(c, http.StatusNotFound)
		return
	}
	render(c, http.StatusNotFound, "404.tmpl", gin.H{"title": "페이지를 찾을 수 없습니다"})
}

// ServerError renders 500.tmpl, or plain HTML when it is missing
func ServerError(c *gin.Context, err error) {
	if err != nil {
		logger.Get().Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	}
	if !hasTemplate("500.tmpl") {
		fallbackPage(c, http.StatusInternalServerError)
		return
	}
	render(c, http.StatusInternalServerError, "500.tmpl", gin.H{"title": "서버 오류"})
}

// Recovery turns panics into the 500 page
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		ServerError(c, fmt.Errorf("panic: %v", recovered))
		c.Abort()
	})
}

// NoRoute answers unknown paths: JSON under /api, the 404 page elsewhere
func NoRoute(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	NotFound(c)
}

func fallbackPage(c *gin.Context, status int) {
	text := http.StatusText(status)
	c.Data(status, "text/html; charset=utf-8", []byte(fmt.Sprintf(
		"<!doctype html><html><head><meta charset=\"utf-8\"><title>%d %s</title></head>"+
			"<body><h1>%d %s</h1><p><a href=\"/\">홈으로</a></p></body></html>",
		status, text, status, text)))
}

// redirectWithFlash is the usual end of a form POST
func redirectWithFlash(c *gin.Context, kind, message, location string) {
	auth.LoadSession(c).Flash(kind, message)
	c.Redirect(http.StatusFound, location)
}
