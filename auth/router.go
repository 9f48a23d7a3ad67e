package auth

import (
	"net/http"
	"net/url"
	"stagesite/models"
	"strings"

	"github.com/gin-gonic/gin"
)

const DeniedMessage = "관리자만 접근할 수 있습니다."

// Admin is authenticated
type HandlerFunc func(c *gin.Context, admin *models.AdminSession)

// Router is a wrapper that puts the admin gate in front of every handler.
// Anonymous requests are redirected to LoginPath before the handler runs
type Router struct {
	Base      gin.IRoutes
	LoginPath string
}

func (cr *Router) baseExec(c *gin.Context, handler HandlerFunc) {
	session := LoadSession(c)
	admin, ok := session.Admin()
	if !ok {
		session.Flash(FlashError, DeniedMessage)
		c.Redirect(http.StatusFound, LoginURL(cr.LoginPath, c.Request.URL.RequestURI()))
		c.Abort()
		return
	}
	handler(c, admin)
}

func (cr *Router) POST(path string, handler HandlerFunc) {
	cr.Base.POST(path, func(c *gin.Context) {
		cr.baseExec(c, handler)
	})
}

func (cr *Router) GET(path string, handler HandlerFunc) {
	cr.Base.GET(path, func(c *gin.Context) {
		cr.baseExec(c, handler)
	})
}

// LoginURL returns the login page URL that sends the admin back to next
func LoginURL(loginPath, next string) string {
	if next = SafeNext(next); next == "" {
		return loginPath
	}
	return loginPath + "?next=" + url.QueryEscape(next)
}

// SafeNext only lets through local absolute paths, "" otherwise
func SafeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.ContainsAny(next, "\\\r\n") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return next
}
