package web

import (
	"errors"
	"net/http"
	"stagesite/auth"
	"stagesite/config"
	"stagesite/logger"
	"stagesite/models"
	"strings"

	"github.com/gin-gonic/gin"
)

const dashboardPath = "/admin/dashboard"

type LoginForm struct {
	Username string `form:"username" binding:"max=100"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`
}

func LoginPage(c *gin.Context) {
	next := auth.SafeNext(c.Query("next"))
	if auth.IsAdmin(c) {
		if next == "" {
			next = dashboardPath
		}
		c.Redirect(http.StatusFound, next)
		return
	}
	renderLogin(c, http.StatusOK, next)
}

func renderLogin(c *gin.Context, status int, next string) {
	render(c, status, "admin_login.tmpl", gin.H{
		"title":  "관리자 로그인",
		"next":   next,
		"action": c.Request.URL.Path,
	})
}

// LoginSubmit issues an admin session. The username defaults to the configured admin
func LoginSubmit(c *gin.Context) {
	session := auth.LoadSession(c)
	var form LoginForm
	if err := c.ShouldBind(&form); err != nil {
		session.Flash(auth.FlashError, validationMessage(err))
		renderLogin(c, http.StatusUnauthorized, auth.SafeNext(form.Next))
		return
	}
	username := strings.TrimSpace(form.Username)
	if username == "" {
		username = config.ADMIN_USERNAME
	}
	if err := session.Login(username, form.Password); err != nil {
		if !errors.Is(err, models.ErrInvalidLogin) {
			logger.Get().Error().Err(err).Msg("admin login failed")
		}
		logger.Get().Warn().Str("username", username).Str("ip", c.ClientIP()).Msg("rejected admin login")
		session.Flash(auth.FlashError, "비밀번호가 틀렸습니다.")
		renderLogin(c, http.StatusUnauthorized, auth.SafeNext(form.Next))
		return
	}
	logger.Get().Info().Str("username", username).Str("ip", c.ClientIP()).Msg("admin logged in")
	next := auth.SafeNext(form.Next)
	if next == "" {
		next = dashboardPath
	}
	redirectWithFlash(c, auth.FlashSuccess, "관리자 로그인 성공!", next)
}

func Logout(c *gin.Context) {
	session := auth.LoadSession(c)
	if err := session.Logout(); err != nil {
		logger.Get().Error().Err(err).Msg("cannot revoke admin session")
	}
	redirectWithFlash(c, auth.FlashInfo, "로그아웃되었습니다.", "/")
}

func Dashboard(c *gin.Context, admin *models.AdminSession) {
	posts, err := models.PostRecent(5)
	if err != nil {
		ServerError(c, err)
		return
	}
	videos, err := models.VideoRecent(5)
	if err != nil {
		ServerError(c, err)
		return
	}
	contacts, err := models.ContactList()
	if err != nil {
		ServerError(c, err)
		return
	}
	totalContacts, unanswered := models.ContactCounts()
	render(c, http.StatusOK, "admin_dashboard.tmpl", gin.H{
		"title":         "관리자 대시보드",
		"admin":         admin.AdminUser.Username,
		"post_count":    models.PostCount(),
		"video_count":   models.VideoCount(),
		"contact_count": totalContacts,
		"unanswered":    unanswered,
		"posts":         posts,
		"videos":        videos,
		"contacts":      contacts,
	})
}
