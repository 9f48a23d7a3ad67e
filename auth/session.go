package auth

import (
	"stagesite/models"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	adminTokenKey = "admin_token"
	adminCtxKey   = "admin_session"

	FlashError   = "error"
	FlashSuccess = "success"
	FlashInfo    = "info"
)

type Flash struct {
	Kind    string
	Message string
}

type Session struct {
	sessions.Session
	c *gin.Context
}

func LoadSession(c *gin.Context) *Session {
	return &Session{
		Session: sessions.Default(c),
		c:       c,
	}
}

// Login checks the credentials and binds a freshly issued admin session token to the cookie
func (s *Session) Login(username, password string) error {
	user, err := models.AdminLogin(username, password)
	if err != nil {
		return err
	}
	adminSession, err := models.AdminSessionIssue(&user)
	if err != nil {
		return err
	}
	s.Set(adminTokenKey, adminSession.Token)
	s.c.Set(adminCtxKey, &adminSession)
	return s.Save()
}

// Logout revokes the admin token (if any) and clears the session
func (s *Session) Logout() error {
	if token, ok := s.Get(adminTokenKey).(string); ok {
		if err := models.AdminSessionRevoke(token); err != nil {
			return err
		}
	}
	s.Clear()
	s.c.Set(adminCtxKey, (*models.AdminSession)(nil))
	return s.Save()
}

// Admin returns the valid (not revoked) admin session bound to this request
func (s *Session) Admin() (*models.AdminSession, bool) {
	if cached, exists := s.c.Get(adminCtxKey); exists {
		admin, _ := cached.(*models.AdminSession)
		return admin, admin != nil
	}
	var admin *models.AdminSession
	if token, ok := s.Get(adminTokenKey).(string); ok {
		if found, valid := models.AdminSessionValid(token); valid {
			admin = &found
		}
	}
	s.c.Set(adminCtxKey, admin)
	return admin, admin != nil
}

// Flash queues a one-shot message for the next rendered page
func (s *Session) Flash(kind, message string) {
	s.AddFlash(kind + ":" + message)
	_ = s.Save()
}

// Flashes pops all queued messages
func (s *Session) Flashes() (result []Flash) {
	raw := s.Session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	for _, f := range raw {
		text, ok := f.(string)
		if !ok {
			continue
		}
		kind, message, found := strings.Cut(text, ":")
		if !found {
			kind, message = FlashInfo, text
		}
		result = append(result, Flash{Kind: kind, Message: message})
	}
	_ = s.Save()
	return
}

func IsAdmin(c *gin.Context) bool {
	_, ok := LoadSession(c).Admin()
	return ok
}
