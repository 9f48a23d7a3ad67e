package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"stagesite/models"
	"stagesite/testutil"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"/write", "/write"},
		{"/edit/3?x=1", "/edit/3?x=1"},
		{"", ""},
		{"write", ""},
		{"//evil.example.com", ""},
		{"/\\evil.example.com", ""},
		{"https://evil.example.com/", ""},
		{"/ok\r\nSet-Cookie: x", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeNext(tt.next), tt.next)
	}
	assert.Equal(t, "/admin/login?next=%2Fwrite", LoginURL("/admin/login", "/write"))
	assert.Equal(t, "/admin/login", LoginURL("/admin/login", "http://x"))
}

func setupRouter(t *testing.T) (*gin.Engine, *int) {
	t.Helper()
	testutil.SetupDB(t)
	models.BcryptCost = bcrypt.MinCost
	models.Init()
	require.NoError(t, models.AdminEnsure("admin", "secret"))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("session", cookie.NewStore([]byte("test-secret"))))

	calls := 0
	r.POST("/login", func(c *gin.Context) {
		if err := LoadSession(c).Login(c.PostForm("username"), c.PostForm("password")); err != nil {
			c.String(http.StatusUnauthorized, "no")
			return
		}
		c.String(http.StatusOK, "ok")
	})
	r.GET("/logout", func(c *gin.Context) {
		_ = LoadSession(c).Logout()
		c.String(http.StatusOK, "bye")
	})
	r.GET("/flashes", func(c *gin.Context) {
		var parts []string
		for _, f := range LoadSession(c).Flashes() {
			parts = append(parts, f.Kind+"="+f.Message)
		}
		c.String(http.StatusOK, strings.Join(parts, ";"))
	})
	guarded := &Router{Base: r, LoginPath: "/admin/login"}
	guarded.POST("/write", func(c *gin.Context, admin *models.AdminSession) {
		calls++
		c.String(http.StatusOK, admin.AdminUser.Username)
	})
	return r, &calls
}

func do(r *gin.Engine, req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestRouter_RedirectsAnonymous(t *testing.T) {
	r, calls := setupRouter(t)

	w := do(r, postForm("/write", url.Values{"title": {"x"}}), nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/login?next=%2Fwrite", w.Header().Get("Location"))
	assert.Zero(t, *calls)

	w = do(r, httptest.NewRequest(http.MethodGet, "/flashes", nil), w.Result().Cookies())
	assert.Equal(t, "error="+DeniedMessage, w.Body.String())
}

func TestRouter_LoginLogout(t *testing.T) {
	r, calls := setupRouter(t)

	w := do(r, postForm("/login", url.Values{"username": {"admin"}, "password": {"wrong"}}), nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, postForm("/login", url.Values{"username": {"admin"}, "password": {"secret"}}), nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	w = do(r, postForm("/write", nil), cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "admin", w.Body.String())
	assert.Equal(t, 1, *calls)

	// the old cookie stays usable client side but its token is revoked server side
	do(r, httptest.NewRequest(http.MethodGet, "/logout", nil), cookies)
	w = do(r, postForm("/write", nil), cookies)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, 1, *calls)
}
