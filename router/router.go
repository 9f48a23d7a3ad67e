package router

import (
	"net/http"
	"stagesite/auth"
	"stagesite/config"
	"stagesite/handlers"
	"stagesite/logger"
	"stagesite/metrics"
	"stagesite/utils"
	"stagesite/web"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const sessionCookieName = "session"

// New builds the whole site on top of the given session store
func New(store sessions.Store) *gin.Engine {
	web.RegisterValidators()

	router := gin.New()
	_ = router.SetTrustedProxies([]string{})
	router.Use(web.Recovery(), logger.GinMiddleware(), metrics.Middleware())
	if config.DEBUG_MODE {
		router.Use(utils.ErrorLogMiddleware)
	} else {
		router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{config.UPLOAD_URL_PREFIX + "/", "/metrics"})))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   config.SESSION_MAX_AGE,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(sessionCookieName, store))
	router.Use((&utils.CacheRouter{CacheTime: utils.CacheNoCache}).Handler()) // No cache by default, individual end-points can override that

	// HTML templates; pages fall back to plain HTML when they are missing
	if templates, err := web.LoadTemplates(config.TEMPLATE_DIR); err != nil {
		logger.Get().Error().Err(err).Msg("templates not loaded")
	} else {
		router.SetHTMLTemplate(templates)
	}
	router.NoRoute(web.NoRoute)

	site := router.Group("/", web.BodyLimit(config.MAX_CONTENT_LENGTH, false))
	// Public pages
	site.GET("/", web.Index)
	site.GET("/board", web.Board)
	site.GET("/post/:id", web.PostView)
	site.GET("/portfolio", web.Portfolio)
	site.GET("/video/:id", web.VideoView)
	site.GET("/contact", web.ContactPage)
	site.POST("/contact", web.ContactSubmit)

	// Admin login, also reachable at an alias
	loginPaths := []string{config.ADMIN_LOGIN_PATH}
	if alias := strings.TrimSpace(config.ADMIN_LOGIN_ALIAS); alias != "" && alias != config.ADMIN_LOGIN_PATH {
		loginPaths = append(loginPaths, alias)
	}
	for _, p := range loginPaths {
		site.GET(p, web.LoginPage)
		site.POST(p, web.LoginSubmit)
	}
	site.GET("/admin/logout", web.Logout)

	// Admin only
	admin := &auth.Router{Base: site, LoginPath: config.ADMIN_LOGIN_PATH}
	admin.GET("/admin/dashboard", web.Dashboard)
	admin.GET("/write", web.WriteForm)
	admin.POST("/write", web.WriteSubmit)
	admin.GET("/edit/:id", web.EditForm)
	admin.POST("/edit/:id", web.EditSubmit)
	admin.POST("/delete/:id", web.DeletePost)
	admin.POST("/post/:id/delete", web.DeletePost)
	admin.POST("/post/:id/images/:image_id/primary", web.SetPrimaryImage)
	admin.GET("/add_video", web.AddVideoForm)
	admin.POST("/add_video", web.AddVideoSubmit)
	admin.GET("/edit_video/:id", web.EditVideoForm)
	admin.POST("/edit_video/:id", web.EditVideoSubmit)
	admin.POST("/delete_video/:id", web.DeleteVideo)
	admin.POST("/admin/contact/:id/answered", web.ContactToggleAnswered)
	admin.POST("/admin/contact/:id/delete", web.ContactDelete)

	// JSON API
	api := router.Group("/api", cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}), web.BodyLimit(config.MAX_CONTENT_LENGTH, true))
	api.GET("/video/:id", handlers.VideoGet)
	api.POST("/video/:id/view", handlers.VideoView)
	api.POST("/video/:id/like", handlers.VideoLike)
	api.OPTIONS("/*path", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	// Files
	router.GET("/static/*filepath", web.Static)
	router.HEAD("/static/*filepath", web.Static)
	if !strings.HasPrefix(config.UPLOAD_URL_PREFIX, "/static/") {
		router.GET(config.UPLOAD_URL_PREFIX+"/*filepath", func(c *gin.Context) {
			web.ServeUpload(c, strings.TrimPrefix(c.Param("filepath"), "/"))
		})
	}
	router.GET("/robots.txt", web.Robots)
	router.GET("/metrics", metrics.Handler())

	return router
}
