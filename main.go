package main

import (
	"stagesite/config"
	"stagesite/db"
	"stagesite/logger"
	"stagesite/models"
	"stagesite/router"
	"stagesite/storage"
	"strings"

	"github.com/gin-contrib/sessions"
	gormsessions "github.com/gin-contrib/sessions/gorm"
	"github.com/gin-gonic/autotls"
	"github.com/gin-gonic/gin"
)

func main() {
	logger.Init(config.DEBUG_MODE)
	log := logger.Get()
	if !config.DEBUG_MODE {
		gin.SetMode(gin.ReleaseMode)
	}

	dialect, dsn, err := config.Database()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid database configuration")
	}
	db.Init(dialect, dsn)
	models.Init()
	log.Info().Str("dialect", dialect).Msg("database ready")

	if err = models.AdminEnsure(config.ADMIN_USERNAME, config.ADMIN_PASSWORD); err != nil {
		log.Fatal().Err(err).Msg("cannot set up admin account")
	}
	if config.UsingDefaultAdminPassword() {
		log.Warn().Msg("ADMIN_PASSWORD is not set, using the default password")
	}
	storage.Init()

	var store sessions.Store = gormsessions.NewStore(db.Instance, true, []byte(config.SECRET_KEY))
	r := router.New(store)

	if config.TLS_DOMAINS != "" {
		err = autotls.Run(r, strings.Split(config.TLS_DOMAINS, ",")...)
	} else {
		log.Info().Str("address", config.BIND_ADDRESS).Msg("listening")
		err = r.Run(config.BIND_ADDRESS)
	}
	log.Fatal().Err(err).Msg("server stopped")
}
