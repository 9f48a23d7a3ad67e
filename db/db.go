package db

import (
	"stagesite/config"
	"stagesite/logger"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var Instance *gorm.DB

func Init(dialect, dsn string) {
	db, err := Open(dialect, dsn)
	if err != nil || db == nil {
		panic(err)
	}
	Instance = db
}

func Open(dialect, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch dialect {
	case config.DialectPostgres:
		dialector = postgres.Open(dsn)
	case config.DialectMySQL:
		dialector = mysql.Open(dsn)
	default:
		dialector = sqlite.Open(dsn)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		PrepareStmt:            dialect != config.DialectSQLite,
		TranslateError:         true,
		Logger:                 logger.NewGormLogger(200 * time.Millisecond),
	})
	if err != nil {
		return nil, err
	}
	if dialect == config.DialectSQLite {
		// Single writer anyway; also keeps in-memory databases on one connection
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}
