package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

const (
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
	DialectSQLite   = "sqlite"

	defaultAdminPassword = "admin123"
)

var (
	SECRET_KEY         = "dev-secret-key-change-in-production"
	DATABASE_URL       = "" // PostgreSQL will be used if this is set
	MYSQL_DSN          = "" // MySQL will be used if DATABASE_URL is not set and this is
	SQLITE_FILE        = "site.db"
	ADMIN_USERNAME     = "admin"
	ADMIN_PASSWORD     = defaultAdminPassword
	ADMIN_LOGIN_PATH   = "/admin/login"
	ADMIN_LOGIN_ALIAS  = "/manage-7f3a" // alternate login path, same handler
	BIND_ADDRESS       = "0.0.0.0:8080"
	TLS_DOMAINS        = "" // e.g. "example.com,example2.com"
	DEBUG_MODE         = true
	TEMPLATE_DIR       = "templates"
	STATIC_DIR         = "static"
	UPLOAD_ROOT        = "static/uploads"
	UPLOAD_URL_PREFIX  = "/static/uploads"
	MAX_CONTENT_LENGTH = int64(16 * 1024 * 1024)
	SESSION_MAX_AGE    = 365 * 86400
	TMP_DIR            = os.TempDir() // Staging area for remote (S3) storage
	// Local video uploads get a duration and a poster frame when these are installed. Empty disables
	FFMPEG_PATH   = "ffmpeg"
	EXIFTOOL_PATH = "exiftool"
	// Storage backend: "disk" or "s3"
	STORAGE_TYPE = "disk"
	S3_BUCKET    = ""
	S3_REGION    = "us-east-1"
	S3_ENDPOINT  = "" // For S3 compatible services
	S3_KEY       = ""
	S3_SECRET    = ""
	S3_PREFIX    = ""
)

func init() {
	// .env is optional
	_ = godotenv.Load()
	Load()
}

// Load (re)reads all settings from the environment
func Load() {
	readEnvString("SECRET_KEY", &SECRET_KEY)
	readEnvString("DATABASE_URL", &DATABASE_URL)
	readEnvString("MYSQL_DSN", &MYSQL_DSN)
	readEnvString("SQLITE_FILE", &SQLITE_FILE)
	readEnvString("ADMIN_USERNAME", &ADMIN_USERNAME)
	readEnvString("ADMIN_PASSWORD", &ADMIN_PASSWORD)
	readEnvString("ADMIN_LOGIN_ALIAS", &ADMIN_LOGIN_ALIAS)
	readEnvString("BIND_ADDRESS", &BIND_ADDRESS)
	readEnvString("TLS_DOMAINS", &TLS_DOMAINS)
	readEnvBool("DEBUG_MODE", &DEBUG_MODE)
	readEnvString("TEMPLATE_DIR", &TEMPLATE_DIR)
	readEnvString("STATIC_DIR", &STATIC_DIR)
	readEnvString("UPLOAD_ROOT", &UPLOAD_ROOT)
	readEnvInt64("MAX_CONTENT_LENGTH", &MAX_CONTENT_LENGTH)
	readEnvInt("SESSION_MAX_AGE", &SESSION_MAX_AGE)
	readEnvString("TMP_DIR", &TMP_DIR)
	readEnvString("FFMPEG_PATH", &FFMPEG_PATH)
	readEnvString("EXIFTOOL_PATH", &EXIFTOOL_PATH)
	readEnvString("STORAGE_TYPE", &STORAGE_TYPE)
	readEnvString("S3_BUCKET", &S3_BUCKET)
	readEnvString("S3_REGION", &S3_REGION)
	readEnvString("S3_ENDPOINT", &S3_ENDPOINT)
	readEnvString("S3_KEY", &S3_KEY)
	readEnvString("S3_SECRET", &S3_SECRET)
	readEnvString("S3_PREFIX", &S3_PREFIX)

	DATABASE_URL = NormalizeDatabaseURL(DATABASE_URL)
}

// NormalizeDatabaseURL rewrites the legacy postgres:// scheme some hosting
// providers hand out into postgresql://
func NormalizeDatabaseURL(url string) string {
	if strings.HasPrefix(url, "postgres://") {
		return "postgresql://" + strings.TrimPrefix(url, "postgres://")
	}
	return url
}

// Database returns the dialect and DSN to connect with.
// Precedence: DATABASE_URL, MYSQL_DSN, SQLITE_FILE
func Database() (dialect, dsn string, err error) {
	if DATABASE_URL != "" {
		return DialectPostgres, DATABASE_URL, nil
	}
	if MYSQL_DSN != "" {
		cfg, err := mysql.ParseDSN(MYSQL_DSN)
		if err != nil {
			return "", "", err
		}
		// timestamps are scanned into time.Time
		cfg.ParseTime = true
		return DialectMySQL, cfg.FormatDSN(), nil
	}
	return DialectSQLite, SQLITE_FILE, nil
}

// UsingDefaultAdminPassword is true when ADMIN_PASSWORD was never configured
func UsingDefaultAdminPassword() bool {
	return ADMIN_PASSWORD == defaultAdminPassword
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*value = i
}

func readEnvInt64(name string, value *int64) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return
	}
	*value = i
}
