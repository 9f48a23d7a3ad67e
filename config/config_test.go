package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDatabaseURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"legacy scheme", "postgres://u:p@host:5432/db", "postgresql://u:p@host:5432/db"},
		{"already normalized", "postgresql://u:p@host/db", "postgresql://u:p@host/db"},
		{"only prefix replaced", "postgres://postgres://x", "postgresql://postgres://x"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDatabaseURL(tt.in))
		})
	}
}

func TestDatabasePrecedence(t *testing.T) {
	oldURL, oldMySQL, oldSQLite := DATABASE_URL, MYSQL_DSN, SQLITE_FILE
	t.Cleanup(func() { DATABASE_URL, MYSQL_DSN, SQLITE_FILE = oldURL, oldMySQL, oldSQLite })

	DATABASE_URL, MYSQL_DSN, SQLITE_FILE = "", "", "site.db"
	dialect, dsn, err := Database()
	require.NoError(t, err)
	assert.Equal(t, DialectSQLite, dialect)
	assert.Equal(t, "site.db", dsn)

	MYSQL_DSN = "root:@tcp(127.0.0.1:3306)/site"
	dialect, dsn, err = Database()
	require.NoError(t, err)
	assert.Equal(t, DialectMySQL, dialect)
	assert.Contains(t, dsn, "parseTime=true")

	DATABASE_URL = "postgresql://u@h/db"
	dialect, dsn, err = Database()
	require.NoError(t, err)
	assert.Equal(t, DialectPostgres, dialect)
	assert.Equal(t, DATABASE_URL, dsn)
}

func TestDatabaseRejectsBadMySQLDSN(t *testing.T) {
	oldURL, oldMySQL := DATABASE_URL, MYSQL_DSN
	t.Cleanup(func() { DATABASE_URL, MYSQL_DSN = oldURL, oldMySQL })

	DATABASE_URL, MYSQL_DSN = "", "not a dsn"
	_, _, err := Database()
	assert.Error(t, err)
}

func TestLoadReadsEnvironment(t *testing.T) {
	oldURL, oldMax, oldDebug := DATABASE_URL, MAX_CONTENT_LENGTH, DEBUG_MODE
	t.Cleanup(func() { DATABASE_URL, MAX_CONTENT_LENGTH, DEBUG_MODE = oldURL, oldMax, oldDebug })

	t.Setenv("DATABASE_URL", "postgres://render@db/site")
	t.Setenv("MAX_CONTENT_LENGTH", "1024")
	t.Setenv("DEBUG_MODE", "off")
	Load()
	assert.Equal(t, "postgresql://render@db/site", DATABASE_URL)
	assert.Equal(t, int64(1024), MAX_CONTENT_LENGTH)
	assert.False(t, DEBUG_MODE)
}
