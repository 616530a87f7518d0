package history

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/LambdaTest/coverage-extractor/pkg/errs"
	"github.com/LambdaTest/coverage-extractor/pkg/fileutils"
	"github.com/LambdaTest/coverage-extractor/pkg/global"
	"github.com/LambdaTest/coverage-extractor/pkg/logstream"
	"github.com/LambdaTest/coverage-extractor/pkg/lumber"
	libsql "github.com/tursodatabase/libsql-client-go/libsql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// Connect opens the history database and runs migrations.
// dsn is a SQLite file path or a libsql/Turso URL.
func Connect(dsn string, debug bool, l lumber.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errs.ErrHistoryDisabled
	}
	remote := isURL(dsn)
	token := os.Getenv(global.LibsqlAuthTokenEnv)
	l.Debugf("opening history database %s", logstream.RedactDSN(dsn))
	if !remote && !isMemory(dsn) {
		if err := fileutils.CreateIfNotExists(filepath.Dir(dsn), true); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	level := logger.Silent
	if debug {
		level = logger.Info
	}
	// SQL logs may echo connection errors, so credentials are masked first
	sqlLog := logstream.NewMasker(lumber.NewWriter(l, lumber.Debug), append(logstream.DSNSecrets(dsn), token)...)
	config := &gorm.Config{
		Logger: logger.New(log.New(sqlLog, "", 0), logger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
	}

	var (
		dialector gorm.Dialector
		conn      *sql.DB
	)
	if remote {
		var (
			connector driver.Connector
			err       error
		)
		if token != "" {
			connector, err = libsql.NewConnector(dsn, libsql.WithAuthToken(token))
		} else {
			connector, err = libsql.NewConnector(dsn)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create libsql connector: %w", err)
		}
		conn = sql.OpenDB(connector)
		dialector = sqlite.New(sqlite.Config{
			DriverName: "libsql",
			Conn:       conn,
			DSN:        dsn,
		})
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, config)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	if !remote {
		// a single connection keeps in-memory databases alive and avoids lock contention
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return db, nil
}

// Migrate runs database migrations
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Run{})
}

// isURL checks if the DSN is a URL (for Turso) or file path
func isURL(dsn string) bool {
	for _, scheme := range []string{"http://", "https://", "libsql://", "wss://", "ws://"} {
		if strings.HasPrefix(dsn, scheme) {
			return true
		}
	}
	return false
}

func isMemory(dsn string) bool {
	return dsn == ":memory:" || strings.HasPrefix(dsn, "file::memory:")
}
