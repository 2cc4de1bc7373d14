package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"radiantwavetech.com/radiantwave-updater/internal/logger"
)

// Repository resolves the device identity.
type Repository interface {
	// Get returns the identity and whether one is set.
	Get(ctx context.Context) (string, bool)
}

// configEntry is the key/value row written by the kiosk application.
// DeletedAt makes gorm skip soft-deleted rows.
type configEntry struct {
	Key       string
	Value     string
	DeletedAt gorm.DeletedAt
}

// TableName binds configEntry to the kiosk schema.
func (configEntry) TableName() string {
	return "configs"
}

// SQLiteRepository performs a read-only point lookup in the kiosk database.
type SQLiteRepository struct {
	// path is the database file location.
	path string
	// key is the configs row holding the identity.
	key string
}

var errDatabaseMissing = errors.New("database file does not exist")

// NewSQLiteRepository creates a repository reading key from the database at path.
func NewSQLiteRepository(path, key string) *SQLiteRepository {
	return &SQLiteRepository{
		path: filepath.Clean(path),
		key:  key,
	}
}

// Get opens the database read-only, reads the key and closes it again.
func (r *SQLiteRepository) Get(ctx context.Context) (string, bool) {
	value, err := r.lookup(ctx)
	if err != nil {
		logger.DebugKV(ctx, "Device identity unavailable", "database", r.path, "key", r.key, "reason", err)
		return "", false
	}

	value = strings.TrimSpace(value)
	if value == "" {
		logger.DebugKV(ctx, "Device identity is empty", "database", r.path, "key", r.key)
		return "", false
	}

	return value, true
}

func (r *SQLiteRepository) lookup(ctx context.Context) (string, error) {
	// Opening a missing file would create it.
	if _, err := os.Stat(r.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", errDatabaseMissing
		}

		return "", fmt.Errorf("stat database: %w", err)
	}

	db, err := gorm.Open(sqlite.Open("file:"+r.path+"?mode=ro"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return "", fmt.Errorf("open database: %w", err)
	}

	defer func() {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
	}()

	var entry configEntry

	err = db.WithContext(ctx).
		Model(&configEntry{}).
		Where("key = ?", r.key).
		Take(&entry).Error
	if err != nil {
		return "", fmt.Errorf("read %s: %w", r.key, err)
	}

	return entry.Value, nil
}
