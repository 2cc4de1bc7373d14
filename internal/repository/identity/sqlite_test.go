package identity

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const licenseKey = "license_key"

// kioskConfig mirrors the table the kiosk application creates.
type kioskConfig struct {
	gorm.Model

	Key   string `gorm:"uniqueIndex"`
	Value string
}

func (kioskConfig) TableName() string {
	return "configs"
}

// newKioskDatabase creates a kiosk database holding the given rows.
func newKioskDatabase(t *testing.T, rows map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data.db")

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&kioskConfig{}))

	for key, value := range rows {
		require.NoError(t, db.Create(&kioskConfig{Key: key, Value: value}).Error)
	}

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	return path
}

// TestSQLiteRepository_Get reads a stored license key.
func TestSQLiteRepository_Get(t *testing.T) {
	t.Parallel()

	path := newKioskDatabase(t, map[string]string{
		licenseKey:   " ABC123 ",
		"system_type": "home",
	})

	value, ok := NewSQLiteRepository(path, licenseKey).Get(context.Background())
	require.True(t, ok)
	require.Equal(t, "ABC123", value)
}

// TestSQLiteRepository_Absent treats a missing file, a missing row and an empty value alike.
func TestSQLiteRepository_Absent(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"file missing": filepath.Join(t.TempDir(), "missing.db"),
		"row missing":  newKioskDatabase(t, map[string]string{"system_type": "home"}),
		"value empty":  newKioskDatabase(t, map[string]string{licenseKey: ""}),
		"not sqlite":   writeGarbage(t),
	}

	for name, path := range cases {
		value, ok := NewSQLiteRepository(path, licenseKey).Get(context.Background())
		require.False(t, ok, name)
		require.Empty(t, value, name)
	}
}

// TestSQLiteRepository_DoesNotCreateFile leaves a missing database missing.
func TestSQLiteRepository_DoesNotCreateFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.db")

	_, ok := NewSQLiteRepository(path, licenseKey).Get(context.Background())
	require.False(t, ok)

	_, err := os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestSQLiteRepository_SkipsDeletedRows ignores soft-deleted entries.
func TestSQLiteRepository_SkipsDeletedRows(t *testing.T) {
	t.Parallel()

	path := newKioskDatabase(t, map[string]string{licenseKey: "ABC123"})

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Where("key = ?", licenseKey).Delete(&kioskConfig{}).Error)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, ok := NewSQLiteRepository(path, licenseKey).Get(context.Background())
	require.False(t, ok)
}

func writeGarbage(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "garbage.db")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a database file"), 0o600))

	return path
}
