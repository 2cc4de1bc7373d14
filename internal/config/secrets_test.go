package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const authKeyVariable = "RADIANTWAVE_OVERLAY_AUTH_KEY"

// TestLoadSecrets_FromEnvFile reads the key from a provisioned env file.
func TestLoadSecrets_FromEnvFile(t *testing.T) {
	t.Setenv(authKeyVariable, "")
	require.NoError(t, os.Unsetenv(authKeyVariable))

	path := filepath.Join(t.TempDir(), "overlay.env")
	require.NoError(t, os.WriteFile(path, []byte(authKeyVariable+"=tskey-from-file\n"), DefaultFilePermissions))

	secrets, err := LoadSecrets(path)
	require.NoError(t, err)
	require.Equal(t, "tskey-from-file", secrets.OverlayAuthKey)
}

// TestLoadSecrets_EnvironmentWins keeps an explicitly exported key over the file.
func TestLoadSecrets_EnvironmentWins(t *testing.T) {
	t.Setenv(authKeyVariable, "tskey-from-env")

	path := filepath.Join(t.TempDir(), "overlay.env")
	require.NoError(t, os.WriteFile(path, []byte(authKeyVariable+"=tskey-from-file\n"), DefaultFilePermissions))

	secrets, err := LoadSecrets(path)
	require.NoError(t, err)
	require.Equal(t, "tskey-from-env", secrets.OverlayAuthKey)
}

// TestLoadSecrets_MissingFile is not an error: the key may simply be absent.
func TestLoadSecrets_MissingFile(t *testing.T) {
	t.Setenv(authKeyVariable, "")
	require.NoError(t, os.Unsetenv(authKeyVariable))

	secrets, err := LoadSecrets(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	require.Empty(t, secrets.OverlayAuthKey)
}
