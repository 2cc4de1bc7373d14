package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"go-simpler.org/env"
)

// Secrets holds credentials provisioned outside the YAML settings.
type Secrets struct {
	// OverlayAuthKey is the pre-shared key used to join the overlay network.
	OverlayAuthKey string `env:"RADIANTWAVE_OVERLAY_AUTH_KEY"`
}

// LoadSecrets reads secrets from the environment. When envFile exists its
// variables are loaded first; variables already set in the environment win.
// A missing envFile is not an error.
func LoadSecrets(envFile string) (*Secrets, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	var secrets Secrets
	if err := env.Load(&secrets, nil); err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}

	return &secrets, nil
}
