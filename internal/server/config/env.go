package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// parseEnv loads dotEnvPath (if it exists) into the process environment
// without overriding variables that are already set, then overlays every
// NOTEKEEPER_* variable onto config. Unset variables leave fields untouched.
func parseEnv(config *Config, dotEnvPath string) error {
	if dotEnvPath != "" {
		if err := godotenv.Load(dotEnvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return env.Parse(config)
}
