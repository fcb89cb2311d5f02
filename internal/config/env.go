package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var envOnce sync.Once

// LoadEnv loads a .env file from the working directory or its parent, once per
// process. Variables already present in the environment are not overridden.
// It reports the file that was loaded, or "" when none was found.
func LoadEnv() string {
	var loaded string
	envOnce.Do(func() {
		loaded = loadEnvFrom(".env", filepath.Join("..", ".env"))
	})
	return loaded
}

func loadEnvFrom(candidates ...string) string {
	for _, envFile := range candidates {
		if _, err := os.Stat(envFile); err != nil {
			continue
		}
		if err := godotenv.Load(envFile); err != nil {
			continue
		}
		return envFile
	}
	return ""
}

// GetEnv retrieves an environment variable with a fallback value if not set
func GetEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	return value
}
