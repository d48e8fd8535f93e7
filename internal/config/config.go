package config

import (
	"time"

	"github.com/joho/godotenv"
)

type Config interface {
	EnvConfig
	ClientConfig
	SessionConfig
	ImageConfig
}

type EnvConfig interface {
	GetAPIURL() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	GetCredentialsFile() string
	GetCredentialsPassphrase() string
	GetDevServerPort() string
}

type ClientConfig interface {
	GetRequestTimeout() time.Duration
	GetMaxContentLength() int64
	GetRefreshPath() string
	GetRateLimit() float64
	GetLegacyPermissionMatch() bool
}

type SessionConfig interface {
	GetRevalidateInterval() time.Duration
	GetAdminRole() string
}

type mainConfig struct {
	EnvVars
	Client
	Session
	Images
}

// New loads any .env files found in the working directory and returns the
// environment backed configuration. Missing .env files are not an error.
func New(envFiles ...string) Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}
	return mainConfig{}
}
