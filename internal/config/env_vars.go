package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	apiURLEnvVar          = "ACADEMY_API_URL"
	appNameVar            = "APP_NAME"
	logLevelVar           = "LOG_LEVEL"
	credentialsFileVar    = "ACADEMY_CREDENTIALS_FILE"
	credentialsPassVar    = "ACADEMY_CREDENTIALS_PASSPHRASE"
	devServerPortVar      = "DEVSERVER_PORT"
	defaultAPIURL         = "http://localhost:5000/api/v1"
	defaultCredentialsDir = ".academy-admin"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAPIURL() string {
	return GetEnv(apiURLEnvVar, defaultAPIURL)
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Academy Admin")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

// GetCredentialsFile returns where the credential set is persisted between runs.
// Defaults to ~/.academy-admin/credentials.json
func (EnvVars) GetCredentialsFile() string {
	if f := os.Getenv(credentialsFileVar); f != "" {
		return f
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, defaultCredentialsDir, "credentials.json")
}

func (EnvVars) GetCredentialsPassphrase() string {
	return GetEnv(credentialsPassVar, "")
}

func (EnvVars) GetDevServerPort() string {
	port := GetEnv(devServerPortVar, "5000")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetEnvDuration parses values such as "60s" or "1m". Invalid values fall back to the default.
func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func GetEnvInt64(envVar string, defaultValue int64) int64 {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.ParseInt(value, 10, 64)
	if err != nil || i <= 0 {
		return defaultValue
	}
	return i
}

func GetEnvFloat(envVar string, defaultValue float64) float64 {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil || f < 0 {
		return defaultValue
	}
	return f
}

func GetEnvBool(envVar string, defaultValue bool) bool {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
