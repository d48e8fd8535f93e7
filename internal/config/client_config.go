package config

import "time"

type Client struct{}

var _ ClientConfig = Client{}

// GetRequestTimeout bounds every backend call, refresh included.
func (Client) GetRequestTimeout() time.Duration {
	return GetEnvDuration("ACADEMY_REQUEST_TIMEOUT", 60*time.Second)
}

// GetMaxContentLength is large enough to carry inline base64 images.
func (Client) GetMaxContentLength() int64 {
	return GetEnvInt64("ACADEMY_MAX_CONTENT_LENGTH", 50*1024*1024)
}

func (Client) GetRefreshPath() string {
	return "/auth/refresh-token"
}

// GetRateLimit is requests per second, 0 disables limiting
func (Client) GetRateLimit() float64 {
	return GetEnvFloat("ACADEMY_RATE_LIMIT", 0)
}

// GetLegacyPermissionMatch keeps treating a 403 whose message mentions "permission"
// as session ending for backends that do not send an error code yet.
func (Client) GetLegacyPermissionMatch() bool {
	return GetEnvBool("ACADEMY_LEGACY_PERMISSION_MATCH", true)
}
