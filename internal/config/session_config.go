package config

import "time"

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetRevalidateInterval() time.Duration {
	return GetEnvDuration("ACADEMY_REVALIDATE_INTERVAL", time.Minute)
}

func (Session) GetAdminRole() string {
	return "admin"
}
