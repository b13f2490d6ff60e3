package constants

import "time"

// Cache freshness windows. A cached record within its window is served
// without touching the upstream API.
const (
	ProfileRefreshTTL = 7 * 24 * time.Hour
	GuildRefreshTTL   = 24 * time.Hour
	ParseRefreshTTL   = 24 * time.Hour
)

// ExternalAPITimeout bounds reads and writes on the upstream HTTP clients.
const (
	ExternalAPITimeout = 10 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

// Client-side throttle for the upstream profile API, kept below the
// documented per-second quota.
const (
	UpstreamRequestsPerSecond = 50
	UpstreamBurst             = 10
)

const (
	RecentListLimit = 10
)
