package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Outbound Google API request timeout
const GoogleRequestTimeout = 10 * time.Second

// Token refresh: margin before computed expiry within which a proactive
// refresh is attempted
const TokenRefreshWindow = 5 * time.Minute

// Calendar sync window and page size (first page only)
const (
	CalendarLookahead  = 90 * 24 * time.Hour
	CalendarMaxResults = 100
)

// Per-run timeout for one user's calendar sync inside the background job
const SyncRunTimeout = 2 * time.Minute

// Default rate limiting
const DefaultRateLimitPerMin = 60
