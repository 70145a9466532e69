package config

import "time"

const (
	envPort            = "PORT"
	envCacheTTL        = "CACHE_TTL"
	envRefreshInterval = "REFRESH_INTERVAL"
	envRefreshEnabled  = "REFRESH_ENABLED"
	envStandingsURL    = "STANDINGS_URL"
	envScheduleURL     = "SCHEDULE_URL"
	envNavTimeout      = "NAV_TIMEOUT"
	envWaitTimeout     = "WAIT_TIMEOUT"
	envSettleDelay     = "SETTLE_DELAY"
	envScrapeAttempts  = "SCRAPE_ATTEMPTS"
	envHeadless        = "HEADLESS"
	envMetricsPort     = "METRICS_PORT"
	envMetricsOn       = "METRICS_ENABLED"
	envOtelEndpoint    = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService     = "OTEL_SERVICE_NAME"
	envOtelInsecure    = "OTEL_EXPORTER_OTLP_INSECURE"

	defaultPort = "4000"
	// Staleness threshold shared by all three cache tables.
	defaultCacheTTL = 30 * Duration(time.Minute)
	// Full-league refresh cadence; a complete pass touches every partition
	// through the one browser session, so keep cycles well apart.
	defaultRefreshInterval = 45 * Duration(time.Minute)
	defaultStandingsURL    = "https://stats.yorksimcoebaseball.ca/standings.aspx"
	defaultScheduleURL     = "https://stats.yorksimcoebaseball.ca/schedule.aspx"
	// Navigation/render waits; raised in resource-constrained deployments.
	defaultNavTimeout  = 30 * Duration(time.Second)
	defaultWaitTimeout = 20 * Duration(time.Second)
	// The tier dropdown only populates after the division select commits.
	defaultSettleDelay    = 750 * Duration(time.Millisecond)
	defaultScrapeAttempts = 3
	defaultMetricsPort    = "9090"
)
