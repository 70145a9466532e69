package config

// ScraperConfig holds portal navigation settings.
type ScraperConfig struct {
	StandingsURL string
	ScheduleURL  string
	NavTimeout   Duration
	WaitTimeout  Duration
	SettleDelay  Duration
	MaxAttempts  int
	Headless     bool
}

// MetricsConfig controls telemetry export.
type MetricsConfig struct {
	Enabled      bool
	Port         string
	ServiceName  string
	OtlpEndpoint string
	OtlpInsecure bool
}

// Config holds runtime configuration for the service.
type Config struct {
	Port            string
	CacheTTL        Duration
	RefreshInterval Duration
	RefreshEnabled  bool
	Scraper         ScraperConfig
	Metrics         MetricsConfig
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Port:            envOrDefault(envPort, defaultPort),
		CacheTTL:        durationEnvOrDefault(envCacheTTL, defaultCacheTTL),
		RefreshInterval: durationEnvOrDefault(envRefreshInterval, defaultRefreshInterval),
		RefreshEnabled:  boolEnvOrDefault(envRefreshEnabled, true),
		Scraper: ScraperConfig{
			StandingsURL: envOrDefault(envStandingsURL, defaultStandingsURL),
			ScheduleURL:  envOrDefault(envScheduleURL, defaultScheduleURL),
			NavTimeout:   durationEnvOrDefault(envNavTimeout, defaultNavTimeout),
			WaitTimeout:  durationEnvOrDefault(envWaitTimeout, defaultWaitTimeout),
			SettleDelay:  durationEnvOrDefault(envSettleDelay, defaultSettleDelay),
			MaxAttempts:  intEnvOrDefault(envScrapeAttempts, defaultScrapeAttempts),
			Headless:     boolEnvOrDefault(envHeadless, true),
		},
		Metrics: MetricsConfig{
			Enabled:      boolEnvOrDefault(envMetricsOn, false),
			Port:         envOrDefault(envMetricsPort, defaultMetricsPort),
			ServiceName:  envOrDefault(envOtelService, "league-standings-service"),
			OtlpEndpoint: envOrDefault(envOtelEndpoint, ""),
			OtlpInsecure: boolEnvOrDefault(envOtelInsecure, false),
		},
	}
}
