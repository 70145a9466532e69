package server

import "time"

const (
	readTimeout = 10 * time.Second
	// Cold-cache requests wait for a full portal scrape, including retries.
	writeTimeout = 120 * time.Second
	idleTimeout  = 60 * time.Second
)

// shutdownTimeout remains a var for tests to override.
var shutdownTimeout = 10 * time.Second
