package metrics

import (
	"sync"
	"time"
)

type scrapeStats struct {
	attempts    int
	errors      int
	lastLatency time.Duration
}

type cacheStats struct {
	hits   int
	misses int
}

type queueStats struct {
	ops      int
	failures int
}

// Recorder captures lightweight, in-memory metrics about scrapes, cache
// lookups, and the coordinator queue. It is intentionally simple so it can
// be swapped for a real backend later.
type Recorder struct {
	mu      sync.Mutex
	scrapes map[string]*scrapeStats
	caches  map[string]*cacheStats
	queues  map[string]*queueStats
	otel    *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		scrapes: make(map[string]*scrapeStats),
		caches:  make(map[string]*cacheStats),
		queues:  make(map[string]*queueStats),
		otel:    otel,
	}
}

// RecordScrapeAttempt increments counters for one scrape of a partition and
// stores the last observed latency.
func (r *Recorder) RecordScrapeAttempt(partition string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats, ok := r.scrapes[partition]
	if !ok {
		stats = &scrapeStats{}
		r.scrapes[partition] = stats
	}
	stats.attempts++
	stats.lastLatency = duration
	if err != nil {
		stats.errors++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordScrapeAttempt(partition, duration, err)
	}
}

// RecordCacheLookup tracks a hit or miss against one of the cache tables,
// along with the served entry's age.
func (r *Recorder) RecordCacheLookup(table string, hit bool, age time.Duration) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats, ok := r.caches[table]
	if !ok {
		stats = &cacheStats{}
		r.caches[table] = stats
	}
	if hit {
		stats.hits++
	} else {
		stats.misses++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordCacheLookup(table, hit, age)
	}
}

// RecordQueueOperation tracks one coordinator operation: how long it waited
// in the queue, how long it executed, and whether it failed.
func (r *Recorder) RecordQueueOperation(label string, wait, exec time.Duration, err error) {
	if r == nil {
		return
	}

	r.mu.Lock()
	stats, ok := r.queues[label]
	if !ok {
		stats = &queueStats{}
		r.queues[label] = stats
	}
	stats.ops++
	if err != nil {
		stats.failures++
	}
	r.mu.Unlock()

	if r.otel != nil {
		r.otel.recordQueueOperation(label, wait, exec, err)
	}
}

// RecordRefreshCycle tracks full refresher passes and their errors.
func (r *Recorder) RecordRefreshCycle(duration time.Duration, err error) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordRefreshCycle(duration, err)
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// ScrapeAttempts returns the total scrapes recorded for a partition.
func (r *Recorder) ScrapeAttempts(partition string) int {
	s, _, _ := r.scrapeSnapshot(partition)
	return s
}

// ScrapeErrors returns the failed scrapes recorded for a partition.
func (r *Recorder) ScrapeErrors(partition string) int {
	_, e, _ := r.scrapeSnapshot(partition)
	return e
}

// LastScrapeLatency returns the last recorded scrape latency for a partition.
func (r *Recorder) LastScrapeLatency(partition string) time.Duration {
	_, _, l := r.scrapeSnapshot(partition)
	return l
}

// CacheHits returns recorded hits for a cache table.
func (r *Recorder) CacheHits(table string) int {
	h, _ := r.cacheSnapshot(table)
	return h
}

// CacheMisses returns recorded misses for a cache table.
func (r *Recorder) CacheMisses(table string) int {
	_, m := r.cacheSnapshot(table)
	return m
}

// QueueOperations returns recorded operations for a queue label.
func (r *Recorder) QueueOperations(label string) int {
	o, _ := r.queueSnapshot(label)
	return o
}

// QueueFailures returns recorded failed operations for a queue label.
func (r *Recorder) QueueFailures(label string) int {
	_, f := r.queueSnapshot(label)
	return f
}

func (r *Recorder) scrapeSnapshot(partition string) (attempts, errors int, last time.Duration) {
	if r == nil {
		return 0, 0, 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.scrapes[partition]; ok {
		return s.attempts, s.errors, s.lastLatency
	}
	return 0, 0, 0
}

func (r *Recorder) cacheSnapshot(table string) (hits, misses int) {
	if r == nil {
		return 0, 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.caches[table]; ok {
		return s.hits, s.misses
	}
	return 0, 0
}

func (r *Recorder) queueSnapshot(label string) (ops, failures int) {
	if r == nil {
		return 0, 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.queues[label]; ok {
		return s.ops, s.failures
	}
	return 0, 0
}
