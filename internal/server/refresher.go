package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"league-standings-service/internal/domain"
	"league-standings-service/internal/logging"
	"league-standings-service/internal/metrics"
	"league-standings-service/internal/partitions"
)

const defaultRefreshInterval = 45 * time.Minute

// Refreshable is the cache surface the refresher drives.
type Refreshable interface {
	Standings(ctx context.Context, division, tier string, force bool) (domain.StandingsSnapshot, error)
	PartitionSchedule(ctx context.Context, division, tier string, force bool) (domain.ScheduleSnapshot, error)
	WarmTeamSchedules(ctx context.Context, division, tier string) error
}

// Refresher force-refreshes every configured partition on an interval so
// request paths almost always hit a fresh cache.
type Refresher struct {
	cache    Refreshable
	logger   *slog.Logger
	metrics  *metrics.Recorder
	interval time.Duration
	parts    []partitions.Partition

	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the refresh loop.
type Status struct {
	ConsecutiveFailures int       `json:"consecutiveFailures"`
	LastError           string    `json:"lastError,omitempty"`
	LastAttempt         time.Time `json:"lastAttempt"`
	LastSuccess         time.Time `json:"lastSuccess"`
}

// IsReady reports whether the refresher has had a recent success and is not
// failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// NewRefresher constructs a Refresher over every configured partition.
func NewRefresher(cache Refreshable, logger *slog.Logger, recorder *metrics.Recorder, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	return &Refresher{
		cache:    cache,
		logger:   logger,
		metrics:  recorder,
		interval: interval,
		parts:    partitions.All(),
		done:     make(chan struct{}),
	}
}

// Start begins refreshing until the context is cancelled or Stop is called.
func (r *Refresher) Start(ctx context.Context) {
	r.startMu.Lock()
	if r.started {
		r.startMu.Unlock()
		return
	}
	r.started = true
	r.startMu.Unlock()

	r.ticker = time.NewTicker(r.interval)

	go func() {
		logging.Info(r.logger, "refresher started",
			logging.FieldDurationMS, r.interval.Milliseconds(),
			logging.FieldCount, len(r.parts),
		)
		// Initial cycle to warm the cache on boot.
		r.refreshOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				r.stopTicker()
				logging.Info(r.logger, "refresher stopped")
				return
			case <-r.done:
				r.stopTicker()
				logging.Info(r.logger, "refresher stopped")
				return
			case <-r.ticker.C:
				r.refreshOnce(ctx)
			}
		}
	}()
}

// Stop halts the refresh loop.
func (r *Refresher) Stop(ctx context.Context) error {
	_ = ctx
	r.stopOnce.Do(func() {
		close(r.done)
		r.stopTicker()
	})
	return nil
}

func (r *Refresher) refreshOnce(ctx context.Context) {
	start := time.Now()
	r.recordAttempt(start)

	var lastErr error
	failures := 0
	for _, p := range r.parts {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		default:
		}
		if err := r.refreshPartition(ctx, p); err != nil {
			failures++
			lastErr = err
			logging.Error(r.logger, "partition refresh failed", err,
				logging.FieldPartition, p.Key(),
			)
		}
	}

	r.metrics.RecordRefreshCycle(time.Since(start), lastErr)
	if lastErr != nil {
		r.recordFailure(lastErr, start)
		logging.Warn(r.logger, "refresh cycle completed with failures",
			logging.FieldCount, failures,
			logging.FieldDurationMS, time.Since(start).Milliseconds(),
		)
		return
	}

	r.recordSuccess(start)
	logging.Info(r.logger, "refresh cycle completed",
		logging.FieldCount, len(r.parts),
		logging.FieldDurationMS, time.Since(start).Milliseconds(),
	)
}

func (r *Refresher) refreshPartition(ctx context.Context, p partitions.Partition) error {
	if _, err := r.cache.Standings(ctx, p.Division, p.Tier, true); err != nil {
		return err
	}
	if _, err := r.cache.PartitionSchedule(ctx, p.Division, p.Tier, true); err != nil {
		return err
	}
	return r.cache.WarmTeamSchedules(ctx, p.Division, p.Tier)
}

func (r *Refresher) stopTicker() {
	if r.ticker != nil {
		r.ticker.Stop()
	}
}

func (r *Refresher) recordAttempt(at time.Time) {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	r.status.LastAttempt = at
}

func (r *Refresher) recordSuccess(at time.Time) {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	r.status.ConsecutiveFailures = 0
	r.status.LastError = ""
	r.status.LastSuccess = at
}

func (r *Refresher) recordFailure(err error, at time.Time) {
	r.statusMu.Lock()
	defer r.statusMu.Unlock()
	r.status.ConsecutiveFailures++
	if err != nil {
		r.status.LastError = err.Error()
	}
	r.status.LastAttempt = at
}

// Status returns a snapshot of the refresher's recent health.
func (r *Refresher) Status() Status {
	r.statusMu.RLock()
	defer r.statusMu.RUnlock()
	return r.status
}
