// Package scraper drives the results portal through the shared browsing
// session and turns the rendered pages into domain snapshots.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"league-standings-service/internal/browser"
	"league-standings-service/internal/config"
	"league-standings-service/internal/domain"
	"league-standings-service/internal/logging"
	"league-standings-service/internal/metrics"
	"league-standings-service/internal/normalize"
	"league-standings-service/internal/partitions"
)

// Portal selectors. The portal is an ASP.NET form: the tier dropdown only
// populates after the division dropdown commits its postback.
const (
	selectorDivision       = "#ddlDivision"
	selectorTier           = "#ddlTier"
	selectorSearch         = "#btnSearch"
	selectorStandingsTable = "#gvStandings"
	selectorScheduleTable  = "#gvSchedule"
	selectorNextPage       = "#gvSchedule a.next"
)

const initialRetryInterval = 500 * time.Millisecond

// Submitter queues one operation against the shared browsing session.
type Submitter interface {
	Submit(ctx context.Context, label string, op browser.Operation) (any, error)
}

// Orchestrator owns the full scrape flow for a partition: one queued
// portal query per call, goquery extraction outside the session, pure
// normalization, and bounded retries around the whole attempt.
type Orchestrator struct {
	coord   Submitter
	cfg     config.ScraperConfig
	logger  *slog.Logger
	metrics *metrics.Recorder
	now     func() time.Time

	// retryInterval seeds the backoff; tests shrink it.
	retryInterval time.Duration
}

func New(coord Submitter, cfg config.ScraperConfig, logger *slog.Logger, recorder *metrics.Recorder) *Orchestrator {
	return &Orchestrator{
		coord:         coord,
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		now:           time.Now,
		retryInterval: initialRetryInterval,
	}
}

// Standings scrapes the standings table for a partition and returns a
// normalized snapshot stamped with the capture time.
func (o *Orchestrator) Standings(ctx context.Context, p partitions.Partition) (domain.StandingsSnapshot, error) {
	var snapshot domain.StandingsSnapshot
	err := o.withRetry(ctx, p, "standings", func() error {
		pages, err := o.fetchResults(ctx, "standings:"+p.Key(), o.cfg.StandingsURL, p, selectorStandingsTable, false)
		if err != nil {
			return err
		}
		rows, err := tableRows(pages[0], selectorStandingsTable)
		if err != nil {
			return err
		}
		parsed, skipped := normalize.Standings(rows, partitions.TeamNames())
		if skipped > 0 {
			logging.Warn(o.logger, "skipped malformed standing rows",
				logging.FieldPartition, p.Key(),
				logging.FieldDropped, skipped,
			)
		}
		if len(parsed) == 0 {
			return &ExtractionError{Reason: "no standing rows parsed"}
		}
		snapshot = domain.StandingsSnapshot{
			Partition:  p.Key(),
			Rows:       parsed,
			CapturedAt: o.now(),
		}
		return nil
	})
	return snapshot, err
}

// Schedule scrapes the comprehensive schedule for a partition, following one
// pagination control when the portal shows one.
func (o *Orchestrator) Schedule(ctx context.Context, p partitions.Partition) ([]domain.GameRecord, error) {
	var games []domain.GameRecord
	err := o.withRetry(ctx, p, "schedule", func() error {
		pages, err := o.fetchResults(ctx, "schedule:"+p.Key(), o.cfg.ScheduleURL, p, selectorScheduleTable, true)
		if err != nil {
			return err
		}

		now := o.now()
		var all []domain.GameRecord
		dropped := 0
		for _, html := range pages {
			rows, err := tableRows(html, selectorScheduleTable)
			if err != nil {
				return err
			}
			parsed, d := normalize.Games(rows, p.Division, p.Tier, now)
			all = append(all, parsed...)
			dropped += d
		}
		if dropped > 0 {
			logging.Warn(o.logger, "dropped unparseable game rows",
				logging.FieldPartition, p.Key(),
				logging.FieldDropped, dropped,
			)
		}
		if len(all) == 0 {
			return &ExtractionError{Reason: "no game rows parsed"}
		}
		games = all
		return nil
	})
	return games, err
}

// withRetry runs one scrape attempt up to MaxAttempts times with increasing
// backoff, recording every attempt.
func (o *Orchestrator) withRetry(ctx context.Context, p partitions.Partition, kind string, attemptFn func() error) error {
	attempt := 0
	operation := func() error {
		attempt++
		start := time.Now()
		err := attemptFn()
		o.metrics.RecordScrapeAttempt(p.Key(), time.Since(start), err)
		if err != nil {
			logging.Warn(o.logger, "scrape attempt failed",
				logging.FieldPartition, p.Key(),
				logging.FieldAttempt, attempt,
				"kind", kind,
				"error", err,
			)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = o.retryInterval
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(o.maxAttempts()-1)), ctx)
	return backoff.Retry(operation, policy)
}

func (o *Orchestrator) maxAttempts() int {
	if o.cfg.MaxAttempts < 1 {
		return 1
	}
	return o.cfg.MaxAttempts
}

// fetchResults submits a single queued operation that runs the whole portal
// query and returns the raw HTML of each results page.
func (o *Orchestrator) fetchResults(ctx context.Context, label, url string, p partitions.Partition, tableSelector string, paginate bool) ([]string, error) {
	value, err := o.coord.Submit(ctx, label, func(opCtx context.Context, s browser.Session) (any, error) {
		return o.runPortalQuery(opCtx, s, url, p, tableSelector, paginate)
	})
	if err != nil {
		return nil, err
	}
	pages, ok := value.([]string)
	if !ok || len(pages) == 0 {
		return nil, &ExtractionError{Reason: "empty portal response"}
	}
	return pages, nil
}

func (o *Orchestrator) runPortalQuery(ctx context.Context, s browser.Session, url string, p partitions.Partition, tableSelector string, paginate bool) ([]string, error) {
	page := s.Page().Context(ctx)

	nav := page.Timeout(o.cfg.NavTimeout)
	if err := nav.Navigate(url); err != nil {
		return nil, &NavigationError{Stage: "navigate", Err: err}
	}
	if err := nav.WaitLoad(); err != nil {
		return nil, &NavigationError{Stage: "load", Err: err}
	}

	if err := o.selectOption(page, selectorDivision, p.DivisionValue); err != nil {
		return nil, &NavigationError{Stage: "select division", Err: err}
	}
	// Let the division postback repopulate the tier dropdown.
	if err := o.settle(ctx); err != nil {
		return nil, err
	}
	if err := o.selectOption(page, selectorTier, p.TierValue); err != nil {
		return nil, &NavigationError{Stage: "select tier", Err: err}
	}
	if err := o.click(page, selectorSearch); err != nil {
		return nil, &NavigationError{Stage: "search", Err: err}
	}

	html, err := o.waitResults(page, tableSelector)
	if err != nil {
		return nil, err
	}
	pages := []string{html}

	if paginate {
		next, err := o.nextPage(ctx, page, tableSelector)
		if err != nil {
			return nil, err
		}
		if next != "" {
			pages = append(pages, next)
		}
	}
	return pages, nil
}

func (o *Orchestrator) selectOption(page *rod.Page, selector, value string) error {
	el, err := page.Timeout(o.cfg.WaitTimeout).Element(selector)
	if err != nil {
		return err
	}
	return el.Select([]string{fmt.Sprintf("[value=%q]", value)}, true, rod.SelectorTypeCSSSector)
}

func (o *Orchestrator) click(page *rod.Page, selector string) error {
	el, err := page.Timeout(o.cfg.WaitTimeout).Element(selector)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (o *Orchestrator) waitResults(page *rod.Page, tableSelector string) (string, error) {
	if _, err := page.Timeout(o.cfg.WaitTimeout).Element(tableSelector); err != nil {
		return "", &NavigationError{Stage: "wait results", Err: err}
	}
	html, err := page.HTML()
	if err != nil {
		return "", &NavigationError{Stage: "read page", Err: err}
	}
	return html, nil
}

// nextPage follows a single pagination link when the portal renders one and
// returns that page's HTML, or "" when the results fit on one page.
func (o *Orchestrator) nextPage(ctx context.Context, page *rod.Page, tableSelector string) (string, error) {
	has, el, err := page.Has(selectorNextPage)
	if err != nil || !has {
		return "", nil
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return "", &NavigationError{Stage: "next page", Err: err}
	}
	if err := o.settle(ctx); err != nil {
		return "", err
	}
	return o.waitResults(page, tableSelector)
}

func (o *Orchestrator) settle(ctx context.Context) error {
	t := time.NewTimer(o.cfg.SettleDelay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return &NavigationError{Stage: "settle", Err: ctx.Err()}
	}
}
