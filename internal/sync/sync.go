// Package sync fills the event store from calendar sources.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/cpuguy83/calpager/internal/calendar"
	"github.com/cpuguy83/calpager/internal/config"
	"github.com/cpuguy83/calpager/internal/daterange"
	"github.com/cpuguy83/calpager/internal/filter"
)

// maxParallelFetches bounds concurrent source fetches.
const maxParallelFetches = 4

// sourceWithFilter pairs a calendar source with its optional filter.
type sourceWithFilter struct {
	source calendar.Source
	filter *filter.Filter
}

// Syncer fetches all sources for a window and replaces the store content.
type Syncer struct {
	sources  []sourceWithFilter
	filter   *filter.Filter
	store    *calendar.Store[calendar.Event]
	interval time.Duration
	schedule cron.Schedule
	output   string

	mu     sync.Mutex
	window daterange.Range

	trigger chan struct{}
}

// NewSyncer creates a Syncer from configuration. window is the range fetched
// on every sync; SetWindow moves it.
func NewSyncer(cfg *config.Config, store *calendar.Store[calendar.Event], window daterange.Range) (*Syncer, error) {
	sources, err := createSources(cfg.Sources)
	if err != nil {
		return nil, err
	}
	global, err := filter.New(cfg.Filters)
	if err != nil {
		return nil, fmt.Errorf("filters: %w", err)
	}

	s := &Syncer{
		sources:  sources,
		filter:   global,
		store:    store,
		interval: cfg.Sync.Interval,
		output:   cfg.Sync.Output,
		window:   window,
		trigger:  make(chan struct{}, 1),
	}
	if cfg.Sync.Schedule != "" {
		s.schedule, err = cron.ParseStandard(cfg.Sync.Schedule)
		if err != nil {
			return nil, fmt.Errorf("parse sync schedule: %w", err)
		}
	}
	return s, nil
}

// Interval returns the configured sync interval.
func (s *Syncer) Interval() time.Duration {
	return s.interval
}

// SourceCount returns the number of configured sources.
func (s *Syncer) SourceCount() int {
	return len(s.sources)
}

// Window returns the range fetched on every sync.
func (s *Syncer) Window() daterange.Range {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.window
}

// SetWindow moves the fetched range. It reports whether the window changed.
func (s *Syncer) SetWindow(r daterange.Range) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.window.Equal(r) {
		return false
	}
	s.window = r
	return true
}

// Sync fetches all sources in parallel, applies filters, and replaces the
// store content with the merged result. A source failure is logged and the
// other sources still count; Sync fails only if every source failed.
func (s *Syncer) Sync(ctx context.Context) ([]calendar.Event, error) {
	window := s.Window()
	slog.Info("starting sync", "sources", len(s.sources), "window", window)

	results := make([][]calendar.Event, len(s.sources))
	errs := make([]error, len(s.sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetches)
	for i, swf := range s.sources {
		g.Go(func() error {
			name := swf.source.Name()
			slog.Debug("fetching source", "name", name)

			events, err := swf.source.Fetch(gctx, window)
			if err != nil {
				slog.Warn("failed to fetch source", "name", name, "error", err)
				errs[i] = fmt.Errorf("source %s: %w", name, err)
				return nil
			}

			fetched := len(events)
			events = swf.filter.Apply(events)
			slog.Info("fetched source", "name", name, "fetched", fetched, "after_filter", len(events))
			results[i] = events
			return nil
		})
	}
	// Workers never return errors; failures are collected per source.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var firstErr error
	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if len(s.sources) > 0 && failed == len(s.sources) {
		return nil, firstErr
	}

	merged := s.filter.Apply(calendar.Merge(results...))
	if s.store != nil {
		s.store.Replace(calendar.Items(merged))
	}
	if s.output != "" {
		if err := calendar.WriteICS(s.output, merged); err != nil {
			slog.Warn("failed to write snapshot", "path", s.output, "error", err)
		}
	}

	slog.Info("sync complete", "events", len(merged), "failed_sources", failed)
	return merged, nil
}

// Trigger asks Run to sync ahead of schedule. Requests made while one is
// already pending are coalesced.
func (s *Syncer) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Run syncs immediately, then on the cron schedule if one is configured, or
// every interval otherwise. onSync is called after each sync. Run blocks
// until ctx is done.
func (s *Syncer) Run(ctx context.Context, onSync func([]calendar.Event, error)) {
	for {
		events, err := s.Sync(ctx)
		if ctx.Err() != nil {
			return
		}
		if onSync != nil {
			onSync(events, err)
		}

		wait := s.nextDelay(time.Now())
		slog.Debug("next sync", "in", wait)
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-s.trigger:
			timer.Stop()
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// nextDelay returns the time until the next scheduled sync.
func (s *Syncer) nextDelay(now time.Time) time.Duration {
	if s.schedule != nil {
		return s.schedule.Next(now).Sub(now)
	}
	if s.interval <= 0 {
		return 5 * time.Minute
	}
	return s.interval
}

// createSources creates calendar sources with their per-source filters from configuration.
func createSources(cfgs []config.SourceConfig) ([]sourceWithFilter, error) {
	var sources []sourceWithFilter

	for _, cfg := range cfgs {
		password, err := cfg.GetPassword()
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", cfg.Name, err)
		}

		var src calendar.Source
		switch cfg.Type {
		case "ics":
			src = calendar.NewICSSource(cfg.Name, cfg.URL, cfg.Username, password)
		case "caldav":
			src = calendar.NewCalDAVSource(cfg.Name, cfg.URL, cfg.Username, password, cfg.Calendars)
		case "icloud":
			src = calendar.NewICloudSource(cfg.Name, cfg.Username, password, cfg.Calendars)
		default:
			slog.Warn("unknown source type", "type", cfg.Type, "name", cfg.Name)
			continue
		}

		f, err := filter.New(cfg.Filters)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", cfg.Name, err)
		}

		sources = append(sources, sourceWithFilter{
			source: src,
			filter: f,
		})
	}

	return sources, nil
}
