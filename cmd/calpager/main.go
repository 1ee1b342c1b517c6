// calpager pages through a calendar synced from ICS and CalDAV sources.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cpuguy83/calpager/internal/config"
	"github.com/cpuguy83/calpager/internal/controller"
	"github.com/cpuguy83/calpager/internal/daterange"
	"github.com/cpuguy83/calpager/internal/filter"
	"github.com/cpuguy83/calpager/internal/navigation"
)

const (
	layoutISO      = "2006-1-2"
	layoutISOShort = "1/2"
)

// globalOptions are the flags shared by every subcommand.
type globalOptions struct {
	ConfigPath string
	Verbose    bool
	Debug      bool

	cfg *config.Config
}

func main() {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "calpager",
		Short:         "Page through your calendars by day, week or month",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
	}
	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (default: ~/.config/calpager/config.yaml)")
	root.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose logging")
	root.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "panic on controller precondition violations")

	addPages(root, opts)
	addLayout(root, opts)
	addRun(root, opts)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		slog.Error("calpager failed", "error", err)
		os.Exit(1)
	}
}

// setup configures logging and loads the configuration.
func (o *globalOptions) setup() error {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var err error
	if o.ConfigPath != "" {
		o.cfg, err = config.LoadFrom(o.ConfigPath)
	} else {
		o.cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return nil
}

// newState builds the navigation state for the configured view, positioned
// on the page containing initial. Pages are laid out in the configured
// timezone.
func (o *globalOptions) newState(initial time.Time) (*navigation.State, error) {
	g, err := o.cfg.Granularity()
	if err != nil {
		return nil, err
	}
	rng, err := o.cfg.Range()
	if err != nil {
		return nil, err
	}
	loc, err := o.cfg.Location()
	if err != nil {
		return nil, err
	}
	return navigation.New(navigation.Options{
		Granularity: g,
		Range:       rng,
		Initial:     initial.In(loc),
		Now:         func() time.Time { return time.Now().In(loc) },
		Zoom:        o.cfg.View.Zoom,
		Config:      o.cfg.Navigation(),
	})
}

func (o *globalOptions) newController() *controller.Controller {
	return controller.New(controller.Options{Debug: o.Debug, Logger: slog.Default()})
}

// syncWindow pads visible by the configured sync window on both sides.
func (o *globalOptions) syncWindow(visible daterange.Range) daterange.Range {
	w := o.cfg.Sync.Window
	return daterange.Range{Start: visible.Start.Add(-w), End: visible.End.Add(w)}
}

// now returns the current time in the configured timezone.
func (o *globalOptions) now() (time.Time, error) {
	loc, err := o.cfg.Location()
	if err != nil {
		return time.Time{}, err
	}
	return time.Now().In(loc), nil
}

// matchFilter narrows displayed events to titles containing match.
func matchFilter(match string) (*filter.Filter, error) {
	if match == "" {
		return nil, nil
	}
	return filter.New(config.FilterConfig{
		Rules: []config.FilterRule{{Field: "title", Contains: match, CaseInsensitive: true}},
	})
}

// parseDate accepts "2006-1-2" or "1/2". A short date is this year's.
func parseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.ParseInLocation(layoutISO, s, now.Location()); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(layoutISOShort, s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: want YYYY-M-D or M/D", s)
	}
	return t.AddDate(now.Year(), 0, 0), nil
}
