package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cpuguy83/calpager/internal/calendar"
	"github.com/cpuguy83/calpager/internal/controller"
	"github.com/cpuguy83/calpager/internal/daterange"
	"github.com/cpuguy83/calpager/internal/filter"
	"github.com/cpuguy83/calpager/internal/navigation"
	"github.com/cpuguy83/calpager/internal/notify"
	"github.com/cpuguy83/calpager/internal/sync"
	"github.com/cpuguy83/calpager/internal/ui"
	"github.com/cpuguy83/calpager/internal/ui/menu"
)

func addRun(topLevel *cobra.Command, g *globalOptions) {
	app := &App{opts: g}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Show the calendar and keep it synced",
		Long: `Show the calendar and keep it synced.

With GTK the view is a window with a swipeable pager. Otherwise, or with
--headless, every page change is logged and the page is printed.

Send SIGUSR1 to pick an event from a dmenu-style launcher and scroll to it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.Run(cmd.Context())
		},
	}
	cmd.Flags().BoolVar(&app.headless, "headless", false, "print pages to stdout instead of opening a window")
	cmd.Flags().StringVar(&app.match, "match", "", "only show events whose title contains this text")
	cmd.Flags().StringVar(&app.launcher, "launcher", "", "launcher for SIGUSR1 event picking (default: auto-detect)")

	topLevel.AddCommand(cmd)
}

// App is the long-running calpager view.
type App struct {
	opts     *globalOptions
	headless bool
	match    string
	launcher string

	state   *navigation.State
	ctrl    *controller.Controller
	store   *calendar.Store[calendar.Event]
	display *filter.Filter
	syncer  *sync.Syncer
	host    ui.Host

	notifier *notify.Notifier
}

// failureCooldown limits sync failure notifications.
const failureCooldown = 30 * time.Minute

// Run builds the state and hands control to the host's main loop.
func (a *App) Run(ctx context.Context) error {
	now, err := a.opts.now()
	if err != nil {
		return err
	}
	if a.display, err = matchFilter(a.match); err != nil {
		return err
	}

	a.state, err = a.opts.newState(now)
	if err != nil {
		return err
	}
	defer a.state.Close()

	a.ctrl = a.opts.newController()
	a.ctrl.Attach(a.state)

	a.store = calendar.NewStore[calendar.Event]()
	a.syncer, err = sync.NewSyncer(a.opts.cfg, a.store, a.opts.syncWindow(a.state.Snapshot().VisibleRange))
	if err != nil {
		return fmt.Errorf("create syncer: %w", err)
	}
	if a.syncer.SourceCount() == 0 {
		return errors.New("no calendar sources configured")
	}

	slog.Info("starting calpager",
		"granularity", a.state.Granularity(),
		"pages", a.state.Indexer().NumPages(),
		"interval", a.syncer.Interval(),
	)

	if a.headless || !ui.GTKAvailable() {
		return a.runHeadless(ctx)
	}
	return a.runWithGTK(ctx)
}

// hostConfig is the host configuration shared by both backends.
func (a *App) hostConfig() ui.Config {
	return ui.Config{
		Title:  "calpager",
		State:  a.state,
		Store:  a.store,
		Filter: a.display,
	}
}

// activate starts background work once the host is up.
func (a *App) activate(ctx context.Context, host ui.Host) {
	a.host = host

	unsubscribe := a.state.VisibleRange().Subscribe(a.visibleChanged)
	context.AfterFunc(ctx, unsubscribe)

	a.startNotifier(ctx)

	go a.syncer.Run(ctx, func(events []calendar.Event, err error) {
		if err != nil {
			slog.Warn("sync failed", "error", err)
			a.notifySyncFailed(err)
			return
		}
		a.host.Refresh()
	})
	go a.pickOnSignal(ctx)
}

// runHeadless hosts the view in the terminal until ctx is done.
func (a *App) runHeadless(ctx context.Context) error {
	host := ui.NewTerminal(a.hostConfig(), os.Stdout)
	if err := host.Init(); err != nil {
		return fmt.Errorf("init terminal host: %w", err)
	}
	defer host.Close()

	a.activate(ctx, host)
	host.Show()

	<-ctx.Done()
	slog.Info("shutting down")
	return nil
}

// visibleChanged logs the new page and widens the sync window when the
// page moved outside it.
func (a *App) visibleChanged(visible daterange.Range) {
	slog.Info("visible range", "start", visible.Start.Format("2006-01-02"), "end", visible.End.Format("2006-01-02"))

	w := a.syncer.Window()
	if !w.Contains(visible.Start) || visible.End.After(w.End) {
		if a.syncer.SetWindow(a.opts.syncWindow(visible)) {
			a.syncer.Trigger()
		}
	}
}

// pickOnSignal opens the launcher on SIGUSR1 and animates to the chosen event.
func (a *App) pickOnSignal(ctx context.Context) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGUSR1)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigCh:
		}

		m, err := menu.New(menu.Config{Program: a.launcher})
		if err != nil {
			slog.Warn("event picker unavailable", "error", err)
			continue
		}
		items := a.display.ApplyItems(a.store.Between(a.syncer.Window()))
		now, _ := a.opts.now()
		it, err := m.Pick(ctx, items, now)
		if err != nil {
			if !errors.Is(err, menu.ErrCancelled) {
				slog.Warn("event picker failed", "error", err)
			}
			continue
		}

		slog.Debug("scrolling to event", "id", it.ID, "start", it.Span.Start)
		if err := a.ctrl.AnimateToEvent(ctx, it); err != nil && !errors.Is(err, navigation.ErrSuperseded) {
			slog.Warn("scroll to event failed", "id", it.ID, "error", err)
		}
	}
}

// startNotifier connects desktop notifications. They are optional.
func (a *App) startNotifier(ctx context.Context) {
	n, err := notify.New("calpager", failureCooldown)
	if err != nil {
		slog.Debug("desktop notifications unavailable", "error", err)
		return
	}
	if err := n.WatchActions(); err != nil {
		slog.Debug("notification actions unavailable", "error", err)
	}
	a.notifier = n
	context.AfterFunc(ctx, func() { n.Close() })
}

func (a *App) notifySyncFailed(err error) {
	if a.notifier == nil {
		return
	}
	_, nerr := a.notifier.Send(notify.Notification{
		Key:     "sync-failed",
		Summary: "Calendar sync failed",
		Body:    err.Error(),
		Urgency: notify.UrgencyNormal,
		Actions: []notify.Action{{Key: "retry", Label: "Retry", Run: a.syncer.Trigger}},
	})
	if nerr != nil {
		slog.Debug("notify sync failure", "error", nerr)
	}
}
