//go:build !nogtk && cgo

package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/diamondburned/gotk4/pkg/gio/v2"
	"github.com/diamondburned/gotk4/pkg/glib/v2"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/cpuguy83/calpager/internal/ui"
)

// runWithGTK runs the view in a GTK window until it closes or ctx is done.
func (a *App) runWithGTK(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	gtkApp := gtk.NewApplication("com.github.cpuguy83.calpager", gio.ApplicationFlagsNone)

	var host *ui.GTK
	gtkApp.ConnectActivate(func() {
		host = ui.NewGTK(a.hostConfig(), gtkApp)
		if err := host.Init(); err != nil {
			slog.Error("activation failed", "error", err)
			gtkApp.Quit()
			return
		}
		a.activate(ctx, host)
		host.Show()
	})

	// Quit GTK gracefully on signal.
	go func() {
		<-ctx.Done()
		glib.IdleAdd(func() {
			gtkApp.Quit()
		})
	}()

	// Blocks until the last window closes or Quit is called.
	if code := gtkApp.Run(nil); code != 0 {
		return fmt.Errorf("GTK application exited with code %d", code)
	}

	if host != nil {
		host.Close()
	}
	slog.Info("shutting down")
	return nil
}
