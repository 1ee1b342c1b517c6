//go:build nogtk || !cgo

package main

import "context"

// runWithGTK falls back to the terminal host without GTK.
func (a *App) runWithGTK(ctx context.Context) error {
	return a.runHeadless(ctx)
}
