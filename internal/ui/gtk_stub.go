//go:build nogtk || !cgo

package ui

import "errors"

// ErrNoGTK is returned by the GTK host when built without GTK support.
var ErrNoGTK = errors.New("built without GTK support (nogtk tag or cgo disabled)")

// GTK is a stub when GTK is not available.
type GTK struct{}

// GTKAvailable returns false when GTK is not available.
func GTKAvailable() bool {
	return false
}

// Init always fails without GTK.
func (g *GTK) Init() error {
	return ErrNoGTK
}

// Show is a no-op stub.
func (g *GTK) Show() {}

// Refresh is a no-op stub.
func (g *GTK) Refresh() {}

// Close is a no-op stub.
func (g *GTK) Close() {}
