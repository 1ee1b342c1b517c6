// Package menu lets the user pick an event through a dmenu-style launcher.
package menu

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/cpuguy83/calpager/internal/calendar"
)

// ErrCancelled is returned when the user closed the launcher without choosing.
var ErrCancelled = errors.New("cancelled")

// Launchers in order of preference.
var launchers = []string{"rofi", "wofi", "fuzzel", "bemenu", "dmenu"}

// Config holds launcher configuration.
type Config struct {
	Program string   // launcher to use (auto-detect if empty)
	Args    []string // extra args to pass to the launcher
}

// Menu runs a launcher over a list of events.
type Menu struct {
	cfg     Config
	program string

	// run feeds lines to the launcher and returns the chosen line.
	run func(ctx context.Context, program string, args []string, input string) (string, error)
}

// Detect finds the first installed launcher.
func Detect() (string, error) {
	for _, prog := range launchers {
		if path, err := exec.LookPath(prog); err == nil && path != "" {
			return prog, nil
		}
	}
	return "", fmt.Errorf("no dmenu-compatible launcher found (tried: %s)", strings.Join(launchers, ", "))
}

// New creates a Menu, detecting the launcher if none is configured.
func New(cfg Config) (*Menu, error) {
	program := cfg.Program
	if program == "" {
		var err error
		program, err = Detect()
		if err != nil {
			return nil, err
		}
		slog.Debug("auto-detected launcher", "program", program)
	} else if _, err := exec.LookPath(program); err != nil {
		return nil, fmt.Errorf("launcher %q not found: %w", program, err)
	}

	return &Menu{cfg: cfg, program: program, run: runLauncher}, nil
}

// Pick lists items grouped by day and returns the one the user chose.
func (m *Menu) Pick(ctx context.Context, items []calendar.Item[calendar.Event], now time.Time) (calendar.Item[calendar.Event], error) {
	lines, byLine := formatEventList(items, now)

	selected, err := m.run(ctx, m.program, m.buildArgs("Go to"), strings.Join(lines, "\n"))
	if err != nil {
		return calendar.Item[calendar.Event]{}, err
	}

	selected = strings.TrimSpace(selected)
	if selected == "" || isSeparator(selected) {
		return calendar.Item[calendar.Event]{}, ErrCancelled
	}
	it, ok := byLine[selected]
	if !ok {
		slog.Debug("selection matches no event", "selected", selected)
		return calendar.Item[calendar.Event]{}, ErrCancelled
	}
	return it, nil
}

func runLauncher(ctx context.Context, program string, args []string, input string) (string, error) {
	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running launcher", "program", program, "args", args)

	if err := cmd.Run(); err != nil {
		// Exit code 1 means the user pressed Escape.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", ErrCancelled
		}
		return "", fmt.Errorf("%s failed: %w (stderr: %s)", program, err, stderr.String())
	}
	return stdout.String(), nil
}

// buildArgs builds command-line arguments for the launcher.
func (m *Menu) buildArgs(prompt string) []string {
	var args []string

	switch m.program {
	case "rofi":
		args = []string{"-dmenu", "-p", prompt, "-i"}
	case "wofi":
		args = []string{"--dmenu", "--prompt", prompt, "--insensitive"}
	case "fuzzel":
		args = []string{"--dmenu", "--prompt", prompt + ": "}
	case "bemenu":
		args = []string{"-p", prompt, "-i"}
	case "dmenu":
		args = []string{"-p", prompt, "-i", "-l", "20"}
	default:
		args = []string{"-p", prompt}
	}

	return append(args, m.cfg.Args...)
}
