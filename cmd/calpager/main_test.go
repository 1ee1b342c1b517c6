package main

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/cpuguy83/calpager/internal/config"
	"github.com/cpuguy83/calpager/internal/daterange"
)

func TestNewStateUsesConfiguredTimezone(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "fallback range", yaml: "view:\n  granularity: day\n  timezone: Asia/Tokyo\n"},
		{name: "fallback days", yaml: "view:\n  granularity: week\n  timezone: Asia/Tokyo\n  fallback_range_span_days: 30\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Parse([]byte(tt.yaml))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			tokyo, err := cfg.Location()
			if err != nil {
				t.Fatal(err)
			}

			o := &globalOptions{cfg: cfg}
			// The initial date arrives in UTC; pages still follow the config.
			initial := time.Now().UTC()
			state, err := o.newState(initial)
			if err != nil {
				t.Fatalf("newState: %v", err)
			}
			defer state.Close()

			visible := state.Snapshot().VisibleRange
			if visible.Start.Location().String() != tokyo.String() {
				t.Errorf("visible range zone = %v, want %v", visible.Start.Location(), tokyo)
			}
			if !visible.Contains(initial) {
				t.Errorf("visible range %v does not contain %v", visible, initial)
			}
			if got := daterange.StartOfDay(visible.Start); !got.Equal(visible.Start) {
				t.Errorf("visible range starts %v, not at Tokyo midnight", visible.Start)
			}
		})
	}
}
