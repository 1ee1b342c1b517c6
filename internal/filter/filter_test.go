package filter

import (
	"testing"

	"github.com/cpuguy83/calpager/internal/calendar"
	"github.com/cpuguy83/calpager/internal/config"
)

func TestFilter(t *testing.T) {
	events := []calendar.Event{
		{UID: "1", Summary: "Team Standup", Source: "work"},
		{UID: "2", Summary: "[cancelled] Team Standup", Source: "work"},
		{UID: "3", Summary: "Dentist", Source: "home", Location: "Main St"},
		{UID: "4", Summary: "1:1 with lead", Source: "work", Organizer: "lead@example.com"},
	}

	tests := []struct {
		name string
		cfg  config.FilterConfig
		want []string
	}{
		{
			name: "no rules passes everything",
			want: []string{"1", "2", "3", "4"},
		},
		{
			name: "or mode",
			cfg: config.FilterConfig{Rules: []config.FilterRule{
				{Field: "title", Contains: "standup", CaseInsensitive: true},
				{Field: "source", Exact: "home"},
			}},
			want: []string{"1", "2", "3"},
		},
		{
			name: "and mode",
			cfg: config.FilterConfig{Mode: "and", Rules: []config.FilterRule{
				{Field: "source", Exact: "work"},
				{Field: "organizer", Suffix: "@example.com"},
			}},
			want: []string{"4"},
		},
		{
			name: "exclude wins over include",
			cfg: config.FilterConfig{
				Rules:   []config.FilterRule{{Field: "source", Exact: "work"}},
				Exclude: []config.FilterRule{{Field: "title", Prefix: "[cancelled]"}},
			},
			want: []string{"1", "4"},
		},
		{
			name: "exclude only",
			cfg: config.FilterConfig{
				Exclude: []config.FilterRule{{Field: "summary", Regex: `^\d+:\d+`}},
			},
			want: []string{"1", "2", "3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New(tt.cfg)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			got := f.ApplyItems(calendar.Items(events))
			if len(got) != len(tt.want) {
				t.Fatalf("got %d events, want %v", len(got), tt.want)
			}
			for i, it := range got {
				if it.ID != tt.want[i] {
					t.Errorf("event %d = %s, want %s", i, it.ID, tt.want[i])
				}
			}
		})
	}
}

func TestNewRejectsBadRules(t *testing.T) {
	for _, cfg := range []config.FilterConfig{
		{Mode: "xor"},
		{Rules: []config.FilterRule{{Field: "title"}}},
		{Rules: []config.FilterRule{{Field: "colour", Contains: "red"}}},
		{Exclude: []config.FilterRule{{Field: "title", Regex: "("}}},
	} {
		if _, err := New(cfg); err == nil {
			t.Errorf("New(%+v) succeeded", cfg)
		}
	}
}
