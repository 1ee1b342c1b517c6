package calendar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	ics "github.com/emersion/go-ical"

	"github.com/cpuguy83/calpager/internal/daterange"
)

const icsTimeout = 30 * time.Second

// ICSSource reads events from a published iCalendar feed.
type ICSSource struct {
	name string
	url  string
	http *http.Client

	// MaxOccurrences caps recurring-event expansion; zero means
	// DefaultMaxOccurrences.
	MaxOccurrences int
	// Location is used for floating times; nil means time.Local.
	Location *time.Location
}

// NewICSSource returns a source for the feed at url. Credentials are sent
// as basic auth when both are set.
func NewICSSource(name, url, username, password string) *ICSSource {
	client := &http.Client{Timeout: icsTimeout}
	if username != "" && password != "" {
		client.Transport = basicAuth{username: username, password: password, base: http.DefaultTransport}
	}
	return &ICSSource{name: name, url: url, http: client}
}

// Name returns the display name of this calendar source.
func (s *ICSSource) Name() string { return s.name }

// Fetch downloads the feed and returns its events intersecting rng.
func (s *ICSSource) Fetch(ctx context.Context, rng daterange.Range) ([]Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed %s: %w", s.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed %s: %s", s.name, resp.Status)
	}
	return s.parseICS(resp.Body, rng)
}

func (s *ICSSource) parseICS(r io.Reader, rng daterange.Range) ([]Event, error) {
	opts := decodeOptions{source: s.name, loc: s.Location, maxOccurrences: s.MaxOccurrences}

	var events []Event
	err := eachEvent(r, func(comp *ics.Component) {
		parsed, capped, err := decodeEvent(comp, rng, opts)
		if err != nil {
			slog.Debug("skipping unparseable event", "source", s.name, "error", err)
			return
		}
		if capped {
			slog.Warn("recurrence expansion capped", "source", s.name, "uid", textProp(comp, ics.PropUID))
		}
		for _, ev := range parsed {
			if ev.Span().Overlaps(rng) {
				events = append(events, ev)
			}
		}
	})
	return events, err
}

// eachEvent calls fn for every VEVENT of every calendar object in r.
func eachEvent(r io.Reader, fn func(*ics.Component)) error {
	dec := ics.NewDecoder(r)
	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decode ICS: %w", err)
		}
		for _, comp := range cal.Children {
			if comp.Name == ics.CompEvent {
				fn(comp)
			}
		}
	}
}

var _ Source = (*ICSSource)(nil)
