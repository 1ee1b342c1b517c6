package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	ics "github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
	"golang.org/x/sync/errgroup"

	"github.com/cpuguy83/calpager/internal/daterange"
)

const (
	// iCloudCalDAVURL is the base URL for iCloud CalDAV.
	iCloudCalDAVURL = "https://caldav.icloud.com"

	caldavTimeout      = 60 * time.Second
	maxCalendarQueries = 4
)

// eventProps are the VEVENT properties requested from the server.
var eventProps = []string{
	"UID", "SUMMARY", "DESCRIPTION", "LOCATION", "URL", "ORGANIZER",
	"DTSTART", "DTEND", "DURATION", "RRULE", "RDATE", "EXDATE",
}

// CalDAVSource queries the calendars of one CalDAV account. The principal
// and calendar list are discovered on the first fetch and reused until a
// fetch fails entirely.
type CalDAVSource struct {
	name string
	url  string
	http *http.Client
	only map[string]bool // lowercased calendar names; empty selects all

	// MaxOccurrences caps recurring-event expansion; zero means
	// DefaultMaxOccurrences.
	MaxOccurrences int

	mu     sync.Mutex
	client *caldav.Client
	cals   []caldav.Calendar
}

// NewCalDAVSource creates a CalDAV source. calendars, if set, restricts the
// fetch to calendars with those names.
func NewCalDAVSource(name, url, username, password string, calendars []string) *CalDAVSource {
	only := make(map[string]bool, len(calendars))
	for _, c := range calendars {
		only[strings.ToLower(c)] = true
	}
	return &CalDAVSource{
		name: name,
		url:  url,
		http: &http.Client{
			Timeout:   caldavTimeout,
			Transport: basicAuth{username: username, password: password, base: http.DefaultTransport},
		},
		only: only,
	}
}

// NewICloudSource creates a CalDAV source for an iCloud account.
func NewICloudSource(name, username, password string, calendars []string) *CalDAVSource {
	return NewCalDAVSource(name, iCloudCalDAVURL, username, password, calendars)
}

// Name returns the display name of this calendar source.
func (s *CalDAVSource) Name() string {
	return s.name
}

// Fetch runs a time-range query for rng against every selected calendar.
// A failing calendar is logged and skipped; Fetch fails only if all do.
func (s *CalDAVSource) Fetch(ctx context.Context, rng daterange.Range) ([]Event, error) {
	client, cals, err := s.discover(ctx)
	if err != nil {
		return nil, err
	}

	results := make([][]Event, len(cals))
	errs := make([]error, len(cals))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxCalendarQueries)
	for i, cal := range cals {
		g.Go(func() error {
			results[i], errs[i] = s.query(gctx, client, cal, rng)
			if errs[i] != nil {
				slog.Warn("caldav calendar fetch failed", "source", s.name, "calendar", cal.Name, "error", errs[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	var events []Event
	failed := 0
	for i := range cals {
		if errs[i] != nil {
			failed++
			continue
		}
		events = append(events, results[i]...)
	}
	if len(cals) > 0 && failed == len(cals) {
		s.forget()
		return nil, errors.Join(errs...)
	}
	return events, nil
}

// discover returns the client and the selected calendars, finding them on
// first use.
func (s *CalDAVSource) discover(ctx context.Context) (*caldav.Client, []caldav.Calendar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return s.client, s.cals, nil
	}

	client, err := caldav.NewClient(s.http, s.url)
	if err != nil {
		return nil, nil, fmt.Errorf("create caldav client: %w", err)
	}
	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("find principal: %w", err)
	}
	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, nil, fmt.Errorf("find calendar home: %w", err)
	}
	all, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, nil, fmt.Errorf("find calendars: %w", err)
	}

	var cals []caldav.Calendar
	for _, cal := range all {
		if len(s.only) == 0 || s.only[strings.ToLower(cal.Name)] {
			cals = append(cals, cal)
		}
	}
	slog.Debug("discovered caldav calendars", "source", s.name, "found", len(all), "selected", len(cals))

	s.client, s.cals = client, cals
	return client, cals, nil
}

func (s *CalDAVSource) forget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.client, s.cals = nil, nil
}

func (s *CalDAVSource) query(ctx context.Context, client *caldav.Client, cal caldav.Calendar, rng daterange.Range) ([]Event, error) {
	objects, err := client.QueryCalendar(ctx, cal.Path, rangeQuery(rng))
	if err != nil {
		return nil, fmt.Errorf("query calendar %s: %w", cal.Name, err)
	}

	opts := decodeOptions{
		source:         s.name + "/" + cal.Name,
		maxOccurrences: s.MaxOccurrences,
	}
	var events []Event
	for _, obj := range objects {
		if obj.Data != nil {
			events = append(events, decodeCalendar(obj.Data, rng, opts)...)
		}
	}
	return events, nil
}

// rangeQuery requests the VEVENTs intersecting rng.
func rangeQuery(rng daterange.Range) *caldav.CalendarQuery {
	return &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:  "VCALENDAR",
			Comps: []caldav.CalendarCompRequest{{Name: "VEVENT", Props: eventProps}},
		},
		CompFilter: caldav.CompFilter{
			Name:  "VCALENDAR",
			Comps: []caldav.CompFilter{{Name: "VEVENT", Start: rng.Start, End: rng.End}},
		},
	}
}

// decodeCalendar converts the VEVENTs of one calendar object, dropping the
// ones it cannot parse. A zero rng keeps everything unexpanded.
func decodeCalendar(data *ics.Calendar, rng daterange.Range, opts decodeOptions) []Event {
	var events []Event
	for _, comp := range data.Children {
		if comp.Name != ics.CompEvent {
			continue
		}
		parsed, _, err := decodeEvent(comp, rng, opts)
		if err != nil {
			slog.Debug("skipping unparseable event", "source", opts.source, "error", err)
			continue
		}
		for _, ev := range parsed {
			if rng.IsZero() || ev.Span().Overlaps(rng) {
				events = append(events, ev)
			}
		}
	}
	return events
}

type basicAuth struct {
	username string
	password string
	base     http.RoundTripper
}

func (t basicAuth) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(req)
}

var _ Source = (*CalDAVSource)(nil)
