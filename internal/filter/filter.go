// Package filter selects which calendar events reach the view.
package filter

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/cpuguy83/calpager/internal/calendar"
	"github.com/cpuguy83/calpager/internal/config"
)

var errNoPattern = errors.New("rule needs one of contains, exact, prefix, suffix or regex")

// Filter applies include and exclude rules to events. An event passes when
// it matches the include rules (or there are none) and no exclude rule.
type Filter struct {
	all     bool // include rules combine with AND instead of OR
	include []predicate
	exclude []predicate
}

// predicate tests one field of an event.
type predicate func(calendar.Event) bool

// fields maps the rule field names accepted in config to event accessors.
var fields = map[string]func(calendar.Event) string{
	"title":       func(e calendar.Event) string { return e.Summary },
	"summary":     func(e calendar.Event) string { return e.Summary },
	"organizer":   func(e calendar.Event) string { return e.Organizer },
	"source":      func(e calendar.Event) string { return e.Source },
	"calendar":    func(e calendar.Event) string { return e.Source },
	"description": func(e calendar.Event) string { return e.Description },
	"location":    func(e calendar.Event) string { return e.Location },
}

// New compiles cfg into a Filter.
func New(cfg config.FilterConfig) (*Filter, error) {
	f := &Filter{}
	switch strings.ToLower(cfg.Mode) {
	case "", "or":
	case "and":
		f.all = true
	default:
		return nil, fmt.Errorf("unknown filter mode %q", cfg.Mode)
	}

	var err error
	if f.include, err = compile(cfg.Rules); err != nil {
		return nil, fmt.Errorf("include %w", err)
	}
	if f.exclude, err = compile(cfg.Exclude); err != nil {
		return nil, fmt.Errorf("exclude %w", err)
	}
	return f, nil
}

func compile(rules []config.FilterRule) ([]predicate, error) {
	preds := make([]predicate, 0, len(rules))
	for i, r := range rules {
		p, err := compileRule(r)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		preds = append(preds, p)
	}
	return preds, nil
}

func compileRule(r config.FilterRule) (predicate, error) {
	get, ok := fields[strings.ToLower(r.Field)]
	if !ok {
		return nil, fmt.Errorf("unknown field %q", r.Field)
	}

	if r.Regex != "" {
		expr := r.Regex
		if r.CaseInsensitive {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid regex %q: %w", r.Regex, err)
		}
		return func(e calendar.Event) bool { return re.MatchString(get(e)) }, nil
	}

	var (
		pattern string
		test    func(value, pattern string) bool
	)
	switch {
	case r.Exact != "":
		pattern, test = r.Exact, func(v, p string) bool { return v == p }
	case r.Prefix != "":
		pattern, test = r.Prefix, strings.HasPrefix
	case r.Suffix != "":
		pattern, test = r.Suffix, strings.HasSuffix
	case r.Contains != "":
		pattern, test = r.Contains, strings.Contains
	default:
		return nil, errNoPattern
	}

	if r.CaseInsensitive {
		pattern = strings.ToLower(pattern)
		return func(e calendar.Event) bool { return test(strings.ToLower(get(e)), pattern) }, nil
	}
	return func(e calendar.Event) bool { return test(get(e), pattern) }, nil
}

// Apply returns the events that pass the filter.
func (f *Filter) Apply(events []calendar.Event) []calendar.Event {
	return keep(f, events, func(e calendar.Event) calendar.Event { return e })
}

// ApplyItems is Apply for store items carrying events.
func (f *Filter) ApplyItems(items []calendar.Item[calendar.Event]) []calendar.Item[calendar.Event] {
	return keep(f, items, func(it calendar.Item[calendar.Event]) calendar.Event { return it.Payload })
}

func keep[T any](f *Filter, in []T, event func(T) calendar.Event) []T {
	if f == nil || (len(f.include) == 0 && len(f.exclude) == 0) {
		return in
	}
	var out []T
	for _, v := range in {
		if f.Match(event(v)) {
			out = append(out, v)
		}
	}
	return out
}

// Match reports whether a single event passes the filter.
func (f *Filter) Match(event calendar.Event) bool {
	if f == nil {
		return true
	}
	if matchAny(f.exclude, event) {
		return false
	}
	if len(f.include) == 0 {
		return true
	}
	if f.all {
		for _, p := range f.include {
			if !p(event) {
				return false
			}
		}
		return true
	}
	return matchAny(f.include, event)
}

func matchAny(preds []predicate, event calendar.Event) bool {
	for _, p := range preds {
		if p(event) {
			return true
		}
	}
	return false
}
