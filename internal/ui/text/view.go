package text

import (
	"bytes"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/cpuguy83/calpager/internal/calendar"
	"github.com/cpuguy83/calpager/internal/daterange"
	"github.com/cpuguy83/calpager/internal/filter"
	"github.com/cpuguy83/calpager/internal/layout"
	"github.com/cpuguy83/calpager/internal/navigation"
)

// View re-renders the visible page whenever the navigation state publishes a
// new visible range or Refresh is called after the store changed.
type View struct {
	state  *navigation.State
	store  *calendar.Store[calendar.Event]
	filter *filter.Filter

	mu   sync.Mutex
	out  io.Writer
	memo layout.Memo[[]byte]

	unsubscribe func()
}

// NewView binds a text view to state and store. Output goes to out.
func NewView(state *navigation.State, store *calendar.Store[calendar.Event], f *filter.Filter, out io.Writer) *View {
	v := &View{state: state, store: store, filter: f, out: out}
	v.unsubscribe = state.VisibleRange().Subscribe(func(r daterange.Range) {
		v.render(r)
	})
	return v
}

// Refresh re-renders the current page.
func (v *View) Refresh() {
	v.render(v.state.VisibleRange().Get())
}

// Close stops following the state.
func (v *View) Close() {
	v.unsubscribe()
}

func (v *View) render(visible daterange.Range) {
	page := v.memo.Get(visible, v.store.Version(), func() []byte {
		var buf bytes.Buffer
		if err := Page(&buf, v.state.Granularity(), visible, v.store, v.filter); err != nil {
			slog.Warn("render page", "range", visible, "error", err)
		}
		return buf.Bytes()
	})

	v.mu.Lock()
	defer v.mu.Unlock()
	if _, err := v.out.Write(page); err != nil {
		slog.Warn("write page", "error", err)
	}
}

// Page renders one page: bars then per-day columns for time-axis views, week
// rows for month views.
func Page(w io.Writer, g daterange.Granularity, visible daterange.Range, store *calendar.Store[calendar.Event], f *filter.Filter) error {
	if !g.HasTimeAxis() {
		wd, aligned := g.WeekStart()
		if !aligned {
			wd = time.Monday
		}
		// Week rows spill into the neighbouring months.
		weeks := daterange.WeekRows(visible.Start, wd)
		grid := daterange.Range{Start: weeks[0].Start, End: weeks[len(weeks)-1].End}
		items := f.ApplyItems(store.Between(grid))
		return Rows(w, layout.Rows(visible.Start, wd, items), titlesOf(items))
	}

	items := f.ApplyItems(store.Between(visible))
	titles := titlesOf(items)
	bars, timed := calendar.PartitionAllDay(items, calendar.IsAllDay)
	if len(bars) > 0 {
		if err := Rows(w, []layout.Row{{Week: visible, Bars: layout.Bars(visible, bars)}}, titles); err != nil {
			return err
		}
	}
	days := layout.Days(visible, timed, layout.DaysOptions{SkipWeekends: g.SkipsWeekends()})
	return Days(w, days, titles)
}

func titlesOf(items []calendar.Item[calendar.Event]) Titles {
	byID := make(map[string]string, len(items))
	for _, it := range items {
		byID[it.ID] = it.Payload.Summary
	}
	return func(id string) string { return byID[id] }
}
