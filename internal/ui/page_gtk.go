//go:build !nogtk && cgo

package ui

import (
	"fmt"
	"time"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/cpuguy83/calpager/internal/calendar"
	"github.com/cpuguy83/calpager/internal/daterange"
	"github.com/cpuguy83/calpager/internal/layout"
	"github.com/cpuguy83/calpager/internal/navigation"
)

const (
	columnWidth = 160
	gutterWidth = 48
	minBlock    = 18
)

// page is one carousel child. Its content is replaced on every build.
type page struct {
	visible daterange.Range
	root    *gtk.Box
	scroll  *gtk.ScrolledWindow
	built   bool
}

func newPage(visible daterange.Range) *page {
	root := gtk.NewBox(gtk.OrientationVertical, 0)
	root.SetHExpand(true)
	root.SetVExpand(true)
	return &page{visible: visible, root: root}
}

// adjustment returns the time-axis adjustment, nil for pages without one.
func (p *page) adjustment() *gtk.Adjustment {
	if p.scroll == nil {
		return nil
	}
	return p.scroll.VAdjustment()
}

func (p *page) clear() {
	for child := p.root.FirstChild(); child != nil; child = p.root.FirstChild() {
		p.root.Remove(child)
	}
	p.scroll = nil
}

// buildTimeAxis lays out a day, week or custom page: all-day bars on top,
// then one positioned column per day under a shared vertical scroller.
func (p *page) buildTimeAxis(items []calendar.Item[calendar.Event], zoom float64, skipWeekends bool) {
	p.clear()
	p.built = true

	bars, timed := calendar.PartitionAllDay(items, calendar.IsAllDay)
	days := layout.Days(p.visible, timed, layout.DaysOptions{SkipWeekends: skipWeekends})
	summaries := summariesOf(items)

	header := gtk.NewBox(gtk.OrientationHorizontal, 0)
	header.Append(spacer(gutterWidth))
	for _, day := range days {
		label := gtk.NewLabel(day.Range.Start.Format("Mon 2"))
		label.AddCSSClass("day-header")
		label.SetSizeRequest(columnWidth, -1)
		header.Append(label)
	}
	p.root.Append(header)

	if len(bars) > 0 {
		strip := gtk.NewGrid()
		strip.SetColumnHomogeneous(true)
		strip.SetRowSpacing(2)
		strip.SetMarginStart(gutterWidth)
		for _, b := range layout.Bars(p.visible, bars) {
			strip.Attach(barLabel(b, summaries), b.FirstDay, b.Lane, b.DaySpan, 1)
		}
		p.root.Append(strip)
	}

	height := int(24 * 60 * zoom)
	columns := gtk.NewBox(gtk.OrientationHorizontal, 0)
	columns.Append(hourGutter(p.visible.Start, zoom, height))
	for _, day := range days {
		columns.Append(dayColumn(day, zoom, height, summaries))
	}

	p.scroll = gtk.NewScrolledWindow()
	p.scroll.SetPolicy(gtk.PolicyAutomatic, gtk.PolicyAutomatic)
	p.scroll.SetVExpand(true)
	p.scroll.SetChild(columns)
	p.root.Append(p.scroll)
}

// buildMonth lays out a month page as week rows of day numbers and bars.
func (p *page) buildMonth(weekStart time.Weekday, items []calendar.Item[calendar.Event]) {
	p.clear()
	p.built = true

	summaries := summariesOf(items)
	for _, row := range layout.Rows(p.visible.Start, weekStart, items) {
		grid := gtk.NewGrid()
		grid.SetColumnHomogeneous(true)
		grid.SetRowSpacing(2)
		grid.SetVExpand(true)

		for col, day := range row.Week.Days() {
			label := gtk.NewLabel(fmt.Sprint(day.Start.Day()))
			label.SetXAlign(0)
			label.AddCSSClass("day-header")
			if !p.visible.Contains(day.Start) {
				label.AddCSSClass("other-month")
			}
			grid.Attach(label, col, 0, 1, 1)
		}
		for _, b := range row.Bars {
			grid.Attach(barLabel(b, summaries), b.FirstDay, b.Lane+1, b.DaySpan, 1)
		}
		p.root.Append(grid)
	}
}

func dayColumn(day layout.Day, zoom float64, height int, summaries map[string]string) *gtk.Fixed {
	col := gtk.NewFixed()
	col.SetSizeRequest(columnWidth, height)
	for _, pl := range day.Placements {
		width := float64(columnWidth) / float64(pl.Columns)
		y := navigation.OffsetForTime(pl.Slice.Start.In(day.Range.Start.Location()), zoom)
		h := pl.Slice.Duration().Minutes() * zoom
		if pl.Slice.End.Equal(day.Range.End) {
			h = float64(height) - y
		}

		block := gtk.NewLabel(summaries[pl.EventID])
		block.AddCSSClass("event-block")
		if pl.ContinuesBefore || pl.ContinuesAfter {
			block.AddCSSClass("continues")
		}
		block.SetXAlign(0)
		block.SetYAlign(0)
		block.SetWrap(true)
		loc := day.Range.Start.Location()
		block.SetTooltipText(fmt.Sprintf("%s\n%s - %s", summaries[pl.EventID],
			pl.Slice.Start.In(loc).Format("15:04"), pl.Slice.End.In(loc).Format("15:04")))
		block.SetSizeRequest(int(width)-2, max(int(h), minBlock))
		col.Put(block, float64(pl.Column)*width, y)
	}
	return col
}

func hourGutter(day time.Time, zoom float64, height int) *gtk.Fixed {
	gutter := gtk.NewFixed()
	gutter.SetSizeRequest(gutterWidth, height)
	for h := 0; h < 24; h++ {
		t := day.Add(time.Duration(h) * time.Hour)
		label := gtk.NewLabel(t.Format("15:04"))
		label.AddCSSClass("hour-label")
		gutter.Put(label, 4, navigation.OffsetForTime(t, zoom))
	}
	return gutter
}

func barLabel(b layout.Bar, summaries map[string]string) *gtk.Label {
	text := summaries[b.EventID]
	if b.ContinuesBefore {
		text = "◀ " + text
	}
	if b.ContinuesAfter {
		text += " ▶"
	}
	label := gtk.NewLabel(text)
	label.AddCSSClass("event-bar")
	label.SetXAlign(0)
	label.SetEllipsize(3) // PANGO_ELLIPSIZE_END
	return label
}

func spacer(width int) *gtk.Box {
	b := gtk.NewBox(gtk.OrientationHorizontal, 0)
	b.SetSizeRequest(width, -1)
	return b
}

func summariesOf(items []calendar.Item[calendar.Event]) map[string]string {
	m := make(map[string]string, len(items))
	for _, it := range items {
		m[it.ID] = it.Payload.Summary
	}
	return m
}
