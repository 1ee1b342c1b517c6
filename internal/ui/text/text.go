// Package text renders pages and event layouts as terminal tables.
package text

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/cpuguy83/calpager/internal/daterange"
	"github.com/cpuguy83/calpager/internal/layout"
)

const (
	dayFormat  = "Mon 2006-01-02"
	timeFormat = "15:04"
)

var (
	bold    = color.New(color.Bold)
	heading = color.New(color.Bold, color.Underline)
	faint   = color.New(color.Faint)
	marker  = color.New(color.FgCyan)
	current = color.New(color.FgGreen, color.Bold)
)

// Titles resolves event IDs to display titles.
type Titles func(id string) string

func (t Titles) of(id string) string {
	if t == nil {
		return id
	}
	if s := t(id); s != "" {
		return s
	}
	return id
}

// Pages writes a table of page index to visible range for count pages from
// from. The page at cur is highlighted.
func Pages(w io.Writer, ix *daterange.Indexer, from, count, cur int) error {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Page"), bold.Sprint("Start"), bold.Sprint("End"), bold.Sprint("Days"))

	for i := from; i < from+count; i++ {
		r, err := ix.RangeForIndex(i)
		if err != nil {
			break
		}
		idx := fmt.Sprint(i)
		if i == cur {
			idx = current.Sprint("*" + idx)
		}
		tbl.AddRow(idx, r.Start.Format(dayFormat), r.End.Format(dayFormat), len(r.Days()))
	}
	tbl.RightAlign(0)

	_, err := fmt.Fprintln(w, tbl)
	return err
}

// Days writes the per-day placements of a time-axis page.
func Days(w io.Writer, days []layout.Day, titles Titles) error {
	for _, day := range days {
		if _, err := heading.Fprintln(w, day.Range.Start.Format(dayFormat)); err != nil {
			return err
		}
		if len(day.Placements) == 0 {
			if _, err := faint.Fprintln(w, "  no events"); err != nil {
				return err
			}
			continue
		}

		tbl := uitable.New()
		tbl.Separator = "  "
		for _, p := range day.Placements {
			tbl.AddRow(
				"",
				slot(p, day.Range.Start.Location()),
				faint.Sprintf("%d/%d", p.Column+1, p.Columns),
				continuation(p.ContinuesBefore, p.ContinuesAfter)+titles.of(p.EventID),
			)
		}
		if _, err := fmt.Fprintln(w, tbl); err != nil {
			return err
		}
	}
	return nil
}

// Rows writes the week rows of a month page as bars.
func Rows(w io.Writer, rows []layout.Row, titles Titles) error {
	for _, row := range rows {
		end := row.Week.End.AddDate(0, 0, -1)
		title := fmt.Sprintf("%s - %s", row.Week.Start.Format("Jan 2"), end.Format("Jan 2"))
		if _, err := heading.Fprintln(w, title); err != nil {
			return err
		}

		tbl := uitable.New()
		tbl.Separator = "  "
		for _, b := range row.Bars {
			tbl.AddRow(
				"",
				bar(b, len(row.Week.Days())),
				faint.Sprintf("lane %d/%d", b.Lane+1, b.Lanes),
				continuation(b.ContinuesBefore, b.ContinuesAfter)+titles.of(b.EventID),
			)
		}
		if _, err := fmt.Fprintln(w, tbl); err != nil {
			return err
		}
	}
	return nil
}

// slot formats a placement's slice on the page's wall clock.
func slot(p layout.Placement, loc *time.Location) string {
	start := p.Slice.Start.In(loc).Format(timeFormat)
	if p.Slice.IsEmpty() {
		return start + "      "
	}
	return start + "-" + p.Slice.End.In(loc).Format(timeFormat)
}

// bar draws the days a bar covers as a 7-cell strip.
func bar(b layout.Bar, days int) string {
	cells := make([]byte, days)
	for i := range cells {
		cells[i] = '.'
		if i >= b.FirstDay && i < b.FirstDay+b.DaySpan {
			cells[i] = '#'
		}
	}
	return string(cells)
}

func continuation(before, after bool) string {
	s := ""
	if before {
		s += marker.Sprint("<") + " "
	}
	if after {
		s += marker.Sprint(">") + " "
	}
	return s
}
