// Package engine joins one month of calendar and timesheet records against
// the persisted classification rules and produces the invoicing detail and
// summary row sets. It is a pure function of its inputs: all prompting and
// persistence happens before Reconcile runs.
package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"invrec/internal/model"
	"invrec/internal/timecalc"
)

// Rules is the classification snapshot an engine run reads. Maps are never
// written by the engine.
type Rules struct {
	CalendarIgnore  map[model.CalendarKey]bool
	CalendarXref    map[model.CalendarKey]string
	TimesheetIgnore map[model.TimesheetKey]bool
	TimesheetXref   map[string]string
}

// Result holds one reconciliation run's output.
type Result struct {
	Detail      []model.DetailRow
	Summary     []model.SummaryRow
	TotalHours  float64
	WorkedHours float64
	Diagnostics []string
}

// Discrepancy reports whether billed hours exceed the declared worked total.
func (r Result) Discrepancy() bool {
	return r.TotalHours > r.WorkedHours
}

// Difference returns billed minus declared hours.
func (r Result) Difference() float64 {
	return r.TotalHours - r.WorkedHours
}

const dateOnly = "2006-01-02"

// Reconcile runs the five reconciliation phases over the billing period
// [from, to]: timed calendar rows, direct timesheet rows, worked-hours rows,
// all-day apportionment and quarter-hour normalization, then assembles the
// sorted detail and the per-project summary.
func Reconcile(events []model.CalendarEvent, entries []model.TimesheetEntry, rules Rules, from, to time.Time) Result {
	var res Result

	events = filterEvents(events, from, to)
	entries = filterEntries(entries, from, to)

	calRows := res.calendarRows(events, rules)
	res.normalizeQuarters(calRows)

	detail := calRows
	detail = append(detail, res.timesheetRows(entries, rules)...)
	detail = append(detail, res.workedHoursRows(entries, rules)...)
	detail = append(detail, res.splitRows(entries, events, rules)...)

	sort.SliceStable(detail, func(i, j int) bool {
		a, b := detail[i], detail[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		return a.Project < b.Project
	})
	res.Detail = detail

	res.summarize()
	return res
}

// calendarRows emits one row per timed, non-ignored calendar event. All-day
// events are left for the split phase.
func (r *Result) calendarRows(events []model.CalendarEvent, rules Rules) []model.DetailRow {
	var rows []model.DetailRow
	for _, e := range events {
		if e.AllDay || rules.CalendarIgnore[e.Key()] {
			continue
		}
		rows = append(rows, model.DetailRow{
			Project: strings.TrimSpace(invoiceTitle(e, rules)),
			Notes:   strings.TrimSpace(e.Title),
			Date:    e.Start.Format(dateOnly),
			Hours:   round2(float64(e.DurationMinutes) / 60),
			Source:  model.SourceGCal,
		})
	}
	return rows
}

// timesheetRows emits one row per non-marker, non-ignored entry whose invoice
// project is not the *GCAL sentinel.
func (r *Result) timesheetRows(entries []model.TimesheetEntry, rules Rules) []model.DetailRow {
	var rows []model.DetailRow
	for _, e := range entries {
		if e.IsMarker() || rules.TimesheetIgnore[e.Key()] {
			continue
		}
		inv := strings.TrimSpace(invoiceProject(e, rules))
		if inv == model.SentinelGCal {
			continue
		}
		rows = append(rows, model.DetailRow{
			Project: inv,
			Notes:   strings.TrimSpace(e.Description),
			Date:    e.Date.Format(dateOnly),
			Hours:   e.Hours,
			Source:  model.SourcePPM,
		})
	}
	return rows
}

// workedHoursRows emits one row per worked-hours marker. Hours ignored on the
// same date are subtracted from the declared total: they were never meant to
// be billed. These rows feed the discrepancy check and stay out of the
// summary fold.
func (r *Result) workedHoursRows(entries []model.TimesheetEntry, rules Rules) []model.DetailRow {
	var rows []model.DetailRow
	for _, e := range entries {
		if !e.IsMarker() {
			continue
		}
		declared, err := e.WorkedHours()
		if err != nil {
			r.diag("skipping worked-hours marker on %s: %v", e.Date.Format(dateOnly), err)
			continue
		}

		var ignored float64
		for _, sib := range entries {
			if sib.IsMarker() || !timecalc.SameDay(sib.Date, e.Date) {
				continue
			}
			if rules.TimesheetIgnore[sib.Key()] {
				ignored += sib.Hours
			}
		}

		rows = append(rows, model.DetailRow{
			Project: model.WorkedHoursProject,
			Notes:   model.SourceMarker,
			Date:    e.Date.Format(dateOnly),
			Hours:   declared - ignored,
			Source:  model.SourceMarker,
		})
		r.WorkedHours += declared - ignored
	}
	return rows
}

// splitRows apportions each *GCAL-mapped entry's hours evenly across the
// all-day events covering its date. Shares round up to the next quarter hour
// and a running clamp keeps the total within the entry's hours, so matches
// enumerated first can come out slightly ahead of later ones. An entry with
// no match falls back to a plain timesheet row.
func (r *Result) splitRows(entries []model.TimesheetEntry, events []model.CalendarEvent, rules Rules) []model.DetailRow {
	var rows []model.DetailRow
	for _, e := range entries {
		if e.IsMarker() || rules.TimesheetIgnore[e.Key()] {
			continue
		}
		if strings.TrimSpace(invoiceProject(e, rules)) != model.SentinelGCal {
			continue
		}

		var matches []model.CalendarEvent
		for _, ev := range events {
			if ev.AllDay && !rules.CalendarIgnore[ev.Key()] && ev.CoversDay(e.Date) {
				matches = append(matches, ev)
			}
		}

		if len(matches) == 0 {
			r.diag("no matching calendar entry for %s on %s", e.Description, e.Date.Format(dateOnly))
			rows = append(rows, model.DetailRow{
				Project: strings.TrimSpace(e.Project),
				Notes:   strings.TrimSpace(e.Description),
				Date:    e.Date.Format(dateOnly),
				Hours:   e.Hours,
				Source:  model.SourcePPM,
			})
			continue
		}

		var allocated float64
		for _, ev := range matches {
			share := ceilQuarter(e.Hours / float64(len(matches)))
			if allocated+share > e.Hours {
				share = e.Hours - allocated
			}
			allocated += share
			rows = append(rows, model.DetailRow{
				Project: strings.TrimSpace(invoiceTitle(ev, rules)),
				Notes:   strings.TrimSpace(ev.Title),
				Date:    e.Date.Format(dateOnly),
				Hours:   share,
				Source:  model.SourceSplit,
			})
		}
	}
	return rows
}

// normalizeQuarters rounds calendar rows up to the next quarter hour in
// place, reporting each adjustment. Other phases either round internally or
// pass hours through as authored.
func (r *Result) normalizeQuarters(rows []model.DetailRow) {
	for i := range rows {
		rounded := ceilQuarter(rows[i].Hours)
		if rounded != rows[i].Hours {
			r.diag("rounding up %s on %s from %g to %g", rows[i].Notes, rows[i].Date, rows[i].Hours, rounded)
			rows[i].Hours = rounded
		}
	}
}

// summarize folds the detail by project, excluding worked-hours rows, and
// computes the billed total.
func (r *Result) summarize() {
	totals := map[string]float64{}
	var order []string
	for _, row := range r.Detail {
		if row.Project == model.WorkedHoursProject {
			continue
		}
		if _, seen := totals[row.Project]; !seen {
			order = append(order, row.Project)
		}
		totals[row.Project] += row.Hours
	}
	sort.Strings(order)

	for _, p := range order {
		r.Summary = append(r.Summary, model.SummaryRow{Project: p, Hours: totals[p]})
		r.TotalHours += totals[p]
	}

	if r.Discrepancy() {
		r.diag("total hours exceed worked hours by %g", r.Difference())
	}
}

func (r *Result) diag(format string, args ...any) {
	r.Diagnostics = append(r.Diagnostics, fmt.Sprintf(format, args...))
}

func invoiceTitle(e model.CalendarEvent, rules Rules) string {
	if name, ok := rules.CalendarXref[e.Key()]; ok {
		return name
	}
	return e.Title
}

func invoiceProject(e model.TimesheetEntry, rules Rules) string {
	if name, ok := rules.TimesheetXref[e.Project]; ok {
		return name
	}
	return e.Project
}

// filterEvents keeps timed events starting in the period and all-day events
// whose [Start, End) intersects it. An all-day event straddling the month
// boundary still covers days inside the month and must stay matchable.
func filterEvents(events []model.CalendarEvent, from, to time.Time) []model.CalendarEvent {
	lo, hi := from.Format(dateOnly), to.Format(dateOnly)
	var out []model.CalendarEvent
	for _, e := range events {
		if e.AllDay {
			if e.Start.Format(dateOnly) <= hi && e.End.Format(dateOnly) > lo {
				out = append(out, e)
			}
			continue
		}
		if d := e.Start.Format(dateOnly); d >= lo && d <= hi {
			out = append(out, e)
		}
	}
	return out
}

func filterEntries(entries []model.TimesheetEntry, from, to time.Time) []model.TimesheetEntry {
	lo, hi := from.Format(dateOnly), to.Format(dateOnly)
	var out []model.TimesheetEntry
	for _, e := range entries {
		if d := e.Date.Format(dateOnly); d >= lo && d <= hi {
			out = append(out, e)
		}
	}
	return out
}

// ceilQuarter rounds up to the next multiple of 0.25, leaving exact quarter
// values untouched.
func ceilQuarter(h float64) float64 {
	rem := math.Mod(h, 0.25)
	if rem == 0 {
		return h
	}
	return round2(h + 0.25 - rem)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
