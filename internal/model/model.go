package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Source identifiers used in detail rows. Split rows carry SourceSplit,
// worked-hours rows carry SourceMarker.
const (
	SourceGCal   = "gcal"
	SourcePPM    = "ppm"
	SourceSplit  = "*gcal"
	SourceMarker = "************"
)

// SentinelGCal is the reserved invoice-project name marking a timesheet
// project whose hours are apportioned across matching all-day calendar
// events instead of billed directly.
const SentinelGCal = "*GCAL"

// WorkedHoursTag is the description prefix that turns a timesheet entry into
// a worked-hours marker. Everything after the tag is the declared total.
const WorkedHoursTag = "TOTAL HOURS: "

// WorkedHoursProject is the project name on worked-hours detail rows.
const WorkedHoursProject = "WORKED HOURS"

// CalendarEvent is a normalized calendar record for one billing period.
// An event is "timed" when its start carries a time of day; all-day events
// span whole days and are eligible only for apportionment.
type CalendarEvent struct {
	CalendarID      string
	Title           string
	Start           time.Time
	End             time.Time
	AllDay          bool
	DurationMinutes int64
}

// Key returns the event's classification identity.
func (e CalendarEvent) Key() CalendarKey {
	return CalendarKey{CalendarID: e.CalendarID, Title: e.Title}
}

// CoversDay reports whether day falls within [Start, End) at day granularity.
// Only meaningful for all-day events.
func (e CalendarEvent) CoversDay(day time.Time) bool {
	d := day.Format("2006-01-02")
	return d >= e.Start.Format("2006-01-02") && d < e.End.Format("2006-01-02")
}

// TimesheetEntry is a normalized timesheet record.
type TimesheetEntry struct {
	Date        time.Time
	Hours       float64
	Description string
	Project     string
}

// Key returns the entry's classification identity.
func (t TimesheetEntry) Key() TimesheetKey {
	return TimesheetKey{Project: t.Project, Description: t.Description}
}

// IsMarker reports whether the entry declares a day's total worked hours
// rather than describing a task.
func (t TimesheetEntry) IsMarker() bool {
	return strings.Contains(t.Description, WorkedHoursTag)
}

// WorkedHours parses the declared total out of a marker entry's description.
// The error return is the defined failure mode for a malformed value; callers
// skip the record and report a diagnostic.
func (t TimesheetEntry) WorkedHours() (float64, error) {
	i := strings.Index(t.Description, WorkedHoursTag)
	if i < 0 {
		return 0, fmt.Errorf("entry %q is not a worked-hours marker", t.Description)
	}
	raw := strings.TrimSpace(t.Description[i+len(WorkedHoursTag):])
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("unparsable worked-hours value %q: %w", raw, err)
	}
	return v, nil
}

// CalendarKey identifies a calendar classification: one rule per
// (calendar, title) pair.
type CalendarKey struct {
	CalendarID string
	Title      string
}

// TimesheetKey identifies a timesheet classification. Ignore rules match on
// both fields; cross-references map the project alone.
type TimesheetKey struct {
	Project     string
	Description string
}

// DetailRow is one line of the invoicing detail report. Rows are produced by
// the engine and never mutated afterwards.
type DetailRow struct {
	Project string
	Notes   string
	Date    string // ISO 10-char form
	Hours   float64
	Source  string
}

// SummaryRow is the per-project fold of detail rows, excluding worked hours.
type SummaryRow struct {
	Project string
	Hours   float64
}
