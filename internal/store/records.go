package store

import (
	"fmt"
	"time"

	"invrec/internal/model"
)

const dateOnly = "2006-01-02"

// eventRangeWhere selects the calendar rows belonging to a period: timed
// events by start date, all-day events by [start, end) intersection so a
// month-straddling event belongs to both months it touches. Placeholders
// bind as (lo, hi, hi, lo).
const eventRangeWhere = `(all_day = 0 AND substr(start, 1, 10) BETWEEN ? AND ?)
		OR (all_day = 1 AND start <= ? AND end > ?)`

// ReplaceEvents swaps out the stored calendar records for [from, to]: fetched
// months are replaced wholesale so a re-fetch never duplicates.
func (s *Store) ReplaceEvents(from, to time.Time, events []model.CalendarEvent) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace events: %w", err)
	}
	defer tx.Rollback()

	lo, hi := from.Format(dateOnly), to.Format(dateOnly)
	if _, err := tx.Exec(
		`DELETE FROM calendar WHERE `+eventRangeWhere,
		lo, hi, hi, lo,
	); err != nil {
		return fmt.Errorf("delete calendar range: %w", err)
	}

	for _, e := range events {
		if _, err := tx.Exec(
			`INSERT INTO calendar (calendar, title, start, end, all_day, duration) VALUES (?, ?, ?, ?, ?, ?)`,
			e.CalendarID, e.Title,
			formatEventTime(e.Start, e.AllDay), formatEventTime(e.End, e.AllDay),
			boolToInt(e.AllDay), e.DurationMinutes,
		); err != nil {
			return fmt.Errorf("insert calendar event %q: %w", e.Title, err)
		}
	}
	return tx.Commit()
}

// ListEvents loads the calendar records for [from, to]: timed events starting
// in the period plus all-day events overlapping it.
func (s *Store) ListEvents(from, to time.Time) ([]model.CalendarEvent, error) {
	lo, hi := from.Format(dateOnly), to.Format(dateOnly)
	rows, err := s.db.Query(
		`SELECT calendar, title, start, end, all_day, duration FROM calendar
		 WHERE `+eventRangeWhere+`
		 ORDER BY start, calendar, title`,
		lo, hi, hi, lo,
	)
	if err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	defer rows.Close()

	var events []model.CalendarEvent
	for rows.Next() {
		var e model.CalendarEvent
		var start, end string
		var allDay int
		if err := rows.Scan(&e.CalendarID, &e.Title, &start, &end, &allDay, &e.DurationMinutes); err != nil {
			return nil, err
		}
		e.AllDay = allDay == 1
		if e.Start, err = parseEventTime(start); err != nil {
			return nil, fmt.Errorf("stored event %q: %w", e.Title, err)
		}
		if e.End, err = parseEventTime(end); err != nil {
			return nil, fmt.Errorf("stored event %q: %w", e.Title, err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DistinctCalendarKeys returns the distinct (calendar, title) pairs of timed
// events in [from, to]. Only timed events are classified interactively;
// all-day events surface via the split phase instead.
func (s *Store) DistinctCalendarKeys(from, to time.Time) ([]model.CalendarKey, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT calendar, title FROM calendar
		 WHERE substr(start, 1, 10) BETWEEN ? AND ? AND all_day = 0
		 ORDER BY calendar, title`,
		from.Format(dateOnly), to.Format(dateOnly),
	)
	if err != nil {
		return nil, fmt.Errorf("distinct calendar keys: %w", err)
	}
	defer rows.Close()

	var keys []model.CalendarKey
	for rows.Next() {
		var k model.CalendarKey
		if err := rows.Scan(&k.CalendarID, &k.Title); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// ReplaceTimesheet swaps out the stored timesheet records for [from, to].
func (s *Store) ReplaceTimesheet(from, to time.Time, entries []model.TimesheetEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin replace timesheet: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`DELETE FROM timesheet WHERE date BETWEEN ? AND ?`,
		from.Format(dateOnly), to.Format(dateOnly),
	); err != nil {
		return fmt.Errorf("delete timesheet range: %w", err)
	}

	for _, e := range entries {
		if _, err := tx.Exec(
			`INSERT INTO timesheet (date, hours, description, project) VALUES (?, ?, ?, ?)`,
			e.Date.Format(dateOnly), e.Hours, e.Description, e.Project,
		); err != nil {
			return fmt.Errorf("insert timesheet entry %q: %w", e.Description, err)
		}
	}
	return tx.Commit()
}

// ListTimesheet loads all timesheet records dated in [from, to].
func (s *Store) ListTimesheet(from, to time.Time) ([]model.TimesheetEntry, error) {
	rows, err := s.db.Query(
		`SELECT date, hours, description, project FROM timesheet
		 WHERE date BETWEEN ? AND ?
		 ORDER BY date, project, description`,
		from.Format(dateOnly), to.Format(dateOnly),
	)
	if err != nil {
		return nil, fmt.Errorf("list timesheet entries: %w", err)
	}
	defer rows.Close()

	var entries []model.TimesheetEntry
	for rows.Next() {
		var e model.TimesheetEntry
		var date string
		if err := rows.Scan(&date, &e.Hours, &e.Description, &e.Project); err != nil {
			return nil, err
		}
		if e.Date, err = time.Parse(dateOnly, date); err != nil {
			return nil, fmt.Errorf("stored timesheet date %q: %w", date, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DistinctTimesheetKeys returns the distinct (project, description) pairs in
// [from, to], excluding worked-hours markers.
func (s *Store) DistinctTimesheetKeys(from, to time.Time) ([]model.TimesheetKey, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT project, description FROM timesheet
		 WHERE date BETWEEN ? AND ? AND instr(description, ?) = 0
		 ORDER BY project, description`,
		from.Format(dateOnly), to.Format(dateOnly), model.WorkedHoursTag,
	)
	if err != nil {
		return nil, fmt.Errorf("distinct timesheet keys: %w", err)
	}
	defer rows.Close()

	var keys []model.TimesheetKey
	for rows.Next() {
		var k model.TimesheetKey
		if err := rows.Scan(&k.Project, &k.Description); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// formatEventTime renders a timestamp for storage: all-day events keep their
// date-only form so the stored row mirrors what the calendar API returned.
func formatEventTime(t time.Time, allDay bool) string {
	if allDay {
		return t.Format(dateOnly)
	}
	return t.Format(time.RFC3339)
}

func parseEventTime(s string) (time.Time, error) {
	if len(s) == len(dateOnly) {
		return time.Parse(dateOnly, s)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparsable event time %q: %w", s, err)
	}
	return t, nil
}
