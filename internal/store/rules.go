package store

import (
	"database/sql"
	"errors"
	"fmt"

	"invrec/internal/model"
)

// Classification rules are append-only from the resolver's point of view: a
// Put never runs for a key that already has a rule. Changing a past decision
// means editing the tables by hand.

// GetCalendarIgnore returns the ignore flag for a calendar key, or nil when
// no rule exists yet.
func (s *Store) GetCalendarIgnore(k model.CalendarKey) (*bool, error) {
	var flag int
	err := s.db.QueryRow(
		`SELECT flag FROM gcal_ignore WHERE calendar = ? AND title = ?`,
		k.CalendarID, k.Title,
	).Scan(&flag)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get calendar ignore rule: %w", err)
	}
	b := flag == 1
	return &b, nil
}

func (s *Store) PutCalendarIgnore(k model.CalendarKey, flag bool) error {
	_, err := s.db.Exec(
		`INSERT INTO gcal_ignore (calendar, title, flag) VALUES (?, ?, ?)`,
		k.CalendarID, k.Title, boolToInt(flag),
	)
	if err != nil {
		return fmt.Errorf("put calendar ignore rule: %w", err)
	}
	return nil
}

// GetCalendarXref returns the invoice title mapped to a calendar key, or nil
// when no cross-reference exists yet.
func (s *Store) GetCalendarXref(k model.CalendarKey) (*string, error) {
	var name string
	err := s.db.QueryRow(
		`SELECT inv_title FROM gcal_xref WHERE calendar = ? AND title = ?`,
		k.CalendarID, k.Title,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get calendar xref: %w", err)
	}
	return &name, nil
}

func (s *Store) PutCalendarXref(k model.CalendarKey, invTitle string) error {
	_, err := s.db.Exec(
		`INSERT INTO gcal_xref (calendar, title, inv_title) VALUES (?, ?, ?)`,
		k.CalendarID, k.Title, invTitle,
	)
	if err != nil {
		return fmt.Errorf("put calendar xref: %w", err)
	}
	return nil
}

// GetTimesheetIgnore returns the ignore flag for a timesheet key, or nil when
// no rule exists yet.
func (s *Store) GetTimesheetIgnore(k model.TimesheetKey) (*bool, error) {
	var flag int
	err := s.db.QueryRow(
		`SELECT flag FROM ppm_ignore WHERE project = ? AND description = ?`,
		k.Project, k.Description,
	).Scan(&flag)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get timesheet ignore rule: %w", err)
	}
	b := flag == 1
	return &b, nil
}

func (s *Store) PutTimesheetIgnore(k model.TimesheetKey, flag bool) error {
	_, err := s.db.Exec(
		`INSERT INTO ppm_ignore (project, description, flag) VALUES (?, ?, ?)`,
		k.Project, k.Description, boolToInt(flag),
	)
	if err != nil {
		return fmt.Errorf("put timesheet ignore rule: %w", err)
	}
	return nil
}

// GetTimesheetXref returns the invoice project mapped to a timesheet project,
// or nil when no cross-reference exists yet. Timesheet mappings are keyed by
// project alone; the description does not participate.
func (s *Store) GetTimesheetXref(project string) (*string, error) {
	var name string
	err := s.db.QueryRow(
		`SELECT inv_project FROM ppm_xref WHERE project = ?`, project,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get timesheet xref: %w", err)
	}
	return &name, nil
}

func (s *Store) PutTimesheetXref(project, invProject string) error {
	_, err := s.db.Exec(
		`INSERT INTO ppm_xref (project, inv_project) VALUES (?, ?)`,
		project, invProject,
	)
	if err != nil {
		return fmt.Errorf("put timesheet xref: %w", err)
	}
	return nil
}

// CalendarIgnores loads every calendar ignore rule into a map.
func (s *Store) CalendarIgnores() (map[model.CalendarKey]bool, error) {
	rows, err := s.db.Query(`SELECT calendar, title, flag FROM gcal_ignore`)
	if err != nil {
		return nil, fmt.Errorf("list calendar ignore rules: %w", err)
	}
	defer rows.Close()

	out := map[model.CalendarKey]bool{}
	for rows.Next() {
		var k model.CalendarKey
		var flag int
		if err := rows.Scan(&k.CalendarID, &k.Title, &flag); err != nil {
			return nil, err
		}
		out[k] = flag == 1
	}
	return out, rows.Err()
}

// CalendarXrefs loads every calendar cross-reference into a map.
func (s *Store) CalendarXrefs() (map[model.CalendarKey]string, error) {
	rows, err := s.db.Query(`SELECT calendar, title, inv_title FROM gcal_xref`)
	if err != nil {
		return nil, fmt.Errorf("list calendar xrefs: %w", err)
	}
	defer rows.Close()

	out := map[model.CalendarKey]string{}
	for rows.Next() {
		var k model.CalendarKey
		var name string
		if err := rows.Scan(&k.CalendarID, &k.Title, &name); err != nil {
			return nil, err
		}
		out[k] = name
	}
	return out, rows.Err()
}

// TimesheetIgnores loads every timesheet ignore rule into a map.
func (s *Store) TimesheetIgnores() (map[model.TimesheetKey]bool, error) {
	rows, err := s.db.Query(`SELECT project, description, flag FROM ppm_ignore`)
	if err != nil {
		return nil, fmt.Errorf("list timesheet ignore rules: %w", err)
	}
	defer rows.Close()

	out := map[model.TimesheetKey]bool{}
	for rows.Next() {
		var k model.TimesheetKey
		var flag int
		if err := rows.Scan(&k.Project, &k.Description, &flag); err != nil {
			return nil, err
		}
		out[k] = flag == 1
	}
	return out, rows.Err()
}

// TimesheetXrefs loads every timesheet cross-reference into a map.
func (s *Store) TimesheetXrefs() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT project, inv_project FROM ppm_xref`)
	if err != nil {
		return nil, fmt.Errorf("list timesheet xrefs: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var project, name string
		if err := rows.Scan(&project, &name); err != nil {
			return nil, err
		}
		out[project] = name
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
