// Package ppm imports timesheet exports from the PPM system. The export is
// a flat CSV with one task row per day; hour cells may carry the export's
// "h" suffix. The "Total work" row declares the day's total worked hours and
// is rewritten into a marker entry so reconciliation can check it.
package ppm

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"invrec/internal/model"
)

// totalWorkProject is the project name PPM puts on the daily total row.
const totalWorkProject = "Total work"

// markerProject replaces the project on rewritten total rows.
const markerProject = "*NOTE*"

// Import reads a PPM CSV export and returns entries within [from, to].
// Rows outside the period and zero-hour task rows are dropped; malformed
// rows are skipped and reported as diagnostics.
func Import(path string, from, to time.Time) ([]model.TimesheetEntry, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, from, to)
}

// Read parses CSV records from r. The header must name the date, project,
// description and hours columns; order is free.
func Read(r io.Reader, from, to time.Time) ([]model.TimesheetEntry, []string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, nil, err
	}

	var entries []model.TimesheetEntry
	var diags []string
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			diags = append(diags, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		entry, skip, err := parseRecord(rec, cols)
		if err != nil {
			diags = append(diags, fmt.Sprintf("line %d: %v", line, err))
			continue
		}
		if skip {
			continue
		}
		if entry.Date.Before(from) || entry.Date.After(to) {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, diags, nil
}

type columns struct {
	date, project, description, hours int
}

func mapColumns(header []string) (columns, error) {
	cols := columns{date: -1, project: -1, description: -1, hours: -1}
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			cols.date = i
		case "project", "project name":
			cols.project = i
		case "description", "task", "task name/description":
			cols.description = i
		case "hours", "work":
			cols.hours = i
		}
	}
	if cols.date < 0 || cols.project < 0 || cols.description < 0 || cols.hours < 0 {
		return cols, fmt.Errorf("header %v is missing a date, project, description or hours column", header)
	}
	return cols, nil
}

func parseRecord(rec []string, cols columns) (model.TimesheetEntry, bool, error) {
	max := cols.date
	for _, c := range []int{cols.project, cols.description, cols.hours} {
		if c > max {
			max = c
		}
	}
	if len(rec) <= max {
		return model.TimesheetEntry{}, false, fmt.Errorf("row has %d fields, want at least %d", len(rec), max+1)
	}

	date, err := parseDate(strings.TrimSpace(rec[cols.date]))
	if err != nil {
		return model.TimesheetEntry{}, false, err
	}

	raw := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rec[cols.hours]), "h"))
	if raw == "" || raw == "0" {
		return model.TimesheetEntry{}, true, nil
	}
	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return model.TimesheetEntry{}, false, fmt.Errorf("unparsable hours %q: %w", rec[cols.hours], err)
	}

	project := rec[cols.project]
	description := rec[cols.description]

	// The daily total row becomes a worked-hours marker with zero billable
	// hours of its own.
	if strings.TrimSpace(project) == totalWorkProject {
		return model.TimesheetEntry{
			Date:        date,
			Hours:       0,
			Description: fmt.Sprintf("PPM %s%s", model.WorkedHoursTag, raw),
			Project:     markerProject,
		}, false, nil
	}

	return model.TimesheetEntry{
		Date:        date,
		Hours:       hours,
		Description: description,
		Project:     project,
	}, false, nil
}

// parseDate accepts the ISO form and the M/D/YYYY form the export uses.
func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "1/2/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", s)
}
