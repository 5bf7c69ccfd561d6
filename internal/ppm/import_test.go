package ppm_test

import (
	"strings"
	"testing"
	"time"

	"invrec/internal/ppm"
)

var (
	from = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	to   = time.Date(2025, 7, 31, 23, 59, 59, 0, time.UTC)
)

func TestReadTaskRows(t *testing.T) {
	in := "Date,Project,Description,Hours\n" +
		"2025-07-03,Acme,Backend work,6h\n" +
		"7/4/2025,Globex,Review,1.5\n"

	entries, diags, err := ppm.Read(strings.NewReader(in), from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(diags) != 0 {
		t.Errorf("diagnostics = %v, want none", diags)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2: %+v", len(entries), entries)
	}
	if entries[0].Project != "Acme" || entries[0].Hours != 6 {
		t.Errorf("first entry = %+v", entries[0])
	}
	if entries[1].Date.Format("2006-01-02") != "2025-07-04" || entries[1].Hours != 1.5 {
		t.Errorf("second entry = %+v", entries[1])
	}
}

func TestReadRewritesTotalWorkRow(t *testing.T) {
	in := "Date,Project,Description,Hours\n" +
		"2025-07-03,Total work,,8h\n"

	entries, _, err := ppm.Read(strings.NewReader(in), from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Project != "*NOTE*" || e.Hours != 0 {
		t.Errorf("marker entry = %+v", e)
	}
	if e.Description != "PPM TOTAL HOURS: 8" {
		t.Errorf("description = %q", e.Description)
	}
	if !e.IsMarker() {
		t.Error("rewritten row not recognized as a marker")
	}
	if got, err := e.WorkedHours(); err != nil || got != 8 {
		t.Errorf("WorkedHours() = %g, %v", got, err)
	}
}

func TestReadSkipsZeroAndOutOfRangeRows(t *testing.T) {
	in := "Date,Project,Description,Hours\n" +
		"2025-07-03,Acme,Idle,0\n" +
		"2025-07-03,Acme,Blank,\n" +
		"2025-06-30,Acme,Last month,4\n" +
		"2025-08-01,Acme,Next month,4\n" +
		"2025-07-10,Acme,Kept,4\n"

	entries, diags, err := ppm.Read(strings.NewReader(in), from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(diags) != 0 {
		t.Errorf("diagnostics = %v, want none", diags)
	}
	if len(entries) != 1 || entries[0].Description != "Kept" {
		t.Errorf("entries = %+v, want only the in-range row", entries)
	}
}

func TestReadReportsMalformedRows(t *testing.T) {
	in := "Date,Project,Description,Hours\n" +
		"notadate,Acme,Broken,4\n" +
		"2025-07-03,Acme,Bad hours,eight\n" +
		"2025-07-03,Acme,Good,4\n"

	entries, diags, err := ppm.Read(strings.NewReader(in), from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Description != "Good" {
		t.Errorf("entries = %+v, want only the valid row", entries)
	}
	if len(diags) != 2 {
		t.Errorf("diagnostics = %v, want two", diags)
	}
}

func TestReadAcceptsExportHeaderNames(t *testing.T) {
	in := "Date,Project Name,Task Name/Description,Work\n" +
		"2025-07-03,Acme,Backend work,6h\n"

	entries, _, err := ppm.Read(strings.NewReader(in), from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %+v", entries)
	}
	if entries[0].Project != "Acme" || entries[0].Description != "Backend work" {
		t.Errorf("entry = %+v", entries[0])
	}
}

func TestReadMissingColumnFails(t *testing.T) {
	in := "Date,Project,Hours\n2025-07-03,Acme,4\n"
	if _, _, err := ppm.Read(strings.NewReader(in), from, to); err == nil {
		t.Error("expected error for missing description column")
	}
}
