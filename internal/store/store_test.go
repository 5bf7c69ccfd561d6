package store_test

import (
	"testing"
	"time"

	"invrec/internal/model"
	"invrec/internal/store"
)

var (
	from = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	to   = time.Date(2025, 7, 31, 23, 59, 59, 0, time.UTC)
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("NewMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestIgnoreRuleRoundTrip(t *testing.T) {
	s := newStore(t)
	k := model.CalendarKey{CalendarID: "work", Title: "Lunch"}

	got, err := s.GetCalendarIgnore(k)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("unseen key returned a rule: %v", *got)
	}

	if err := s.PutCalendarIgnore(k, true); err != nil {
		t.Fatal(err)
	}
	got, err = s.GetCalendarIgnore(k)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || !*got {
		t.Errorf("GetCalendarIgnore = %v, want true", got)
	}

	tk := model.TimesheetKey{Project: "Internal", Description: "Admin"}
	if err := s.PutTimesheetIgnore(tk, false); err != nil {
		t.Fatal(err)
	}
	tgot, err := s.GetTimesheetIgnore(tk)
	if err != nil {
		t.Fatal(err)
	}
	if tgot == nil || *tgot {
		t.Errorf("GetTimesheetIgnore = %v, want false", tgot)
	}
}

func TestXrefRoundTrip(t *testing.T) {
	s := newStore(t)
	k := model.CalendarKey{CalendarID: "work", Title: "Sprint Review"}

	if err := s.PutCalendarXref(k, "Acme Retainer"); err != nil {
		t.Fatal(err)
	}
	name, err := s.GetCalendarXref(k)
	if err != nil {
		t.Fatal(err)
	}
	if name == nil || *name != "Acme Retainer" {
		t.Errorf("GetCalendarXref = %v", name)
	}

	// timesheet xrefs key on project alone
	if err := s.PutTimesheetXref("PRJ-001", "Acme Retainer"); err != nil {
		t.Fatal(err)
	}
	pname, err := s.GetTimesheetXref("PRJ-001")
	if err != nil {
		t.Fatal(err)
	}
	if pname == nil || *pname != "Acme Retainer" {
		t.Errorf("GetTimesheetXref = %v", pname)
	}
	if missing, _ := s.GetTimesheetXref("PRJ-999"); missing != nil {
		t.Errorf("unseen project returned %q", *missing)
	}
}

func TestBulkRuleLoaders(t *testing.T) {
	s := newStore(t)
	ck := model.CalendarKey{CalendarID: "work", Title: "Lunch"}
	tk := model.TimesheetKey{Project: "Internal", Description: "Admin"}

	if err := s.PutCalendarIgnore(ck, true); err != nil {
		t.Fatal(err)
	}
	if err := s.PutCalendarXref(ck, "ignored anyway"); err != nil {
		t.Fatal(err)
	}
	if err := s.PutTimesheetIgnore(tk, true); err != nil {
		t.Fatal(err)
	}
	if err := s.PutTimesheetXref("PRJ-001", "Acme"); err != nil {
		t.Fatal(err)
	}

	ign, err := s.CalendarIgnores()
	if err != nil {
		t.Fatal(err)
	}
	if !ign[ck] {
		t.Errorf("CalendarIgnores = %v", ign)
	}
	xrefs, err := s.TimesheetXrefs()
	if err != nil {
		t.Fatal(err)
	}
	if xrefs["PRJ-001"] != "Acme" {
		t.Errorf("TimesheetXrefs = %v", xrefs)
	}
}

func TestReplaceEventsIsIdempotent(t *testing.T) {
	s := newStore(t)
	events := []model.CalendarEvent{
		{
			CalendarID: "work", Title: "Review",
			Start:           time.Date(2025, 7, 3, 9, 0, 0, 0, time.UTC),
			End:             time.Date(2025, 7, 3, 10, 0, 0, 0, time.UTC),
			DurationMinutes: 60,
		},
		{
			CalendarID: "work", Title: "Client A onsite",
			Start:  time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC),
			End:    time.Date(2025, 7, 9, 0, 0, 0, 0, time.UTC),
			AllDay: true,
		},
	}

	for range 2 {
		if err := s.ReplaceEvents(from, to, events); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListEvents(from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events after double replace, want 2", len(got))
	}
	if !got[0].Start.Equal(events[0].Start) || got[0].DurationMinutes != 60 {
		t.Errorf("timed event round-trip = %+v", got[0])
	}
	if !got[1].AllDay || !got[1].End.Equal(events[1].End) {
		t.Errorf("all-day event round-trip = %+v", got[1])
	}
}

func TestEventRangeIncludesStraddlingAllDay(t *testing.T) {
	s := newStore(t)
	straddler := model.CalendarEvent{
		CalendarID: "work", Title: "Onsite",
		Start:  time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC),
		AllDay: true,
	}

	// a straddling event is deleted and re-inserted on every re-sync of
	// the month it overlaps, never duplicated
	for range 2 {
		if err := s.ReplaceEvents(from, to, []model.CalendarEvent{straddler}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListEvents(from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d events, want the straddler once: %+v", len(got), got)
	}
	if !got[0].AllDay || !got[0].Start.Equal(straddler.Start) || !got[0].End.Equal(straddler.End) {
		t.Errorf("round-trip = %+v", got[0])
	}

	// the straddler belongs to June as well: re-syncing June replaces it
	// (a real June fetch would return it again), and June's timed events
	// stay out of July's range
	early := model.CalendarEvent{
		CalendarID: "work", Title: "Old",
		Start:           time.Date(2025, 6, 30, 9, 0, 0, 0, time.UTC),
		End:             time.Date(2025, 6, 30, 10, 0, 0, 0, time.UTC),
		DurationMinutes: 60,
	}
	if err := s.ReplaceEvents(
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC),
		[]model.CalendarEvent{early},
	); err != nil {
		t.Fatal(err)
	}
	got, err = s.ListEvents(from, to)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("July list after June replace = %+v, want empty", got)
	}
}

func TestReplaceTimesheetKeepsOtherMonths(t *testing.T) {
	s := newStore(t)
	june := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	if err := s.ReplaceTimesheet(
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		[]model.TimesheetEntry{{Date: june, Hours: 4, Description: "Old", Project: "Acme"}},
	); err != nil {
		t.Fatal(err)
	}

	if err := s.ReplaceTimesheet(from, to, []model.TimesheetEntry{
		{Date: time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC), Hours: 6, Description: "New", Project: "Acme"},
	}); err != nil {
		t.Fatal(err)
	}

	older, err := s.ListTimesheet(
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
	)
	if err != nil {
		t.Fatal(err)
	}
	if len(older) != 1 || older[0].Description != "Old" {
		t.Errorf("June records disturbed by July replace: %+v", older)
	}
}

func TestDistinctCalendarKeysSkipsAllDay(t *testing.T) {
	s := newStore(t)
	events := []model.CalendarEvent{
		{
			CalendarID: "work", Title: "Review",
			Start:           time.Date(2025, 7, 3, 9, 0, 0, 0, time.UTC),
			End:             time.Date(2025, 7, 3, 10, 0, 0, 0, time.UTC),
			DurationMinutes: 60,
		},
		{
			CalendarID: "work", Title: "Review",
			Start:           time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC),
			End:             time.Date(2025, 7, 10, 10, 0, 0, 0, time.UTC),
			DurationMinutes: 60,
		},
		{
			CalendarID: "work", Title: "Client A onsite",
			Start:  time.Date(2025, 7, 7, 0, 0, 0, 0, time.UTC),
			End:    time.Date(2025, 7, 8, 0, 0, 0, 0, time.UTC),
			AllDay: true,
		},
	}
	if err := s.ReplaceEvents(from, to, events); err != nil {
		t.Fatal(err)
	}

	keys, err := s.DistinctCalendarKeys(from, to)
	if err != nil {
		t.Fatal(err)
	}
	want := []model.CalendarKey{{CalendarID: "work", Title: "Review"}}
	if len(keys) != 1 || keys[0] != want[0] {
		t.Errorf("keys = %v, want %v", keys, want)
	}
}

func TestDistinctTimesheetKeysSkipsMarkers(t *testing.T) {
	s := newStore(t)
	entries := []model.TimesheetEntry{
		{Date: time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC), Hours: 6, Description: "Coding", Project: "Acme"},
		{Date: time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC), Hours: 6, Description: "Coding", Project: "Acme"},
		{Date: time.Date(2025, 7, 3, 0, 0, 0, 0, time.UTC), Description: "PPM " + model.WorkedHoursTag + "8", Project: "*NOTE*"},
	}
	if err := s.ReplaceTimesheet(from, to, entries); err != nil {
		t.Fatal(err)
	}

	keys, err := s.DistinctTimesheetKeys(from, to)
	if err != nil {
		t.Fatal(err)
	}
	want := model.TimesheetKey{Project: "Acme", Description: "Coding"}
	if len(keys) != 1 || keys[0] != want {
		t.Errorf("keys = %v, want [%v]", keys, want)
	}
}
