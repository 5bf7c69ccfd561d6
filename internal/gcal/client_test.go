package gcal

import (
	"testing"
	"time"

	"google.golang.org/api/calendar/v3"
)

func TestNormalizeTimedEvent(t *testing.T) {
	item := &calendar.Event{
		Summary: "Sprint Review",
		Start:   &calendar.EventDateTime{DateTime: "2025-07-03T09:00:00+02:00"},
		End:     &calendar.EventDateTime{DateTime: "2025-07-03T09:50:00+02:00"},
	}
	ev, err := normalize(item, "work@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if ev.AllDay {
		t.Error("timed event flagged as all-day")
	}
	if ev.DurationMinutes != 50 {
		t.Errorf("duration = %d, want 50", ev.DurationMinutes)
	}
	if ev.CalendarID != "work@example.com" || ev.Title != "Sprint Review" {
		t.Errorf("identity = %q/%q", ev.CalendarID, ev.Title)
	}
}

func TestNormalizeAllDayEvent(t *testing.T) {
	item := &calendar.Event{
		Summary: "Client A onsite",
		Start:   &calendar.EventDateTime{Date: "2025-07-07"},
		End:     &calendar.EventDateTime{Date: "2025-07-09"},
	}
	ev, err := normalize(item, "work@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if !ev.AllDay {
		t.Fatal("all-day event not flagged")
	}
	// end date is exclusive: covers the 7th and 8th only
	for d, want := range map[int]bool{7: true, 8: true, 9: false} {
		day := time.Date(2025, 7, d, 0, 0, 0, 0, time.UTC)
		if got := ev.CoversDay(day); got != want {
			t.Errorf("CoversDay(July %d) = %v, want %v", d, got, want)
		}
	}
}

func TestNormalizeUntitledEvent(t *testing.T) {
	item := &calendar.Event{
		Start: &calendar.EventDateTime{DateTime: "2025-07-03T09:00:00Z"},
		End:   &calendar.EventDateTime{DateTime: "2025-07-03T10:00:00Z"},
	}
	ev, err := normalize(item, "work@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if ev.Title != "(No title)" {
		t.Errorf("title = %q, want placeholder", ev.Title)
	}
}

func TestNormalizeRejectsMissingTimes(t *testing.T) {
	if _, err := normalize(&calendar.Event{Summary: "Broken"}, "work"); err == nil {
		t.Error("expected error for event without start and end")
	}
}
