package classify

import (
	"time"
)

// ResolveAll classifies every distinct key appearing in the period's stored
// records. Keys with persisted rules resolve silently; unseen ones go through
// the provider. Calendar keys are walked first, matching the order a reviewer
// expects: meetings, then timesheet projects.
func (r *Resolver) ResolveAll(from, to time.Time) error {
	calKeys, err := r.store.DistinctCalendarKeys(from, to)
	if err != nil {
		return err
	}
	for _, k := range calKeys {
		if _, err := r.ResolveCalendar(k); err != nil {
			return err
		}
	}

	tsKeys, err := r.store.DistinctTimesheetKeys(from, to)
	if err != nil {
		return err
	}
	for _, k := range tsKeys {
		if _, err := r.ResolveTimesheet(k); err != nil {
			return err
		}
	}
	return nil
}
