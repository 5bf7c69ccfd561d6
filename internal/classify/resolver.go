// Package classify resolves ignore flags and invoice-project mappings for
// calendar titles and timesheet projects, remembering each decision so a
// human is asked about any given key only once.
package classify

import (
	"invrec/internal/model"
	"invrec/internal/store"
)

// Decision is the outcome of classifying one key.
type Decision struct {
	Ignore      bool
	InvoiceName string
}

// Provider supplies classification decisions for keys that have no persisted
// rule yet. Implementations may block on a human.
type Provider interface {
	AskIgnore(source, key, detail string) (bool, error)
	AskInvoiceName(source, key, defaultName string) (string, error)
}

// Resolver looks classifications up in the store and falls back to the
// Provider for unseen keys, persisting new answers. Decisions are cached for
// the run so a key prompts at most once; persisted rules are never
// overwritten here (editing the store is the only way to change one).
type Resolver struct {
	store    *store.Store
	provider Provider
	calCache map[model.CalendarKey]Decision
	tsCache  map[model.TimesheetKey]Decision
}

func NewResolver(st *store.Store, p Provider) *Resolver {
	return &Resolver{
		store:    st,
		provider: p,
		calCache: map[model.CalendarKey]Decision{},
		tsCache:  map[model.TimesheetKey]Decision{},
	}
}

// ResolveCalendar classifies a (calendar, title) pair. Ignored keys carry no
// invoice name; the caller must exclude them entirely.
func (r *Resolver) ResolveCalendar(k model.CalendarKey) (Decision, error) {
	if d, ok := r.calCache[k]; ok {
		return d, nil
	}

	flag, err := r.store.GetCalendarIgnore(k)
	if err != nil {
		return Decision{}, err
	}
	if flag == nil {
		answer, err := r.provider.AskIgnore("calendar", k.Title, "Calendar: "+k.CalendarID)
		if err != nil {
			return Decision{}, err
		}
		if err := r.store.PutCalendarIgnore(k, answer); err != nil {
			return Decision{}, err
		}
		flag = &answer
	}
	if *flag {
		d := Decision{Ignore: true}
		r.calCache[k] = d
		return d, nil
	}

	name, err := r.store.GetCalendarXref(k)
	if err != nil {
		return Decision{}, err
	}
	if name == nil {
		answer, err := r.provider.AskInvoiceName("calendar", k.Title, k.Title)
		if err != nil {
			return Decision{}, err
		}
		if err := r.store.PutCalendarXref(k, answer); err != nil {
			return Decision{}, err
		}
		name = &answer
	}

	d := Decision{InvoiceName: *name}
	r.calCache[k] = d
	return d, nil
}

// ResolveTimesheet classifies a (project, description) pair. Ignore rules
// match the full pair; the invoice mapping is shared by the whole project, so
// a second description under a known project never prompts for a name.
func (r *Resolver) ResolveTimesheet(k model.TimesheetKey) (Decision, error) {
	if d, ok := r.tsCache[k]; ok {
		return d, nil
	}

	flag, err := r.store.GetTimesheetIgnore(k)
	if err != nil {
		return Decision{}, err
	}
	if flag == nil {
		answer, err := r.provider.AskIgnore("timesheet", k.Description, "Project: "+k.Project)
		if err != nil {
			return Decision{}, err
		}
		if err := r.store.PutTimesheetIgnore(k, answer); err != nil {
			return Decision{}, err
		}
		flag = &answer
	}
	if *flag {
		d := Decision{Ignore: true}
		r.tsCache[k] = d
		return d, nil
	}

	name, err := r.store.GetTimesheetXref(k.Project)
	if err != nil {
		return Decision{}, err
	}
	if name == nil {
		answer, err := r.provider.AskInvoiceName("timesheet", k.Project, k.Project)
		if err != nil {
			return Decision{}, err
		}
		if err := r.store.PutTimesheetXref(k.Project, answer); err != nil {
			return Decision{}, err
		}
		name = &answer
	}

	d := Decision{InvoiceName: *name}
	r.tsCache[k] = d
	return d, nil
}
