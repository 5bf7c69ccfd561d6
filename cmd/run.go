package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"invrec/internal/classify"
	"invrec/internal/config"
	"invrec/internal/engine"
	"invrec/internal/report"
	"invrec/internal/store"
	"invrec/internal/timecalc"
)

var (
	runMonth          string
	runNonInteractive bool
	runDetailFile     string
	runSummaryFile    string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reconcile a month and write the invoicing reports",
	Long: `Reconcile the stored calendar and timesheet records for one month into
detail.csv and summary.csv. Unclassified titles and projects are prompted
for first; answers are remembered for future runs.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runMonth, "month", "", "Month to invoice (YYYY-MM); defaults to the previous month")
	runCmd.Flags().BoolVar(&runNonInteractive, "non-interactive", false, "Never prompt; unseen keys are kept under their own name")
	runCmd.Flags().StringVar(&runDetailFile, "detail", "", "Detail report path (default from config)")
	runCmd.Flags().StringVar(&runSummaryFile, "summary", "", "Summary report path (default from config)")
}

const classifyBanner = `
Classification ----------------

When the timesheet has a project for meetings you should ignore the
calendar events that match. When it does not, enter the invoice project.

All-day calendar events are evenly divided between timesheet projects
invoiced as *GCAL. Do NOT ignore those calendar events if you want to
use this feature.
`

func runRun(cmd *cobra.Command, args []string) error {
	from, to, err := resolveMonth(runMonth)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	detailFile := runDetailFile
	if detailFile == "" {
		detailFile = cfg.Report.DetailFile
	}
	summaryFile := runSummaryFile
	if summaryFile == "" {
		summaryFile = cfg.Report.SummaryFile
	}

	st, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer st.Close()

	fmt.Printf("Reconciling %s...\n", timecalc.MonthLabel(from))

	var provider classify.Provider = classify.TerminalProvider{}
	if runNonInteractive {
		provider = classify.DefaultsProvider{}
	} else {
		fmt.Println(classifyBanner)
	}
	resolver := classify.NewResolver(st, provider)
	if err := resolver.ResolveAll(from, to); err != nil {
		fmt.Fprintf(os.Stderr, "Classification failed: %v\n", err)
		os.Exit(1)
	}

	res, err := reconcileMonth(st, from, to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	for _, d := range res.Diagnostics {
		fmt.Println(d)
	}

	if err := report.Save(detailFile, summaryFile, res); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fmt.Println()
	fmt.Printf("Wrote %s (%d rows) and %s (%d projects)\n",
		detailFile, len(res.Detail), summaryFile, len(res.Summary))
	if res.Discrepancy() {
		fmt.Printf("Total hours is greater than worked hours by %g hours\n", res.Difference())
		fmt.Printf("Please check the %s file for details and correct the problem\n", detailFile)
	}
	return nil
}

// reconcileMonth loads records and rules for [from, to] and runs the engine.
func reconcileMonth(st *store.Store, from, to time.Time) (engine.Result, error) {
	events, err := st.ListEvents(from, to)
	if err != nil {
		return engine.Result{}, err
	}
	entries, err := st.ListTimesheet(from, to)
	if err != nil {
		return engine.Result{}, err
	}

	rules := engine.Rules{}
	if rules.CalendarIgnore, err = st.CalendarIgnores(); err != nil {
		return engine.Result{}, err
	}
	if rules.CalendarXref, err = st.CalendarXrefs(); err != nil {
		return engine.Result{}, err
	}
	if rules.TimesheetIgnore, err = st.TimesheetIgnores(); err != nil {
		return engine.Result{}, err
	}
	if rules.TimesheetXref, err = st.TimesheetXrefs(); err != nil {
		return engine.Result{}, err
	}

	return engine.Reconcile(events, entries, rules, from, to), nil
}

// resolveMonth parses --month, defaulting to the previous month. Invoicing
// runs normally happen in the first days of the following month.
func resolveMonth(flag string) (time.Time, time.Time, error) {
	month := timecalc.PrevMonth(time.Now())
	if flag != "" {
		var err error
		month, err = timecalc.ParseMonth(flag)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid --month value %q: %w", flag, err)
		}
	}
	from, to := timecalc.MonthRange(month)
	return from, to, nil
}

func openStore() (*store.Store, error) {
	path, err := store.DefaultDBPath()
	if err != nil {
		return nil, err
	}
	return store.New(path)
}
