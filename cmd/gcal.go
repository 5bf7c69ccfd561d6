package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"invrec/internal/config"
	"invrec/internal/gcal"
	"invrec/internal/timecalc"
)

var gcalSyncMonth string

var gcalCmd = &cobra.Command{
	Use:   "gcal",
	Short: "Google Calendar integration",
}

var gcalAuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize access to your Google Calendar",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := gcal.Authenticate(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Authentication failed: %v\n", err)
			os.Exit(1)
		}
		return nil
	},
}

var gcalSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch a month of calendar events into the local store",
	Args:  cobra.NoArgs,
	RunE:  runGcalSync,
}

func init() {
	gcalSyncCmd.Flags().StringVar(&gcalSyncMonth, "month", "", "Month to fetch (YYYY-MM); defaults to the previous month")
	gcalCmd.AddCommand(gcalAuthCmd)
	gcalCmd.AddCommand(gcalSyncCmd)
}

// onDate rebuilds t's calendar date in loc.
func onDate(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func runGcalSync(cmd *cobra.Command, args []string) error {
	from, to, err := resolveMonth(gcalSyncMonth)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Month boundaries in the configured timezone, so late-evening events
	// land in the right month.
	loc, err := cfg.Location()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	from = timecalc.StartOfDay(onDate(from, loc))
	to = timecalc.EndOfDay(onDate(to, loc))

	ctx := context.Background()
	client, err := gcal.NewClient(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	calendars := cfg.Google.Calendars
	if len(calendars) == 0 {
		calendars, err = client.ListCalendars()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Fetching events for %s from %d calendar(s)...\n",
		timecalc.MonthLabel(from), len(calendars))

	events, err := client.FetchEvents(calendars, from, to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to fetch calendar events: %v\n", err)
		os.Exit(1)
	}

	st, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer st.Close()

	if err := st.ReplaceEvents(from, to, events); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fmt.Printf("Stored %d events for %s.\n", len(events), timecalc.MonthLabel(from))
	return nil
}
