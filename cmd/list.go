package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"invrec/internal/model"
	"invrec/internal/timecalc"
)

var (
	listMonth     string
	listCalendar  bool
	listTimesheet bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stored records for a month",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listMonth, "month", "", "Month to list (YYYY-MM); defaults to the previous month")
	listCmd.Flags().BoolVar(&listCalendar, "calendar", false, "Show only calendar events")
	listCmd.Flags().BoolVar(&listTimesheet, "timesheet", false, "Show only timesheet entries")
}

func runList(cmd *cobra.Command, args []string) error {
	from, to, err := resolveMonth(listMonth)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	st, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer st.Close()

	showCalendar := listCalendar || !listTimesheet
	showTimesheet := listTimesheet || !listCalendar

	if showCalendar {
		events, err := st.ListEvents(from, to)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		fmt.Printf("Calendar events for %s:\n", timecalc.MonthLabel(from))
		printEvents(events)
	}

	if showTimesheet {
		if showCalendar {
			fmt.Println()
		}
		entries, err := st.ListTimesheet(from, to)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		fmt.Printf("Timesheet entries for %s:\n", timecalc.MonthLabel(from))
		printEntries(entries)
	}
	return nil
}

// printEvents groups events by date and prints them.
func printEvents(events []model.CalendarEvent) {
	if len(events) == 0 {
		fmt.Println("No events found.")
		return
	}

	var currentDay string
	for _, e := range events {
		day := e.Start.Format("2006-01-02")
		if day != currentDay {
			fmt.Println(day)
			currentDay = day
		}

		if e.AllDay {
			fmt.Printf("  all day      %s [%s]\n", e.Title, e.CalendarID)
			continue
		}
		fmt.Printf("  %s-%s  %s [%s]\n",
			e.Start.Format("15:04"), e.End.Format("15:04"), e.Title, e.CalendarID)
	}
}

// printEntries groups entries by date and prints them.
func printEntries(entries []model.TimesheetEntry) {
	if len(entries) == 0 {
		fmt.Println("No entries found.")
		return
	}

	var currentDay string
	for _, e := range entries {
		day := e.Date.Format("2006-01-02")
		if day != currentDay {
			fmt.Println(day)
			currentDay = day
		}
		fmt.Printf("  %5.2fh  %s  %s\n", e.Hours, e.Project, e.Description)
	}
}
