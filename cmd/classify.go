package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"invrec/internal/classify"
	"invrec/internal/timecalc"
)

var classifyMonth string

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify unseen calendar titles and timesheet projects",
	Long: `Walk the stored records for a month and prompt for every calendar title
and timesheet project that has no classification rule yet. Keys with
persisted rules are skipped, so re-running is cheap.`,
	Args: cobra.NoArgs,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringVar(&classifyMonth, "month", "", "Month to classify (YYYY-MM); defaults to the previous month")
}

func runClassify(cmd *cobra.Command, args []string) error {
	from, to, err := resolveMonth(classifyMonth)
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

	fmt.Println(classifyBanner)

	resolver := classify.NewResolver(st, classify.TerminalProvider{})
	if err := resolver.ResolveAll(from, to); err != nil {
		fmt.Fprintf(os.Stderr, "Classification failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Classification for %s complete.\n", timecalc.MonthLabel(from))
	return nil
}
