package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"invrec/internal/ppm"
	"invrec/internal/timecalc"
)

var ppmImportMonth string

var ppmCmd = &cobra.Command{
	Use:   "ppm",
	Short: "PPM timesheet integration",
}

var ppmImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a PPM timesheet CSV export into the local store",
	Long: `Import a PPM timesheet export. Rows outside the month are dropped and
the "Total work" rows become worked-hours markers that reconciliation
checks billed totals against. Re-importing a month replaces it.`,
	Args: cobra.ExactArgs(1),
	RunE: runPpmImport,
}

func init() {
	ppmImportCmd.Flags().StringVar(&ppmImportMonth, "month", "", "Month to import (YYYY-MM); defaults to the previous month")
	ppmCmd.AddCommand(ppmImportCmd)
}

func runPpmImport(cmd *cobra.Command, args []string) error {
	from, to, err := resolveMonth(ppmImportMonth)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	entries, diags, err := ppm.Import(args[0], from, to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, d := range diags {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", d)
	}

	st, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer st.Close()

	if err := st.ReplaceTimesheet(from, to, entries); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fmt.Printf("Stored %d timesheet entries for %s.\n", len(entries), timecalc.MonthLabel(from))
	return nil
}
