package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "invrec",
	Short: "invrec – invoice-time reconciliation",
	Long: `invrec reconciles calendar events and timesheet entries into invoicing
reports. Fetched records and classification rules are stored in a SQLite
database in ~/.invrec/.`,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(gcalCmd)
	rootCmd.AddCommand(ppmCmd)
	rootCmd.AddCommand(listCmd)
}
