// Package report renders reconciliation results as CSV.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"invrec/internal/engine"
	"invrec/internal/model"
)

// hours renders without trailing zeros, matching how the values were authored.
func hours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

// WriteDetail writes the full detail report, one row per reconciled record.
func WriteDetail(w io.Writer, rows []model.DetailRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Project", "Notes", "Date", "Hours", "Source"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Project, r.Notes, r.Date, hours(r.Hours), r.Source}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummary writes the per-project totals. When billed hours exceed the
// declared worked total, a fenced discrepancy block follows the projects so
// the overage is visible in the same file.
func WriteSummary(w io.Writer, res engine.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Project", "Hours"}); err != nil {
		return err
	}
	for _, r := range res.Summary {
		if err := cw.Write([]string{r.Project, hours(r.Hours)}); err != nil {
			return err
		}
	}
	if res.Discrepancy() {
		block := [][]string{
			{">>>>>>>>>>>>", ""},
			{"Total Hours", hours(res.TotalHours)},
			{"Worked Hours", hours(res.WorkedHours)},
			{"<<<<<<<<<<<<", ""},
			{"Difference", hours(res.Difference())},
		}
		for _, rec := range block {
			if err := cw.Write(rec); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// Save writes detail and summary CSVs to detailPath and summaryPath.
func Save(detailPath, summaryPath string, res engine.Result) error {
	df, err := os.Create(detailPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", detailPath, err)
	}
	if err := WriteDetail(df, res.Detail); err != nil {
		df.Close()
		return fmt.Errorf("write %s: %w", detailPath, err)
	}
	if err := df.Close(); err != nil {
		return err
	}

	sf, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", summaryPath, err)
	}
	if err := WriteSummary(sf, res); err != nil {
		sf.Close()
		return fmt.Errorf("write %s: %w", summaryPath, err)
	}
	return sf.Close()
}
