package report

import (
	"fmt"

	"github.com/samuelfneumann/tabular/experiment"
	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/stat"
)

const summarySheet = "Summary"

var (
	summaryHeader = []interface{}{
		"Index", "Type", "Config", "Runs", "Mean Return", "Final Return",
		"Mean Length", "Final Length",
	}
	curveHeader = []interface{}{
		"Episode", "Return", "Return StdErr", "Length", "Length StdErr",
	}
)

// SheetName returns the name of the sheet holding the learning curve of
// the i-th configuration of a sweep
func SheetName(i int) string {
	return fmt.Sprintf("Config %d", i)
}

// SaveWorkbook writes results to an xlsx workbook at filename. The
// first sheet summarizes every configuration and each configuration
// gets its own sheet holding its per-episode learning curve.
func SaveWorkbook(filename string, results ...experiment.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("saveWorkbook: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("saveWorkbook: %w", err)
	}
	index, err := f.GetSheetIndex(summarySheet)
	if err != nil {
		return fmt.Errorf("saveWorkbook: %w", err)
	}
	f.SetActiveSheet(index)

	if err := f.SetSheetRow(summarySheet, "A1", &summaryHeader); err != nil {
		return fmt.Errorf("saveWorkbook: %w", err)
	}
	for row, r := range results {
		if err := writeSummary(f, row+2, r); err != nil {
			return fmt.Errorf("saveWorkbook: %w", err)
		}
		if err := writeCurve(f, r); err != nil {
			return fmt.Errorf("saveWorkbook: %w", err)
		}
	}

	if err := f.SaveAs(filename); err != nil {
		return fmt.Errorf("saveWorkbook: %w", err)
	}
	return nil
}

// writeSummary writes the summary row of r
func writeSummary(f *excelize.File, row int, r experiment.Result) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}

	typeName, config := "", ""
	if r.Config != nil {
		typeName = string(r.Config.Type())
		config = fmt.Sprintf("%+v", r.Config)
	}

	values := []interface{}{
		r.Index, typeName, config, r.Runs,
		mean(r.Returns), FinalMean(r.Returns),
		mean(r.Lengths), FinalMean(r.Lengths),
	}
	return f.SetSheetRow(summarySheet, cell, &values)
}

// writeCurve writes the learning curve of r to its own sheet
func writeCurve(f *excelize.File, r experiment.Result) error {
	sheet := SheetName(r.Index)
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &curveHeader); err != nil {
		return err
	}

	for e := range r.Returns {
		cell, err := excelize.CoordinatesToCellName(1, e+2)
		if err != nil {
			return err
		}
		values := []interface{}{
			e + 1, r.Returns[e], at(r.ReturnsStdErr, e), at(r.Lengths, e),
			at(r.LengthsStdErr, e),
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}

// mean returns the mean of x, or 0 if x is empty
func mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// FinalMean returns the mean of the last tenth of x, or of its last value
// if x is short
func FinalMean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	n := len(x) / 10
	if n < 1 {
		n = 1
	}
	return stat.Mean(x[len(x)-n:], nil)
}

func at(x []float64, i int) float64 {
	if i < len(x) {
		return x[i]
	}
	return 0
}
