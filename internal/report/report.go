// Package report formats analysis results for humans: a console summary
// and an XLSX workbook export.
package report

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/verdantcity/greenspace-cli/internal/model"
)

// XLSXName returns the workbook export filename for a city.
func XLSXName(city string) string {
	return fmt.Sprintf("urban_green_space_report_%s.xlsx", city)
}

// Summary renders the run result as a console table with grouped numbers.
func Summary(run *model.Run) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	fmt.Fprintf(&b, "Urban Green Space Analysis - %s\n", run.City)
	fmt.Fprintf(&b, "Run %s (%s)\n\n", run.ID, run.Status)

	if run.Result == nil {
		b.WriteString("No results recorded for this run.\n")
		return b.String()
	}

	res := run.Result
	fmt.Fprintf(&b, "%-20s %10s %15s\n", "Category", "Features", "Area (ha)")
	fmt.Fprintln(&b, strings.Repeat("-", 47))
	fmt.Fprintf(&b, "%-20s %10s %15s\n", "Green space",
		p.Sprintf("%d", res.GreenFeatures), p.Sprintf("%.1f", res.GreenSpaceHa))
	fmt.Fprintf(&b, "%-20s %10s %15s\n", "Residential",
		p.Sprintf("%d", res.ResidentialFeatures), p.Sprintf("%.1f", res.ResidentialHa))
	fmt.Fprintln(&b, strings.Repeat("-", 47))
	fmt.Fprintf(&b, "Green share of classified area: %s%%\n", p.Sprintf("%.1f", res.GreenSharePct))

	return b.String()
}

// WriteXLSX exports the run summary and the per-feature breakdown as a
// two-sheet workbook.
func WriteXLSX(path string, run *model.Run, features []model.Feature) error {
	f := xlsx.NewFile()

	if err := addSummarySheet(f, run); err != nil {
		return err
	}
	if err := addFeatureSheet(f, features); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save workbook %s", path)
	}
	return nil
}

func addSummarySheet(f *xlsx.File, run *model.Run) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"City", "Run", "Status", "Category", "Features", "Area (ha)"} {
		header.AddCell().Value = h
	}

	if run.Result == nil {
		return nil
	}

	green := sheet.AddRow()
	green.AddCell().Value = run.City
	green.AddCell().Value = run.ID
	green.AddCell().Value = string(run.Status)
	green.AddCell().Value = "Green space"
	green.AddCell().SetInt(run.Result.GreenFeatures)
	green.AddCell().SetFloat(run.Result.GreenSpaceHa)

	residential := sheet.AddRow()
	residential.AddCell().Value = run.City
	residential.AddCell().Value = run.ID
	residential.AddCell().Value = string(run.Status)
	residential.AddCell().Value = "Residential"
	residential.AddCell().SetInt(run.Result.ResidentialFeatures)
	residential.AddCell().SetFloat(run.Result.ResidentialHa)

	share := sheet.AddRow()
	share.AddCell().Value = run.City
	share.AddCell().Value = run.ID
	share.AddCell().Value = string(run.Status)
	share.AddCell().Value = "Green share (%)"
	share.AddCell()
	share.AddCell().SetFloat(run.Result.GreenSharePct)

	return nil
}

func addFeatureSheet(f *xlsx.File, features []model.Feature) error {
	sheet, err := f.AddSheet("Features")
	if err != nil {
		return eris.Wrap(err, "report: add feature sheet")
	}

	header := sheet.AddRow()
	for _, h := range []string{"Layer", "FClass", "Name", "Category", "Area (ha)"} {
		header.AddCell().Value = h
	}

	for _, feat := range features {
		row := sheet.AddRow()
		row.AddCell().Value = feat.Layer
		row.AddCell().Value = feat.FClass
		row.AddCell().Value = feat.Name
		row.AddCell().Value = string(feat.Category)
		row.AddCell().SetFloat(feat.AreaHa)
	}

	return nil
}
