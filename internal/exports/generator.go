package exports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/fdg312/nutridesk/internal/daylog"
	"github.com/fdg312/nutridesk/internal/nutrient"
	"github.com/jung-kurt/gofpdf"
)

// menuRow is one rendered template item.
type menuRow struct {
	Slot    string
	Name    string
	Amount  float64
	Serving string
	Result  nutrient.Result
}

func menuRows(t nutrient.MenuTemplate) []menuRow {
	var rows []menuRow
	for _, s := range []struct {
		name  string
		items []nutrient.CatalogItem
	}{
		{"breakfast", t.BreakfastPlan},
		{"lunch", t.LunchPlan},
		{"dinner", t.DinnerPlan},
		{"snack", t.SnackPlan},
	} {
		for _, item := range s.items {
			amount, serving := selection(item)
			rows = append(rows, menuRow{
				Slot:    s.name,
				Name:    item.Name,
				Amount:  amount,
				Serving: serving,
				Result:  nutrient.ScalePlanItem(item),
			})
		}
	}
	return rows
}

// selection returns the amount and unit an item is served at.
func selection(item nutrient.CatalogItem) (float64, string) {
	if cs := item.ChangedServing; cs != nil {
		if cs.Serving != nil && cs.Serving.Amount > 0 {
			return cs.Value / cs.Serving.Amount, servingName(*cs.Serving)
		}
		return cs.Value, "g"
	}
	amount := nutrient.ResolveOriginalServingAmount(item)
	if d := nutrient.ResolveDefaultServing(item.ServingOptions); d != nil && d.Amount > 0 {
		return amount / d.Amount, servingName(*d)
	}
	return amount, "g"
}

func servingName(s nutrient.ServingOption) string {
	if s.Name != "" {
		return s.Name
	}
	return s.InnerName
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func totalsRecord(label string, t nutrient.Totals) []string {
	return []string{label, "", "", "", fmtFloat(t.Calories), fmtFloat(t.ProteinsInGrams), fmtFloat(t.CarbohydratesInGrams), fmtFloat(t.FatInGrams)}
}

// generateMenuCSV writes one line per item followed by meal and grand totals.
func generateMenuCSV(t nutrient.MenuTemplate) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"slot", "name", "amount", "serving", "calories", "proteins_g", "carbohydrates_g", "fat_g"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, r := range menuRows(t) {
		record := []string{
			r.Slot,
			r.Name,
			fmtFloat(r.Amount),
			r.Serving,
			fmtFloat(r.Result.Calories),
			fmtFloat(r.Result.Nutrients.ProteinsInGrams),
			fmtFloat(r.Result.Nutrients.CarbohydratesInGrams),
			fmtFloat(r.Result.Nutrients.FatInGrams),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	totals := nutrient.AggregatePlanMeals(t)
	for _, rec := range [][]string{
		totalsRecord("total_breakfast", totals.Breakfast),
		totalsRecord("total_lunch", totals.Lunch),
		totalsRecord("total_dinner", totals.Dinner),
		totalsRecord("total_snack", totals.Snack),
		totalsRecord("total", totals.Grand),
	} {
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// generateJournalCSV writes one line per day followed by the average.
func generateJournalCSV(j *daylog.JournalResponse) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"date", "calories", "proteins_g", "carbohydrates_g", "fat_g", "burnt_calories", "water_ml", "entries"}
	if err := w.Write(header); err != nil {
		return nil, err
	}

	for _, d := range j.Days {
		record := []string{
			d.Date,
			fmtFloat(d.Totals.Calories),
			fmtFloat(d.Totals.ProteinsInGrams),
			fmtFloat(d.Totals.CarbohydratesInGrams),
			fmtFloat(d.Totals.FatInGrams),
			fmtFloat(d.BurntCalories),
			fmtFloat(d.WaterMl),
			strconv.Itoa(d.Entries),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	avg := []string{
		"average",
		fmtFloat(j.Average.Calories),
		fmtFloat(j.Average.ProteinsInGrams),
		fmtFloat(j.Average.CarbohydratesInGrams),
		fmtFloat(j.Average.FatInGrams),
		"", "", strconv.Itoa(j.LoggedDays),
	}
	if err := w.Write(avg); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// newPDF starts an A4 document with the core Helvetica font. tr converts
// UTF-8 text to the font's cp1252 encoding.
func newPDF(title, subtitle string) (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(8)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, tr(subtitle))
	pdf.Ln(12)
	return pdf, tr
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func tableHeader(pdf *gofpdf.Fpdf, widths []float64, labels []string) {
	pdf.SetFont("Helvetica", "B", 9)
	for i, l := range labels {
		ln := 0
		if i == len(labels)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], 6, l, "1", ln, "C", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 9)
}

func tableRow(pdf *gofpdf.Fpdf, widths []float64, cells []string, tr func(string) string) {
	for i, c := range cells {
		ln, align := 0, "R"
		if i == len(cells)-1 {
			ln = 1
		}
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 6, tr(c), "1", ln, align, false, 0, "")
	}
}

// generateMenuPDF renders a template as one table per meal and a summary.
func generateMenuPDF(t nutrient.MenuTemplate) ([]byte, error) {
	pdf, tr := newPDF("Menu: "+t.Name, "Values at the selected servings")

	widths := []float64{70, 35, 20, 22, 22, 22}
	labels := []string{"Item", "Amount", "kcal", "Protein g", "Carbs g", "Fat g"}

	rows := menuRows(t)
	totals := nutrient.AggregatePlanMeals(t)
	for _, meal := range []struct {
		slot, title string
		totals      nutrient.Totals
	}{
		{"breakfast", "Breakfast", totals.Breakfast},
		{"lunch", "Lunch", totals.Lunch},
		{"dinner", "Dinner", totals.Dinner},
		{"snack", "Snack", totals.Snack},
	} {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, meal.title)
		pdf.Ln(8)
		tableHeader(pdf, widths, labels)
		for _, r := range rows {
			if r.Slot != meal.slot {
				continue
			}
			tableRow(pdf, widths, []string{
				r.Name,
				fmtFloat(r.Amount) + " " + r.Serving,
				fmtFloat(r.Result.Calories),
				fmtFloat(r.Result.Nutrients.ProteinsInGrams),
				fmtFloat(r.Result.Nutrients.CarbohydratesInGrams),
				fmtFloat(r.Result.Nutrients.FatInGrams),
			}, tr)
		}
		tableRow(pdf, widths, []string{
			"Total", "",
			fmtFloat(meal.totals.Calories),
			fmtFloat(meal.totals.ProteinsInGrams),
			fmtFloat(meal.totals.CarbohydratesInGrams),
			fmtFloat(meal.totals.FatInGrams),
		}, tr)
		pdf.Ln(6)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Day total: %s kcal, protein %s g, carbs %s g, fat %s g",
		fmtFloat(totals.Grand.Calories),
		fmtFloat(totals.Grand.ProteinsInGrams),
		fmtFloat(totals.Grand.CarbohydratesInGrams),
		fmtFloat(totals.Grand.FatInGrams))))
	pdf.Ln(8)

	return output(pdf)
}

// generateJournalPDF renders a journal as a per-day table and the average.
func generateJournalPDF(j *daylog.JournalResponse) ([]byte, error) {
	pdf, tr := newPDF("Nutrition journal", fmt.Sprintf("Period: %s to %s", j.From, j.To))

	widths := []float64{28, 22, 24, 24, 22, 24, 22, 18}
	tableHeader(pdf, widths, []string{"Date", "kcal", "Protein g", "Carbs g", "Fat g", "Burnt kcal", "Water ml", "Entries"})
	for _, d := range j.Days {
		tableRow(pdf, widths, []string{
			d.Date,
			fmtFloat(d.Totals.Calories),
			fmtFloat(d.Totals.ProteinsInGrams),
			fmtFloat(d.Totals.CarbohydratesInGrams),
			fmtFloat(d.Totals.FatInGrams),
			fmtFloat(d.BurntCalories),
			fmtFloat(d.WaterMl),
			strconv.Itoa(d.Entries),
		}, tr)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "", 11)
	if j.LoggedDays == 0 {
		pdf.Cell(0, 8, "No logged days")
	} else {
		pdf.Cell(0, 8, tr(fmt.Sprintf("Average over %d logged days: %s kcal, protein %s g, carbs %s g, fat %s g",
			j.LoggedDays,
			fmtFloat(j.Average.Calories),
			fmtFloat(j.Average.ProteinsInGrams),
			fmtFloat(j.Average.CarbohydratesInGrams),
			fmtFloat(j.Average.FatInGrams))))
	}
	pdf.Ln(8)

	return output(pdf)
}
