// Package report renders monthly archives as downloadable PDF statements.
package report

import (
	"bytes"
	"fmt"

	"github.com/phpdave11/gofpdf"

	"github.com/mmynk/hisab/internal/calculator"
	"github.com/mmynk/hisab/internal/models"
)

// BuildArchivePDF renders one month of a group's books.
func BuildArchivePDF(group *models.Group, a calculator.Archive, currency string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("%s - %s", group.DisplayName, a.Month), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, group.DisplayName)
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, fmt.Sprintf("Monthly archive: %s (%s)", a.Month, a.GroupType.OrDefault()))
	pdf.Ln(12)

	amount := func(v fmt.Stringer) string {
		return fmt.Sprintf("%s %s", v, currency)
	}

	section(pdf, "Summary")
	s := a.Summary
	row(pdf, []float64{70, 60}, "Total cost", amount(s.TotalCost))
	row(pdf, []float64{70, 60}, "Bazar", amount(s.TotalBazar))
	row(pdf, []float64{70, 60}, "Rent and utilities", amount(s.TotalFixed))
	row(pdf, []float64{70, 60}, "Other", amount(s.TotalMisc))
	row(pdf, []float64{70, 60}, "Funds collected", amount(s.TotalFunds))
	row(pdf, []float64{70, 60}, "Manager holding", amount(s.ManagerHolding))
	row(pdf, []float64{70, 60}, "Total meals", s.TotalMeals.String())
	row(pdf, []float64{70, 60}, "Meal rate", fmt.Sprintf("%s %s", s.MealRate.StringFixed(2), currency))
	pdf.Ln(6)

	section(pdf, "Balances")
	header(pdf, []float64{60, 30, 30, 30, 35}, "Member", "Paid", "Deposited", "Meals", "Balance")
	for _, b := range a.Balances {
		row(pdf, []float64{60, 30, 30, 30, 35},
			b.Name, b.Paid.String(), b.Deposited.String(), b.MealUnits.String(), b.Balance.String())
	}
	pdf.Ln(6)

	section(pdf, "Settlements")
	if len(a.Settlements) == 0 {
		pdf.MultiCell(0, 7, "Everyone is settled.", "", "L", false)
	}
	for _, st := range a.Settlements {
		pdf.MultiCell(0, 7, fmt.Sprintf("%s pays %s %s", st.FromName, st.ToName, amount(st.Amount)), "", "L", false)
	}
	pdf.Ln(6)

	if len(a.PerUserMeals) > 0 {
		section(pdf, "Meals")
		header(pdf, []float64{70, 40, 40}, "Member", "Days", "Units")
		for _, um := range a.PerUserMeals {
			row(pdf, []float64{70, 40, 40}, um.Name, fmt.Sprint(len(um.Meals)), um.Units.String())
		}
		pdf.Ln(6)
	}

	names := make(map[string]string, len(a.Balances))
	for _, b := range a.Balances {
		names[b.UserID] = b.Name
	}
	nameOf := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return calculator.UnknownName
	}

	if len(a.Funds) > 0 {
		section(pdf, "Funds")
		header(pdf, []float64{35, 70, 40}, "Date", "Member", "Amount")
		for _, f := range a.Funds {
			row(pdf, []float64{35, 70, 40}, f.Date.String(), nameOf(f.UserID), f.Amount.String())
		}
		pdf.Ln(6)
	}

	if len(a.Expenses) > 0 {
		section(pdf, "Expenses")
		header(pdf, []float64{30, 50, 55, 35}, "Date", "Paid by", "Category", "Amount")
		for _, e := range a.Expenses {
			row(pdf, []float64{30, 50, 55, 35}, e.Date.String(), nameOf(e.UserID), e.Category, e.Amount.String())
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render archive pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, title)
	pdf.Ln(9)
	pdf.SetFont("Helvetica", "", 11)
}

func header(pdf *gofpdf.Fpdf, widths []float64, cols ...string) {
	pdf.SetFont("Helvetica", "B", 11)
	for i, c := range cols {
		pdf.CellFormat(widths[i], 7, c, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
}

func row(pdf *gofpdf.Fpdf, widths []float64, cols ...string) {
	for i, c := range cols {
		pdf.Cell(widths[i], 7, c)
	}
	pdf.Ln(7)
}
