package pdfexport

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
	dbmodels "procurement-backend/models/db"
)

func FileName(rec dbmodels.PurchaseRequest) string {
	return rec.PRNumber + ".pdf"
}

// GeneratePR renders a printable copy of the request with its items and approval chain.
func GeneratePR(rec dbmodels.PurchaseRequest, now time.Time) (pdfFile []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("GeneratePR panic recover: %v", r)
		}
	}()
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(rec.PRNumber, true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Generated %s - page %d", now.Format("2006-01-02 15:04"), pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("Purchase Request %s", rec.PRNumber)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, tr(rec.Title), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	writeFields(pdf, tr, [][2]string{
		{"Status", string(rec.Status)},
		{"Department", string(rec.Department)},
		{"Requestor", fmt.Sprintf("%s %s", rec.Requestor, rec.RequestorEmail)},
		{"Cost center", rec.CostCenter},
		{"Priority", string(rec.Priority)},
		{"Required date", formatDate(rec.RequiredDate)},
		{"Estimated budget", formatAmount(rec.EstimatedBudget, string(rec.Currency))},
		{"Actual spend", formatAmount(rec.ActualSpend, string(rec.Currency))},
		{"Items total", formatAmount(rec.CalculatedTotal(), string(rec.Currency))},
		{"Preferred vendor", rec.PreferredVendor},
		{"Created", rec.CreatedAt.Format(time.DateOnly)},
	})

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Business justification", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, tr(rec.BusinessJustification), "", "L", false)

	if len(rec.Items) != 0 {
		pdf.Ln(3)
		rows := make([][]string, 0, len(rec.Items))
		for _, item := range rec.Items {
			rows = append(rows, []string{
				strconv.Itoa(item.ItemNumber),
				item.Description,
				strconv.Itoa(item.Quantity),
				string(item.Unit),
				formatAmount(item.UnitPrice, ""),
				formatAmount(item.Total, ""),
				string(item.Status),
			})
		}
		writeTable(pdf, tr, "Line items",
			[]string{"#", "Description", "Qty", "Unit", "Unit price", "Total", "Status"},
			[]float64{10, 70, 15, 20, 25, 25, 25}, rows)
	}

	if len(rec.Approvals) != 0 {
		pdf.Ln(3)
		rows := make([][]string, 0, len(rec.Approvals))
		for _, approval := range rec.Approvals {
			rows = append(rows, []string{
				strconv.Itoa(approval.Level),
				string(approval.LevelName),
				approval.Approver,
				string(approval.Status),
				approval.DueDate.Format(time.DateOnly),
				formatDate(approval.ApprovedDate),
			})
		}
		writeTable(pdf, tr, "Approval chain",
			[]string{"Level", "Role", "Approver", "Status", "Due", "Decided"},
			[]float64{15, 35, 50, 25, 32.5, 32.5}, rows)
	}
	if pdf.Error() != nil {
		return nil, pdf.Error()
	}

	buf := new(bytes.Buffer)
	if err = pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeFields(pdf *fpdf.Fpdf, tr func(string) string, fields [][2]string) {
	for _, field := range fields {
		if field[1] == "" {
			continue
		}
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(45, 6, field[0], "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(0, 6, tr(field[1]), "", 1, "L", false, 0, "")
	}
}

func writeTable(pdf *fpdf.Fpdf, tr func(string) string, title string, headers []string, widths []float64, rows [][]string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(221, 235, 247)
	for idx, header := range headers {
		pdf.CellFormat(widths[idx], 6, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for _, row := range rows {
		for idx, value := range row {
			pdf.CellFormat(widths[idx], 6, tr(value), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
}

func formatDate(date *time.Time) string {
	if date == nil {
		return ""
	}
	return date.Format(time.DateOnly)
}

func formatAmount(value float64, currency string) string {
	if currency == "" {
		return strconv.FormatFloat(value, 'f', 2, 64)
	}
	return fmt.Sprintf("%.2f %s", value, currency)
}
