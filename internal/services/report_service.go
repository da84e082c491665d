package services

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/xuri/excelize/v2"

	"workhub_app/internal/models"
)

// ReportService renders end-of-day artifacts: the PDF report attached to
// the snapshot and the Excel sale listing export.
type ReportService struct {
	mediaRoot string
}

func NewReportService(mediaRoot string) *ReportService {
	if mediaRoot == "" {
		mediaRoot = "media"
	}
	return &ReportService{mediaRoot: mediaRoot}
}

// GenerateEODPDF renders the report for a snapshot and returns the stored
// file path (media/eod_reports/eod_report_YYYY-MM-DD.pdf).
func (r *ReportService) GenerateEODPDF(eod *models.EndOfDay, sales []models.Sale) (string, error) {
	dir := filepath.Join(r.mediaRoot, "eod_reports")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	dateStr := eod.Date.Format("2006-01-02")
	path := filepath.Join(dir, fmt.Sprintf("eod_report_%s.pdf", dateStr))

	m := maroto.New()

	m.AddRow(12, text.NewCol(12, "End of Day Report", props.Text{
		Size:  14,
		Style: fontstyle.Bold,
		Align: align.Center,
	}))
	m.AddRow(8, text.NewCol(12, dateStr, props.Text{Size: 10, Align: align.Center}))

	m.AddRow(10, text.NewCol(12, fmt.Sprintf("Total sales: %d    Total amount: %.2f",
		eod.TotalSalesCount, eod.Amount), props.Text{Size: 11, Style: fontstyle.Bold}))

	m.AddRow(8, text.NewCol(12, "By payment method", props.Text{Size: 10, Style: fontstyle.Bold}))
	methodRows := []struct {
		label  string
		amount float64
	}{
		{"Cash", eod.CashAmount},
		{"Mobile money", eod.MobileMoneyAmount},
		{"Bank transfer", eod.BankTransferAmount},
		{"Card", eod.CardAmount},
	}
	for _, mr := range methodRows {
		m.AddRows(row.New(6).Add(
			text.NewCol(6, mr.label, props.Text{Size: 9}),
			text.NewCol(6, fmt.Sprintf("%.2f", mr.amount), props.Text{Size: 9, Align: align.Right}),
		))
	}

	m.AddRow(8, text.NewCol(12, "By sale type", props.Text{Size: 10, Style: fontstyle.Bold}))
	typeTotals := map[models.SaleType]float64{}
	for _, sale := range sales {
		typeTotals[sale.SaleType] += sale.Amount
	}
	for _, st := range []models.SaleType{models.SaleTypeHourly, models.SaleTypeDayDesk, models.SaleTypeMeetingRoom, models.SaleTypeMonthly} {
		if amount, ok := typeTotals[st]; ok {
			m.AddRows(row.New(6).Add(
				text.NewCol(6, string(st), props.Text{Size: 9}),
				text.NewCol(6, fmt.Sprintf("%.2f", amount), props.Text{Size: 9, Align: align.Right}),
			))
		}
	}

	m.AddRow(8, text.NewCol(12, "Sales", props.Text{Size: 10, Style: fontstyle.Bold}))
	m.AddRows(row.New(6).Add(
		text.NewCol(2, "ID", props.Text{Size: 8, Style: fontstyle.Bold}),
		text.NewCol(3, "Type", props.Text{Size: 8, Style: fontstyle.Bold}),
		text.NewCol(3, "Method", props.Text{Size: 8, Style: fontstyle.Bold}),
		text.NewCol(2, "Cashier", props.Text{Size: 8, Style: fontstyle.Bold}),
		text.NewCol(2, "Amount", props.Text{Size: 8, Style: fontstyle.Bold, Align: align.Right}),
	))
	for _, sale := range sales {
		m.AddRows(row.New(5).Add(
			text.NewCol(2, fmt.Sprintf("%d", sale.ID), props.Text{Size: 8}),
			text.NewCol(3, string(sale.SaleType), props.Text{Size: 8}),
			text.NewCol(3, string(sale.PaymentMethod), props.Text{Size: 8}),
			text.NewCol(2, sale.Cashier, props.Text{Size: 8}),
			text.NewCol(2, fmt.Sprintf("%.2f", sale.Amount), props.Text{Size: 8, Align: align.Right}),
		))
	}

	doc, err := m.Generate()
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	if err := doc.Save(path); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}

	return path, nil
}

// ExportEODExcel writes the snapshot's sale listing as an xlsx workbook and
// returns the bytes for streaming.
func (r *ReportService) ExportEODExcel(eod *models.EndOfDay, sales []models.Sale) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Sales"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"ID", "Date", "Type", "Amount", "Payment Method", "Reference", "Cashier", "Client"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}

	for i, sale := range sales {
		rowNo := i + 2
		clientName := ""
		if sale.Client != nil {
			clientName = sale.Client.Name
		}
		values := []interface{}{
			sale.ID,
			sale.Date.Format("2006-01-02 15:04"),
			string(sale.SaleType),
			sale.Amount,
			string(sale.PaymentMethod),
			sale.PaymentReference,
			sale.Cashier,
			clientName,
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, rowNo)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "B", "B", 18)
	_ = f.SetColWidth(sheet, "E", "F", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
