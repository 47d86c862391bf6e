package interfaces

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	billing "rentdesk/internal/billing/domain"
)

// BuildReceiptPDF renders a minimal PDF for a receipt.
func BuildReceiptPDF(receipt *billing.Receipt) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Rent Receipt")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Tenant: %s", receipt.TenantName))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Unit: %s", receipt.UnitName))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Property: %s", receipt.PropertyAddress))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s", receipt.Period))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", receipt.Status))
	pdf.Ln(8)

	// Items table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(120, 6, "Description", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 6, "Amount", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, item := range receipt.Items {
		pdf.CellFormat(120, 6, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", item.Amount), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(4)
	pdf.Cell(0, 6, fmt.Sprintf("Total Due: %.2f", receipt.TotalDue))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total Payments: %.2f", receipt.TotalPayments))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Balance: %.2f", receipt.Balance))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildReceiptXLSX renders a minimal XLSX for a receipt.
func BuildReceiptXLSX(receipt *billing.Receipt) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	itemsSheet := "items"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(itemsSheet)

	_ = f.SetCellValue(summarySheet, "A1", "Rent Receipt")
	_ = f.SetCellValue(summarySheet, "A3", "Tenant")
	_ = f.SetCellValue(summarySheet, "B3", receipt.TenantName)
	_ = f.SetCellValue(summarySheet, "A4", "Unit")
	_ = f.SetCellValue(summarySheet, "B4", receipt.UnitName)
	_ = f.SetCellValue(summarySheet, "A5", "Property")
	_ = f.SetCellValue(summarySheet, "B5", receipt.PropertyAddress)
	_ = f.SetCellValue(summarySheet, "A6", "Period")
	_ = f.SetCellValue(summarySheet, "B6", receipt.Period)
	_ = f.SetCellValue(summarySheet, "A7", "Status")
	_ = f.SetCellValue(summarySheet, "B7", receipt.Status)
	_ = f.SetCellValue(summarySheet, "A8", "Total Due")
	_ = f.SetCellValue(summarySheet, "B8", receipt.TotalDue)
	_ = f.SetCellValue(summarySheet, "A9", "Total Payments")
	_ = f.SetCellValue(summarySheet, "B9", receipt.TotalPayments)
	_ = f.SetCellValue(summarySheet, "A10", "Balance")
	_ = f.SetCellValue(summarySheet, "B10", receipt.Balance)

	_ = f.SetCellValue(itemsSheet, "A1", "Description")
	_ = f.SetCellValue(itemsSheet, "B1", "Amount")
	for i, item := range receipt.Items {
		row := i + 2
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("A%d", row), item.Description)
		_ = f.SetCellValue(itemsSheet, fmt.Sprintf("B%d", row), item.Amount)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
