package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/davem/rfpdesk/internal/models"
)

// XLSX renders the ranked comparison as a one-sheet workbook: a header row
// and one row per vendor, best first.
func XLSX(result *models.ComparisonResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Comparison"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	f.SetCellValue(sheet, "A1", "RFP")
	f.SetCellValue(sheet, "B1", result.RFP.Title)
	f.SetCellValue(sheet, "A2", "RFP ID")
	f.SetCellValue(sheet, "B2", result.RFP.ID)

	headers := []string{"Rank", "Vendor", "Email", "Total Score", "Price Score", "Delivery Score", "Warranty Score", "Item Score"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(sheet, cell, h)
	}

	for i, v := range result.Vendors {
		row := 5 + i
		values := []interface{}{
			i + 1, v.VendorName, v.VendorEmail, v.TotalScore,
			v.Scores.PriceScore, v.Scores.DeliveryScore, v.Scores.WarrantyScore, v.Scores.ItemScore,
		}
		for col, val := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(sheet, cell, val)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
