// Package report renders comparison results as downloadable documents.
package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/davem/rfpdesk/internal/compare"
	"github.com/davem/rfpdesk/internal/models"
)

// PDF renders a full comparison report: header, RFP summary, the ranked
// vendor list with per-axis scores, and a closing recommendation page.
func PDF(result *models.ComparisonResult) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(180, 10, fmt.Sprintf("Comparison Report - %s", result.RFP.Title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// RFP summary
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(180, 6, "RFP ID: "+result.RFP.ID, "", 1, "L", false, 0, "")
	pdf.CellFormat(180, 6, "Title: "+result.RFP.Title, "", 1, "L", false, 0, "")
	if result.RFP.Budget != "" {
		pdf.CellFormat(180, 6, "Budget: "+result.RFP.Budget, "", 1, "L", false, 0, "")
	}
	if result.RFP.DeliveryTimeline != "" {
		pdf.CellFormat(180, 6, "Delivery Timeline: "+result.RFP.DeliveryTimeline, "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	// Ranked vendors
	pdf.SetFont("Arial", "BU", 12)
	pdf.CellFormat(180, 7, "Vendor Comparisons", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	for i, v := range result.Vendors {
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(180, 7, fmt.Sprintf("%d. %s (%s)", i+1, v.VendorName, v.VendorEmail), "", 1, "L", false, 0, "")

		pdf.SetFont("Arial", "", 10)
		rows := []string{
			fmt.Sprintf("Total Score: %.2f", v.TotalScore),
			fmt.Sprintf("Price Score: %.2f", v.Scores.PriceScore),
			fmt.Sprintf("Delivery Score: %.2f", v.Scores.DeliveryScore),
			fmt.Sprintf("Warranty Score: %.2f", v.Scores.WarrantyScore),
			fmt.Sprintf("Item Score: %.2f", v.Scores.ItemScore),
		}
		for _, row := range rows {
			pdf.CellFormat(180, 5, "   - "+row, "", 1, "L", false, 0, "")
		}

		if items := compare.ExtractedItems(v.Extracted); len(items) > 0 {
			pdf.CellFormat(180, 5, "   Items:", "", 1, "L", false, 0, "")
			for _, item := range items {
				pdf.CellFormat(180, 5, fmt.Sprintf("      - %s x %.0f", item.Name, item.Quantity), "", 1, "L", false, 0, "")
			}
		}
		pdf.Ln(3)
	}

	// Recommendation page
	if result.BestVendor != nil {
		best := result.BestVendor
		pdf.AddPage()
		pdf.SetFont("Arial", "BU", 14)
		pdf.CellFormat(180, 8, "Best Vendor Recommendation", "", 1, "L", false, 0, "")
		pdf.Ln(4)

		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(180, 7, fmt.Sprintf("%s (%s) - Score: %.2f", best.VendorName, best.VendorEmail, best.TotalScore), "", 1, "L", false, 0, "")
		pdf.Ln(2)

		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(180, 6, "Extracted Details:", "", 1, "L", false, 0, "")
		pdf.MultiCell(180, 5, extractedDetails(best.Extracted), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func extractedDetails(e models.ExtractedData) string {
	var b bytes.Buffer
	if e.Price != nil {
		fmt.Fprintf(&b, "Price: %v\n", e.Price)
	}
	if e.DeliveryDays != nil {
		fmt.Fprintf(&b, "Delivery days: %v\n", e.DeliveryDays)
	}
	if e.Warranty != nil {
		fmt.Fprintf(&b, "Warranty: %v\n", e.Warranty)
	}
	for _, item := range compare.ExtractedItems(e) {
		fmt.Fprintf(&b, "Item: %s x %.0f\n", item.Name, item.Quantity)
	}
	if b.Len() == 0 {
		return "No structured fields were extracted.\n"
	}
	return b.String()
}
