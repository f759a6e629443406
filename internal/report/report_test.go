package report

import (
	"bytes"
	"testing"

	"github.com/davem/rfpdesk/internal/models"
)

func sampleResult() *models.ComparisonResult {
	vendors := []models.VendorComparison{
		{
			VendorName:  "Alpha Supplies",
			VendorEmail: "sales@alpha.test",
			Extracted:   models.ExtractedData{Price: 4500, DeliveryDays: 10, Warranty: 2},
			Scores:      models.ScoreBreakdown{PriceScore: 40, DeliveryScore: 30, WarrantyScore: 20, ItemScore: 10},
			TotalScore:  100,
		},
		{
			VendorName:  "Beta Corp",
			VendorEmail: "quotes@beta.test",
			Extracted:   models.ExtractedData{ItemsText: "Chair, Desk"},
			Scores:      models.ScoreBreakdown{ItemScore: 10},
			TotalScore:  10,
		},
	}
	return &models.ComparisonResult{
		RFP:        &models.RFP{ID: "64fa1c2b9e1a2b3c4d5e6f70", Title: "Office furniture refresh", Budget: "USD 50,000"},
		BestVendor: &vendors[0],
		Vendors:    vendors,
	}
}

func TestPDFOutput(t *testing.T) {
	data, err := PDF(sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("not a pdf: % x", data[:8])
	}
}

func TestXLSXOutput(t *testing.T) {
	data, err := XLSX(sampleResult())
	if err != nil {
		t.Fatal(err)
	}
	// xlsx is a zip container
	if !bytes.HasPrefix(data, []byte("PK")) {
		t.Errorf("not a zip container: % x", data[:4])
	}
}

func TestPDFEmptyComparison(t *testing.T) {
	result := &models.ComparisonResult{RFP: &models.RFP{ID: "64fa1c2b9e1a2b3c4d5e6f70", Title: "Empty"}}
	data, err := PDF(result)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("empty output")
	}
}
