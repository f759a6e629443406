package mailer

import (
	"strings"
	"testing"

	"github.com/davem/rfpdesk/internal/models"
)

func TestSolicitationSubjectEmbedsID(t *testing.T) {
	rfp := &models.RFP{ID: "64fa1c2b9e1a2b3c4d5e6f70", Title: "Office furniture refresh"}
	got := SolicitationSubject(rfp)
	want := "RFP 64fa1c2b9e1a2b3c4d5e6f70 - Office furniture refresh"
	if got != want {
		t.Errorf("subject = %q, want %q", got, want)
	}
}

func TestSolicitationBody(t *testing.T) {
	rfp := &models.RFP{
		ID:          "64fa1c2b9e1a2b3c4d5e6f70",
		Title:       "Office furniture refresh",
		Description: "Furnish two floors",
		Budget:      "USD 50,000",
		Items: []models.Item{
			{Name: "Chair", Quantity: 40, Specs: "ergonomic"},
			{Name: "Desk", Quantity: 20},
		},
	}
	vendor := &models.Vendor{Name: "Alpha Supplies", Email: "sales@alpha.test"}

	body := SolicitationBody(rfp, vendor)
	for _, want := range []string{
		"Hello Alpha Supplies",
		"Title: Office furniture refresh",
		"Budget: USD 50,000",
		"Chair x40 (ergonomic)",
		"Desk x20",
		"subject line intact",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "Requirements:") {
		t.Errorf("empty fields must be omitted:\n%s", body)
	}
}
