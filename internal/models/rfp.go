package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Item is a single line item, either requested on an RFP or quoted by a
// vendor. Names are the matching key (case-insensitive, trimmed); quantity
// and unit default to 1 and "pcs" when a source leaves them out.
type Item struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Specs    string  `json:"specs,omitempty"`
	Unit     string  `json:"unit,omitempty"`
}

// RFP is a buyer's solicitation document. Immutable after creation.
type RFP struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Requirements     string    `json:"requirements"`
	Budget           string    `json:"budget"`
	DeliveryTimeline string    `json:"delivery_timeline"`
	Items            []Item    `json:"items"`
	PaymentTerms     string    `json:"payment_terms"`
	Warranty         string    `json:"warranty"`
	RawText          string    `json:"raw_text"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewRFPID returns a fresh 24-hex-character identifier. The format is a
// wire-level contract: reply subjects embed it as "RFP <id>" and the
// ingestion resolver matches on exactly 24 hex characters.
func NewRFPID() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is unrecoverable for id generation
		panic(err)
	}
	return hex.EncodeToString(buf)
}
