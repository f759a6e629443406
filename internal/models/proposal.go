package models

import (
	"time"

	"github.com/google/uuid"
)

// ExtractedData holds the machine-extracted candidate fields of a vendor
// reply. Everything is untyped at capture time: the extraction service may
// return numbers, numeric strings, or nothing at all, and normalization is
// deferred to comparison time.
type ExtractedData struct {
	Price        interface{} `json:"price,omitempty"`
	DeliveryDays interface{} `json:"delivery_days,omitempty"`
	Warranty     interface{} `json:"warranty,omitempty"`
	Items        interface{} `json:"items,omitempty"`
	ItemsText    string      `json:"items_text,omitempty"`

	// Resolution hints, used only when headers alone cannot tie the
	// message to a vendor and RFP.
	VendorName string `json:"vendor_name,omitempty"`
	RFPTitle   string `json:"rfp_title,omitempty"`
}

// AttachmentMeta is opaque metadata about a message attachment. The raw
// bytes are not retained, only what is needed for display and diagnostics.
type AttachmentMeta struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

// Proposal is a vendor's reply to an RFP: the raw message plus the extracted
// field set. Rows are append-only; a vendor replying twice yields two rows.
type Proposal struct {
	ID          uuid.UUID        `json:"id"`
	RFPID       string           `json:"rfp_id"`
	VendorID    uuid.UUID        `json:"vendor_id"`
	VendorEmail string           `json:"vendor_email"`
	Subject     string           `json:"subject"`
	Body        string           `json:"body"`
	Extracted   ExtractedData    `json:"extracted_data"`
	Attachments []AttachmentMeta `json:"attachments,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}
