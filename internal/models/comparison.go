package models

// ScoreBreakdown carries the per-axis scores for one proposal. Each axis is
// bounded by its weight (price 40, delivery 30, warranty 20, items 10) and
// Total is their sum, so Total is always within [0, 100]. Values are rounded
// to two decimals for display; ranking happens on the unrounded figures
// before a breakdown is built.
type ScoreBreakdown struct {
	PriceScore    float64 `json:"price_score"`
	DeliveryScore float64 `json:"delivery_score"`
	WarrantyScore float64 `json:"warranty_score"`
	ItemScore     float64 `json:"item_score"`
}

// VendorComparison is one ranked entry of a ComparisonResult.
type VendorComparison struct {
	ProposalID  string         `json:"proposal_id"`
	VendorID    string         `json:"vendor_id"`
	VendorName  string         `json:"vendor_name"`
	VendorEmail string         `json:"vendor_email"`
	Extracted   ExtractedData  `json:"extracted_data"`
	Scores      ScoreBreakdown `json:"scores"`
	TotalScore  float64        `json:"total_score"`
}

// ComparisonResult ranks all compared proposals for one RFP, best first.
// Scores are relative to the compared set and are not comparable across runs.
type ComparisonResult struct {
	RFP        *RFP               `json:"rfp"`
	BestVendor *VendorComparison  `json:"best_vendor"`
	Vendors    []VendorComparison `json:"vendors"`
}
