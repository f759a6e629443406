package compare

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/davem/rfpdesk/internal/models"
)

var (
	// ErrRFPNotFound means the RFP id does not exist. User-facing, never
	// retried.
	ErrRFPNotFound = errors.New("rfp not found")
	// ErrNoProposals means no proposal rows matched the RFP and vendor
	// filter. Informational, not a system fault.
	ErrNoProposals = errors.New("no proposals found")
)

// Store is the narrow read surface the comparator needs. A lookup miss is
// reported as (nil, nil) so fakes stay trivial; storage faults come back as
// errors.
type Store interface {
	GetRFP(ctx context.Context, id string) (*models.RFP, error)
	ListProposals(ctx context.Context, rfpID string, vendorEmails []string) ([]models.Proposal, error)
	ListVendors(ctx context.Context) ([]models.Vendor, error)
}

// Comparator runs the full comparison for one RFP. It is stateless and
// read-only: concurrent calls for different RFPs never interfere.
type Comparator struct {
	store Store
}

func NewComparator(store Store) *Comparator {
	return &Comparator{store: store}
}

// Compare loads every proposal for the RFP (optionally restricted to the
// given vendor emails), normalizes and scores them against shared baselines,
// and returns the ranked result, best vendor first. Repeated calls over the
// same persisted data yield identical ordering and scores.
func (c *Comparator) Compare(ctx context.Context, rfpID string, vendorEmails []string) (*models.ComparisonResult, error) {
	rfp, err := c.store.GetRFP(ctx, rfpID)
	if err != nil {
		return nil, fmt.Errorf("load rfp: %w", err)
	}
	if rfp == nil {
		return nil, ErrRFPNotFound
	}

	proposals, err := c.store.ListProposals(ctx, rfpID, vendorEmails)
	if err != nil {
		return nil, fmt.Errorf("load proposals: %w", err)
	}
	if len(proposals) == 0 {
		return nil, ErrNoProposals
	}

	vendors, err := c.store.ListVendors(ctx)
	if err != nil {
		return nil, fmt.Errorf("load vendors: %w", err)
	}
	nameByEmail := make(map[string]string, len(vendors))
	for _, v := range vendors {
		nameByEmail[v.Email] = v.Name
	}

	normalized := make([]Normalized, len(proposals))
	for i, p := range proposals {
		normalized[i] = Normalize(p)
	}
	baselines := ComputeBaselines(normalized)

	entries := make([]models.VendorComparison, len(normalized))
	rawTotals := make([]float64, len(normalized))
	for i, n := range normalized {
		breakdown, total := Score(n, baselines, rfp.Items)
		name := nameByEmail[n.Proposal.VendorEmail]
		if name == "" {
			name = n.Proposal.VendorEmail
		}
		entries[i] = models.VendorComparison{
			ProposalID:  n.Proposal.ID.String(),
			VendorID:    n.Proposal.VendorID.String(),
			VendorName:  name,
			VendorEmail: n.Proposal.VendorEmail,
			Extracted:   n.Proposal.Extracted,
			Scores:      breakdown,
			TotalScore:  round2(total),
		}
		rawTotals[i] = total
	}

	// Stable sort on the unrounded totals keeps equal-score entries in
	// their original proposal order.
	idx := make([]int, len(entries))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return rawTotals[idx[a]] > rawTotals[idx[b]]
	})

	ranked := make([]models.VendorComparison, len(entries))
	for i, j := range idx {
		ranked[i] = entries[j]
	}

	return &models.ComparisonResult{
		RFP:        rfp,
		BestVendor: &ranked[0],
		Vendors:    ranked,
	}, nil
}
