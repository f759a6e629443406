package mail

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/davem/rfpdesk/internal/models"
)

// ErrNoMatch means a message could not be tied to a known RFP and vendor.
// The caller skips the message; it is never fatal to the batch.
var ErrNoMatch = errors.New("message matches no known rfp/vendor pair")

// Reply subjects embed the solicitation id as "RFP <24-hex id>".
var rfpSubjectPattern = regexp.MustCompile(`RFP\s([a-fA-F0-9]{24})`)

// ResolverStore is the lookup surface the resolver needs. Misses are
// reported as (nil, nil).
type ResolverStore interface {
	GetVendorByEmail(ctx context.Context, email string) (*models.Vendor, error)
	GetVendorByName(ctx context.Context, name string) (*models.Vendor, error)
	FindRFPByTitle(ctx context.Context, title string) (*models.RFP, error)
}

// Hints are optional fields recovered by structured extraction; they back
// the fallback paths when headers alone are not enough.
type Hints struct {
	VendorName string
	RFPTitle   string
}

// Resolution ties an inbound message to its RFP and vendor. The RFP id from
// an embedded subject tag is used verbatim, without a lookup.
type Resolution struct {
	RFPID  string
	Vendor *models.Vendor
}

type Resolver struct {
	store ResolverStore
}

func NewResolver(store ResolverStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve matches a message to a vendor (by sender address, falling back to
// an extracted vendor name) and an RFP (by the subject-embedded id, falling
// back to title similarity). Returns ErrNoMatch when either side fails.
func (r *Resolver) Resolve(ctx context.Context, fromAddress, subject string, hints Hints) (*Resolution, error) {
	vendor, err := r.resolveVendor(ctx, fromAddress, hints.VendorName)
	if err != nil {
		return nil, err
	}
	if vendor == nil {
		return nil, fmt.Errorf("sender %q: %w", fromAddress, ErrNoMatch)
	}

	rfpID, err := r.resolveRFP(ctx, subject, hints.RFPTitle)
	if err != nil {
		return nil, err
	}
	if rfpID == "" {
		return nil, fmt.Errorf("subject %q: %w", subject, ErrNoMatch)
	}

	return &Resolution{RFPID: rfpID, Vendor: vendor}, nil
}

func (r *Resolver) resolveVendor(ctx context.Context, fromAddress, vendorName string) (*models.Vendor, error) {
	if addr := strings.TrimSpace(fromAddress); addr != "" {
		vendor, err := r.store.GetVendorByEmail(ctx, addr)
		if err != nil {
			return nil, fmt.Errorf("vendor lookup by email: %w", err)
		}
		if vendor != nil {
			return vendor, nil
		}
	}
	if name := strings.TrimSpace(vendorName); name != "" {
		vendor, err := r.store.GetVendorByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("vendor lookup by name: %w", err)
		}
		return vendor, nil
	}
	return nil, nil
}

func (r *Resolver) resolveRFP(ctx context.Context, subject, rfpTitle string) (string, error) {
	if m := rfpSubjectPattern.FindStringSubmatch(subject); m != nil {
		return strings.ToLower(m[1]), nil
	}
	if title := strings.TrimSpace(rfpTitle); title != "" {
		rfp, err := r.store.FindRFPByTitle(ctx, title)
		if err != nil {
			return "", fmt.Errorf("rfp lookup by title: %w", err)
		}
		if rfp != nil {
			return rfp.ID, nil
		}
	}
	return "", nil
}
