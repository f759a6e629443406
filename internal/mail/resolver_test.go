package mail

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/davem/rfpdesk/internal/models"
	"github.com/google/uuid"
)

type fakeResolverStore struct {
	vendorsByEmail map[string]*models.Vendor
	vendorsByName  map[string]*models.Vendor
	rfpsByTitle    map[string]*models.RFP
}

func (f *fakeResolverStore) GetVendorByEmail(_ context.Context, email string) (*models.Vendor, error) {
	return f.vendorsByEmail[strings.ToLower(email)], nil
}

func (f *fakeResolverStore) GetVendorByName(_ context.Context, name string) (*models.Vendor, error) {
	return f.vendorsByName[strings.ToLower(name)], nil
}

func (f *fakeResolverStore) FindRFPByTitle(_ context.Context, title string) (*models.RFP, error) {
	for key, rfp := range f.rfpsByTitle {
		if strings.Contains(key, strings.ToLower(title)) {
			return rfp, nil
		}
	}
	return nil, nil
}

func newFakeResolverStore() *fakeResolverStore {
	vendor := &models.Vendor{ID: uuid.New(), Name: "Alpha Supplies", Email: "sales@alpha.test"}
	return &fakeResolverStore{
		vendorsByEmail: map[string]*models.Vendor{"sales@alpha.test": vendor},
		vendorsByName:  map[string]*models.Vendor{"alpha supplies": vendor},
		rfpsByTitle: map[string]*models.RFP{
			"office furniture refresh": {ID: "64fa1c2b9e1a2b3c4d5e6f70", Title: "Office furniture refresh"},
		},
	}
}

func TestResolveSubjectEmbeddedID(t *testing.T) {
	r := NewResolver(newFakeResolverStore())

	res, err := r.Resolve(context.Background(), "sales@alpha.test", "Re: RFP 64fa1c2b9e1a2b3c4d5e6f70 - Office furniture", Hints{})
	if err != nil {
		t.Fatal(err)
	}
	if res.RFPID != "64fa1c2b9e1a2b3c4d5e6f70" {
		t.Errorf("rfp id = %s", res.RFPID)
	}
	if res.Vendor.Email != "sales@alpha.test" {
		t.Errorf("vendor = %+v", res.Vendor)
	}
}

func TestResolveUnknownSender(t *testing.T) {
	r := NewResolver(newFakeResolverStore())

	_, err := r.Resolve(context.Background(), "stranger@nowhere.test", "RFP 64fa1c2b9e1a2b3c4d5e6f70", Hints{})
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestResolveTitleFallback(t *testing.T) {
	r := NewResolver(newFakeResolverStore())

	res, err := r.Resolve(context.Background(), "sales@alpha.test", "Our quotation", Hints{RFPTitle: "office furniture"})
	if err != nil {
		t.Fatal(err)
	}
	if res.RFPID != "64fa1c2b9e1a2b3c4d5e6f70" {
		t.Errorf("rfp id = %s", res.RFPID)
	}
}

func TestResolveVendorNameFallback(t *testing.T) {
	r := NewResolver(newFakeResolverStore())

	res, err := r.Resolve(context.Background(), "personal@gmail.test", "RFP 64fa1c2b9e1a2b3c4d5e6f70", Hints{VendorName: "Alpha Supplies"})
	if err != nil {
		t.Fatal(err)
	}
	if res.Vendor.Name != "Alpha Supplies" {
		t.Errorf("vendor = %+v", res.Vendor)
	}
}

func TestResolveNoRFPReference(t *testing.T) {
	r := NewResolver(newFakeResolverStore())

	_, err := r.Resolve(context.Background(), "sales@alpha.test", "hello there", Hints{})
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestSubjectPatternRequires24Hex(t *testing.T) {
	tests := []struct {
		subject string
		want    bool
	}{
		{"RFP 64fa1c2b9e1a2b3c4d5e6f70", true},
		{"rfp 64fa1c2b9e1a2b3c4d5e6f70", false},
		{"RFP 64fa1c2b", false},
		{"RFP zzzz1c2b9e1a2b3c4d5e6f70", false},
	}
	for _, tt := range tests {
		if got := rfpSubjectPattern.MatchString(tt.subject); got != tt.want {
			t.Errorf("pattern match %q = %v, want %v", tt.subject, got, tt.want)
		}
	}
}
