package compare

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/davem/rfpdesk/internal/models"
	"github.com/google/uuid"
)

type fakeStore struct {
	rfps      map[string]*models.RFP
	proposals []models.Proposal
	vendors   []models.Vendor
}

func (f *fakeStore) GetRFP(_ context.Context, id string) (*models.RFP, error) {
	return f.rfps[id], nil
}

func (f *fakeStore) ListProposals(_ context.Context, rfpID string, vendorEmails []string) ([]models.Proposal, error) {
	var out []models.Proposal
	for _, p := range f.proposals {
		if p.RFPID != rfpID {
			continue
		}
		if len(vendorEmails) > 0 {
			found := false
			for _, e := range vendorEmails {
				if e == p.VendorEmail {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) ListVendors(_ context.Context) ([]models.Vendor, error) {
	return f.vendors, nil
}

func proposal(rfpID, email string, price, delivery, warranty interface{}) models.Proposal {
	return models.Proposal{
		ID:          uuid.New(),
		RFPID:       rfpID,
		VendorID:    uuid.New(),
		VendorEmail: email,
		Extracted: models.ExtractedData{
			Price:        price,
			DeliveryDays: delivery,
			Warranty:     warranty,
		},
	}
}

const testRFPID = "64fa1c2b9e1a2b3c4d5e6f70"

func testStore() *fakeStore {
	return &fakeStore{
		rfps: map[string]*models.RFP{
			testRFPID: {ID: testRFPID, Title: "Office furniture"},
		},
		proposals: []models.Proposal{
			proposal(testRFPID, "a@vendors.test", float64(100), float64(5), float64(2)),
			proposal(testRFPID, "b@vendors.test", float64(200), float64(5), float64(4)),
		},
		vendors: []models.Vendor{
			{Name: "Alpha Supplies", Email: "a@vendors.test"},
			{Name: "Beta Traders", Email: "b@vendors.test"},
		},
	}
}

func TestCompareRFPNotFound(t *testing.T) {
	c := NewComparator(testStore())
	_, err := c.Compare(context.Background(), "000000000000000000000000", nil)
	if !errors.Is(err, ErrRFPNotFound) {
		t.Fatalf("expected ErrRFPNotFound, got %v", err)
	}
}

func TestCompareNoProposals(t *testing.T) {
	c := NewComparator(testStore())
	_, err := c.Compare(context.Background(), testRFPID, []string{"nobody@vendors.test"})
	if !errors.Is(err, ErrNoProposals) {
		t.Fatalf("expected ErrNoProposals, got %v", err)
	}
}

func TestCompareRanking(t *testing.T) {
	c := NewComparator(testStore())
	result, err := c.Compare(context.Background(), testRFPID, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Vendors) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.Vendors))
	}
	for i := 1; i < len(result.Vendors); i++ {
		if result.Vendors[i].TotalScore > result.Vendors[i-1].TotalScore {
			t.Errorf("result not sorted descending at %d", i)
		}
	}
	if result.BestVendor.VendorEmail != "a@vendors.test" {
		t.Errorf("best vendor = %s, want a@vendors.test", result.BestVendor.VendorEmail)
	}
	if result.BestVendor.VendorName != "Alpha Supplies" {
		t.Errorf("vendor name lookup failed: %s", result.BestVendor.VendorName)
	}
	if result.BestVendor.TotalScore != 80.00 {
		t.Errorf("best total = %v, want 80.00", result.BestVendor.TotalScore)
	}
}

func TestCompareStableTieBreak(t *testing.T) {
	store := testStore()
	store.proposals = []models.Proposal{
		proposal(testRFPID, "first@vendors.test", float64(100), float64(5), float64(2)),
		proposal(testRFPID, "second@vendors.test", float64(100), float64(5), float64(2)),
	}

	c := NewComparator(store)
	result, err := c.Compare(context.Background(), testRFPID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.Vendors[0].VendorEmail != "first@vendors.test" {
		t.Errorf("tie must keep original proposal order, got %s first", result.Vendors[0].VendorEmail)
	}
}

func TestCompareIdempotent(t *testing.T) {
	c := NewComparator(testStore())

	first, err := c.Compare(context.Background(), testRFPID, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, err := c.Compare(context.Background(), testRFPID, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated compare over identical data must be bit-identical")
	}
}
