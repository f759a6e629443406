package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/davem/rfpdesk/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the persistence layer for RFPs, vendors and proposals. Lookup
// methods report a miss as (nil, nil); only storage faults return errors.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const rfpCols = `id, title, description, requirements, budget, delivery_timeline,
	items, payment_terms, warranty, raw_text, created_at`

func scanRFP(scan func(dest ...interface{}) error) (models.RFP, error) {
	var r models.RFP
	var itemsRaw []byte

	err := scan(
		&r.ID, &r.Title, &r.Description, &r.Requirements, &r.Budget, &r.DeliveryTimeline,
		&itemsRaw, &r.PaymentTerms, &r.Warranty, &r.RawText, &r.CreatedAt,
	)
	if err != nil {
		return r, err
	}

	if len(itemsRaw) > 0 {
		if err := json.Unmarshal(itemsRaw, &r.Items); err != nil {
			return r, fmt.Errorf("decode rfp items: %w", err)
		}
	}
	return r, nil
}

func (s *Store) CreateRFP(ctx context.Context, r *models.RFP) error {
	if r.ID == "" {
		r.ID = models.NewRFPID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	items, err := json.Marshal(r.Items)
	if err != nil {
		return fmt.Errorf("encode rfp items: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO rfps (id, title, description, requirements, budget, delivery_timeline,
			items, payment_terms, warranty, raw_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, r.ID, r.Title, r.Description, r.Requirements, r.Budget, r.DeliveryTimeline,
		items, r.PaymentTerms, r.Warranty, r.RawText, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert rfp: %w", err)
	}
	return nil
}

func (s *Store) GetRFP(ctx context.Context, id string) (*models.RFP, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM rfps WHERE id = $1", rfpCols), id)
	r, err := scanRFP(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rfp: %w", err)
	}
	return &r, nil
}

func (s *Store) ListRFPs(ctx context.Context) ([]models.RFP, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf("SELECT %s FROM rfps ORDER BY created_at DESC", rfpCols))
	if err != nil {
		return nil, fmt.Errorf("list rfps: %w", err)
	}
	defer rows.Close()

	var rfps []models.RFP
	for rows.Next() {
		r, err := scanRFP(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan rfp: %w", err)
		}
		rfps = append(rfps, r)
	}
	return rfps, rows.Err()
}

// FindRFPByTitle returns the newest RFP whose title contains the given text
// (case-insensitive). Newest-first makes the title-similarity resolution
// deterministic when several titles share a substring.
func (s *Store) FindRFPByTitle(ctx context.Context, title string) (*models.RFP, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil
	}

	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM rfps
		WHERE title ILIKE '%%' || $1 || '%%'
		ORDER BY created_at DESC
		LIMIT 1
	`, rfpCols), escapeLike(title))

	r, err := scanRFP(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find rfp by title: %w", err)
	}
	return &r, nil
}

// escapeLike neutralizes LIKE metacharacters so user-controlled titles match
// literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// Vendors

const vendorCols = `id, name, email, company, phone, created_at`

func scanVendor(scan func(dest ...interface{}) error) (models.Vendor, error) {
	var v models.Vendor
	err := scan(&v.ID, &v.Name, &v.Email, &v.Company, &v.Phone, &v.CreatedAt)
	return v, err
}

func (s *Store) CreateVendor(ctx context.Context, v *models.Vendor) error {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO vendors (name, email, company, phone)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, v.Name, v.Email, v.Company, v.Phone).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert vendor: %w", err)
	}
	return nil
}

func (s *Store) UpdateVendor(ctx context.Context, v *models.Vendor) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE vendors SET name = $2, email = $3, company = $4, phone = $5
		WHERE id = $1
	`, v.ID, v.Name, v.Email, v.Company, v.Phone)
	if err != nil {
		return fmt.Errorf("update vendor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("vendor %s not found", v.ID)
	}
	return nil
}

func (s *Store) DeleteVendor(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, "DELETE FROM vendors WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete vendor: %w", err)
	}
	return nil
}

func (s *Store) ListVendors(ctx context.Context) ([]models.Vendor, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf("SELECT %s FROM vendors ORDER BY name", vendorCols))
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	defer rows.Close()

	var vendors []models.Vendor
	for rows.Next() {
		v, err := scanVendor(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}

func (s *Store) getVendorWhere(ctx context.Context, clause string, arg interface{}) (*models.Vendor, error) {
	row := s.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM vendors WHERE %s", vendorCols, clause), arg)
	v, err := scanVendor(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get vendor: %w", err)
	}
	return &v, nil
}

func (s *Store) GetVendor(ctx context.Context, id string) (*models.Vendor, error) {
	return s.getVendorWhere(ctx, "id = $1", id)
}

func (s *Store) GetVendorByEmail(ctx context.Context, email string) (*models.Vendor, error) {
	return s.getVendorWhere(ctx, "LOWER(email) = LOWER($1)", email)
}

func (s *Store) GetVendorByName(ctx context.Context, name string) (*models.Vendor, error) {
	return s.getVendorWhere(ctx, "LOWER(name) = LOWER($1)", name)
}

// Proposals

const proposalCols = `id, rfp_id, vendor_id, vendor_email, subject, body,
	extracted_data, attachments, created_at`

func scanProposal(scan func(dest ...interface{}) error) (models.Proposal, error) {
	var p models.Proposal
	var extractedRaw, attachmentsRaw []byte

	err := scan(
		&p.ID, &p.RFPID, &p.VendorID, &p.VendorEmail, &p.Subject, &p.Body,
		&extractedRaw, &attachmentsRaw, &p.CreatedAt,
	)
	if err != nil {
		return p, err
	}

	if len(extractedRaw) > 0 {
		if err := json.Unmarshal(extractedRaw, &p.Extracted); err != nil {
			return p, fmt.Errorf("decode extracted data: %w", err)
		}
	}
	if len(attachmentsRaw) > 0 {
		if err := json.Unmarshal(attachmentsRaw, &p.Attachments); err != nil {
			return p, fmt.Errorf("decode attachments: %w", err)
		}
	}
	return p, nil
}

func (s *Store) CreateProposal(ctx context.Context, p *models.Proposal) error {
	extracted, err := json.Marshal(p.Extracted)
	if err != nil {
		return fmt.Errorf("encode extracted data: %w", err)
	}
	attachments, err := json.Marshal(p.Attachments)
	if err != nil {
		return fmt.Errorf("encode attachments: %w", err)
	}

	err = s.pool.QueryRow(ctx, `
		INSERT INTO proposals (rfp_id, vendor_id, vendor_email, subject, body, extracted_data, attachments)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, p.RFPID, p.VendorID, p.VendorEmail, p.Subject, p.Body, extracted, attachments).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert proposal: %w", err)
	}
	return nil
}

// ListProposals returns the proposals for one RFP in insertion order,
// optionally restricted to the given vendor emails. Insertion order is the
// tie-break order of the comparison, so it must be stable.
func (s *Store) ListProposals(ctx context.Context, rfpID string, vendorEmails []string) ([]models.Proposal, error) {
	sql := fmt.Sprintf("SELECT %s FROM proposals WHERE rfp_id = $1", proposalCols)
	args := []interface{}{rfpID}
	if len(vendorEmails) > 0 {
		sql += " AND vendor_email = ANY($2)"
		args = append(args, vendorEmails)
	}
	sql += " ORDER BY created_at, id"

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer rows.Close()

	var proposals []models.Proposal
	for rows.Next() {
		p, err := scanProposal(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan proposal: %w", err)
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

// ReportSummary is one row of the reports listing: an RFP plus how many
// proposals it has collected.
type ReportSummary struct {
	RFPID         string    `json:"rfp_id"`
	Title         string    `json:"title"`
	CreatedAt     time.Time `json:"created_at"`
	ProposalCount int       `json:"proposal_count"`
}

func (s *Store) ListReportSummaries(ctx context.Context) ([]ReportSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.id, r.title, r.created_at, COUNT(p.id)
		FROM rfps r
		LEFT JOIN proposals p ON p.rfp_id = r.id
		GROUP BY r.id, r.title, r.created_at
		ORDER BY r.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list report summaries: %w", err)
	}
	defer rows.Close()

	var summaries []ReportSummary
	for rows.Next() {
		var sum ReportSummary
		if err := rows.Scan(&sum.RFPID, &sum.Title, &sum.CreatedAt, &sum.ProposalCount); err != nil {
			return nil, fmt.Errorf("scan report summary: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}
