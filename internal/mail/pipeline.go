package mail

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/davem/rfpdesk/internal/models"
)

// Extractor turns free-form reply text into structured candidate fields.
type Extractor interface {
	ExtractProposalData(ctx context.Context, text string) (*models.ExtractedData, error)
}

// ProposalStore persists the proposal row a processed message produces.
type ProposalStore interface {
	CreateProposal(ctx context.Context, p *models.Proposal) error
}

// Watcher is the long-lived ingestion worker for one mailbox. Messages are
// processed strictly sequentially: extraction and resolution are
// single-message operations, so one message is fully extracted, resolved
// and persisted before the next is touched. A failure on one message is
// logged and skipped; it never brings the watcher down.
type Watcher struct {
	ID        string
	Mailbox   Mailbox
	Extractor Extractor
	Resolver  *Resolver
	Store     ProposalStore
}

func NewWatcher(id string, mailbox Mailbox, extractor Extractor, resolver *Resolver, store ProposalStore) *Watcher {
	return &Watcher{
		ID:        id,
		Mailbox:   mailbox,
		Extractor: extractor,
		Resolver:  resolver,
		Store:     store,
	}
}

// Run connects, acquires the mailbox, and blocks processing new-message
// events until the context is cancelled or the connection is lost. The
// returned error describes why watching stopped; per-message failures are
// not errors at this level.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Mailbox.Connect(ctx); err != nil {
		return fmt.Errorf("mailbox %s: connect: %w", w.ID, err)
	}
	defer w.Mailbox.Close()

	events, err := w.Mailbox.Watch(ctx)
	if err != nil {
		return fmt.Errorf("mailbox %s: watch: %w", w.ID, err)
	}

	log.Printf("[%s] watching mailbox for vendor replies", w.ID)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[%s] watcher stopping: %v", w.ID, ctx.Err())
			return ctx.Err()
		case msg, ok := <-events:
			if !ok {
				return fmt.Errorf("mailbox %s: event stream closed", w.ID)
			}
			if err := w.Process(ctx, msg.Raw); err != nil {
				log.Printf("[%s] skipping message %d: %v", w.ID, msg.Seq, err)
			}
		}
	}
}

// SweepUnseen runs the same per-message path over every unseen message.
// Scheduled as a fallback for events that were missed while disconnected.
func (w *Watcher) SweepUnseen(ctx context.Context) error {
	messages, err := w.Mailbox.FetchUnseen(ctx)
	if err != nil {
		return fmt.Errorf("mailbox %s: fetch unseen: %w", w.ID, err)
	}
	if len(messages) == 0 {
		return nil
	}

	log.Printf("[%s] sweep found %d unseen message(s)", w.ID, len(messages))
	for _, msg := range messages {
		if err := w.Process(ctx, msg.Raw); err != nil {
			log.Printf("[%s] skipping message %d: %v", w.ID, msg.Seq, err)
		}
	}
	return nil
}

// Process runs one raw message through parse → extract → resolve → persist.
// Exactly one proposal row is created per message that clears every step.
func (w *Watcher) Process(ctx context.Context, raw []byte) error {
	parsed, err := ParseMessage(raw)
	if err != nil {
		return err
	}

	log.Printf("[%s] message from %s: %q", w.ID, parsed.From, parsed.Subject)

	input := parsed.ExtractionInput()
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("empty message body")
	}

	extracted, err := w.Extractor.ExtractProposalData(ctx, input)
	if err != nil {
		// No retry in this pass; unseen-sweep or a vendor resend covers it.
		return fmt.Errorf("extraction failed: %w", err)
	}

	hints := Hints{VendorName: extracted.VendorName, RFPTitle: extracted.RFPTitle}
	resolution, err := w.Resolver.Resolve(ctx, parsed.From, parsed.Subject, hints)
	if err != nil {
		if errors.Is(err, ErrNoMatch) {
			return err
		}
		return fmt.Errorf("resolve failed: %w", err)
	}

	proposal := &models.Proposal{
		RFPID:       resolution.RFPID,
		VendorID:    resolution.Vendor.ID,
		VendorEmail: resolution.Vendor.Email,
		Subject:     parsed.Subject,
		Body:        parsed.Body,
		Extracted:   *extracted,
		Attachments: parsed.Attachments,
	}
	if err := w.Store.CreateProposal(ctx, proposal); err != nil {
		return fmt.Errorf("persist proposal: %w", err)
	}

	log.Printf("[%s] saved proposal %s for RFP %s from %s", w.ID, proposal.ID, proposal.RFPID, proposal.VendorEmail)
	return nil
}
