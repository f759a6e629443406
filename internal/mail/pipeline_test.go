package mail

import (
	"context"
	"errors"
	"testing"

	"github.com/davem/rfpdesk/internal/models"
)

const rawReply = "From: Alpha Sales <sales@alpha.test>\r\n" +
	"To: buyer@rfpdesk.test\r\n" +
	"Subject: Re: RFP 64fa1c2b9e1a2b3c4d5e6f70 - Office furniture\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"Total price is $4,500. Delivery in 10 days, 2 year warranty.\r\n" +
	"Items: 10x Chair, 2x Desk.\r\n"

const rawStrangerReply = "From: stranger@nowhere.test\r\n" +
	"Subject: Re: RFP 64fa1c2b9e1a2b3c4d5e6f70\r\n" +
	"Content-Type: text/plain\r\n" +
	"\r\n" +
	"Best regards.\r\n"

type fakeExtractor struct {
	data *models.ExtractedData
	err  error
}

func (f *fakeExtractor) ExtractProposalData(context.Context, string) (*models.ExtractedData, error) {
	return f.data, f.err
}

type fakeProposalStore struct {
	created []*models.Proposal
	err     error
}

func (f *fakeProposalStore) CreateProposal(_ context.Context, p *models.Proposal) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, p)
	return nil
}

type stubMailbox struct {
	messages []Message
	events   chan Message
}

func (s *stubMailbox) Connect(context.Context) error { return nil }
func (s *stubMailbox) Close() error                  { return nil }

func (s *stubMailbox) Watch(context.Context) (<-chan Message, error) {
	s.events = make(chan Message, len(s.messages))
	for _, m := range s.messages {
		s.events <- m
	}
	close(s.events)
	return s.events, nil
}

func (s *stubMailbox) FetchUnseen(context.Context) ([]Message, error) {
	return s.messages, nil
}

func newTestWatcher(extractor Extractor, store ProposalStore, mailbox Mailbox) *Watcher {
	return NewWatcher("test", mailbox, extractor, NewResolver(newFakeResolverStore()), store)
}

func TestProcessCreatesOneProposal(t *testing.T) {
	extractor := &fakeExtractor{data: &models.ExtractedData{
		Price:        4500,
		DeliveryDays: 10,
		Warranty:     2,
	}}
	store := &fakeProposalStore{}
	w := newTestWatcher(extractor, store, nil)

	if err := w.Process(context.Background(), []byte(rawReply)); err != nil {
		t.Fatal(err)
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d proposals, want 1", len(store.created))
	}

	p := store.created[0]
	if p.RFPID != "64fa1c2b9e1a2b3c4d5e6f70" {
		t.Errorf("rfp id = %s", p.RFPID)
	}
	if p.VendorEmail != "sales@alpha.test" {
		t.Errorf("vendor email = %s", p.VendorEmail)
	}
	if p.Extracted.Price != 4500 {
		t.Errorf("extracted price = %v", p.Extracted.Price)
	}
}

func TestProcessExtractionFailurePersistsNothing(t *testing.T) {
	extractor := &fakeExtractor{err: errors.New("model returned invalid JSON format")}
	store := &fakeProposalStore{}
	w := newTestWatcher(extractor, store, nil)

	if err := w.Process(context.Background(), []byte(rawReply)); err == nil {
		t.Fatal("expected error")
	}
	if len(store.created) != 0 {
		t.Fatalf("created %d proposals, want 0", len(store.created))
	}
}

func TestProcessUnknownSenderSkips(t *testing.T) {
	extractor := &fakeExtractor{data: &models.ExtractedData{Price: 100}}
	store := &fakeProposalStore{}
	w := newTestWatcher(extractor, store, nil)

	err := w.Process(context.Background(), []byte(rawStrangerReply))
	if !errors.Is(err, ErrNoMatch) {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
	if len(store.created) != 0 {
		t.Fatalf("created %d proposals, want 0", len(store.created))
	}
}

func TestProcessEmptyBody(t *testing.T) {
	raw := "From: sales@alpha.test\r\nSubject: RFP 64fa1c2b9e1a2b3c4d5e6f70\r\n\r\n\r\n"
	store := &fakeProposalStore{}
	w := newTestWatcher(&fakeExtractor{}, store, nil)

	if err := w.Process(context.Background(), []byte(raw)); err == nil {
		t.Fatal("expected error for empty body")
	}
	if len(store.created) != 0 {
		t.Fatal("empty body must not persist")
	}
}

// A message that fails must not stop the ones behind it.
func TestRunSurvivesBadMessage(t *testing.T) {
	mailbox := &stubMailbox{messages: []Message{
		{Seq: 1, Raw: []byte(rawStrangerReply)},
		{Seq: 2, Raw: []byte(rawReply)},
	}}
	extractor := &fakeExtractor{data: &models.ExtractedData{Price: 4500}}
	store := &fakeProposalStore{}
	w := newTestWatcher(extractor, store, mailbox)

	err := w.Run(context.Background())
	if err == nil {
		t.Fatal("expected stream-closed error")
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d proposals, want 1", len(store.created))
	}
}

func TestSweepUnseen(t *testing.T) {
	mailbox := &stubMailbox{messages: []Message{
		{Seq: 3, Raw: []byte(rawReply)},
		{Seq: 4, Raw: []byte(rawReply)},
	}}
	extractor := &fakeExtractor{data: &models.ExtractedData{Price: 4500}}
	store := &fakeProposalStore{}
	w := newTestWatcher(extractor, store, mailbox)

	if err := w.SweepUnseen(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(store.created) != 2 {
		t.Fatalf("created %d proposals, want 2", len(store.created))
	}
}
