package mail

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
)

// IMAPMailbox implements Mailbox over IMAP with IDLE-based watching. The
// watch loop owns the persistent connection exclusively, which doubles as
// the one-worker-per-mailbox lock: a read-write SELECT holds the mailbox
// view for the lifetime of the watcher.
type IMAPMailbox struct {
	Host     string
	Port     int
	Username string
	Password string
	Folder   string

	// RetryWait is the initial delay between reconnect attempts after a
	// mid-watch failure. Zero means 2s.
	RetryWait time.Duration

	conn    *client.Client
	lastSeq uint32
}

func (m *IMAPMailbox) addr() string {
	port := m.Port
	if port == 0 {
		port = 993
	}
	return fmt.Sprintf("%s:%d", m.Host, port)
}

func (m *IMAPMailbox) folder() string {
	if m.Folder == "" {
		return "INBOX"
	}
	return m.Folder
}

func (m *IMAPMailbox) Connect(ctx context.Context) error {
	c, err := client.DialTLS(m.addr(), nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", m.addr(), err)
	}
	if err := c.Login(m.Username, m.Password); err != nil {
		c.Logout()
		return fmt.Errorf("login %s: %w", m.Username, err)
	}

	mbox, err := c.Select(m.folder(), false)
	if err != nil {
		c.Logout()
		return fmt.Errorf("select %s: %w", m.folder(), err)
	}

	m.conn = c
	m.lastSeq = mbox.Messages
	log.Printf("Connected to %s, %d message(s) in %s", m.addr(), mbox.Messages, m.folder())
	return nil
}

// reopen redials the persistent connection after a mid-watch failure,
// doubling the wait between attempts. The reconnected session resumes from
// the mailbox's current size, so anything that arrived during the outage is
// left for the unseen sweep.
func (m *IMAPMailbox) reopen(ctx context.Context) error {
	wait := m.RetryWait
	if wait == 0 {
		wait = 2 * time.Second
	}

	const attempts = 4
	for i := 1; i <= attempts; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2

		err := m.Connect(ctx)
		if err == nil {
			return nil
		}
		log.Printf("IMAP reconnect attempt %d/%d failed: %v", i, attempts, err)
	}
	return fmt.Errorf("reconnect %s: gave up after %d attempts", m.addr(), attempts)
}

// Watch runs IDLE cycles and emits each newly arrived message. All commands
// on the persistent connection are issued from this single goroutine; IDLE
// is stopped before fetching and resumed after, so commands never overlap.
// Transient failures are retried via reopen; the loop ends only when the
// context is cancelled or the connection cannot be reestablished.
func (m *IMAPMailbox) Watch(ctx context.Context) (<-chan Message, error) {
	if m.conn == nil {
		return nil, fmt.Errorf("mailbox not connected")
	}

	updates := make(chan client.Update, 16)
	m.conn.Updates = updates

	events := make(chan Message, 8)
	go func() {
		defer close(events)
		for {
			stop := make(chan struct{})
			idleDone := make(chan error, 1)
			go func() {
				idleDone <- m.conn.Idle(stop, nil)
			}()

			var grew bool
			select {
			case <-ctx.Done():
				close(stop)
				<-idleDone
				return
			case err := <-idleDone:
				if err != nil {
					log.Printf("IMAP idle ended: %v", err)
					if rerr := m.reopen(ctx); rerr != nil {
						log.Printf("IMAP watch over: %v", rerr)
						return
					}
					m.conn.Updates = updates
				}
				continue
			case u := <-updates:
				if mu, ok := u.(*client.MailboxUpdate); ok && mu.Mailbox.Messages > m.lastSeq {
					grew = true
				}
				close(stop)
				<-idleDone
			}

			if !grew {
				continue
			}

			status, err := m.conn.Select(m.folder(), false)
			if err != nil {
				log.Printf("IMAP reselect failed: %v", err)
				if rerr := m.reopen(ctx); rerr != nil {
					log.Printf("IMAP watch over: %v", rerr)
					return
				}
				m.conn.Updates = updates
				continue
			}
			for status.Messages > m.lastSeq {
				seqset := new(imap.SeqSet)
				seqset.AddRange(m.lastSeq+1, status.Messages)
				msgs, err := fetchFull(m.conn, seqset)
				if err != nil {
					log.Printf("IMAP fetch failed: %v", err)
					if rerr := m.reopen(ctx); rerr != nil {
						log.Printf("IMAP watch over: %v", rerr)
						return
					}
					m.conn.Updates = updates
					break
				}
				m.lastSeq = status.Messages
				for _, msg := range msgs {
					select {
					case events <- msg:
					case <-ctx.Done():
						return
					}
				}
				// Messages may have arrived while fetching.
				status = m.conn.Mailbox()
			}
		}
	}()

	return events, nil
}

// FetchUnseen opens a short-lived second connection so the sweep never
// competes with the watch loop for the persistent one. Fetched messages are
// marked seen so the next sweep skips them.
func (m *IMAPMailbox) FetchUnseen(ctx context.Context) ([]Message, error) {
	c, err := client.DialTLS(m.addr(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", m.addr(), err)
	}
	defer c.Logout()

	if err := c.Login(m.Username, m.Password); err != nil {
		return nil, fmt.Errorf("login %s: %w", m.Username, err)
	}
	if _, err := c.Select(m.folder(), false); err != nil {
		return nil, fmt.Errorf("select %s: %w", m.folder(), err)
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}
	ids, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("search unseen: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)
	msgs, err := fetchFull(c, seqset)
	if err != nil {
		return nil, err
	}

	flagItem := imap.FormatFlagsOp(imap.AddFlags, true)
	if err := c.Store(seqset, flagItem, []interface{}{imap.SeenFlag}, nil); err != nil {
		log.Printf("Failed to mark messages seen: %v", err)
	}
	return msgs, nil
}

func (m *IMAPMailbox) Close() error {
	if m.conn == nil {
		return nil
	}
	err := m.conn.Logout()
	m.conn = nil
	return err
}

func fetchFull(c *client.Client, seqset *imap.SeqSet) ([]Message, error) {
	section := &imap.BodySectionName{}
	items := []imap.FetchItem{section.FetchItem()}

	ch := make(chan *imap.Message, 8)
	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqset, items, ch)
	}()

	var out []Message
	for msg := range ch {
		body := msg.GetBody(section)
		if body == nil {
			continue
		}
		raw, err := io.ReadAll(body)
		if err != nil {
			log.Printf("Failed to read message %d: %v", msg.SeqNum, err)
			continue
		}
		out = append(out, Message{Seq: msg.SeqNum, Raw: raw})
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	return out, nil
}
