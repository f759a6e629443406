// Package mailer sends RFP solicitations to vendors over SMTP.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/davem/rfpdesk/internal/models"
)

// Sender delivers one plain-text message. The SMTP implementation is the
// only production one; tests inject a recorder.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPSender sends through a single authenticated SMTP relay.
type SMTPSender struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func (s *SMTPSender) fromAddress() string {
	if s.From != "" {
		return s.From
	}
	return s.Username
}

func (s *SMTPSender) Send(_ context.Context, to, subject, body string) error {
	from := s.fromAddress()
	headers := []string{
		"From: RFP Desk <" + from + ">",
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}
	msg := []byte(strings.Join(headers, "\r\n") + "\r\n")

	auth := smtp.PlainAuth("", s.Username, s.Password, s.Host)
	addr := s.Host + ":" + s.Port
	if err := smtp.SendMail(addr, auth, from, []string{to}, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}

// SolicitationSubject is the subject line vendors reply to. The embedded id
// is what ties the reply back to the RFP, so it always leads.
func SolicitationSubject(rfp *models.RFP) string {
	return fmt.Sprintf("RFP %s - %s", rfp.ID, rfp.Title)
}

// SolicitationBody renders the plain-text request the vendor receives.
func SolicitationBody(rfp *models.RFP, vendor *models.Vendor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", vendor.Name)
	fmt.Fprintf(&b, "Please submit your proposal for the following request:\n\n")
	fmt.Fprintf(&b, "Title: %s\n", rfp.Title)
	if rfp.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", rfp.Description)
	}
	if rfp.Requirements != "" {
		fmt.Fprintf(&b, "Requirements: %s\n", rfp.Requirements)
	}
	if rfp.Budget != "" {
		fmt.Fprintf(&b, "Budget: %s\n", rfp.Budget)
	}
	if rfp.DeliveryTimeline != "" {
		fmt.Fprintf(&b, "Delivery timeline: %s\n", rfp.DeliveryTimeline)
	}
	if len(rfp.Items) > 0 {
		b.WriteString("\nItems:\n")
		for _, item := range rfp.Items {
			fmt.Fprintf(&b, "  - %s x%.0f", item.Name, item.Quantity)
			if item.Specs != "" {
				fmt.Fprintf(&b, " (%s)", item.Specs)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("\nReply to this email with your price, delivery days, warranty and itemized quote.\n")
	b.WriteString("Keep the subject line intact so your reply is matched automatically.\n\n")
	b.WriteString("Regards,\nRFP Desk\n")
	return b.String()
}
