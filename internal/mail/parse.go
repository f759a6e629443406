package mail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	stdmail "net/mail"
	"strings"

	"github.com/davem/rfpdesk/internal/models"
)

// Parsed is a mailbox message broken into the pieces the pipeline needs:
// sender, subject, a plain-text body, and the text recovered from PDF
// attachments (kept separate so the persisted body stays the vendor's own
// words).
type Parsed struct {
	From           string
	Subject        string
	Body           string
	AttachmentText string
	Attachments    []models.AttachmentMeta
}

// ExtractionInput is the text handed to the extraction service: the body
// plus whatever was recovered from attached PDFs.
func (p *Parsed) ExtractionInput() string {
	if strings.TrimSpace(p.AttachmentText) == "" {
		return p.Body
	}
	return p.Body + "\n\n" + p.AttachmentText
}

// ParseMessage reads a full RFC 5322 message source. Text/plain parts are
// preferred for the body; an HTML-only message is converted to text.
func ParseMessage(raw []byte) (*Parsed, error) {
	msg, err := stdmail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}

	parsed := &Parsed{}

	dec := new(mime.WordDecoder)
	subject := msg.Header.Get("Subject")
	if decoded, err := dec.DecodeHeader(subject); err == nil {
		parsed.Subject = decoded
	} else {
		parsed.Subject = subject
	}

	if from := msg.Header.Get("From"); from != "" {
		if addr, err := stdmail.ParseAddress(from); err == nil {
			parsed.From = strings.ToLower(addr.Address)
		} else {
			parsed.From = strings.ToLower(strings.TrimSpace(from))
		}
	}

	var plain, html, attach strings.Builder
	err = walkPart(
		msg.Header.Get("Content-Type"),
		msg.Header.Get("Content-Transfer-Encoding"),
		"", "",
		msg.Body,
		parsed, &plain, &html, &attach,
	)
	if err != nil {
		return nil, err
	}

	body := strings.TrimSpace(plain.String())
	if body == "" {
		body = HTMLToText(sanitizeHTML(html.String()))
	}
	parsed.Body = sanitizeUTF8(body)
	parsed.AttachmentText = sanitizeUTF8(strings.TrimSpace(attach.String()))
	return parsed, nil
}

func walkPart(contentType, encoding, disposition, filename string, r io.Reader, parsed *Parsed, plain, html, attach *strings.Builder) error {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Bare messages without a Content-Type are plain text per RFC 2045.
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary := params["boundary"]
		if boundary == "" {
			return fmt.Errorf("multipart body without boundary")
		}
		mr := multipart.NewReader(r, boundary)
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				return fmt.Errorf("read message part: %w", err)
			}
			err = walkPart(
				part.Header.Get("Content-Type"),
				part.Header.Get("Content-Transfer-Encoding"),
				part.Header.Get("Content-Disposition"),
				part.FileName(),
				part,
				parsed, plain, html, attach,
			)
			if err != nil {
				return err
			}
		}
		return nil
	}

	data, err := io.ReadAll(decodeTransfer(r, encoding))
	if err != nil {
		return fmt.Errorf("decode message part: %w", err)
	}

	isPDF := mediaType == "application/pdf" || strings.HasSuffix(strings.ToLower(filename), ".pdf")
	isAttachment := filename != "" || strings.HasPrefix(strings.ToLower(disposition), "attachment")

	switch {
	case isPDF:
		parsed.Attachments = append(parsed.Attachments, models.AttachmentMeta{
			Filename:    filename,
			ContentType: mediaType,
			Size:        len(data),
		})
		text, err := extractPDFText(data)
		if err != nil {
			log.Printf("Skipping unreadable PDF attachment %q: %v", filename, err)
			return nil
		}
		attach.WriteString(text)
		attach.WriteString("\n")
	case isAttachment:
		// Only metadata is retained for non-PDF attachments.
		parsed.Attachments = append(parsed.Attachments, models.AttachmentMeta{
			Filename:    filename,
			ContentType: mediaType,
			Size:        len(data),
		})
	case mediaType == "text/plain":
		plain.Write(data)
		plain.WriteString("\n")
	case mediaType == "text/html":
		html.Write(data)
	}
	return nil
}

// decodeTransfer unwraps the content-transfer-encoding of a leaf part.
// multipart.Part decodes quoted-printable transparently; this covers base64
// parts and non-multipart message bodies.
func decodeTransfer(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}
