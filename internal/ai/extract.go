package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/davem/rfpdesk/internal/models"
)

// MalformedOutputError means the model returned text that could not be read
// as structured data even after cleanup. Raw carries the full output for
// diagnostics.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("model returned invalid JSON format: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

const proposalPrompt = `Extract JSON only:
{
  "price": number,
  "delivery_days": number,
  "warranty": number,
  "items": [
      { "name": string, "quantity": number }
  ],
  "vendor_name": string,
  "rfp_title": string
}

Only output valid JSON. If a field is not present in the email, omit it.

Vendor proposal email:
"""%s"""
`

// ExtractProposalData asks the model for the structured field set of a
// vendor reply. The result is best-effort: fields may be missing or carried
// as strings; normalization happens downstream at comparison time.
func (c *Client) ExtractProposalData(ctx context.Context, emailText string) (*models.ExtractedData, error) {
	resp, err := c.Complete(ctx, fmt.Sprintf(proposalPrompt, emailText), 0)
	if err != nil {
		return nil, fmt.Errorf("extraction call failed: %w", err)
	}

	var data models.ExtractedData
	if err := unmarshalModelJSON(resp, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// RFPDraft is the structured RFP the model generates from the buyer's
// free-text title/description/requirements.
type RFPDraft struct {
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	Requirements     string        `json:"requirements"`
	Budget           string        `json:"budget"`
	DeliveryTimeline string        `json:"delivery_timeline"`
	Items            []models.Item `json:"items"`
	PaymentTerms     string        `json:"payment_terms"`
	Warranty         string        `json:"warranty"`
	RawText          string        `json:"raw_text"`
}

const rfpPrompt = `You MUST respond with ONLY valid JSON. No explanation, no comments.

Return JSON exactly like this:

{
  "title": "",
  "description": "",
  "requirements": "",
  "budget": "",
  "delivery_timeline": "",
  "items": [
    { "name": "", "quantity": 0, "specs": "", "unit": "" }
  ],
  "payment_terms": "",
  "warranty": "",
  "raw_text": ""
}

Now convert the following into JSON:

Title: %s
Description: %s
Requirements: %s
`

// GenerateRFP turns the buyer's free text into a structured RFP draft.
func (c *Client) GenerateRFP(ctx context.Context, title, description, requirements string) (*RFPDraft, error) {
	resp, err := c.Complete(ctx, fmt.Sprintf(rfpPrompt, title, description, requirements), 0.1)
	if err != nil {
		return nil, fmt.Errorf("rfp generation call failed: %w", err)
	}

	var draft RFPDraft
	if err := unmarshalModelJSON(resp, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// unmarshalModelJSON reads model output into dst. It strips markdown fences,
// isolates the first balanced JSON object, and on a parse failure makes one
// cleanup pass (control characters, trailing commas) before surfacing a
// MalformedOutputError carrying the raw text.
func unmarshalModelJSON(resp string, dst interface{}) error {
	cleaned := strings.TrimSpace(resp)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	if jsonStr, ok := extractFirstJSONObject(cleaned); ok {
		cleaned = jsonStr
	}

	if err := json.Unmarshal([]byte(cleaned), dst); err == nil {
		return nil
	}

	repaired := repairJSON(cleaned)
	if err := json.Unmarshal([]byte(repaired), dst); err != nil {
		return &MalformedOutputError{Raw: resp, Err: err}
	}
	return nil
}

// repairJSON applies the cheap fixes that cover most model slip-ups:
// stray control characters and trailing commas before a closing brace or
// bracket.
func repairJSON(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' {
			b.WriteRune(' ')
			continue
		}
		if r < 0x20 {
			continue
		}
		b.WriteRune(r)
	}
	out := b.String()

	for {
		next := removeTrailingComma(out)
		if next == out {
			return out
		}
		out = next
	}
}

func removeTrailingComma(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] != ',' {
			continue
		}
		j := i + 1
		for j < len(s) && s[j] == ' ' {
			j++
		}
		if j < len(s) && (s[j] == '}' || s[j] == ']') {
			return s[:i] + s[i+1:]
		}
	}
	return s
}

// extractFirstJSONObject finds the first outermost balanced {...}
func extractFirstJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		char := s[i]

		if escaped {
			escaped = false
			continue
		}

		if char == '\\' {
			escaped = true
			continue
		}

		if char == '"' {
			inString = !inString
			continue
		}

		if !inString {
			if char == '{' {
				depth++
			} else if char == '}' {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}

	return "", false
}
