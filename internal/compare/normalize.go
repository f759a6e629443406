package compare

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/davem/rfpdesk/internal/models"
)

// Amount is a numeric field that may be missing. Missing price or delivery
// means the vendor cannot win that axis; we model that as an explicit
// Unknown instead of relying on floating-point infinity arithmetic.
type Amount struct {
	Known bool
	Value float64
}

// Unknown is the sentinel for an absent or unparsable numeric field.
var Unknown = Amount{}

func Known(v float64) Amount {
	return Amount{Known: true, Value: v}
}

// Normalized is one proposal with its extracted fields coerced into
// well-defined quantities, ready for scoring.
type Normalized struct {
	Proposal     models.Proposal
	Price        Amount
	DeliveryDays Amount
	Warranty     float64
	Items        []models.Item
}

// Normalize converts the raw extracted field set of one proposal into
// numeric form. Parse failures never propagate: price and delivery degrade
// to Unknown, warranty to zero, and a malformed item list falls back to
// comma-splitting the flat text field.
func Normalize(p models.Proposal) Normalized {
	n := Normalized{Proposal: p}

	if v, ok := parseNumber(p.Extracted.Price); ok {
		n.Price = Known(v)
	}
	if v, ok := parseNumber(p.Extracted.DeliveryDays); ok {
		n.DeliveryDays = Known(v)
	}
	if v, ok := parseNumber(p.Extracted.Warranty); ok {
		n.Warranty = v
	}

	n.Items = normalizeItems(p.Extracted.Items, p.Extracted.ItemsText)
	return n
}

// ExtractedItems normalizes just the item list of an extracted field set,
// for callers that render items without scoring them.
func ExtractedItems(e models.ExtractedData) []models.Item {
	return normalizeItems(e.Items, e.ItemsText)
}

// parseNumber coerces the loosely-typed values the extraction service
// returns (JSON numbers, numeric strings, currency-formatted strings) into
// a float64. Returns false for anything it cannot read.
func parseNumber(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		return parseNumericString(t)
	}
	return 0, false
}

func parseNumericString(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	// Strip currency symbols, thousands separators and any trailing unit
	// text ("1,200 USD", "$1200", "15 days").
	var b strings.Builder
	seen := false
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || (!seen && r == '-') {
			b.WriteRune(r)
			seen = seen || (r >= '0' && r <= '9')
			continue
		}
		if r == ',' {
			continue
		}
		if seen {
			break
		}
	}

	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// normalizeItems accepts a well-formed {name, quantity} list in any of the
// shapes the extraction service emits. Anything else falls back to the flat
// comma-separated text with quantity 1 per entry, blanks discarded.
func normalizeItems(raw interface{}, itemsText string) []models.Item {
	switch t := raw.(type) {
	case []models.Item:
		return cleanItems(t)
	case []interface{}:
		items := make([]models.Item, 0, len(t))
		for _, entry := range t {
			m, ok := entry.(map[string]interface{})
			if !ok {
				// Mixed garbage in the list invalidates the whole shape.
				return splitItemsText(raw, itemsText)
			}
			name, _ := m["name"].(string)
			item := models.Item{Name: strings.TrimSpace(name), Quantity: 1}
			if q, ok := parseNumber(m["quantity"]); ok && q >= 0 {
				item.Quantity = q
			}
			if specs, ok := m["specs"].(string); ok {
				item.Specs = specs
			}
			if unit, ok := m["unit"].(string); ok {
				item.Unit = unit
			}
			if item.Name != "" {
				items = append(items, item)
			}
		}
		return items
	}
	return splitItemsText(raw, itemsText)
}

func cleanItems(items []models.Item) []models.Item {
	out := make([]models.Item, 0, len(items))
	for _, it := range items {
		it.Name = strings.TrimSpace(it.Name)
		if it.Name == "" {
			continue
		}
		if it.Quantity <= 0 {
			it.Quantity = 1
		}
		out = append(out, it)
	}
	return out
}

func splitItemsText(raw interface{}, itemsText string) []models.Item {
	text := itemsText
	if text == "" {
		// The extractor sometimes puts the flat list in the items field
		// itself.
		if s, ok := raw.(string); ok {
			text = s
		}
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var items []models.Item
	for _, part := range strings.Split(text, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		items = append(items, models.Item{Name: name, Quantity: 1})
	}
	return items
}
