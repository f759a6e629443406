package compare

import (
	"strings"

	"github.com/davem/rfpdesk/internal/models"
)

// MatchItems counts requested/quoted pairs where the names are equal
// (case-insensitive, trimmed) and the quoted quantity covers the requested
// one. Counting is deliberately many-to-many: a vendor quoting the same name
// twice increments the count for every requested item both quotes satisfy.
// This reproduces the observed production behavior; see DESIGN.md for why
// it is kept rather than collapsed to one match per requested item.
func MatchItems(requested, quoted []models.Item) int {
	matched := 0
	for _, q := range quoted {
		for _, r := range requested {
			if !strings.EqualFold(strings.TrimSpace(q.Name), strings.TrimSpace(r.Name)) {
				continue
			}
			want := r.Quantity
			if want <= 0 {
				want = 1
			}
			have := q.Quantity
			if have <= 0 {
				have = 1
			}
			if have >= want {
				matched++
			}
		}
	}
	return matched
}

// ItemScore converts item coverage into the items axis. An RFP with no
// requested items scores zero on this axis for everyone.
func ItemScore(requested, quoted []models.Item) float64 {
	if len(requested) == 0 {
		return 0
	}
	matched := MatchItems(requested, quoted)
	return (float64(matched) / float64(len(requested))) * WeightItems
}
