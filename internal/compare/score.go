package compare

import (
	"math"

	"github.com/davem/rfpdesk/internal/models"
)

// Axis weights. Their sum bounds every total score to [0, 100].
const (
	WeightPrice    = 40.0
	WeightDelivery = 30.0
	WeightWarranty = 20.0
	WeightItems    = 10.0
)

// Baselines are the shared reference points for one comparison run: the best
// (lowest) finite price and delivery across the compared set, and the
// highest warranty. Scores are relative to these, so they are only
// meaningful within a single run.
type Baselines struct {
	MinPrice    Amount
	MinDelivery Amount
	MaxWarranty float64
}

// ComputeBaselines scans the normalized set. An axis where every proposal is
// Unknown leaves the baseline Unknown (everyone scores zero on it); an
// all-zero warranty column gets baseline 1 so the ratio stays defined while
// every numerator is zero.
func ComputeBaselines(set []Normalized) Baselines {
	b := Baselines{}
	for _, n := range set {
		if n.Price.Known && (!b.MinPrice.Known || n.Price.Value < b.MinPrice.Value) {
			b.MinPrice = n.Price
		}
		if n.DeliveryDays.Known && (!b.MinDelivery.Known || n.DeliveryDays.Value < b.MinDelivery.Value) {
			b.MinDelivery = n.DeliveryDays
		}
		if n.Warranty > b.MaxWarranty {
			b.MaxWarranty = n.Warranty
		}
	}
	if b.MaxWarranty == 0 {
		b.MaxWarranty = 1
	}
	return b
}

// Score computes the per-axis breakdown for one proposal against the run's
// baselines and the RFP's requested items. The returned breakdown carries
// display-rounded values; the second return is the unrounded total used for
// ranking.
func Score(n Normalized, b Baselines, requested []models.Item) (models.ScoreBreakdown, float64) {
	var price, delivery, warranty float64

	if n.Price.Known && n.Price.Value > 0 && b.MinPrice.Known {
		price = (b.MinPrice.Value / n.Price.Value) * WeightPrice
	}
	if n.DeliveryDays.Known && n.DeliveryDays.Value > 0 && b.MinDelivery.Known {
		delivery = (b.MinDelivery.Value / n.DeliveryDays.Value) * WeightDelivery
	}
	if n.Warranty > 0 {
		warranty = (n.Warranty / b.MaxWarranty) * WeightWarranty
	}

	items := ItemScore(requested, n.Items)

	total := price + delivery + warranty + items
	breakdown := models.ScoreBreakdown{
		PriceScore:    round2(price),
		DeliveryScore: round2(delivery),
		WarrantyScore: round2(warranty),
		ItemScore:     round2(items),
	}
	return breakdown, total
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
