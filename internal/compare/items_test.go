package compare

import (
	"testing"

	"github.com/davem/rfpdesk/internal/models"
)

func TestItemScoreCaseInsensitiveFullMatch(t *testing.T) {
	requested := []models.Item{{Name: "Chair", Quantity: 10}}
	quoted := []models.Item{{Name: "chair", Quantity: 12}}

	if got := ItemScore(requested, quoted); got != 10 {
		t.Errorf("ItemScore = %v, want 10", got)
	}
}

func TestItemScoreNoRequestedItems(t *testing.T) {
	quoted := []models.Item{{Name: "Chair", Quantity: 1}}
	if got := ItemScore(nil, quoted); got != 0 {
		t.Errorf("ItemScore with no requested items = %v, want 0", got)
	}
}

func TestMatchItems(t *testing.T) {
	tests := []struct {
		name      string
		requested []models.Item
		quoted    []models.Item
		want      int
	}{
		{
			name:      "quantity too low does not match",
			requested: []models.Item{{Name: "Desk", Quantity: 5}},
			quoted:    []models.Item{{Name: "Desk", Quantity: 3}},
			want:      0,
		},
		{
			name:      "defaults both quantities to 1",
			requested: []models.Item{{Name: "Lamp"}},
			quoted:    []models.Item{{Name: "lamp"}},
			want:      1,
		},
		{
			name:      "trimmed names",
			requested: []models.Item{{Name: "Chair ", Quantity: 1}},
			quoted:    []models.Item{{Name: " chair", Quantity: 2}},
			want:      1,
		},
		{
			// Duplicate counting per quoted/requested pair is the observed
			// production behavior and is kept on purpose.
			name:      "duplicate quotes each count",
			requested: []models.Item{{Name: "Chair", Quantity: 1}, {Name: "Chair", Quantity: 1}},
			quoted:    []models.Item{{Name: "chair", Quantity: 2}, {Name: "CHAIR", Quantity: 3}},
			want:      4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchItems(tt.requested, tt.quoted); got != tt.want {
				t.Errorf("MatchItems = %d, want %d", got, tt.want)
			}
		})
	}
}
