package models

import (
	"time"

	"github.com/google/uuid"
)

// Vendor is a supplier the buyer solicits. Email is the unique business key
// used to match inbound replies back to a vendor.
type Vendor struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}
