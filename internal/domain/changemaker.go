package domain

import (
	"time"

	"github.com/google/uuid"
)

// Changemaker is an organization identified by its tax id. Bulk uploads link
// changemakers to proposals when the CSV carries tax id data.
type Changemaker struct {
	ID        uuid.UUID `json:"id"`
	TaxID     string    `json:"taxId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
