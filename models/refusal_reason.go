package models

import (
	"time"

	"github.com/kendall-kelly/formalwear-orders-api/dto"
)

// RefusalReason is an entry of the catalog an operator picks from when
// refusing an order
type RefusalReason struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Label     string    `gorm:"uniqueIndex;not null" json:"label"`
	Active    bool      `gorm:"not null" json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for the RefusalReason model
func (RefusalReason) TableName() string {
	return "refusal_reasons"
}

// DTO returns the boundary shape of the reason
func (r RefusalReason) DTO() dto.RefusalReason {
	return dto.RefusalReason{ID: r.ID, Label: r.Label}
}

// DefaultRefusalReasons seed an empty catalog
var DefaultRefusalReasons = []string{
	"Client gave up",
	"Garment unavailable for the event date",
	"Measurements could not be taken",
	"Advance payment not confirmed",
	"Duplicate order",
}
