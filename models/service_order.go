package models

import (
	"time"

	"github.com/kendall-kelly/formalwear-orders-api/lifecycle"
	"github.com/kendall-kelly/formalwear-orders-api/money"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Address is the client's postal address, embedded in the order row
type Address struct {
	PostalCode   string `gorm:"size:8" json:"postal_code"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `gorm:"size:2" json:"state"`
}

// ServiceOrder represents a formal-wear rental or sale order
type ServiceOrder struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Phase       lifecycle.Phase `gorm:"type:varchar(32);not null;default:'PENDING';index" json:"phase"`
	Modality    string          `gorm:"type:varchar(16);not null" json:"modality"`
	ClientName  string          `gorm:"not null" json:"client_name"`
	ClientPhone string          `gorm:"not null" json:"client_phone"`
	ClientTaxID string          `gorm:"not null;index" json:"client_tax_id"`
	Address     Address         `gorm:"embedded;embeddedPrefix:address_" json:"address"`

	Items       []OrderItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Accessories []OrderAccessory `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"accessories"`

	Total   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Advance decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"advance"`
	Paid    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"paid"` // collected at pickup

	OrderDate  time.Time `gorm:"type:date;not null" json:"order_date"`
	EventDate  time.Time `gorm:"type:date;not null" json:"event_date"`
	PickupDate time.Time `gorm:"type:date;not null" json:"pickup_date"`
	ReturnDate time.Time `gorm:"type:date;not null" json:"return_date"`

	AttendantID *uint     `gorm:"index" json:"attendant_id"` // nullable, assigned before production
	Attendant   *Employee `gorm:"foreignKey:AttendantID" json:"attendant,omitempty"`

	RefusalReasonID      *uint          `json:"refusal_reason_id"`
	RefusalReason        *RefusalReason `gorm:"foreignKey:RefusalReasonID" json:"refusal_reason,omitempty"`
	RefusalJustification string         `gorm:"type:text" json:"refusal_justification"`

	PickupPayments []PickupPayment `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"pickup_payments"`
	ImageKey       *string         `json:"image_key"` // S3 key or local file name of the reference photo

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the ServiceOrder model
func (ServiceOrder) TableName() string {
	return "service_orders"
}

// Balance returns what the client still owes, never negative
func (o *ServiceOrder) Balance() decimal.Decimal {
	b := money.Round(o.Total.Sub(o.Advance).Sub(o.Paid))
	if b.IsNegative() {
		return decimal.Zero
	}
	return b
}

// IsOverdue reports whether the order passed the due date of its phase
func (o *ServiceOrder) IsOverdue(now time.Time) bool {
	return lifecycle.IsOverdue(o.Phase, o.PickupDate, o.ReturnDate, now)
}

// IsLocked reports whether the order content can no longer be edited
func (o *ServiceOrder) IsLocked() bool {
	return o.Phase.IsTerminal()
}

// OrderItem is one of the three garments of an order
type OrderItem struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	OrderID    uint   `gorm:"not null;index" json:"order_id"`
	Position   int    `gorm:"not null" json:"position"`
	Kind       string `gorm:"type:varchar(16);not null" json:"kind"`
	Number     string `json:"number"`
	Color      string `json:"color"`
	Length     string `json:"length"`
	Brand      string `json:"brand"`
	Adjustment string `gorm:"type:text" json:"adjustment"`
	Notes      string `gorm:"type:text" json:"notes"`
	Sold       bool   `gorm:"not null" json:"sold"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// OrderAccessory is one enabled accessory of an order
type OrderAccessory struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	OrderID  uint   `gorm:"not null;index" json:"order_id"`
	Position int    `gorm:"not null" json:"position"`
	Kind     string `gorm:"type:varchar(16);not null" json:"kind"`
	Number   string `json:"number"`
	Color    string `json:"color"`
	Brand    string `json:"brand"`
	Sold     bool   `gorm:"not null" json:"sold"`
}

// TableName specifies the table name for the OrderAccessory model
func (OrderAccessory) TableName() string {
	return "order_accessories"
}

// PickupPayment is a payment collected when the client picked up the order
type PickupPayment struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	Method    string          `gorm:"type:varchar(16);not null" json:"method"`
	Amount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName specifies the table name for the PickupPayment model
func (PickupPayment) TableName() string {
	return "pickup_payments"
}
