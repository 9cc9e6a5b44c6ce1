// Package dto holds the JSON shapes exchanged with the order-management API.
package dto

// DateLayout is the wire format of every calendar date
const DateLayout = "2006-01-02"

// OrderPayload is the body of create and update order calls
type OrderPayload struct {
	Client      ClientBlock      `json:"client" binding:"required"`
	Modality    string           `json:"modality" binding:"required,oneof=Aluguel Venda Aluguel+Venda"`
	OrderDate   string           `json:"order_date" binding:"required"`
	EventDate   string           `json:"event_date" binding:"required"`
	PickupDate  string           `json:"pickup_date" binding:"required"`
	ReturnDate  string           `json:"return_date" binding:"required"`
	Items       []ItemEntry      `json:"items" binding:"required,len=3,dive"`
	Accessories []AccessoryEntry `json:"accessories" binding:"dive"`
	Payment     PaymentBlock     `json:"payment" binding:"required"`
}

// ClientBlock identifies the client the order belongs to
type ClientBlock struct {
	Name      string         `json:"name" binding:"required"`
	Phone     string         `json:"phone" binding:"required,numeric"`
	TaxID     string         `json:"tax_id" binding:"required,numeric"`
	Addresses []AddressEntry `json:"addresses" binding:"required,len=1,dive"`
}

// AddressEntry is one postal address of the client
type AddressEntry struct {
	PostalCode   string `json:"postal_code" binding:"required,len=8,numeric"`
	Street       string `json:"street" binding:"required"`
	Number       string `json:"number" binding:"required"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood" binding:"required"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state"`
}

// ItemEntry is one of the three fixed garments
type ItemEntry struct {
	Kind       string `json:"kind" binding:"required,oneof=jacket shirt trousers"`
	Number     string `json:"number"`
	Color      string `json:"color"`
	Length     string `json:"length"`
	Brand      string `json:"brand"`
	Adjustment string `json:"adjustment"`
	Notes      string `json:"notes"`
	Sold       bool   `json:"sold"`
}

// AccessoryEntry is one enabled accessory
type AccessoryEntry struct {
	Kind   string `json:"kind" binding:"required,oneof=suspenders belt_loop scarf tie belt shoe vest"`
	Number string `json:"number,omitempty"`
	Color  string `json:"color,omitempty"`
	Brand  string `json:"brand,omitempty"`
	Sold   bool   `json:"sold"`
}

// PaymentBlock carries the order totals
type PaymentBlock struct {
	Total   float64 `json:"total" binding:"gt=0"`
	Advance float64 `json:"advance" binding:"gte=0"`
	Balance float64 `json:"balance"`
}

// OrderRecord is the read-back shape of a persisted order. Nested blocks are
// optional: older or partial records may leave any of them out.
type OrderRecord struct {
	ID                   uint             `json:"id"`
	Phase                string           `json:"phase"`
	Overdue              bool             `json:"overdue"`
	Modality             string           `json:"modality"`
	Client               *ClientBlock     `json:"client,omitempty"`
	Items                []ItemEntry      `json:"items"`
	Accessories          []AccessoryEntry `json:"accessories"`
	Payment              *PaymentBlock    `json:"payment,omitempty"`
	OrderDate            string           `json:"order_date"`
	EventDate            string           `json:"event_date"`
	PickupDate           string           `json:"pickup_date"`
	ReturnDate           string           `json:"return_date"`
	Attendant            *EmployeeSummary `json:"attendant,omitempty"`
	RefusalReason        *RefusalReason   `json:"refusal_reason,omitempty"`
	RefusalJustification string           `json:"refusal_justification,omitempty"`
	PickupPayments       []PickupPayment  `json:"pickup_payments,omitempty"`
	ImageURL             string           `json:"image_url,omitempty"`
	Actions              []string         `json:"actions"`
}

// PhaseCounts maps a phase name (plus OVERDUE) to the number of orders in it
type PhaseCounts map[string]int64

// OrderFilter narrows an order listing. Zero values match everything.
type OrderFilter struct {
	Phase   string `form:"phase"`
	Overdue bool   `form:"overdue"`
}
