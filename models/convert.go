package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/kendall-kelly/formalwear-orders-api/lifecycle"
	"github.com/kendall-kelly/formalwear-orders-api/money"
)

// Modalities accepted on an order
const (
	ModalityRental     = "Aluguel"
	ModalitySale       = "Venda"
	ModalityRentalSale = "Aluguel+Venda"
)

// GarmentKinds is the fixed garment set, in storage order
var GarmentKinds = []string{"jacket", "shirt", "trousers"}

// PayloadError reports an order payload that binding accepted but the
// order rules do not
type PayloadError struct {
	Field   string
	Message string
}

func (e *PayloadError) Error() string {
	return e.Field + ": " + e.Message
}

func payloadErrorf(field, format string, args ...interface{}) *PayloadError {
	return &PayloadError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Fill replaces the order content with the payload. Phase, attendant and
// payments are left alone. Sold flags follow the modality: none for a
// rental, all for a sale.
func (o *ServiceOrder) Fill(p dto.OrderPayload) error {
	dates := make([]time.Time, 4)
	for i, raw := range []struct{ field, value string }{
		{"order_date", p.OrderDate},
		{"event_date", p.EventDate},
		{"pickup_date", p.PickupDate},
		{"return_date", p.ReturnDate},
	} {
		t, err := time.Parse(dto.DateLayout, strings.TrimSpace(raw.value))
		if err != nil {
			return payloadErrorf(raw.field, "must be a date in YYYY-MM-DD format")
		}
		dates[i] = t
	}
	if dates[3].Before(dates[2]) {
		return payloadErrorf("return_date", "must not be before the pickup date")
	}

	total := money.FromFloat(p.Payment.Total)
	advance := money.FromFloat(p.Payment.Advance)
	if !total.IsPositive() {
		return payloadErrorf("payment.total", "must be greater than zero")
	}
	if advance.IsNegative() || advance.GreaterThan(total) {
		return payloadErrorf("payment.advance", "must be between zero and the total")
	}

	items, err := buildItems(p.Items, p.Modality)
	if err != nil {
		return err
	}
	accessories, err := buildAccessories(p.Accessories, p.Modality)
	if err != nil {
		return err
	}

	if len(p.Client.Addresses) != 1 {
		return payloadErrorf("client.addresses", "exactly one address is required")
	}
	a := p.Client.Addresses[0]

	o.Modality = p.Modality
	o.ClientName = strings.TrimSpace(p.Client.Name)
	o.ClientPhone = p.Client.Phone
	o.ClientTaxID = p.Client.TaxID
	o.Address = Address{
		PostalCode:   a.PostalCode,
		Street:       a.Street,
		Number:       a.Number,
		Complement:   a.Complement,
		Neighborhood: a.Neighborhood,
		City:         a.City,
		State:        strings.ToUpper(a.State),
	}
	o.Items = items
	o.Accessories = accessories
	o.Total = total
	o.Advance = advance
	o.OrderDate, o.EventDate, o.PickupDate, o.ReturnDate = dates[0], dates[1], dates[2], dates[3]
	return nil
}

func soldFor(modality string, flag bool) bool {
	switch modality {
	case ModalitySale:
		return true
	case ModalityRentalSale:
		return flag
	default:
		return false
	}
}

func buildItems(entries []dto.ItemEntry, modality string) ([]OrderItem, error) {
	byKind := make(map[string]dto.ItemEntry, len(entries))
	for _, e := range entries {
		if _, dup := byKind[e.Kind]; dup {
			return nil, payloadErrorf("items", "garment %q appears more than once", e.Kind)
		}
		byKind[e.Kind] = e
	}

	items := make([]OrderItem, 0, len(GarmentKinds))
	for i, kind := range GarmentKinds {
		e, ok := byKind[kind]
		if !ok {
			return nil, payloadErrorf("items", "garment %q is missing", kind)
		}
		items = append(items, OrderItem{
			Position:   i,
			Kind:       kind,
			Number:     e.Number,
			Color:      e.Color,
			Length:     e.Length,
			Brand:      e.Brand,
			Adjustment: strings.TrimSpace(e.Adjustment),
			Notes:      e.Notes,
			Sold:       soldFor(modality, e.Sold),
		})
	}
	return items, nil
}

func buildAccessories(entries []dto.AccessoryEntry, modality string) ([]OrderAccessory, error) {
	seen := make(map[string]bool, len(entries))
	out := make([]OrderAccessory, 0, len(entries))
	for i, e := range entries {
		if seen[e.Kind] {
			return nil, payloadErrorf("accessories", "accessory %q appears more than once", e.Kind)
		}
		seen[e.Kind] = true
		out = append(out, OrderAccessory{
			Position: i,
			Kind:     e.Kind,
			Number:   e.Number,
			Color:    e.Color,
			Brand:    e.Brand,
			Sold:     soldFor(modality, e.Sold),
		})
	}
	return out, nil
}

// ToRecord returns the read-back shape of the order as of now. ImageURL is
// left for the caller, which knows where photos are served from.
func (o *ServiceOrder) ToRecord(now time.Time) dto.OrderRecord {
	rec := dto.OrderRecord{
		ID:       o.ID,
		Phase:    string(o.Phase),
		Overdue:  o.IsOverdue(now),
		Modality: o.Modality,
		Client: &dto.ClientBlock{
			Name:  o.ClientName,
			Phone: o.ClientPhone,
			TaxID: o.ClientTaxID,
			Addresses: []dto.AddressEntry{{
				PostalCode:   o.Address.PostalCode,
				Street:       o.Address.Street,
				Number:       o.Address.Number,
				Complement:   o.Address.Complement,
				Neighborhood: o.Address.Neighborhood,
				City:         o.Address.City,
				State:        o.Address.State,
			}},
		},
		Items:       make([]dto.ItemEntry, 0, len(o.Items)),
		Accessories: make([]dto.AccessoryEntry, 0, len(o.Accessories)),
		Payment: &dto.PaymentBlock{
			Total:   money.Float(o.Total),
			Advance: money.Float(o.Advance),
			Balance: money.Float(o.Balance()),
		},
		OrderDate:            formatDate(o.OrderDate),
		EventDate:            formatDate(o.EventDate),
		PickupDate:           formatDate(o.PickupDate),
		ReturnDate:           formatDate(o.ReturnDate),
		RefusalJustification: o.RefusalJustification,
		Actions:              []string{},
	}

	for _, it := range o.Items {
		rec.Items = append(rec.Items, dto.ItemEntry{
			Kind:       it.Kind,
			Number:     it.Number,
			Color:      it.Color,
			Length:     it.Length,
			Brand:      it.Brand,
			Adjustment: it.Adjustment,
			Notes:      it.Notes,
			Sold:       it.Sold,
		})
	}
	for _, acc := range o.Accessories {
		rec.Accessories = append(rec.Accessories, dto.AccessoryEntry{
			Kind:   acc.Kind,
			Number: acc.Number,
			Color:  acc.Color,
			Brand:  acc.Brand,
			Sold:   acc.Sold,
		})
	}
	for _, p := range o.PickupPayments {
		rec.PickupPayments = append(rec.PickupPayments, dto.PickupPayment{
			Method: p.Method,
			Amount: money.Float(p.Amount),
		})
	}

	if o.Attendant != nil {
		a := o.Attendant.Summary()
		rec.Attendant = &a
	}
	if o.RefusalReason != nil {
		r := o.RefusalReason.DTO()
		rec.RefusalReason = &r
	}
	for _, a := range lifecycle.Actions(o.Phase) {
		rec.Actions = append(rec.Actions, string(a))
	}
	return rec
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dto.DateLayout)
}
