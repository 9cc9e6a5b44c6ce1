package intake

import (
	"strings"
	"time"

	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/kendall-kelly/formalwear-orders-api/money"
)

// RecoverDraft rebuilds a draft from a persisted order, inverting Assemble.
// An accessory missing from the record is disabled, and a non-empty
// adjustment switches the garment's adjustment on.
//
// Records may be partial. Anything missing or malformed is left empty in the
// draft so the operator can fill it in again.
func RecoverDraft(rec *dto.OrderRecord) *Draft {
	d := NewDraft()
	if rec == nil {
		return d
	}

	if c := rec.Client; c != nil {
		d.Client.Name = c.Name
		d.Client.Phone = c.Phone
		d.Client.TaxID = c.TaxID
		if len(c.Addresses) > 0 {
			a := c.Addresses[0]
			d.Client.Address = Address{
				PostalCode:   a.PostalCode,
				Street:       a.Street,
				Number:       a.Number,
				Complement:   a.Complement,
				Neighborhood: a.Neighborhood,
				City:         a.City,
				State:        a.State,
			}
		}
	}

	var sold []Piece
	for _, item := range rec.Items {
		p := Piece(item.Kind)
		g := d.Garment(p)
		if g == nil {
			continue
		}
		*g = Garment{
			Number: item.Number,
			Color:  item.Color,
			Length: item.Length,
			Brand:  item.Brand,
			Notes:  item.Notes,
		}
		if adj := strings.TrimSpace(item.Adjustment); adj != "" {
			g.Adjustment = &adj
		}
		if item.Sold {
			sold = append(sold, p)
		}
	}

	for _, entry := range rec.Accessories {
		p := Piece(entry.Kind)
		if !p.IsAccessory() {
			continue
		}
		var acc Accessory
		if accessoryHas(p, attrNumber) {
			acc.Number = entry.Number
		}
		if accessoryHas(p, attrColor) {
			acc.Color = entry.Color
		}
		if accessoryHas(p, attrBrand) {
			acc.Brand = entry.Brand
		}
		d.Accessories[p] = acc
		if entry.Sold {
			sold = append(sold, p)
		}
	}

	if m := Modality(rec.Modality); m.IsValid() {
		d.Modality = m
	}
	if d.Modality == ModalityRentalSale {
		d.SoldItems = normalizePieces(sold)
	}

	if p := rec.Payment; p != nil {
		if p.Total > 0 {
			d.Payment.Total = money.FromFloat(p.Total)
		}
		if p.Advance > 0 {
			d.Payment.Advance = money.FromFloat(p.Advance)
		}
	}
	d.RecomputeBalance()

	d.OrderDate = parseDate(rec.OrderDate)
	d.EventDate = parseDate(rec.EventDate)
	d.PickupDate = parseDate(rec.PickupDate)
	d.ReturnDate = parseDate(rec.ReturnDate)

	return d
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if len(s) > len(dto.DateLayout) {
		s = s[:len(dto.DateLayout)]
	}
	t, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
