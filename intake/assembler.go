package intake

import (
	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/kendall-kelly/formalwear-orders-api/money"
	"github.com/kendall-kelly/formalwear-orders-api/utils"
)

// Assemble builds the order payload from a validated draft. It never fails:
// callers run ValidateAll first.
//
// The three garments are always present. Accessories appear only when
// enabled, and a disabled one is left out rather than sent empty.
func Assemble(d *Draft) dto.OrderPayload {
	sold := make(map[Piece]bool)
	for _, p := range SoldPieces(d) {
		sold[p] = true
	}

	payload := dto.OrderPayload{
		Client: dto.ClientBlock{
			Name:  d.Client.Name,
			Phone: utils.OnlyDigits(d.Client.Phone),
			TaxID: utils.OnlyDigits(d.Client.TaxID),
			Addresses: []dto.AddressEntry{{
				PostalCode:   utils.OnlyDigits(d.Client.Address.PostalCode),
				Street:       d.Client.Address.Street,
				Number:       d.Client.Address.Number,
				Complement:   d.Client.Address.Complement,
				Neighborhood: d.Client.Address.Neighborhood,
				City:         d.Client.Address.City,
				State:        d.Client.Address.State,
			}},
		},
		Modality:    string(d.Modality),
		OrderDate:   Get(d, FieldOrderDate),
		EventDate:   Get(d, FieldEventDate),
		PickupDate:  Get(d, FieldPickupDate),
		ReturnDate:  Get(d, FieldReturnDate),
		Items:       make([]dto.ItemEntry, 0, len(Garments)),
		Accessories: []dto.AccessoryEntry{},
	}

	for _, p := range Garments {
		g := d.Garment(p)
		item := dto.ItemEntry{
			Kind:   string(p),
			Number: g.Number,
			Color:  g.Color,
			Length: g.Length,
			Brand:  g.Brand,
			Notes:  g.Notes,
			Sold:   sold[p],
		}
		if g.Adjustment != nil {
			item.Adjustment = *g.Adjustment
		}
		payload.Items = append(payload.Items, item)
	}

	for _, p := range AccessoryPieces {
		acc, ok := d.Accessories[p]
		if !ok {
			continue
		}
		entry := dto.AccessoryEntry{Kind: string(p), Sold: sold[p]}
		if accessoryHas(p, attrNumber) {
			entry.Number = acc.Number
		}
		if accessoryHas(p, attrColor) {
			entry.Color = acc.Color
		}
		if accessoryHas(p, attrBrand) {
			entry.Brand = acc.Brand
		}
		payload.Accessories = append(payload.Accessories, entry)
	}

	total := money.Round(d.Payment.Total)
	advance := money.Round(d.Payment.Advance)
	payload.Payment = dto.PaymentBlock{
		Total:   money.Float(total),
		Advance: money.Float(advance),
		Balance: money.Float(money.Balance(total, advance)),
	}

	return payload
}
