package intake

import (
	"time"

	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// validDraft returns a draft that passes ValidateAll
func validDraft() *Draft {
	d := NewDraft()
	d.Client = Client{
		Name:  "Joana Prado",
		Phone: "11987654321",
		TaxID: "12345678909",
		Address: Address{
			PostalCode:   "01310100",
			Street:       "Avenida Paulista",
			Number:       "1000",
			Complement:   "apto 12",
			Neighborhood: "Bela Vista",
			City:         "Sao Paulo",
			State:        "SP",
		},
	}
	adjustment := "shorten sleeves 2cm"
	d.Jacket = Garment{Number: "50", Color: "black", Length: "long", Brand: "Ricardo Almeida", Adjustment: &adjustment}
	d.Shirt = Garment{Number: "3", Color: "white", Length: "long", Brand: "Dudalina"}
	d.Trousers = Garment{Number: "44", Color: "black", Length: "102", Brand: "Ricardo Almeida", Notes: "hem by event"}
	d.Accessories[PieceTie] = Accessory{Color: "wine", Brand: "Hugo"}
	d.Accessories[PieceShoe] = Accessory{Number: "41", Color: "black", Brand: "Democrata"}
	d.Modality = ModalityRental
	d.Payment.Total = decimal.RequireFromString("300.10")
	d.Payment.Advance = decimal.RequireFromString("146.70")
	d.RecomputeBalance()
	d.OrderDate = date(2026, 3, 1)
	d.EventDate = date(2026, 3, 20)
	d.PickupDate = date(2026, 3, 18)
	d.ReturnDate = date(2026, 3, 23)
	return d
}
