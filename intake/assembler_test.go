package intake

import (
	"testing"

	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleClientBlock(t *testing.T) {
	d := validDraft()
	d.Client.Phone = "(11) 98765-4321"
	d.Client.TaxID = "123.456.789-09"
	d.Client.Address.PostalCode = "01310-100"

	p := Assemble(d)
	assert.Equal(t, "11987654321", p.Client.Phone)
	assert.Equal(t, "12345678909", p.Client.TaxID)
	require.Len(t, p.Client.Addresses, 1)
	assert.Equal(t, "01310100", p.Client.Addresses[0].PostalCode)
	assert.Equal(t, "Avenida Paulista", p.Client.Addresses[0].Street)
}

func TestAssembleAlwaysCarriesThreeItems(t *testing.T) {
	p := Assemble(NewDraft())

	require.Len(t, p.Items, 3)
	assert.Equal(t, "jacket", p.Items[0].Kind)
	assert.Equal(t, "shirt", p.Items[1].Kind)
	assert.Equal(t, "trousers", p.Items[2].Kind)
	assert.NotNil(t, p.Accessories)
	assert.Empty(t, p.Accessories)
}

func TestAssembleAdjustmentOnlyWhenEnabled(t *testing.T) {
	p := Assemble(validDraft())

	assert.Equal(t, "shorten sleeves 2cm", p.Items[0].Adjustment)
	assert.Equal(t, "", p.Items[1].Adjustment)
	assert.Equal(t, "", p.Items[2].Adjustment)
}

func TestAssembleOmitsDisabledAccessories(t *testing.T) {
	d := validDraft()
	d.SetAccessoryEnabled(PieceTie, false)

	p := Assemble(d)
	require.Len(t, p.Accessories, 1)
	assert.Equal(t, dto.AccessoryEntry{Kind: "shoe", Number: "41", Color: "black", Brand: "Democrata"}, p.Accessories[0])
}

func TestAssembleDropsInapplicableAccessoryFields(t *testing.T) {
	d := NewDraft()
	d.Accessories[PieceBeltLoop] = Accessory{Number: "3", Color: "black", Brand: "x"}

	p := Assemble(d)
	require.Len(t, p.Accessories, 1)
	assert.Equal(t, dto.AccessoryEntry{Kind: "belt_loop", Color: "black"}, p.Accessories[0])
}

func soldKinds(p dto.OrderPayload) []string {
	var out []string
	for _, item := range p.Items {
		if item.Sold {
			out = append(out, item.Kind)
		}
	}
	for _, acc := range p.Accessories {
		if acc.Sold {
			out = append(out, acc.Kind)
		}
	}
	return out
}

func TestAssembleSoldFlags(t *testing.T) {
	d := validDraft()

	d.Modality = ModalityRental
	d.SoldItems = []Piece{PieceJacket}
	assert.Empty(t, soldKinds(Assemble(d)), "rental sells nothing even with a stale selection")

	d.Modality = ModalitySale
	assert.Equal(t, []string{"jacket", "shirt", "trousers", "tie", "shoe"}, soldKinds(Assemble(d)))

	d.Modality = ModalityRentalSale
	d.SoldItems = []Piece{PieceShoe, PieceShirt}
	assert.Equal(t, []string{"shirt", "shoe"}, soldKinds(Assemble(d)))
}

func TestAssembleRecomputesBalance(t *testing.T) {
	d := validDraft()
	d.Payment.Balance = decimal.RequireFromString("999")

	p := Assemble(d)
	assert.Equal(t, 300.10, p.Payment.Total)
	assert.Equal(t, 146.70, p.Payment.Advance)
	assert.Equal(t, 153.40, p.Payment.Balance)
}

func TestAssembleDates(t *testing.T) {
	p := Assemble(validDraft())
	assert.Equal(t, "2026-03-01", p.OrderDate)
	assert.Equal(t, "2026-03-23", p.ReturnDate)
	assert.Equal(t, "Aluguel", p.Modality)
}

// record simulates the server echoing a payload back
func record(id uint, p dto.OrderPayload) *dto.OrderRecord {
	client := p.Client
	payment := p.Payment
	return &dto.OrderRecord{
		ID:          id,
		Phase:       "PENDING",
		Modality:    p.Modality,
		Client:      &client,
		Items:       p.Items,
		Accessories: p.Accessories,
		Payment:     &payment,
		OrderDate:   p.OrderDate,
		EventDate:   p.EventDate,
		PickupDate:  p.PickupDate,
		ReturnDate:  p.ReturnDate,
	}
}

func TestRecoverInvertsAssemble(t *testing.T) {
	drafts := map[string]func() *Draft{
		"rental": validDraft,
		"sale": func() *Draft {
			d := validDraft()
			d.Modality = ModalitySale
			return d
		},
		"rental and sale": func() *Draft {
			d := validDraft()
			d.Modality = ModalityRentalSale
			d.SoldItems = []Piece{PieceJacket, PieceTie}
			return d
		},
		"rental and sale after dropping a sold accessory": func() *Draft {
			d := validDraft()
			d.Modality = ModalityRentalSale
			d.SoldItems = []Piece{PieceJacket, PieceTie}
			if err := Set(d, FieldTieEnabled, "false"); err != nil {
				panic(err)
			}
			return d
		},
		"every accessory": func() *Draft {
			d := validDraft()
			for _, p := range AccessoryPieces {
				d.Accessories[p] = Accessory{Number: "40", Color: "navy", Brand: "Zegna"}
			}
			d.Accessories[PieceBeltLoop] = Accessory{Color: "navy"}
			for _, p := range []Piece{PieceSuspenders, PieceScarf, PieceTie} {
				d.Accessories[p] = Accessory{Color: "navy", Brand: "Zegna"}
			}
			return d
		},
	}

	for name, build := range drafts {
		t.Run(name, func(t *testing.T) {
			d := build()
			require.Empty(t, ValidateAll(d))

			payload := Assemble(d)
			recovered := RecoverDraft(record(7, payload))

			for _, k := range AllFields() {
				assert.Equal(t, Get(d, k), Get(recovered, k), k.String())
			}
			assert.Equal(t, payload, Assemble(recovered))
		})
	}
}

func TestRecoverDegradesGracefully(t *testing.T) {
	assert.Equal(t, NewDraft(), RecoverDraft(nil))

	rec := &dto.OrderRecord{
		ID:       3,
		Modality: "Desconhecido",
		Items: []dto.ItemEntry{
			{Kind: "jacket", Color: "grey", Adjustment: "   "},
			{Kind: "cape", Color: "red"},
		},
		Accessories: []dto.AccessoryEntry{{Kind: "monocle"}},
		PickupDate:  "not a date",
		ReturnDate:  "2026-04-02T00:00:00Z",
	}
	d := RecoverDraft(rec)

	assert.Equal(t, "grey", d.Jacket.Color)
	assert.Nil(t, d.Jacket.Adjustment)
	assert.Equal(t, Garment{}, d.Shirt)
	assert.Empty(t, d.Accessories)
	assert.Equal(t, Modality(""), d.Modality)
	assert.Equal(t, Client{}, d.Client)
	assert.True(t, d.Payment.Total.IsZero())
	assert.True(t, d.PickupDate.IsZero())
	assert.Equal(t, date(2026, 4, 2), d.ReturnDate)
}
