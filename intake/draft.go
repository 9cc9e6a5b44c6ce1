// Package intake turns operator input into a validated service order payload.
//
// A Draft is the single mutable staging record of one order being created or
// edited. The field table in field.go describes every input the wizard accepts,
// rules.go decides which of them are required for the current draft, and
// validator.go, assembler.go and recover.go build on those two.
package intake

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/kendall-kelly/formalwear-orders-api/money"
	"github.com/shopspring/decimal"
)

// Piece names a garment or an accessory of the order
type Piece string

const (
	PieceJacket   Piece = "jacket"
	PieceShirt    Piece = "shirt"
	PieceTrousers Piece = "trousers"

	PieceSuspenders Piece = "suspenders"
	PieceBeltLoop   Piece = "belt_loop"
	PieceScarf      Piece = "scarf"
	PieceTie        Piece = "tie"
	PieceBelt       Piece = "belt"
	PieceShoe       Piece = "shoe"
	PieceVest       Piece = "vest"
)

// Garments are the three pieces every order carries
var Garments = []Piece{PieceJacket, PieceShirt, PieceTrousers}

// AccessoryPieces are the optional add-ons, in display order
var AccessoryPieces = []Piece{
	PieceSuspenders, PieceBeltLoop, PieceScarf, PieceTie, PieceBelt, PieceShoe, PieceVest,
}

// IsGarment reports whether p is one of the fixed garments
func (p Piece) IsGarment() bool {
	return p == PieceJacket || p == PieceShirt || p == PieceTrousers
}

// IsAccessory reports whether p is an optional accessory
func (p Piece) IsAccessory() bool {
	for _, a := range AccessoryPieces {
		if a == p {
			return true
		}
	}
	return false
}

// IsValid reports whether p is a known piece
func (p Piece) IsValid() bool {
	return p.IsGarment() || p.IsAccessory()
}

// rank orders pieces garments first, then accessories in display order
func (p Piece) rank() int {
	for i, g := range Garments {
		if g == p {
			return i
		}
	}
	for i, a := range AccessoryPieces {
		if a == p {
			return len(Garments) + i
		}
	}
	return len(Garments) + len(AccessoryPieces)
}

// Modality decides which pieces of the order are sold rather than rented
type Modality string

const (
	ModalityRental     Modality = "Aluguel"
	ModalitySale       Modality = "Venda"
	ModalityRentalSale Modality = "Aluguel+Venda"
)

// IsValid reports whether m is a known modality
func (m Modality) IsValid() bool {
	return m == ModalityRental || m == ModalitySale || m == ModalityRentalSale
}

// Address is the client's postal address
type Address struct {
	PostalCode   string
	Street       string
	Number       string
	Complement   string
	Neighborhood string
	City         string
	State        string
}

// Client identifies who the order is for
type Client struct {
	Name    string
	Phone   string
	TaxID   string
	Address Address
}

// Garment is one of the three fixed pieces. Adjustment is nil when no
// adjustment was requested; a non-nil pointer holds the requested value.
type Garment struct {
	Number     string
	Color      string
	Length     string
	Brand      string
	Notes      string
	Adjustment *string
}

// Accessory holds the fields of an enabled accessory. Which of them apply
// depends on the accessory kind.
type Accessory struct {
	Number string
	Color  string
	Brand  string
}

// Payment holds the order totals. Balance is derived from Total and Advance.
type Payment struct {
	Total   decimal.Decimal
	Advance decimal.Decimal
	Balance decimal.Decimal
}

// Draft is the in-progress representation of one order
type Draft struct {
	Client   Client
	Jacket   Garment
	Shirt    Garment
	Trousers Garment

	// Accessories holds the enabled accessories only. A missing key means the
	// accessory is disabled.
	Accessories map[Piece]Accessory

	Modality  Modality
	SoldItems []Piece
	Payment   Payment

	OrderDate  time.Time
	EventDate  time.Time
	PickupDate time.Time
	ReturnDate time.Time
}

// NewDraft returns an empty draft
func NewDraft() *Draft {
	return &Draft{
		Accessories: make(map[Piece]Accessory),
	}
}

// Garment returns the fixed garment p, nil when p is not a garment
func (d *Draft) Garment(p Piece) *Garment {
	switch p {
	case PieceJacket:
		return &d.Jacket
	case PieceShirt:
		return &d.Shirt
	case PieceTrousers:
		return &d.Trousers
	default:
		return nil
	}
}

// AccessoryEnabled reports whether accessory p is part of the order
func (d *Draft) AccessoryEnabled(p Piece) bool {
	_, ok := d.Accessories[p]
	return ok
}

// ErrPieceNotIncluded is returned when a piece outside the order is marked as sold
var ErrPieceNotIncluded = errors.New("piece is not part of the order")

// SetAccessoryEnabled adds an empty accessory or removes it with all its
// values, its sold mark included
func (d *Draft) SetAccessoryEnabled(p Piece, on bool) {
	if d.Accessories == nil {
		d.Accessories = make(map[Piece]Accessory)
	}
	if !on {
		delete(d.Accessories, p)
		d.SoldItems = withoutPiece(d.SoldItems, p)
		return
	}
	if _, ok := d.Accessories[p]; !ok {
		d.Accessories[p] = Accessory{}
	}
}

// AdjustmentEnabled reports whether an adjustment was requested for garment p
func (d *Draft) AdjustmentEnabled(p Piece) bool {
	g := d.Garment(p)
	return g != nil && g.Adjustment != nil
}

// SetAdjustmentEnabled requests or drops the adjustment of garment p
func (d *Draft) SetAdjustmentEnabled(p Piece, on bool) {
	g := d.Garment(p)
	if g == nil {
		return
	}
	if !on {
		g.Adjustment = nil
		return
	}
	if g.Adjustment == nil {
		empty := ""
		g.Adjustment = &empty
	}
}

// SetModality changes the modality. The manual sold selection only exists
// under Aluguel+Venda and is dropped for any other modality.
func (d *Draft) SetModality(m Modality) {
	d.Modality = m
	if m != ModalityRentalSale {
		d.SoldItems = nil
	}
}

// SetSoldItems replaces the manual sold selection. Every piece must be
// included in the order.
func (d *Draft) SetSoldItems(pieces []Piece) error {
	included := make(map[Piece]bool)
	for _, p := range d.IncludedPieces() {
		included[p] = true
	}
	for _, p := range pieces {
		if !p.IsValid() {
			return fmt.Errorf("unknown piece %q", p)
		}
		if !included[p] {
			return fmt.Errorf("%s: %w", p, ErrPieceNotIncluded)
		}
	}
	d.SoldItems = normalizePieces(pieces)
	return nil
}

// RecomputeBalance sets balance = round2(total - advance)
func (d *Draft) RecomputeBalance() {
	d.Payment.Balance = money.Balance(d.Payment.Total, d.Payment.Advance)
}

// IncludedPieces lists the garments plus the enabled accessories
func (d *Draft) IncludedPieces() []Piece {
	out := make([]Piece, 0, len(Garments)+len(d.Accessories))
	out = append(out, Garments...)
	for _, p := range AccessoryPieces {
		if d.AccessoryEnabled(p) {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns a deep copy of d
func (d *Draft) Clone() *Draft {
	c := *d
	c.Jacket = d.Jacket.clone()
	c.Shirt = d.Shirt.clone()
	c.Trousers = d.Trousers.clone()
	c.Accessories = make(map[Piece]Accessory, len(d.Accessories))
	for k, v := range d.Accessories {
		c.Accessories[k] = v
	}
	if d.SoldItems != nil {
		c.SoldItems = append([]Piece(nil), d.SoldItems...)
	}
	return &c
}

func (g Garment) clone() Garment {
	if g.Adjustment != nil {
		v := *g.Adjustment
		g.Adjustment = &v
	}
	return g
}

// normalizePieces drops unknown and duplicate pieces and sorts the rest
func normalizePieces(in []Piece) []Piece {
	seen := make(map[Piece]bool, len(in))
	var out []Piece
	for _, p := range in {
		if !p.IsValid() || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].rank() < out[j].rank() })
	return out
}

func withoutPiece(in []Piece, p Piece) []Piece {
	var out []Piece
	for _, q := range in {
		if q != p {
			out = append(out, q)
		}
	}
	return out
}
