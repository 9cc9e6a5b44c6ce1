package intake

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kendall-kelly/formalwear-orders-api/dto"
	"github.com/kendall-kelly/formalwear-orders-api/money"
)

// Step is one screen of the intake wizard
type Step int

const (
	StepClient Step = iota
	StepJacket
	StepShirt
	StepTrousers
	StepAccessories
	StepPayment
)

// StepCount is the number of wizard steps
const StepCount = int(StepPayment) + 1

var stepNames = [StepCount]string{"Client", "Jacket", "Shirt", "Trousers", "Accessories", "Payment"}

func (s Step) String() string {
	if !s.IsValid() {
		return fmt.Sprintf("Step(%d)", int(s))
	}
	return stepNames[s]
}

// IsValid reports whether s is within 0..StepCount-1
func (s Step) IsValid() bool {
	return s >= 0 && int(s) < StepCount
}

// Fields lists the field keys shown on step s, in display order
func (s Step) Fields() []FieldKey {
	var out []FieldKey
	for k := FieldKey(0); k < fieldCount; k++ {
		if fields[k].step == s {
			out = append(out, k)
		}
	}
	return out
}

// FieldKey identifies one input of the draft. The set is closed: every key
// has an entry in the field table below.
type FieldKey int

const (
	FieldClientName FieldKey = iota
	FieldClientPhone
	FieldClientTaxID
	FieldClientPostalCode
	FieldClientStreet
	FieldClientNumber
	FieldClientComplement
	FieldClientNeighborhood
	FieldClientCity
	FieldClientState

	FieldJacketNumber
	FieldJacketColor
	FieldJacketSleeve
	FieldJacketBrand
	FieldJacketAdjustmentEnabled
	FieldJacketAdjustment
	FieldJacketNotes

	FieldShirtNumber
	FieldShirtColor
	FieldShirtSleeve
	FieldShirtBrand
	FieldShirtAdjustmentEnabled
	FieldShirtAdjustment
	FieldShirtNotes

	FieldTrousersNumber
	FieldTrousersColor
	FieldTrousersLength
	FieldTrousersBrand
	FieldTrousersAdjustmentEnabled
	FieldTrousersAdjustment
	FieldTrousersNotes

	FieldSuspendersEnabled
	FieldSuspendersColor
	FieldSuspendersBrand
	FieldBeltLoopEnabled
	FieldBeltLoopColor
	FieldScarfEnabled
	FieldScarfColor
	FieldScarfBrand
	FieldTieEnabled
	FieldTieColor
	FieldTieBrand
	FieldBeltEnabled
	FieldBeltNumber
	FieldBeltColor
	FieldBeltBrand
	FieldShoeEnabled
	FieldShoeNumber
	FieldShoeColor
	FieldShoeBrand
	FieldVestEnabled
	FieldVestNumber
	FieldVestColor
	FieldVestBrand

	FieldTotal
	FieldAdvance
	FieldBalance
	FieldModality
	FieldSoldItems
	FieldOrderDate
	FieldEventDate
	FieldPickupDate
	FieldReturnDate

	fieldCount
)

// noGate marks a field that is active regardless of any flag
const noGate FieldKey = -1

// Kind is the value type of a field, which decides how blankness is judged
type Kind int

const (
	KindText Kind = iota
	KindFlag
	KindCurrency
	KindDate
	KindChoice
	KindPieces
)

var (
	ErrUnknownField  = errors.New("unknown field")
	ErrFieldDisabled = errors.New("field is disabled")
	ErrReadOnly      = errors.New("field is derived and cannot be set")
)

type fieldSpec struct {
	name     string
	label    string
	step     Step
	kind     Kind
	required bool
	gate     FieldKey
	get      func(d *Draft) string
	set      func(d *Draft, v string) error
}

var fields = [fieldCount]fieldSpec{
	FieldClientName:         clientField("client.name", "Client name", true, func(d *Draft) *string { return &d.Client.Name }),
	FieldClientPhone:        clientField("client.phone", "Phone", true, func(d *Draft) *string { return &d.Client.Phone }),
	FieldClientTaxID:        clientField("client.tax_id", "Tax id", true, func(d *Draft) *string { return &d.Client.TaxID }),
	FieldClientPostalCode:   clientField("client.postal_code", "Postal code", true, func(d *Draft) *string { return &d.Client.Address.PostalCode }),
	FieldClientStreet:       clientField("client.street", "Street", true, func(d *Draft) *string { return &d.Client.Address.Street }),
	FieldClientNumber:       clientField("client.number", "Number", true, func(d *Draft) *string { return &d.Client.Address.Number }),
	FieldClientComplement:   clientField("client.complement", "Complement", false, func(d *Draft) *string { return &d.Client.Address.Complement }),
	FieldClientNeighborhood: clientField("client.neighborhood", "Neighborhood", true, func(d *Draft) *string { return &d.Client.Address.Neighborhood }),
	FieldClientCity:         clientField("client.city", "City", true, func(d *Draft) *string { return &d.Client.Address.City }),
	FieldClientState:        clientField("client.state", "State", false, func(d *Draft) *string { return &d.Client.Address.State }),

	FieldJacketNumber:            garmentField(PieceJacket, attrNumber, "number", "Jacket number", true),
	FieldJacketColor:             garmentField(PieceJacket, attrColor, "color", "Jacket color", true),
	FieldJacketSleeve:            garmentField(PieceJacket, attrLength, "sleeve", "Jacket sleeve", true),
	FieldJacketBrand:             garmentField(PieceJacket, attrBrand, "brand", "Jacket brand", true),
	FieldJacketAdjustmentEnabled: adjustmentFlag(PieceJacket, "Jacket adjustment"),
	FieldJacketAdjustment:        adjustmentField(PieceJacket, FieldJacketAdjustmentEnabled, "Jacket adjustment"),
	FieldJacketNotes:             garmentField(PieceJacket, attrNotes, "notes", "Jacket notes", false),

	FieldShirtNumber:            garmentField(PieceShirt, attrNumber, "number", "Shirt number", true),
	FieldShirtColor:             garmentField(PieceShirt, attrColor, "color", "Shirt color", true),
	FieldShirtSleeve:            garmentField(PieceShirt, attrLength, "sleeve", "Shirt sleeve", true),
	FieldShirtBrand:             garmentField(PieceShirt, attrBrand, "brand", "Shirt brand", true),
	FieldShirtAdjustmentEnabled: adjustmentFlag(PieceShirt, "Shirt adjustment"),
	FieldShirtAdjustment:        adjustmentField(PieceShirt, FieldShirtAdjustmentEnabled, "Shirt adjustment"),
	FieldShirtNotes:             garmentField(PieceShirt, attrNotes, "notes", "Shirt notes", false),

	FieldTrousersNumber:            garmentField(PieceTrousers, attrNumber, "number", "Trousers number", true),
	FieldTrousersColor:             garmentField(PieceTrousers, attrColor, "color", "Trousers color", true),
	FieldTrousersLength:            garmentField(PieceTrousers, attrLength, "length", "Trousers length", true),
	FieldTrousersBrand:             garmentField(PieceTrousers, attrBrand, "brand", "Trousers brand", true),
	FieldTrousersAdjustmentEnabled: adjustmentFlag(PieceTrousers, "Trousers adjustment"),
	FieldTrousersAdjustment:        adjustmentField(PieceTrousers, FieldTrousersAdjustmentEnabled, "Trousers adjustment"),
	FieldTrousersNotes:             garmentField(PieceTrousers, attrNotes, "notes", "Trousers notes", false),

	FieldSuspendersEnabled: accessoryFlag(PieceSuspenders, "Suspenders"),
	FieldSuspendersColor:   accessoryField(PieceSuspenders, attrColor, FieldSuspendersEnabled, "Suspenders color"),
	FieldSuspendersBrand:   accessoryField(PieceSuspenders, attrBrand, FieldSuspendersEnabled, "Suspenders brand"),
	FieldBeltLoopEnabled:   accessoryFlag(PieceBeltLoop, "Belt loop"),
	FieldBeltLoopColor:     accessoryField(PieceBeltLoop, attrColor, FieldBeltLoopEnabled, "Belt loop color"),
	FieldScarfEnabled:      accessoryFlag(PieceScarf, "Scarf"),
	FieldScarfColor:        accessoryField(PieceScarf, attrColor, FieldScarfEnabled, "Scarf color"),
	FieldScarfBrand:        accessoryField(PieceScarf, attrBrand, FieldScarfEnabled, "Scarf brand"),
	FieldTieEnabled:        accessoryFlag(PieceTie, "Tie"),
	FieldTieColor:          accessoryField(PieceTie, attrColor, FieldTieEnabled, "Tie color"),
	FieldTieBrand:          accessoryField(PieceTie, attrBrand, FieldTieEnabled, "Tie brand"),
	FieldBeltEnabled:       accessoryFlag(PieceBelt, "Belt"),
	FieldBeltNumber:        accessoryField(PieceBelt, attrNumber, FieldBeltEnabled, "Belt number"),
	FieldBeltColor:         accessoryField(PieceBelt, attrColor, FieldBeltEnabled, "Belt color"),
	FieldBeltBrand:         accessoryField(PieceBelt, attrBrand, FieldBeltEnabled, "Belt brand"),
	FieldShoeEnabled:       accessoryFlag(PieceShoe, "Shoe"),
	FieldShoeNumber:        accessoryField(PieceShoe, attrNumber, FieldShoeEnabled, "Shoe number"),
	FieldShoeColor:         accessoryField(PieceShoe, attrColor, FieldShoeEnabled, "Shoe color"),
	FieldShoeBrand:         accessoryField(PieceShoe, attrBrand, FieldShoeEnabled, "Shoe brand"),
	FieldVestEnabled:       accessoryFlag(PieceVest, "Vest"),
	FieldVestNumber:        accessoryField(PieceVest, attrNumber, FieldVestEnabled, "Vest number"),
	FieldVestColor:         accessoryField(PieceVest, attrColor, FieldVestEnabled, "Vest color"),
	FieldVestBrand:         accessoryField(PieceVest, attrBrand, FieldVestEnabled, "Vest brand"),

	FieldTotal: {
		name: "payment.total", label: "Total", step: StepPayment, kind: KindCurrency, required: true, gate: noGate,
		get: func(d *Draft) string { return money.Format(d.Payment.Total) },
		set: func(d *Draft, v string) error { return setAmount(&d.Payment.Total, v) },
	},
	FieldAdvance: {
		name: "payment.advance", label: "Advance", step: StepPayment, kind: KindCurrency, gate: noGate,
		get: func(d *Draft) string { return money.Format(d.Payment.Advance) },
		set: func(d *Draft, v string) error { return setAmount(&d.Payment.Advance, v) },
	},
	FieldBalance: {
		name: "payment.balance", label: "Balance", step: StepPayment, kind: KindCurrency, gate: noGate,
		get: func(d *Draft) string { return money.Format(d.Payment.Balance) },
		set: func(d *Draft, v string) error { return ErrReadOnly },
	},
	FieldModality: {
		name: "payment.modality", label: "Modality", step: StepPayment, kind: KindChoice, required: true, gate: noGate,
		get: func(d *Draft) string { return string(d.Modality) },
		set: func(d *Draft, v string) error {
			m := Modality(strings.TrimSpace(v))
			if m != "" && !m.IsValid() {
				return fmt.Errorf("unknown modality %q", v)
			}
			d.SetModality(m)
			return nil
		},
	},
	FieldSoldItems: {
		name: "payment.sold_items", label: "Sold items", step: StepPayment, kind: KindPieces, gate: noGate,
		get: func(d *Draft) string { return joinPieces(d.SoldItems) },
		set: func(d *Draft, v string) error {
			pieces, err := ParsePieces(v)
			if err != nil {
				return err
			}
			return d.SetSoldItems(pieces)
		},
	},
	FieldOrderDate:  dateField("dates.order", "Order date", func(d *Draft) *time.Time { return &d.OrderDate }),
	FieldEventDate:  dateField("dates.event", "Event date", func(d *Draft) *time.Time { return &d.EventDate }),
	FieldPickupDate: dateField("dates.pickup", "Pickup date", func(d *Draft) *time.Time { return &d.PickupDate }),
	FieldReturnDate: dateField("dates.return", "Return date", func(d *Draft) *time.Time { return &d.ReturnDate }),
}

var fieldsByName = func() map[string]FieldKey {
	m := make(map[string]FieldKey, fieldCount)
	for k := FieldKey(0); k < fieldCount; k++ {
		m[fields[k].name] = k
	}
	return m
}()

// AllFields lists every field key in display order
func AllFields() []FieldKey {
	out := make([]FieldKey, 0, fieldCount)
	for k := FieldKey(0); k < fieldCount; k++ {
		out = append(out, k)
	}
	return out
}

// ParseFieldKey resolves a dotted field name such as "jacket.color"
func ParseFieldKey(name string) (FieldKey, error) {
	k, ok := fieldsByName[strings.TrimSpace(name)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return k, nil
}

// IsValid reports whether k belongs to the field table
func (k FieldKey) IsValid() bool {
	return k >= 0 && k < fieldCount
}

func (k FieldKey) String() string {
	if !k.IsValid() {
		return fmt.Sprintf("FieldKey(%d)", int(k))
	}
	return fields[k].name
}

// Label is the human name used in validation messages
func (k FieldKey) Label() string {
	if !k.IsValid() {
		return k.String()
	}
	return fields[k].label
}

// Step returns the wizard step that shows k, -1 for an unknown key
func (k FieldKey) Step() Step {
	if !k.IsValid() {
		return -1
	}
	return fields[k].step
}

// Kind returns the value type of k, KindText for an unknown key
func (k FieldKey) Kind() Kind {
	if !k.IsValid() {
		return KindText
	}
	return fields[k].kind
}

// Gate returns the flag that enables k, and false when k is always active
// or unknown
func (k FieldKey) Gate() (FieldKey, bool) {
	if !k.IsValid() {
		return noGate, false
	}
	g := fields[k].gate
	return g, g != noGate
}

// Get renders the current value of k in d
func Get(d *Draft, k FieldKey) string {
	if !k.IsValid() {
		return ""
	}
	return fields[k].get(d)
}

// Set stores a raw value for k in d. Fields whose gate flag is off reject
// writes with ErrFieldDisabled, so a disabled section never holds values.
func Set(d *Draft, k FieldKey, v string) error {
	if !k.IsValid() {
		return fmt.Errorf("%w: %d", ErrUnknownField, int(k))
	}
	if g, gated := k.Gate(); gated && !flagOn(d, g) {
		return fmt.Errorf("%s: %w", k, ErrFieldDisabled)
	}
	if err := fields[k].set(d, v); err != nil {
		return fmt.Errorf("%s: %w", k, err)
	}
	return nil
}

func flagOn(d *Draft, k FieldKey) bool {
	return fields[k].get(d) == "true"
}

type attr int

const (
	attrNumber attr = iota
	attrColor
	attrLength
	attrBrand
	attrNotes
)

// accessoryAttrs lists which attributes apply to each accessory kind
var accessoryAttrs = map[Piece][]attr{
	PieceSuspenders: {attrColor, attrBrand},
	PieceBeltLoop:   {attrColor},
	PieceScarf:      {attrColor, attrBrand},
	PieceTie:        {attrColor, attrBrand},
	PieceBelt:       {attrNumber, attrColor, attrBrand},
	PieceShoe:       {attrNumber, attrColor, attrBrand},
	PieceVest:       {attrNumber, attrColor, attrBrand},
}

func accessoryHas(p Piece, a attr) bool {
	for _, x := range accessoryAttrs[p] {
		if x == a {
			return true
		}
	}
	return false
}

func garmentAttr(g *Garment, a attr) *string {
	switch a {
	case attrNumber:
		return &g.Number
	case attrColor:
		return &g.Color
	case attrLength:
		return &g.Length
	case attrBrand:
		return &g.Brand
	default:
		return &g.Notes
	}
}

func accessoryAttr(acc *Accessory, a attr) *string {
	switch a {
	case attrNumber:
		return &acc.Number
	case attrColor:
		return &acc.Color
	default:
		return &acc.Brand
	}
}

func clientField(name, label string, required bool, ref func(*Draft) *string) fieldSpec {
	return fieldSpec{
		name: name, label: label, step: StepClient, kind: KindText, required: required, gate: noGate,
		get: func(d *Draft) string { return *ref(d) },
		set: func(d *Draft, v string) error {
			*ref(d) = strings.TrimSpace(v)
			return nil
		},
	}
}

func garmentStep(p Piece) Step {
	switch p {
	case PieceJacket:
		return StepJacket
	case PieceShirt:
		return StepShirt
	default:
		return StepTrousers
	}
}

func garmentField(p Piece, a attr, suffix, label string, required bool) fieldSpec {
	return fieldSpec{
		name: string(p) + "." + suffix, label: label, step: garmentStep(p), kind: KindText, required: required, gate: noGate,
		get: func(d *Draft) string { return *garmentAttr(d.Garment(p), a) },
		set: func(d *Draft, v string) error {
			*garmentAttr(d.Garment(p), a) = strings.TrimSpace(v)
			return nil
		},
	}
}

func adjustmentFlag(p Piece, label string) fieldSpec {
	return fieldSpec{
		name: string(p) + ".adjustment_enabled", label: label, step: garmentStep(p), kind: KindFlag, gate: noGate,
		get: func(d *Draft) string { return strconv.FormatBool(d.AdjustmentEnabled(p)) },
		set: func(d *Draft, v string) error {
			on, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid flag %q", v)
			}
			d.SetAdjustmentEnabled(p, on)
			return nil
		},
	}
}

func adjustmentField(p Piece, gate FieldKey, label string) fieldSpec {
	return fieldSpec{
		name: string(p) + ".adjustment", label: label, step: garmentStep(p), kind: KindText, gate: gate,
		get: func(d *Draft) string {
			if g := d.Garment(p); g.Adjustment != nil {
				return *g.Adjustment
			}
			return ""
		},
		set: func(d *Draft, v string) error {
			value := strings.TrimSpace(v)
			d.Garment(p).Adjustment = &value
			return nil
		},
	}
}

func accessoryFlag(p Piece, label string) fieldSpec {
	return fieldSpec{
		name: string(p) + ".enabled", label: label, step: StepAccessories, kind: KindFlag, gate: noGate,
		get: func(d *Draft) string { return strconv.FormatBool(d.AccessoryEnabled(p)) },
		set: func(d *Draft, v string) error {
			on, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid flag %q", v)
			}
			d.SetAccessoryEnabled(p, on)
			return nil
		},
	}
}

func accessoryField(p Piece, a attr, gate FieldKey, label string) fieldSpec {
	suffix := map[attr]string{attrNumber: "number", attrColor: "color", attrBrand: "brand"}[a]
	return fieldSpec{
		name: string(p) + "." + suffix, label: label, step: StepAccessories, kind: KindText, gate: gate,
		get: func(d *Draft) string {
			acc := d.Accessories[p]
			return *accessoryAttr(&acc, a)
		},
		set: func(d *Draft, v string) error {
			acc := d.Accessories[p]
			*accessoryAttr(&acc, a) = strings.TrimSpace(v)
			d.Accessories[p] = acc
			return nil
		},
	}
}

func dateField(name, label string, ref func(*Draft) *time.Time) fieldSpec {
	return fieldSpec{
		name: name, label: label, step: StepPayment, kind: KindDate, required: true, gate: noGate,
		get: func(d *Draft) string {
			if t := *ref(d); !t.IsZero() {
				return t.Format(dto.DateLayout)
			}
			return ""
		},
		set: func(d *Draft, v string) error {
			v = strings.TrimSpace(v)
			if v == "" {
				*ref(d) = time.Time{}
				return nil
			}
			t, err := time.Parse(dto.DateLayout, v)
			if err != nil {
				return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", v)
			}
			*ref(d) = t
			return nil
		},
	}
}

// ParsePieces reads a comma separated list of piece names. The result is
// deduplicated and sorted in display order.
func ParsePieces(raw string) ([]Piece, error) {
	var out []Piece
	for _, part := range strings.Split(raw, ",") {
		p := Piece(strings.TrimSpace(part))
		if p == "" {
			continue
		}
		if !p.IsValid() {
			return nil, fmt.Errorf("unknown piece %q", p)
		}
		out = append(out, p)
	}
	return normalizePieces(out), nil
}

func joinPieces(pieces []Piece) string {
	names := make([]string, len(pieces))
	for i, p := range pieces {
		names[i] = string(p)
	}
	return strings.Join(names, ",")
}
