package intake

// IsFieldRequired reports whether key must hold a value for d to be
// submittable. Most fields have a static answer; the exceptions are
//   - gated fields, required exactly when their flag is on
//   - the sold items selection, required only under Aluguel+Venda
func IsFieldRequired(key FieldKey, d *Draft) bool {
	if !key.IsValid() {
		return false
	}
	if key == FieldSoldItems {
		return d.Modality == ModalityRentalSale
	}
	if gate, gated := key.Gate(); gated {
		return flagOn(d, gate)
	}
	return fields[key].required
}

// RequiredFields lists the keys of step that are required for d
func RequiredFields(step Step, d *Draft) []FieldKey {
	var out []FieldKey
	for _, k := range step.Fields() {
		if IsFieldRequired(k, d) {
			out = append(out, k)
		}
	}
	return out
}

// Dependents lists the fields gated by flag
func Dependents(flag FieldKey) []FieldKey {
	var out []FieldKey
	for k := FieldKey(0); k < fieldCount; k++ {
		if fields[k].gate == flag {
			out = append(out, k)
		}
	}
	return out
}

// SoldPieces returns the pieces flagged as sold under d's modality. Sale sells
// everything included in the order, rental nothing, and the mixed modality
// the manual selection restricted to the pieces still included.
func SoldPieces(d *Draft) []Piece {
	switch d.Modality {
	case ModalitySale:
		return d.IncludedPieces()
	case ModalityRentalSale:
		included := make(map[Piece]bool)
		for _, p := range d.IncludedPieces() {
			included[p] = true
		}
		var out []Piece
		for _, p := range normalizePieces(d.SoldItems) {
			if included[p] {
				out = append(out, p)
			}
		}
		return out
	default:
		return nil
	}
}
