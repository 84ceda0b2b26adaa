package types

type numericKind uint8

const (
	numericInvalid numericKind = iota
	numericSigned
	numericUnsigned
	numericFloat
)

type numericInfo struct {
	kind  numericKind
	width Width
}

func classifyNumeric(t Type) (numericInfo, bool) {
	switch t.Kind {
	case KindInt:
		return numericInfo{kind: numericSigned, width: t.Width}, true
	case KindUint:
		return numericInfo{kind: numericUnsigned, width: t.Width}, true
	case KindFloat:
		return numericInfo{kind: numericFloat, width: t.Width}, true
	default:
		return numericInfo{}, false
	}
}

// CommonArithmetic resolves the builtin numeric type that preserves
// the values of both operands. Commutative. Returns false when either
// operand is not an arithmetic builtin (bool never is).
func (in *Interner) CommonArithmetic(a, b TypeID) (TypeID, bool) {
	ta, ok := in.Lookup(a)
	if !ok {
		return NoTypeID, false
	}
	tb, ok := in.Lookup(b)
	if !ok {
		return NoTypeID, false
	}
	tt, ok := promoteNumeric(ta, tb)
	if !ok {
		return NoTypeID, false
	}
	return in.Intern(tt), true
}

// promoteNumeric walks the value-preserving promotion lattice:
//   - float × float        -> wider float
//   - int × int, same sign -> wider int
//   - signed × unsigned    -> signed wide enough for both values;
//     u64 has no signed container, so it falls through to f64
//   - int × float          -> float wide enough for the int
func promoteNumeric(a, b Type) (Type, bool) {
	na, okA := classifyNumeric(a)
	nb, okB := classifyNumeric(b)
	if !okA || !okB {
		return Type{}, false
	}

	switch {
	case na.kind == numericFloat && nb.kind == numericFloat:
		return MakeFloat(maxWidth(na.width, nb.width)), true

	case na.kind == numericFloat:
		return promoteIntFloat(nb, na), true

	case nb.kind == numericFloat:
		return promoteIntFloat(na, nb), true

	case na.kind == nb.kind:
		w := maxWidth(na.width, nb.width)
		if na.kind == numericUnsigned {
			return MakeUint(w), true
		}
		return MakeInt(w), true

	default:
		signed, unsigned := na, nb
		if signed.kind == numericUnsigned {
			signed, unsigned = nb, na
		}
		if unsigned.width < signed.width {
			return MakeInt(signed.width), true
		}
		next, ok := widerSigned(unsigned.width)
		if !ok {
			return MakeFloat(Width64), true
		}
		return MakeInt(next), true
	}
}

// promoteIntFloat picks the float that can hold every value of the
// integer operand: 8/16-bit integers fit f32, wider ones need f64.
func promoteIntFloat(i, f numericInfo) Type {
	if i.width >= Width32 {
		return MakeFloat(Width64)
	}
	return MakeFloat(f.width)
}

func widerSigned(w Width) (Width, bool) {
	switch w {
	case Width8:
		return Width16, true
	case Width16:
		return Width32, true
	case Width32:
		return Width64, true
	default:
		return 0, false
	}
}

func maxWidth(a, b Width) Width {
	if a > b {
		return a
	}
	return b
}
