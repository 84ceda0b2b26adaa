package rules

import "multrait/internal/types"

// Default assembles the unfrozen core table: the complex family rules
// plus the universal fallback. Callers extend it (manifest literals,
// algebra families) and Freeze before matching.
func Default(in *types.Interner) *Registry {
	reg := NewRegistry()
	for _, rule := range complexFamily(in) {
		mustRegister(reg, rule)
	}
	mustRegister(reg, Fallback())
	return reg
}

func mustRegister(reg *Registry, rule Rule) {
	if err := reg.Register(rule); err != nil {
		panic(err)
	}
}

// complexFamily covers the three complex multiplication shapes. The
// patterns are disjoint: a pair matches at most one of them.
func complexFamily(in *types.Interner) []Rule {
	isComplex := func(id types.TypeID) bool {
		tt, ok := in.Lookup(id)
		return ok && tt.Kind == types.KindComplex
	}
	isNumeric := func(id types.TypeID) bool {
		tt, ok := in.Lookup(id)
		return ok && tt.IsNumeric()
	}
	apply := func(left, right types.TypeID) (types.TypeID, bool) {
		return PromoteScalar(in, left, right)
	}

	return []Rule{
		Family("complex<F> * numeric",
			func(l, r types.TypeID) bool { return isComplex(l) && isNumeric(r) },
			apply),
		Family("numeric * complex<F>",
			func(l, r types.TypeID) bool { return isNumeric(l) && isComplex(r) },
			apply),
		Family("complex<A> * complex<B>",
			func(l, r types.TypeID) bool { return isComplex(l) && isComplex(r) },
			apply),
	}
}

// PromoteScalar derives the product type of two scalar operands:
// numeric × numeric walks the promotion lattice, any complex operand
// lifts the result into complex over the common element type.
func PromoteScalar(in *types.Interner, a, b types.TypeID) (types.TypeID, bool) {
	ta, okA := in.Lookup(a)
	tb, okB := in.Lookup(b)
	if !okA || !okB {
		return types.NoTypeID, false
	}

	if ta.Kind != types.KindComplex && tb.Kind != types.KindComplex {
		return in.CommonArithmetic(a, b)
	}

	ea, eb := a, b
	if ta.Kind == types.KindComplex {
		ea = ta.Elem
	}
	if tb.Kind == types.KindComplex {
		eb = tb.Elem
	}
	elem, ok := in.CommonArithmetic(ea, eb)
	if !ok {
		return types.NoTypeID, false
	}
	return in.Intern(types.MakeComplex(elem)), true
}
