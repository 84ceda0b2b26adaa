package rules

import "multrait/internal/types"

// Standard assembles the full unfrozen table: the Default core plus the
// vector/matrix algebra families.
func Standard(in *types.Interner) *Registry {
	reg := Default(in)
	for _, rule := range algebraFamily(in) {
		mustRegister(reg, rule)
	}
	return reg
}

// algebraFamily covers scalar/vector/matrix multiplication shapes.
// Dimension guards live in the patterns: a static size mismatch means
// the rule does not match at all, it never derives and fails.
func algebraFamily(in *types.Interner) []Rule {
	lookup := func(id types.TypeID) (types.Type, bool) {
		return in.Lookup(id)
	}
	isScalar := func(id types.TypeID) bool {
		tt, ok := lookup(id)
		return ok && tt.IsScalar()
	}
	isVec := func(id types.TypeID) bool {
		tt, ok := lookup(id)
		return ok && tt.Kind == types.KindVector
	}
	isMat := func(id types.TypeID) bool {
		tt, ok := lookup(id)
		return ok && tt.Kind == types.KindMatrix
	}

	return []Rule{
		Family("scalar * vec<T>",
			func(l, r types.TypeID) bool { return isScalar(l) && isVec(r) },
			func(l, r types.TypeID) (types.TypeID, bool) {
				v := in.MustLookup(r)
				elem, ok := PromoteScalar(in, l, v.Elem)
				if !ok {
					return types.NoTypeID, false
				}
				return in.Intern(types.MakeVector(elem, v.Rows)), true
			}),
		Family("vec<T> * scalar",
			func(l, r types.TypeID) bool { return isVec(l) && isScalar(r) },
			func(l, r types.TypeID) (types.TypeID, bool) {
				v := in.MustLookup(l)
				elem, ok := PromoteScalar(in, v.Elem, r)
				if !ok {
					return types.NoTypeID, false
				}
				return in.Intern(types.MakeVector(elem, v.Rows)), true
			}),
		Family("vec<A> * vec<B>",
			func(l, r types.TypeID) bool {
				if !isVec(l) || !isVec(r) {
					return false
				}
				a, b := in.MustLookup(l), in.MustLookup(r)
				_, ok := joinDim(a.Rows, b.Rows)
				return ok
			},
			func(l, r types.TypeID) (types.TypeID, bool) {
				a, b := in.MustLookup(l), in.MustLookup(r)
				length, ok := joinDim(a.Rows, b.Rows)
				if !ok {
					return types.NoTypeID, false
				}
				elem, ok := PromoteScalar(in, a.Elem, b.Elem)
				if !ok {
					return types.NoTypeID, false
				}
				return in.Intern(types.MakeVector(elem, length)), true
			}),
		Family("scalar * mat<T>",
			func(l, r types.TypeID) bool { return isScalar(l) && isMat(r) },
			func(l, r types.TypeID) (types.TypeID, bool) {
				m := in.MustLookup(r)
				elem, ok := PromoteScalar(in, l, m.Elem)
				if !ok {
					return types.NoTypeID, false
				}
				return in.Intern(types.MakeMatrix(elem, m.Rows, m.Cols)), true
			}),
		Family("mat<T> * scalar",
			func(l, r types.TypeID) bool { return isMat(l) && isScalar(r) },
			func(l, r types.TypeID) (types.TypeID, bool) {
				m := in.MustLookup(l)
				elem, ok := PromoteScalar(in, m.Elem, r)
				if !ok {
					return types.NoTypeID, false
				}
				return in.Intern(types.MakeMatrix(elem, m.Rows, m.Cols)), true
			}),
		Family("mat<A> * vec<B>",
			func(l, r types.TypeID) bool {
				if !isMat(l) || !isVec(r) {
					return false
				}
				m, v := in.MustLookup(l), in.MustLookup(r)
				_, ok := joinDim(m.Cols, v.Rows)
				return ok
			},
			func(l, r types.TypeID) (types.TypeID, bool) {
				m, v := in.MustLookup(l), in.MustLookup(r)
				elem, ok := PromoteScalar(in, m.Elem, v.Elem)
				if !ok {
					return types.NoTypeID, false
				}
				return in.Intern(types.MakeVector(elem, m.Rows)), true
			}),
		Family("vec<A> * mat<B>",
			func(l, r types.TypeID) bool {
				if !isVec(l) || !isMat(r) {
					return false
				}
				v, m := in.MustLookup(l), in.MustLookup(r)
				_, ok := joinDim(v.Rows, m.Rows)
				return ok
			},
			func(l, r types.TypeID) (types.TypeID, bool) {
				v, m := in.MustLookup(l), in.MustLookup(r)
				elem, ok := PromoteScalar(in, v.Elem, m.Elem)
				if !ok {
					return types.NoTypeID, false
				}
				return in.Intern(types.MakeVector(elem, m.Cols)), true
			}),
		Family("mat<A> * mat<B>",
			func(l, r types.TypeID) bool {
				if !isMat(l) || !isMat(r) {
					return false
				}
				a, b := in.MustLookup(l), in.MustLookup(r)
				_, ok := joinDim(a.Cols, b.Rows)
				return ok
			},
			func(l, r types.TypeID) (types.TypeID, bool) {
				a, b := in.MustLookup(l), in.MustLookup(r)
				elem, ok := PromoteScalar(in, a.Elem, b.Elem)
				if !ok {
					return types.NoTypeID, false
				}
				return in.Intern(types.MakeMatrix(elem, a.Rows, b.Cols)), true
			}),
	}
}

// joinDim merges two dimension declarations: a static size beats
// dynamic, two static sizes must agree.
func joinDim(a, b uint32) (uint32, bool) {
	switch {
	case a == types.DynamicDim:
		return b, true
	case b == types.DynamicDim:
		return a, true
	case a == b:
		return a, true
	default:
		return 0, false
	}
}
