package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"multrait/internal/source"
)

// Builtins stores TypeIDs for the builtin scalar types.
type Builtins struct {
	Invalid TypeID
	Bool    TypeID
	I8      TypeID
	I16     TypeID
	I32     TypeID
	I64     TypeID
	U8      TypeID
	U16     TypeID
	U32     TypeID
	U64     TypeID
	F32     TypeID
	F64     TypeID
}

// ExternSig is one declared multiplication signature of an extern type:
// multiplying by Rhs yields Result. Commutative signatures also match
// with the extern on the right-hand side.
type ExternSig struct {
	Rhs         TypeID
	Result      TypeID
	Commutative bool
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Type is comparable, so descriptors key the index map directly.
type Interner struct {
	types    []Type
	index    map[Type]TypeID
	builtins Builtins
	externs  map[TypeID][]ExternSig
	Strings  *source.Interner
}

// NewInterner constructs an interner seeded with the builtin scalars.
func NewInterner() *Interner {
	in := &Interner{
		index:   make(map[Type]TypeID, 64),
		externs: make(map[TypeID][]ExternSig),
		Strings: source.NewInterner(),
	}
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.I8 = in.Intern(MakeInt(Width8))
	in.builtins.I16 = in.Intern(MakeInt(Width16))
	in.builtins.I32 = in.Intern(MakeInt(Width32))
	in.builtins.I64 = in.Intern(MakeInt(Width64))
	in.builtins.U8 = in.Intern(MakeUint(Width8))
	in.builtins.U16 = in.Intern(MakeUint(Width16))
	in.builtins.U32 = in.Intern(MakeUint(Width32))
	in.builtins.U64 = in.Intern(MakeUint(Width64))
	in.builtins.F32 = in.Intern(MakeFloat(Width32))
	in.builtins.F64 = in.Intern(MakeFloat(Width64))
	return in
}

// Builtins returns TypeIDs for the builtin scalar types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	if id, ok := in.index[t]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	in.index[t] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Canonical strips the top-level qualifiers so rule matching sees the
// underlying type. Elements of complex/vec/mat are stored unqualified
// by construction, so one level is enough. Idempotent and total:
// invalid input maps to NoTypeID.
func (in *Interner) Canonical(id TypeID) TypeID {
	tt, ok := in.Lookup(id)
	if !ok {
		return NoTypeID
	}
	if tt.Quals == QualNone {
		return id
	}
	tt.Quals = QualNone
	return in.Intern(tt)
}

// Qualify re-interns the descriptor behind id with the extra qualifier
// bits set.
func (in *Interner) Qualify(id TypeID, q Quals) TypeID {
	tt, ok := in.Lookup(id)
	if !ok {
		return NoTypeID
	}
	if q == QualNone || tt.Quals.Has(q) {
		return id
	}
	tt.Quals |= q
	return in.Intern(tt)
}

// AddExternSig attaches a declared multiplication signature to an
// extern type. Signatures keep declaration order; the first matching
// one wins during deduction.
func (in *Interner) AddExternSig(id TypeID, sig ExternSig) {
	if tt, ok := in.Lookup(id); !ok || tt.Kind != KindExtern {
		return
	}
	in.externs[id] = append(in.externs[id], sig)
}

// ExternSigs returns the declared multiplication signatures of an
// extern type in declaration order.
func (in *Interner) ExternSigs(id TypeID) []ExternSig {
	return in.externs[id]
}

// Externs returns the extern types that carry at least one
// multiplication signature, in ascending TypeID order.
func (in *Interner) Externs() []TypeID {
	ids := make([]TypeID, 0, len(in.externs))
	for id := range in.externs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// InternExtern interns an extern type by name, normalizing through the
// string interner.
func (in *Interner) InternExtern(name string) TypeID {
	return in.Intern(MakeExtern(in.Strings.Intern(name)))
}
