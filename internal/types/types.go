package types

import (
	"fmt"

	"multrait/internal/source"
)

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindComplex
	KindVector
	KindMatrix
	KindExtern
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindComplex:
		return "complex"
	case KindVector:
		return "vector"
	case KindMatrix:
		return "matrix"
	case KindExtern:
		return "extern"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats.
type Width uint8

const (
	Width8  Width = 8
	Width16 Width = 16
	Width32 Width = 32
	Width64 Width = 64
)

// Quals is a bit set of top-level type qualifiers. Qualifiers never
// change which multiplication rule applies; Canonical strips them
// before matching.
type Quals uint8

const (
	QualNone  Quals = 0
	QualConst Quals = 1 << iota
	QualVolatile
	QualRef
)

// Has reports whether every bit of q is set.
func (q Quals) Has(want Quals) bool {
	return q&want == want
}

// DynamicDim marks vector/matrix dimensions with no declared size.
const DynamicDim = uint32(0)

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind  Kind
	Width Width           // for numeric primitives
	Quals Quals           // top-level qualifiers only
	Elem  TypeID          // for complex/vector/matrix
	Rows  uint32          // vector length or matrix rows (DynamicDim = unknown)
	Cols  uint32          // matrix columns (DynamicDim = unknown)
	Name  source.StringID // for extern types
}

// IsNumeric reports whether the descriptor is an arithmetic builtin.
// bool is not arithmetic.
func (t Type) IsNumeric() bool {
	switch t.Kind {
	case KindInt, KindUint, KindFloat:
		return true
	default:
		return false
	}
}

// IsScalar reports whether the descriptor multiplies element-wise with
// vectors and matrices.
func (t Type) IsScalar() bool {
	return t.IsNumeric() || t.Kind == KindComplex
}

// Descriptor helpers ---------------------------------------------------------

// MakeInt describes a signed integer of the given width.
func MakeInt(width Width) Type {
	return Type{Kind: KindInt, Width: width}
}

// MakeUint describes an unsigned integer type.
func MakeUint(width Width) Type {
	return Type{Kind: KindUint, Width: width}
}

// MakeFloat describes a floating-point type.
func MakeFloat(width Width) Type {
	return Type{Kind: KindFloat, Width: width}
}

// MakeComplex describes complex<elem>.
func MakeComplex(elem TypeID) Type {
	return Type{Kind: KindComplex, Elem: elem}
}

// MakeVector describes vec<elem, length>. Use DynamicDim for vec<T>
// with no declared length.
func MakeVector(elem TypeID, length uint32) Type {
	return Type{Kind: KindVector, Elem: elem, Rows: length}
}

// MakeMatrix describes mat<elem, rows, cols>. Use DynamicDim for
// dimensions left open.
func MakeMatrix(elem TypeID, rows, cols uint32) Type {
	return Type{Kind: KindMatrix, Elem: elem, Rows: rows, Cols: cols}
}

// MakeExtern describes a named type declared outside the builtin set.
func MakeExtern(name source.StringID) Type {
	return Type{Kind: KindExtern, Name: name}
}
