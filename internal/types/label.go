package types

import (
	"fmt"
	"strings"

	"multrait/internal/source"
)

// Label returns the canonical source spelling for a TypeID, e.g.
// "const complex<f32>&" or "mat<f64, 3, 3>".
func Label(typesIn *Interner, id TypeID) string {
	return labelDepth(typesIn, id, 0)
}

func labelDepth(typesIn *Interner, id TypeID, depth int) string {
	if id == NoTypeID {
		return "?"
	}
	if depth > 6 {
		return "..."
	}
	if typesIn == nil {
		return "?"
	}
	tt, ok := typesIn.Lookup(id)
	if !ok {
		return "?"
	}

	var sb strings.Builder
	if tt.Quals.Has(QualConst) {
		sb.WriteString("const ")
	}
	if tt.Quals.Has(QualVolatile) {
		sb.WriteString("volatile ")
	}
	sb.WriteString(labelBase(typesIn, tt, depth))
	if tt.Quals.Has(QualRef) {
		sb.WriteByte('&')
	}
	return sb.String()
}

func labelBase(typesIn *Interner, tt Type, depth int) string {
	switch tt.Kind {
	case KindBool:
		return "bool"
	case KindInt:
		return fmt.Sprintf("i%d", tt.Width)
	case KindUint:
		return fmt.Sprintf("u%d", tt.Width)
	case KindFloat:
		return fmt.Sprintf("f%d", tt.Width)
	case KindComplex:
		return "complex<" + labelDepth(typesIn, tt.Elem, depth+1) + ">"
	case KindVector:
		elem := labelDepth(typesIn, tt.Elem, depth+1)
		if tt.Rows == DynamicDim {
			return "vec<" + elem + ">"
		}
		return fmt.Sprintf("vec<%s, %d>", elem, tt.Rows)
	case KindMatrix:
		elem := labelDepth(typesIn, tt.Elem, depth+1)
		if tt.Rows == DynamicDim && tt.Cols == DynamicDim {
			return "mat<" + elem + ">"
		}
		return fmt.Sprintf("mat<%s, %d, %d>", elem, tt.Rows, tt.Cols)
	case KindExtern:
		return lookupNameFallback(typesIn.Strings, tt.Name)
	default:
		return "?"
	}
}

func lookupName(stringsIn *source.Interner, id source.StringID) (string, bool) {
	if stringsIn == nil {
		return "", false
	}
	name, ok := stringsIn.Lookup(id)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

func lookupNameFallback(stringsIn *source.Interner, id source.StringID) string {
	if name, ok := lookupName(stringsIn, id); ok {
		return name
	}
	return "?"
}
