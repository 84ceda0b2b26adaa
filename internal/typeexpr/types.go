package typeexpr

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"multrait/internal/diag"
	"multrait/internal/source"
	"multrait/internal/token"
	"multrait/internal/types"
)

// parseType распознаёт полное тип-выражение:
//
//	квалификаторы (const, volatile)
//	база: builtin / complex<F> / vec<T[,N]> / mat<T[,R,C]> / extern
//	ссылка '&' (постфикс)
//
// Внутри '<...>' квалификаторы и ссылки запрещены: inArgs их репортит.
func (p *Parser) parseType(inArgs bool) (types.TypeID, source.Span, bool) {
	startSpan := p.lx.Peek().Span

	var quals types.Quals
	for p.at_or(token.KwConst, token.KwVolatile) {
		tok := p.advance()
		if inArgs {
			p.report(diag.ParseQualInArgs, diag.SevError, tok.Span,
				"qualifier not allowed inside type arguments")
			return types.NoTypeID, tok.Span, false
		}
		if tok.Kind == token.KwConst {
			quals |= types.QualConst
		} else {
			quals |= types.QualVolatile
		}
	}

	base, ok := p.parseBase()
	if !ok {
		return types.NoTypeID, startSpan.Cover(p.lastSpan), false
	}

	if p.at(token.Amp) {
		tok := p.advance()
		if inArgs {
			p.report(diag.ParseQualInArgs, diag.SevError, tok.Span,
				"reference not allowed inside type arguments")
			return types.NoTypeID, tok.Span, false
		}
		quals |= types.QualRef
	}

	return p.types.Qualify(base, quals), startSpan.Cover(p.lastSpan), true
}

// parseBase — `ident args?`. Имена нормализуются в NFC до интернирования,
// так что визуально совпадающие extern-имена становятся одним типом.
func (p *Parser) parseBase() (types.TypeID, bool) {
	tok, ok := p.expect(token.Ident, diag.ParseExpectType,
		"expected a type expression, got \""+p.lx.Peek().Text+"\"")
	if !ok {
		return types.NoTypeID, false
	}
	name := norm.NFC.String(tok.Text)

	switch name {
	case "complex":
		return p.parseComplexArgs()
	case "vec":
		return p.parseVecArgs()
	case "mat":
		return p.parseMatArgs()
	default:
		if id, ok := builtinTypeID(p.types.Builtins(), name); ok {
			if p.at(token.Lt) {
				p.err(diag.ParseBadTypeArgs,
					fmt.Sprintf("builtin %q does not take type arguments", name))
				return types.NoTypeID, false
			}
			return id, true
		}
		// всё остальное — extern-имя
		if p.at(token.Lt) {
			p.err(diag.ParseBadTypeArgs,
				fmt.Sprintf("extern type %q does not take type arguments", name))
			return types.NoTypeID, false
		}
		return p.types.Intern(types.MakeExtern(p.types.Strings.Intern(name))), true
	}
}

// parseComplexArgs — `'<' type '>'`, элемент строго числовой builtin.
func (p *Parser) parseComplexArgs() (types.TypeID, bool) {
	if _, ok := p.expect(token.Lt, diag.ParseBadTypeArgs, "complex requires an element type argument"); !ok {
		return types.NoTypeID, false
	}

	elem, ok := p.parseElemType("complex element must be a numeric builtin", false)
	if !ok {
		return types.NoTypeID, false
	}

	if _, ok := p.expect(token.Gt, diag.ParseExpectGt, "expected '>' to close type arguments"); !ok {
		return types.NoTypeID, false
	}
	return p.types.Intern(types.MakeComplex(elem)), true
}

// parseVecArgs — `'<' type (',' int)? '>'`. Без размерности длина
// считается динамической.
func (p *Parser) parseVecArgs() (types.TypeID, bool) {
	if _, ok := p.expect(token.Lt, diag.ParseBadTypeArgs, "vec requires an element type argument"); !ok {
		return types.NoTypeID, false
	}

	elem, ok := p.parseElemType("vec element must be a numeric builtin or complex", true)
	if !ok {
		return types.NoTypeID, false
	}

	length := types.DynamicDim
	if p.at(token.Comma) {
		p.advance()
		length, ok = p.parseDimension()
		if !ok {
			return types.NoTypeID, false
		}
	}

	if _, ok := p.expect(token.Gt, diag.ParseExpectGt, "expected '>' to close type arguments"); !ok {
		return types.NoTypeID, false
	}
	return p.types.Intern(types.MakeVector(elem, length)), true
}

// parseMatArgs — `'<' type (',' int ',' int)? '>'`: либо только элемент,
// либо элемент и обе размерности.
func (p *Parser) parseMatArgs() (types.TypeID, bool) {
	if _, ok := p.expect(token.Lt, diag.ParseBadTypeArgs, "mat requires an element type argument"); !ok {
		return types.NoTypeID, false
	}

	elem, ok := p.parseElemType("mat element must be a numeric builtin or complex", true)
	if !ok {
		return types.NoTypeID, false
	}

	rows, cols := types.DynamicDim, types.DynamicDim
	if p.at(token.Comma) {
		p.advance()
		rows, ok = p.parseDimension()
		if !ok {
			return types.NoTypeID, false
		}
		if _, ok := p.expect(token.Comma, diag.ParseBadTypeArgs, "mat takes either one or three arguments"); !ok {
			return types.NoTypeID, false
		}
		cols, ok = p.parseDimension()
		if !ok {
			return types.NoTypeID, false
		}
	}

	if _, ok := p.expect(token.Gt, diag.ParseExpectGt, "expected '>' to close type arguments"); !ok {
		return types.NoTypeID, false
	}
	return p.types.Intern(types.MakeMatrix(elem, rows, cols)), true
}

// parseElemType — тип-аргумент конструктора с проверкой класса элемента.
func (p *Parser) parseElemType(classMsg string, allowComplex bool) (types.TypeID, bool) {
	if p.at(token.IntLit) {
		p.err(diag.ParseBadTypeArgs, "expected element type, got integer literal")
		return types.NoTypeID, false
	}

	span := p.lx.Peek().Span
	id, _, ok := p.parseType(true)
	if !ok {
		return types.NoTypeID, false
	}

	tt := p.types.MustLookup(id)
	valid := tt.IsNumeric() || (allowComplex && tt.Kind == types.KindComplex)
	if !valid {
		p.report(diag.ParseBadTypeArgs, diag.SevError, span.Cover(p.lastSpan), classMsg)
		return types.NoTypeID, false
	}
	return id, true
}

// parseDimension — положительный десятичный литерал, влезающий в uint32.
func (p *Parser) parseDimension() (uint32, bool) {
	tok, ok := p.expect(token.IntLit, diag.ParseBadDimension, "dimension must be a positive integer")
	if !ok {
		return 0, false
	}

	clean := strings.ReplaceAll(tok.Text, "_", "")
	value, err := strconv.ParseUint(clean, 10, 32)
	if err != nil {
		p.report(diag.ParseBadDimension, diag.SevError, tok.Span,
			fmt.Sprintf("dimension %q is out of range", tok.Text))
		return 0, false
	}
	if value == 0 {
		p.report(diag.ParseBadDimension, diag.SevError, tok.Span, "dimension must be a positive integer")
		return 0, false
	}
	return uint32(value), true
}

func builtinTypeID(bt types.Builtins, name string) (types.TypeID, bool) {
	switch name {
	case "bool":
		return bt.Bool, true
	case "i8":
		return bt.I8, true
	case "i16":
		return bt.I16, true
	case "i32":
		return bt.I32, true
	case "i64":
		return bt.I64, true
	case "u8":
		return bt.U8, true
	case "u16":
		return bt.U16, true
	case "u32":
		return bt.U32, true
	case "u64":
		return bt.U64, true
	case "f32":
		return bt.F32, true
	case "f64":
		return bt.F64, true
	default:
		return types.NoTypeID, false
	}
}

// ParseTypeLabel разбирает одиночное тип-выражение из строки без файла,
// например из манифеста. Ошибки идут репортеру, спаны указывают в name.
func ParseTypeLabel(fs *source.FileSet, origin string, name string, typesIn *types.Interner, reporter diag.Reporter) (types.TypeID, bool) {
	fileID := fs.AddVirtual(origin, []byte(name))
	file := fs.Get(fileID)

	lx := lexerForFile(file, reporter)
	p := Parser{
		lx:       lx,
		types:    typesIn,
		opts:     Options{Reporter: reporter},
		lastSpan: lx.EmptySpan(),
	}

	id, _, ok := p.parseType(false)
	if !ok {
		return types.NoTypeID, false
	}
	if !p.at(token.EOF) {
		p.err(diag.ParseTrailingInput, "unexpected input after type")
		return types.NoTypeID, false
	}
	return id, true
}
