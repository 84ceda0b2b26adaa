package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0
	// Лексические
	LexInfo                     Code = 1000
	LexUnknownChar              Code = 1001
	LexUnterminatedBlockComment Code = 1002
	LexBadNumber                Code = 1003

	// Разбор тип-выражений
	ParseInfo          Code = 2000
	ParseExpectType    Code = 2001
	ParseExpectStar    Code = 2002
	ParseExpectSemi    Code = 2003
	ParseBadTypeArgs   Code = 2004
	ParseExpectGt      Code = 2005
	ParseQualInArgs    Code = 2006
	ParseBadDimension  Code = 2007
	ParseTrailingInput Code = 2008
	ParseEmptyQuery    Code = 2009

	// Разрешение результата умножения
	ResolveInfo           Code = 3000
	ResolveNoRule         Code = 3001
	ResolveAmbiguousRules Code = 3002
	ResolveBadOperand     Code = 3003

	// Манифест расширений
	ManifestInfo          Code = 4000
	ManifestDuplicateRule Code = 4001
	ManifestBadType       Code = 4002
	ManifestConflict      Code = 4003
	ManifestDuplicateExt  Code = 4004
	ManifestBadSignature  Code = 4005

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001

	// Ошибки I/O
	IOLoadFileError Code = 7001
)

var ( // todo расширить описания и использовать как notes
	codeDescription = map[Code]string{
		UnknownCode:                 "Unknown error",
		LexInfo:                     "Lexical information",
		LexUnknownChar:              "Unknown character",
		LexUnterminatedBlockComment: "Unterminated block comment",
		LexBadNumber:                "Bad number",
		ParseInfo:                   "Parse information",
		ParseExpectType:             "Expected a type expression",
		ParseExpectStar:             "Expected '*' between operands",
		ParseExpectSemi:             "Expected ';' after query",
		ParseBadTypeArgs:            "Malformed type argument list",
		ParseExpectGt:               "Expected '>' to close type arguments",
		ParseQualInArgs:             "Qualifier not allowed inside type arguments",
		ParseBadDimension:           "Dimension must be a positive integer",
		ParseTrailingInput:          "Unexpected input after query",
		ParseEmptyQuery:             "Empty query",
		ResolveInfo:                 "Resolution information",
		ResolveNoRule:               "No rule defines this multiplication",
		ResolveAmbiguousRules:       "Conflicting rules for this multiplication",
		ResolveBadOperand:           "Operand type cannot be multiplied",
		ManifestInfo:                "Manifest information",
		ManifestDuplicateRule:       "Duplicate rule in manifest",
		ManifestBadType:             "Malformed type in manifest",
		ManifestConflict:            "Manifest declaration shadows a builtin type",
		ManifestDuplicateExt:        "Duplicate extern type in manifest",
		ManifestBadSignature:        "Malformed extern multiplication signature",
		ObsInfo:                     "Observability information",
		ObsTimings:                  "Pipeline timings",
		IOLoadFileError:             "I/O load file error",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("PAR%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("RES%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("MAN%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
