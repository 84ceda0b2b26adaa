package diag

import (
	"testing"

	"multrait/internal/source"
)

func TestBagLimit(t *testing.T) {
	bag := NewBag(2)

	d := NewError(ResolveNoRule, source.Span{}, "no rule")
	if !bag.Add(d) || !bag.Add(d) {
		t.Fatal("first two Add calls must succeed")
	}
	if bag.Add(d) {
		t.Fatal("Add beyond cap must fail")
	}
	if bag.Len() != 2 {
		t.Fatalf("expected Len 2, got %d", bag.Len())
	}
	if bag.Cap() != 2 {
		t.Fatalf("expected Cap 2, got %d", bag.Cap())
	}
}

func TestBagHasErrorsAndWarnings(t *testing.T) {
	bag := NewBag(10)
	if bag.HasErrors() || bag.HasWarnings() {
		t.Fatal("empty bag must have no errors or warnings")
	}

	bag.Add(New(SevInfo, ResolveInfo, source.Span{}, "info"))
	if bag.HasErrors() || bag.HasWarnings() {
		t.Fatal("info-only bag must have no errors or warnings")
	}

	bag.Add(New(SevWarning, ParseExpectSemi, source.Span{}, "warn"))
	if bag.HasErrors() {
		t.Fatal("warning must not count as error")
	}
	if !bag.HasWarnings() {
		t.Fatal("expected HasWarnings")
	}

	bag.Add(NewError(ResolveNoRule, source.Span{}, "err"))
	if !bag.HasErrors() {
		t.Fatal("expected HasErrors")
	}
}

func TestBagSortDeterministic(t *testing.T) {
	bag := NewBag(10)

	spanA := source.Span{File: 0, Start: 10, End: 12}
	spanB := source.Span{File: 0, Start: 2, End: 4}

	bag.Add(New(SevInfo, ResolveInfo, spanA, "later"))
	bag.Add(NewError(ResolveNoRule, spanB, "earlier"))
	bag.Add(New(SevWarning, ParseExpectSemi, spanA, "same span, lower severity"))

	bag.Sort()

	items := bag.Items()
	if items[0].Message != "earlier" {
		t.Fatalf("expected earlier span first, got %q", items[0].Message)
	}
	// На одинаковом спане severity по убыванию
	if items[1].Severity != SevWarning || items[2].Severity != SevInfo {
		t.Fatalf("expected warning before info on equal span, got %v then %v",
			items[1].Severity, items[2].Severity)
	}
}

func TestBagDedup(t *testing.T) {
	bag := NewBag(10)
	span := source.Span{File: 0, Start: 1, End: 2}

	bag.Add(NewError(ResolveNoRule, span, "msg"))
	bag.Add(NewError(ResolveNoRule, span, "msg"))
	bag.Add(NewError(ResolveAmbiguousRules, span, "msg"))

	bag.Dedup()
	if bag.Len() != 2 {
		t.Fatalf("expected 2 after dedup, got %d", bag.Len())
	}
}

func TestReportBuilderEmitOnce(t *testing.T) {
	bag := NewBag(10)
	r := BagReporter{Bag: bag}

	b := ReportError(r, ResolveNoRule, source.Span{Start: 1, End: 2}, "no rule").
		WithNote(source.Span{Start: 3, End: 4}, "left operand here")
	b.Emit()
	b.Emit() // повторный Emit игнорируется

	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Code != ResolveNoRule || d.Severity != SevError {
		t.Fatalf("unexpected diagnostic: %+v", d)
	}
	if len(d.Notes) != 1 || d.Notes[0].Msg != "left operand here" {
		t.Fatalf("unexpected notes: %+v", d.Notes)
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})

	span := source.Span{File: 0, Start: 1, End: 2}
	r.Report(ResolveNoRule, SevError, span, "dup", nil)
	r.Report(ResolveNoRule, SevError, span, "dup", nil)
	r.Report(ResolveNoRule, SevError, span, "other", nil)

	if bag.Len() != 2 {
		t.Fatalf("expected 2 unique diagnostics, got %d", bag.Len())
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		LexUnknownChar:        "LEX1001",
		ParseExpectSemi:       "PAR2003",
		ResolveNoRule:         "RES3001",
		ManifestDuplicateRule: "MAN4001",
		ObsTimings:            "OBS6001",
		IOLoadFileError:       "IO7001",
		UnknownCode:           "E0000",
	}
	for code, want := range cases {
		if got := code.ID(); got != want {
			t.Fatalf("Code(%d).ID() = %q, want %q", code, got, want)
		}
	}
}
