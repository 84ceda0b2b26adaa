package manifest

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"multrait/internal/diag"
	"multrait/internal/rules"
	"multrait/internal/source"
	"multrait/internal/typeexpr"
	"multrait/internal/types"
)

// Apply регистрирует сигнатуры extern-типов и литеральные правила
// манифеста в ещё не запечатанный registry. Метки типов разбираются
// через fs как виртуальные файлы, так что диагностики указывают в текст
// метки. Reporter может быть nil, если манифест уже проверен: тогда
// проблемные записи молча пропускаются.
func (m *Manifest) Apply(fs *source.FileSet, typesIn *types.Interner, reg *rules.Registry, reporter diag.Reporter) {
	seen := make(map[types.TypeID]string, len(m.Config.Externs))
	for i, ext := range m.Config.Externs {
		origin := m.origin("extern[%d].name", i)
		id, ok := typeexpr.ParseTypeLabel(fs, origin, ext.Name, typesIn, nil)
		sp := labelSpan(fs, origin, ext.Name)
		if !ok {
			emit(reporter, diag.ManifestBadType, sp,
				fmt.Sprintf("extern name %q is not a valid type name", ext.Name))
			continue
		}
		if tt := typesIn.MustLookup(id); tt.Kind != types.KindExtern {
			emit(reporter, diag.ManifestConflict, sp,
				fmt.Sprintf("extern %q shadows a builtin type", ext.Name))
			continue
		}
		if typesIn.Canonical(id) != id {
			emit(reporter, diag.ManifestBadType, sp,
				fmt.Sprintf("extern name %q must not carry qualifiers or a reference", ext.Name))
			continue
		}
		if prev, dup := seen[id]; dup {
			emit(reporter, diag.ManifestDuplicateExt, sp,
				fmt.Sprintf("duplicate extern %q (already declared as %q)", ext.Name, prev))
			continue
		}
		seen[id] = ext.Name

		for j, sig := range ext.Mult {
			rhs, okRhs := m.parseSigLabel(fs, typesIn, reporter, ext.Name, sig.Rhs, "extern[%d].mult[%d].rhs", i, j)
			result, okRes := m.parseSigLabel(fs, typesIn, reporter, ext.Name, sig.Result, "extern[%d].mult[%d].result", i, j)
			if !okRhs || !okRes {
				continue
			}
			typesIn.AddExternSig(id, types.ExternSig{
				Rhs:         typesIn.Canonical(rhs),
				Result:      typesIn.Canonical(result),
				Commutative: sig.Commutative,
			})
		}
	}

	for i, rc := range m.Config.Rules {
		left, okL := m.parseRuleLabel(fs, typesIn, reporter, rc.Left, "rule[%d].left", i)
		right, okR := m.parseRuleLabel(fs, typesIn, reporter, rc.Right, "rule[%d].right", i)
		result, okRes := m.parseRuleLabel(fs, typesIn, reporter, rc.Result, "rule[%d].result", i)
		if !okL || !okR || !okRes {
			continue
		}
		name := fmt.Sprintf("%s/rule[%d]", m.Config.Package.Name, i)
		rule := rules.Literal(name, typesIn.Canonical(left), typesIn.Canonical(right), typesIn.Canonical(result))
		if err := reg.Register(rule); err != nil {
			code := diag.ManifestInfo
			if errors.Is(err, rules.ErrDuplicateRule) {
				code = diag.ManifestDuplicateRule
			}
			emit(reporter, code, labelSpan(fs, m.origin("rule[%d].left", i), rc.Left), err.Error())
		}
	}
}

// parseSigLabel разбирает rhs/result одной сигнатуры. Неразобранная
// метка даёт одну диагностику ManifestBadSignature со спаном на весь
// текст метки.
func (m *Manifest) parseSigLabel(fs *source.FileSet, typesIn *types.Interner, reporter diag.Reporter, extName, label, frag string, args ...any) (types.TypeID, bool) {
	origin := m.origin(frag, args...)
	id, ok := typeexpr.ParseTypeLabel(fs, origin, label, typesIn, nil)
	if !ok {
		emit(reporter, diag.ManifestBadSignature, labelSpan(fs, origin, label),
			fmt.Sprintf("extern %q: malformed type %q in multiplication signature", extName, label))
		return types.NoTypeID, false
	}
	return id, true
}

// parseRuleLabel разбирает одну из трёх меток литерального правила.
func (m *Manifest) parseRuleLabel(fs *source.FileSet, typesIn *types.Interner, reporter diag.Reporter, label, frag string, args ...any) (types.TypeID, bool) {
	origin := m.origin(frag, args...)
	id, ok := typeexpr.ParseTypeLabel(fs, origin, label, typesIn, nil)
	if !ok {
		emit(reporter, diag.ManifestBadType, labelSpan(fs, origin, label),
			fmt.Sprintf("malformed type %q in rule", label))
		return types.NoTypeID, false
	}
	return id, true
}

// origin строит имя виртуального файла для метки: путь манифеста плюс
// фрагмент вида extern[0].mult[1].rhs.
func (m *Manifest) origin(frag string, args ...any) string {
	return m.Path + "#" + fmt.Sprintf(frag, args...)
}

// labelSpan возвращает спан на весь текст метки в её виртуальном файле.
func labelSpan(fs *source.FileSet, origin, label string) source.Span {
	id, ok := fs.GetLatest(origin)
	if !ok {
		return source.Span{}
	}
	end, err := safecast.Conv[uint32](len(label))
	if err != nil {
		panic(fmt.Errorf("label length overflow: %w", err))
	}
	return source.Span{File: id, Start: 0, End: end}
}

func emit(reporter diag.Reporter, code diag.Code, sp source.Span, msg string) {
	if reporter == nil {
		return
	}
	reporter.Report(code, diag.SevError, sp, msg, nil)
}
