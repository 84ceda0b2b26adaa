// Package multrait resolves the result type of a multiplication between
// two type descriptors.
//
// This package is intended for programmatic use of the resolver.
// For CLI usage, see cmd/multrait.
package multrait

import (
	"fmt"

	"multrait/internal/diag"
	"multrait/internal/driver"
	"multrait/internal/manifest"
	"multrait/internal/rules"
	"multrait/internal/source"
	"multrait/internal/typeexpr"
	"multrait/internal/types"
)

// Options controls how the resolution engine is assembled.
type Options struct {
	// ManifestPath points at a multrait.toml with extern declarations
	// and literal extension rules. Empty means the builtin table only.
	ManifestPath string
}

// Engine resolves multiplication queries against a frozen rule table.
//
// An Engine is safe for concurrent use: every resolution builds its own
// type universe from the shared declarations, so no state is shared
// between calls.
type Engine struct {
	setup driver.Setup
}

// Resolution describes one resolved query.
type Resolution struct {
	// Left and Right are the operand labels as written, in canonical
	// spelling.
	Left  string
	Right string

	// Result is the label of the deduced result type.
	Result string

	// Rule names the table entry that produced the result and Rank its
	// specificity class (literal, family or fallback).
	Rule string
	Rank string
}

// New assembles an engine with the builtin rule table only.
func New() *Engine {
	return &Engine{}
}

// NewWithOptions assembles an engine, loading the manifest when one is
// named. A manifest with malformed declarations fails assembly: extension
// rules must not be dropped silently.
func NewWithOptions(opts Options) (*Engine, error) {
	e := &Engine{}
	if opts.ManifestPath == "" {
		return e, nil
	}

	m, err := manifest.Load(opts.ManifestPath)
	if err != nil {
		return nil, err
	}

	// Проверочный прогон: декларации применяются к черновой таблице,
	// первая ошибка становится ошибкой сборки.
	in := types.NewInterner()
	reg := rules.Standard(in)
	bag := diag.NewBag(64)
	m.Apply(source.NewFileSet(), in, reg, &diag.BagReporter{Bag: bag})
	for _, d := range bag.Items() {
		if d.Severity >= diag.SevError {
			return nil, fmt.Errorf("%s: %s", opts.ManifestPath, d.Message)
		}
	}

	e.setup.Manifest = m
	return e, nil
}

// ResultType resolves the result type of left * right. Both operands are
// type labels in the query grammar ("const complex<f32>&", "vec<f64, 3>").
// The returned label is canonical: operand qualifiers never influence the
// result. There is no default: an undefinable pair returns an error.
func (e *Engine) ResultType(left, right string) (string, error) {
	session := e.setup.NewSession()
	fs := source.NewFileSet()

	l, ok := typeexpr.ParseTypeLabel(fs, "<left>", left, session.Types, nil)
	if !ok {
		return "", fmt.Errorf("left operand %q is not a valid type expression", left)
	}
	r, ok := typeexpr.ParseTypeLabel(fs, "<right>", right, session.Types, nil)
	if !ok {
		return "", fmt.Errorf("right operand %q is not a valid type expression", right)
	}

	id, err := session.Resolver.Resolve(l, r)
	if err != nil {
		return "", err
	}
	return types.Label(session.Types, id), nil
}

// ResolveQuery parses one full query ("const complex<f32>& * i64") and
// resolves it. The trailing semicolon is optional.
func (e *Engine) ResolveQuery(query string) (Resolution, error) {
	fs := source.NewFileSet()
	result := driver.ResolveArgv(fs, query, e.setup, driver.Options{MaxDiagnostics: 16})

	if len(result.Resolutions) == 0 {
		for _, d := range result.Bag.Items() {
			if d.Severity >= diag.SevError {
				return Resolution{}, fmt.Errorf("malformed query: %s", d.Message)
			}
		}
		return Resolution{}, fmt.Errorf("malformed query %q", query)
	}

	r := result.Resolutions[0]
	res := Resolution{
		Left:  types.Label(result.Types, r.Query.Left),
		Right: types.Label(result.Types, r.Query.Right),
	}
	if r.Err != nil {
		return res, r.Err
	}
	res.Result = types.Label(result.Types, r.Result)
	res.Rule = r.Rule
	res.Rank = r.Rank.String()
	return res, nil
}

// ResultType resolves left * right against the builtin rule table.
func ResultType(left, right string) (string, error) {
	return New().ResultType(left, right)
}
