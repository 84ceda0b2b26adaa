package resolver

import (
	"errors"
	"fmt"

	"multrait/internal/rules"
	"multrait/internal/typeexpr"
	"multrait/internal/types"
)

var (
	// ErrNoResolution marks operand pairs no rule and no structural
	// deduction could cover. There is never a default result type.
	ErrNoResolution = errors.New("no resolution for operand pair")
	// ErrBadOperand rejects invalid operand TypeIDs.
	ErrBadOperand = errors.New("invalid operand type")
)

// NoResolutionError carries the canonical operand pair that failed to
// resolve, with labels rendered for the diagnostic message.
type NoResolutionError struct {
	Left       types.TypeID
	Right      types.TypeID
	LeftLabel  string
	RightLabel string
}

func (e *NoResolutionError) Error() string {
	return fmt.Sprintf("no resolution for %s * %s", e.LeftLabel, e.RightLabel)
}

func (e *NoResolutionError) Is(target error) bool {
	return target == ErrNoResolution
}

// Resolver computes multiplication result types by matching the frozen
// rule table and, for fallback matches, deducing structurally from the
// promotion lattice and extern signatures.
type Resolver struct {
	Types    *types.Interner
	Registry *rules.Registry
}

// New pairs an interner with a frozen registry.
func New(in *types.Interner, reg *rules.Registry) *Resolver {
	return &Resolver{Types: in, Registry: reg}
}

// Resolve computes the result type of left * right. Qualifiers on
// either operand never change the outcome.
func (rv *Resolver) Resolve(left, right types.TypeID) (types.TypeID, error) {
	id, _, err := rv.resolve(left, right)
	return id, err
}

// ResolveQuery resolves one parsed query and records the outcome
// together with the rule that produced it.
func (rv *Resolver) ResolveQuery(q typeexpr.Query) Resolution {
	res := Resolution{Query: q}
	id, rule, err := rv.resolve(q.Left, q.Right)
	if err != nil {
		res.Err = err
		return res
	}
	res.Result = id
	res.Rule = rule.Name
	res.Rank = rule.Rank
	return res
}

func (rv *Resolver) resolve(left, right types.TypeID) (types.TypeID, rules.Rule, error) {
	l := rv.Types.Canonical(left)
	r := rv.Types.Canonical(right)
	if l == types.NoTypeID || r == types.NoTypeID {
		return types.NoTypeID, rules.Rule{}, ErrBadOperand
	}

	rule, err := rv.Registry.Match(l, r)
	if err != nil {
		return types.NoTypeID, rules.Rule{}, err
	}

	if !rule.IsFallback() {
		if id, ok := rule.Derive(l, r); ok {
			return id, rule, nil
		}
		return types.NoTypeID, rules.Rule{}, rv.noResolution(l, r)
	}

	if id, ok := rv.deduce(l, r); ok {
		return id, rule, nil
	}
	return types.NoTypeID, rules.Rule{}, rv.noResolution(l, r)
}

// deduce is the fallback path: builtin promotion first, then declared
// extern signatures.
func (rv *Resolver) deduce(left, right types.TypeID) (types.TypeID, bool) {
	if id, ok := rv.Types.CommonArithmetic(left, right); ok {
		return id, true
	}
	return rv.externResult(left, right)
}

// externResult consults declared multiplication signatures: the left
// extern matches its rhs exactly, the right extern only contributes
// commutative signatures.
func (rv *Resolver) externResult(left, right types.TypeID) (types.TypeID, bool) {
	for _, sig := range rv.Types.ExternSigs(left) {
		if sig.Rhs == right {
			return sig.Result, true
		}
	}
	for _, sig := range rv.Types.ExternSigs(right) {
		if sig.Rhs == left && sig.Commutative {
			return sig.Result, true
		}
	}
	return types.NoTypeID, false
}

func (rv *Resolver) noResolution(left, right types.TypeID) error {
	return &NoResolutionError{
		Left:       left,
		Right:      right,
		LeftLabel:  types.Label(rv.Types, left),
		RightLabel: types.Label(rv.Types, right),
	}
}
