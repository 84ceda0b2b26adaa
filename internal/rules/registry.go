package rules

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"multrait/internal/types"
)

var (
	// ErrFrozen rejects registration into a sealed table.
	ErrFrozen = errors.New("registry is frozen")
	// ErrNotFrozen rejects matching against an unsealed table.
	ErrNotFrozen = errors.New("registry is not frozen")
	// ErrDuplicateRule rejects a second literal rule for the same pair.
	ErrDuplicateRule = errors.New("duplicate literal rule")
	// ErrAmbiguous marks equal-rank double matches; use errors.Is
	// against it or errors.As with *AmbiguityError for the details.
	ErrAmbiguous = errors.New("ambiguous rules")
	// ErrNoRule only fires on tables assembled without the fallback.
	ErrNoRule = errors.New("no rule matches the operand pair")
)

// AmbiguityError reports two or more rules of equal rank covering the
// same operand pair. The table treats this as a definitional conflict
// and never silently picks one.
type AmbiguityError struct {
	Left  types.TypeID
	Right types.TypeID
	Names []string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("ambiguous rules for operand pair: %s", strings.Join(e.Names, " vs "))
}

func (e *AmbiguityError) Is(target error) bool {
	return target == ErrAmbiguous
}

// Registry is the assembled resolution table. It is built once with
// Register, sealed with Freeze, and read-only afterwards: concurrent
// Match calls share the same slice without locks.
type Registry struct {
	rules    []Rule
	literals map[pairKey]string // literal pattern -> rule name
	frozen   bool
}

type pairKey struct {
	left  types.TypeID
	right types.TypeID
}

// NewRegistry constructs an empty unsealed registry.
func NewRegistry() *Registry {
	return &Registry{
		literals: make(map[pairKey]string, 16),
	}
}

// Register appends a rule to the table. Registration into a frozen
// table and duplicate literal patterns are definition errors surfaced
// immediately, not at match time.
func (r *Registry) Register(rule Rule) error {
	if r.frozen {
		return fmt.Errorf("register %q: %w", rule.Name, ErrFrozen)
	}
	if rule.Rank == RankLiteral {
		key := pairKey{left: rule.Left, right: rule.Right}
		if prev, ok := r.literals[key]; ok {
			return fmt.Errorf("register %q: %w (already defined by %q)", rule.Name, ErrDuplicateRule, prev)
		}
		r.literals[key] = rule.Name
	}
	r.rules = append(r.rules, rule)
	return nil
}

// Freeze sorts the table by descending rank and seals it. Registration
// order is preserved inside each rank. Freeze is idempotent.
func (r *Registry) Freeze() {
	if r.frozen {
		return
	}
	sort.SliceStable(r.rules, func(i, j int) bool {
		return r.rules[i].Rank > r.rules[j].Rank
	})
	r.frozen = true
}

// Frozen reports whether the table is sealed.
func (r *Registry) Frozen() bool {
	return r.frozen
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.rules)
}

// Rules returns the table in match order (descending rank). Callers
// must not mutate the result.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// Match finds the highest-rank rule covering the canonical pair. Two
// distinct matches of the winning rank yield an *AmbiguityError. With
// the fallback registered the match set is never empty.
func (r *Registry) Match(left, right types.TypeID) (Rule, error) {
	if !r.frozen {
		return Rule{}, ErrNotFrozen
	}

	var found []Rule
	for _, rule := range r.rules {
		if len(found) > 0 && rule.Rank < found[0].Rank {
			break
		}
		if rule.matches(left, right) {
			found = append(found, rule)
		}
	}

	switch len(found) {
	case 0:
		return Rule{}, ErrNoRule
	case 1:
		return found[0], nil
	default:
		names := make([]string, len(found))
		for i, rule := range found {
			names[i] = rule.Name
		}
		return Rule{}, &AmbiguityError{Left: left, Right: right, Names: names}
	}
}
