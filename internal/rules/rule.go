package rules

import "multrait/internal/types"

// Rank orders rules by specificity. Higher ranks win; equal-rank double
// matches are a definitional conflict, never a tie-break.
type Rank uint8

const (
	RankFallback Rank = iota
	RankFamily
	RankLiteral
)

func (r Rank) String() string {
	switch r {
	case RankFallback:
		return "fallback"
	case RankFamily:
		return "family"
	case RankLiteral:
		return "literal"
	default:
		return "rank(?)"
	}
}

// Matcher reports whether a family rule covers a canonical operand pair.
type Matcher func(left, right types.TypeID) bool

// Applier derives the result type for a pair the rule matched.
type Applier func(left, right types.TypeID) (types.TypeID, bool)

// Rule describes one entry of the resolution table. Literal rules pin
// an exact canonical pair to a fixed result; family rules match through
// a structural predicate and derive their result; the fallback rule
// matches everything and leaves derivation to the resolver.
type Rule struct {
	Name string
	Rank Rank

	// literal pattern, RankLiteral only
	Left   types.TypeID
	Right  types.TypeID
	Result types.TypeID

	// family predicate and derivation, RankFamily only
	Match Matcher
	Apply Applier
}

// Literal builds a rank-literal rule for one exact canonical pair.
func Literal(name string, left, right, result types.TypeID) Rule {
	return Rule{Name: name, Rank: RankLiteral, Left: left, Right: right, Result: result}
}

// Family builds a rank-family rule from a predicate and a derivation.
func Family(name string, match Matcher, apply Applier) Rule {
	return Rule{Name: name, Rank: RankFamily, Match: match, Apply: apply}
}

// Fallback builds the universal rule that defers to structural
// deduction in the resolver.
func Fallback() Rule {
	return Rule{Name: "fallback", Rank: RankFallback}
}

// IsFallback reports whether the rule defers derivation to the resolver.
func (rule Rule) IsFallback() bool {
	return rule.Rank == RankFallback
}

// matches reports whether the rule covers the pair. The fallback rule
// covers every pair.
func (rule Rule) matches(left, right types.TypeID) bool {
	switch rule.Rank {
	case RankLiteral:
		return rule.Left == left && rule.Right == right
	case RankFallback:
		return true
	default:
		return rule.Match != nil && rule.Match(left, right)
	}
}

// Derive produces the result type for a pair this rule matched.
func (rule Rule) Derive(left, right types.TypeID) (types.TypeID, bool) {
	if rule.Rank == RankLiteral {
		return rule.Result, rule.Result != types.NoTypeID
	}
	if rule.Apply == nil {
		return types.NoTypeID, false
	}
	return rule.Apply(left, right)
}
