package resolver

import (
	"multrait/internal/rules"
	"multrait/internal/typeexpr"
	"multrait/internal/types"
)

// Resolution records the outcome of one query. Exactly one of Result
// and Err is meaningful: Err non-nil means the pair has no result type.
type Resolution struct {
	Query  typeexpr.Query
	Result types.TypeID
	Rule   string
	Rank   rules.Rank
	Err    error
}

// Resolved reports whether the query produced a result type.
func (r Resolution) Resolved() bool {
	return r.Err == nil && r.Result != types.NoTypeID
}
