package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"multrait/internal/rules"
	"multrait/internal/types"
)

// RuleJSON represents one registry entry in JSON output. Literal rules
// carry their pinned pattern, family and fallback rules only a name.
type RuleJSON struct {
	Name   string `json:"name"`
	Rank   string `json:"rank"`
	Left   string `json:"left,omitempty"`
	Right  string `json:"right,omitempty"`
	Result string `json:"result,omitempty"`
}

// RulesOutput is the root structure for rule table JSON.
type RulesOutput struct {
	Rules  []RuleJSON `json:"rules"`
	Count  int        `json:"count"`
	Frozen bool       `json:"frozen"`
}

// FormatRulesText выводит таблицу правил в порядке убывания ранга
func FormatRulesText(w io.Writer, in *types.Interner, reg *rules.Registry) error {
	for i, rule := range reg.Rules() {
		fmt.Fprintf(w, "%3d: %-8s %s", i+1, rule.Rank, rule.Name)
		if rule.Rank == rules.RankLiteral {
			fmt.Fprintf(w, "  (%s * %s -> %s)",
				types.Label(in, rule.Left),
				types.Label(in, rule.Right),
				types.Label(in, rule.Result))
		}
		fmt.Fprintln(w)
	}
	return nil
}

// BuildRulesOutput формирует структуру JSON-вывода без сериализации.
func BuildRulesOutput(in *types.Interner, reg *rules.Registry) RulesOutput {
	out := RulesOutput{
		Rules:  make([]RuleJSON, 0, reg.Len()),
		Count:  reg.Len(),
		Frozen: reg.Frozen(),
	}
	for _, rule := range reg.Rules() {
		entry := RuleJSON{
			Name: rule.Name,
			Rank: rule.Rank.String(),
		}
		if rule.Rank == rules.RankLiteral {
			entry.Left = types.Label(in, rule.Left)
			entry.Right = types.Label(in, rule.Right)
			entry.Result = types.Label(in, rule.Result)
		}
		out.Rules = append(out.Rules, entry)
	}
	return out
}

// FormatRulesJSON выводит таблицу правил в JSON формате
func FormatRulesJSON(w io.Writer, in *types.Interner, reg *rules.Registry) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildRulesOutput(in, reg))
}
