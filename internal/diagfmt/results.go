package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"multrait/internal/resolver"
	"multrait/internal/source"
	"multrait/internal/types"
)

var (
	resultColor   = color.New(color.FgGreen, color.Bold)
	failureColor  = color.New(color.FgRed, color.Bold)
	ruleTagColor  = color.New(color.FgMagenta)
	operandsColor = color.New(color.FgWhite)
)

// ResolutionJSON represents one resolved query in JSON output.
type ResolutionJSON struct {
	Left     string       `json:"left"`
	Right    string       `json:"right"`
	Result   string       `json:"result,omitempty"`
	Rule     string       `json:"rule,omitempty"`
	Rank     string       `json:"rank,omitempty"`
	Error    string       `json:"error,omitempty"`
	Location LocationJSON `json:"location"`
}

// ResolutionsOutput is the root structure for query result JSON.
type ResolutionsOutput struct {
	Resolutions []ResolutionJSON `json:"resolutions"`
	Resolved    int              `json:"resolved"`
	Failed      int              `json:"failed"`
}

// BuildResolutionsOutput формирует структуру JSON-вывода без сериализации.
func BuildResolutionsOutput(in *types.Interner, rs []resolver.Resolution, fs *source.FileSet, opts JSONOpts) ResolutionsOutput {
	out := ResolutionsOutput{
		Resolutions: make([]ResolutionJSON, 0, len(rs)),
	}
	for _, r := range rs {
		entry := ResolutionJSON{
			Left:     types.Label(in, r.Query.Left),
			Right:    types.Label(in, r.Query.Right),
			Location: makeLocation(r.Query.Span, fs, opts.PathMode, opts.IncludePositions),
		}
		if r.Resolved() {
			entry.Result = types.Label(in, r.Result)
			entry.Rule = r.Rule
			entry.Rank = r.Rank.String()
			out.Resolved++
		} else {
			if r.Err != nil {
				entry.Error = r.Err.Error()
			}
			out.Failed++
		}
		out.Resolutions = append(out.Resolutions, entry)
	}
	return out
}

// ResolutionsJSON выводит результаты запросов в JSON формате
func ResolutionsJSON(w io.Writer, in *types.Interner, rs []resolver.Resolution, fs *source.FileSet, opts JSONOpts) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildResolutionsOutput(in, rs, fs, opts))
}

// FormatResolutionsPretty выводит результаты запросов в человекочитаемом формате
func FormatResolutionsPretty(w io.Writer, in *types.Interner, rs []resolver.Resolution, fs *source.FileSet, opts PrettyOpts) error {
	for i, r := range rs {
		operands := fmt.Sprintf("%s * %s",
			types.Label(in, r.Query.Left), types.Label(in, r.Query.Right))
		fmt.Fprintf(w, "%3d: %s -> ", i+1, paint(operandsColor, opts.Color, operands))

		if r.Resolved() {
			tag := fmt.Sprintf("[%s: %s]", r.Rank, r.Rule)
			fmt.Fprintf(w, "%s  %s",
				paint(resultColor, opts.Color, types.Label(in, r.Result)),
				paint(ruleTagColor, opts.Color, tag))
		} else {
			fmt.Fprintf(w, "%s", paint(failureColor, opts.Color, "<unresolved>"))
			if r.Err != nil {
				fmt.Fprintf(w, "  %s", r.Err)
			}
		}

		start, _ := fs.Resolve(r.Query.Span)
		fmt.Fprintf(w, " at %d:%d\n", start.Line, start.Col)
	}
	return nil
}

// FormatResolutionsShort выводит по одной строке на запрос:
// <path>:<line>:<col>: <left> * <right> -> <result|error>
func FormatResolutionsShort(w io.Writer, in *types.Interner, rs []resolver.Resolution, fs *source.FileSet, opts PrettyOpts) error {
	for _, r := range rs {
		start, _ := fs.Resolve(r.Query.Span)
		outcome := "<unresolved>"
		if r.Resolved() {
			outcome = types.Label(in, r.Result)
		} else if r.Err != nil {
			outcome = "<unresolved> " + r.Err.Error()
		}
		fmt.Fprintf(w, "%s:%d:%d: %s * %s -> %s\n",
			prettyPath(fs, r.Query.Span, opts.PathMode), start.Line, start.Col,
			types.Label(in, r.Query.Left), types.Label(in, r.Query.Right), outcome)
	}
	return nil
}
