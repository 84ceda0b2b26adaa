package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"fortio.org/safecast"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"multrait/internal/diag"
	"multrait/internal/source"
)

var (
	prettyPathColor    = color.New(color.FgCyan)
	prettyErrorColor   = color.New(color.FgRed, color.Bold)
	prettyWarningColor = color.New(color.FgYellow, color.Bold)
	prettyInfoColor    = color.New(color.FgBlue, color.Bold)
	prettyNoteColor    = color.New(color.FgCyan)
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
// Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writePretty(w, d, fs, opts)
	}
}

func writePretty(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	start, _ := fs.Resolve(d.Primary)
	head := fmt.Sprintf("%s:%d:%d", prettyPath(fs, d.Primary, opts.PathMode), start.Line, start.Col)

	fmt.Fprintf(w, "%s: %s %s: %s\n",
		paint(prettyPathColor, opts.Color, head),
		paint(severityColor(d.Severity), opts.Color, d.Severity.String()),
		d.Code.ID(),
		d.Message)

	if opts.Context >= 0 {
		writeSnippet(w, fs, d.Primary, d.Severity, opts)
	}

	if opts.ShowNotes {
		for _, note := range d.Notes {
			noteStart, _ := fs.Resolve(note.Span)
			line := fmt.Sprintf("note: %s:%d:%d: %s",
				prettyPath(fs, note.Span, opts.PathMode), noteStart.Line, noteStart.Col, note.Msg)
			fmt.Fprintf(w, "  %s\n", paint(prettyNoteColor, opts.Color, line))
		}
	}
}

// writeSnippet печатает строки вокруг спана и подчёркивание под ним.
func writeSnippet(w io.Writer, fs *source.FileSet, span source.Span, sev diag.Severity, opts PrettyOpts) {
	file := fs.Get(span.File)
	if file == nil || len(file.Content) == 0 {
		return
	}
	start, end := fs.Resolve(span)
	if start.Line == 0 {
		return
	}

	ctx := uint32(max(opts.Context, 0))
	first := start.Line
	if first > ctx {
		first -= ctx
	} else {
		first = 1
	}
	last := start.Line + ctx
	totalLines, err := safecast.Conv[uint32](len(file.LineIdx) + 1)
	if err != nil {
		panic(fmt.Errorf("line count overflow: %w", err))
	}
	last = min(last, totalLines)

	for line := first; line <= last; line++ {
		fmt.Fprintf(w, "%5d | %s\n", line, clipLine(file.GetLine(line), opts.Width))
		if line == start.Line {
			fmt.Fprintf(w, "      | %s\n",
				paint(severityColor(sev), opts.Color, underline(file.GetLine(line), start, end)))
		}
	}
}

// underline строит строку ^~~~ по колонкам спана в пределах одной строки.
// Колонки байтовые, ширина подчёркивания считается по ширине рун.
func underline(line string, start, end source.LineCol) string {
	startCol := int(start.Col)
	if startCol < 1 {
		startCol = 1
	}
	endCol := len(line) + 1
	if end.Line == start.Line && int(end.Col) > startCol {
		endCol = int(end.Col)
	}
	startCol = min(startCol, len(line)+1)
	endCol = min(endCol, len(line)+1)

	pad := runewidth.StringWidth(line[:startCol-1])
	width := runewidth.StringWidth(line[startCol-1 : endCol-1])
	if width < 1 {
		width = 1
	}
	return strings.Repeat(" ", pad) + "^" + strings.Repeat("~", width-1)
}

func clipLine(text string, width uint8) string {
	if width == 0 {
		return text
	}
	return runewidth.Truncate(text, int(width), "…")
}

func prettyPath(fs *source.FileSet, span source.Span, mode PathMode) string {
	f := fs.Get(span.File)
	if f == nil {
		return "<unknown>"
	}
	return f.FormatPath(mode.mode(), fs.BaseDir())
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return prettyErrorColor
	case diag.SevWarning:
		return prettyWarningColor
	default:
		return prettyInfoColor
	}
}

func paint(c *color.Color, enabled bool, s string) string {
	if !enabled || c == nil {
		return s
	}
	return c.Sprint(s)
}
