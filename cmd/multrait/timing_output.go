package main

import (
	"fmt"
	"io"

	"multrait/internal/driver"
)

// printStageTimings суммирует фазовые тайминги по всем файлам прогона.
// Файлы из кеша таймингов не имеют и не учитываются.
func printStageTimings(out io.Writer, results []driver.FileResult) {
	if out == nil {
		return
	}
	var parseMS, resolveMS, totalMS float64
	counted := 0
	for _, r := range results {
		if r.Timing == nil {
			continue
		}
		counted++
		totalMS += r.Timing.TotalMS
		for _, phase := range r.Timing.Phases {
			switch phase.Name {
			case "parse":
				parseMS += phase.DurationMS
			case "resolve":
				resolveMS += phase.DurationMS
			}
		}
	}
	if counted == 0 {
		return
	}
	fmt.Fprintf(out, "parsed %.1f ms\n", parseMS)
	fmt.Fprintf(out, "resolved %.1f ms\n", resolveMS)
	fmt.Fprintf(out, "total %.1f ms (%d files)\n", totalMS, counted)
}
