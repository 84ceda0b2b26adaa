package driver

import (
	"errors"
	"fmt"
	"time"

	"fortio.org/safecast"

	"multrait/internal/diag"
	"multrait/internal/lexer"
	"multrait/internal/observ"
	"multrait/internal/resolver"
	"multrait/internal/rules"
	"multrait/internal/source"
	"multrait/internal/typeexpr"
)

// Options управляют разрешением файлов.
type Options struct {
	MaxDiagnostics int          // вместимость Bag на файл
	Jobs           int          // параллелизм ResolveDir; <=0 — GOMAXPROCS
	Timings        bool         // добавлять OBS-диагностику с таймингами
	Sink           ProgressSink // может быть nil
	Cache          *DiskCache   // может быть nil — кеш выключен
}

// ResolveFile lexes, parses and resolves every query of one loaded
// file. A disk cache hit skips the whole pipeline and rehydrates the
// stored outcome into a fresh session.
func ResolveFile(fs *source.FileSet, fileID source.FileID, setup Setup, opts Options) FileResult {
	file := fs.Get(fileID)
	bag := diag.NewBag(opts.MaxDiagnostics)
	session := setup.NewSession()

	if opts.Cache != nil {
		var payload DiskPayload
		if hit, err := opts.Cache.Get(cacheKey(file, session), &payload); err == nil && hit {
			if result, ok := rehydrate(file, fileID, &payload, session, bag); ok {
				notify(opts.Sink, Event{File: file.Path, Stage: StageParse, Status: StatusDone})
				notify(opts.Sink, Event{File: file.Path, Stage: StageResolve, Status: StatusDone})
				return result
			}
		}
	}

	timer := observ.NewTimer()
	reporter := &diag.BagReporter{Bag: bag}

	// Parse.
	notify(opts.Sink, Event{File: file.Path, Stage: StageParse, Status: StatusWorking})
	parseStart := time.Now()
	parsePhase := timer.Begin("parse")

	maxErrors, err := safecast.Conv[uint](opts.MaxDiagnostics)
	if err != nil {
		panic(fmt.Errorf("MaxDiagnostics overflow: %w", err))
	}
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	parsed := typeexpr.ParseQueries(lx, session.Types, typeexpr.Options{
		MaxErrors: maxErrors,
		Reporter:  reporter,
	})

	timer.End(parsePhase, fmt.Sprintf("%d queries", len(parsed.Queries)))
	notify(opts.Sink, Event{File: file.Path, Stage: StageParse, Status: stageStatus(bag, 0), Elapsed: time.Since(parseStart)})

	// Resolve.
	errsBefore := errorCount(bag)
	notify(opts.Sink, Event{File: file.Path, Stage: StageResolve, Status: StatusWorking})
	resolveStart := time.Now()
	resolvePhase := timer.Begin("resolve")

	resolutions := make([]resolver.Resolution, 0, len(parsed.Queries))
	resolved := 0
	for _, q := range parsed.Queries {
		res := session.Resolver.ResolveQuery(q)
		if res.Err != nil {
			appendResolutionDiag(bag, q, res.Err)
		} else {
			resolved++
		}
		resolutions = append(resolutions, res)
	}

	timer.End(resolvePhase, fmt.Sprintf("%d/%d resolved", resolved, len(parsed.Queries)))
	notify(opts.Sink, Event{File: file.Path, Stage: StageResolve, Status: stageStatus(bag, errsBefore), Elapsed: time.Since(resolveStart)})

	report := timer.Report()
	clean := bag.Len() == 0
	if opts.Timings {
		appendTimingDiagnostic(bag, timingPayload{
			Kind:    "file",
			Path:    file.Path,
			TotalMS: report.TotalMS,
			Phases:  report.Phases,
		})
	}

	result := FileResult{
		Path:        file.Path,
		FileID:      fileID,
		Types:       session.Types,
		Resolutions: resolutions,
		Bag:         bag,
		Timing:      &report,
	}

	// Кешируются только чистые файлы: каждая диагностика потребовала бы
	// сериализации, а перечитать файл дешевле.
	if opts.Cache != nil && clean {
		_ = opts.Cache.Put(cacheKey(file, session), toPayload(file, session, result))
	}
	return result
}

// ResolveArgv parses one query from a command-line string and resolves
// it. The query text becomes a virtual file named "<argv>"; a trailing
// ';' is optional.
func ResolveArgv(fs *source.FileSet, query string, setup Setup, opts Options) FileResult {
	fileID := fs.AddVirtual("<argv>", []byte(query))
	file := fs.Get(fileID)
	bag := diag.NewBag(opts.MaxDiagnostics)
	session := setup.NewSession()

	maxErrors, err := safecast.Conv[uint](opts.MaxDiagnostics)
	if err != nil {
		panic(fmt.Errorf("MaxDiagnostics overflow: %w", err))
	}
	reporter := &diag.BagReporter{Bag: bag}
	lx := lexer.New(file, lexer.Options{Reporter: reporter})
	q, ok := typeexpr.ParseQuery(lx, session.Types, typeexpr.Options{
		MaxErrors: maxErrors,
		Reporter:  reporter,
	})

	result := FileResult{
		Path:   file.Path,
		FileID: fileID,
		Types:  session.Types,
		Bag:    bag,
	}
	if !ok {
		return result
	}

	res := session.Resolver.ResolveQuery(q)
	if res.Err != nil {
		appendResolutionDiag(bag, q, res.Err)
	}
	result.Resolutions = []resolver.Resolution{res}
	return result
}

// appendResolutionDiag превращает ошибку резолвера в диагностику со
// спаном запроса и нотами на операнды.
func appendResolutionDiag(bag *diag.Bag, q typeexpr.Query, err error) {
	var noRes *resolver.NoResolutionError
	var amb *rules.AmbiguityError
	switch {
	case errors.As(err, &noRes):
		bag.Add(diag.NewError(diag.ResolveNoRule, q.Span, noRes.Error()).
			WithNote(q.LeftSpan, "left operand: "+noRes.LeftLabel).
			WithNote(q.RightSpan, "right operand: "+noRes.RightLabel))
	case errors.As(err, &amb):
		bag.Add(diag.NewError(diag.ResolveAmbiguousRules, q.Span, amb.Error()))
	case errors.Is(err, resolver.ErrBadOperand):
		bag.Add(diag.NewError(diag.ResolveBadOperand, q.Span, err.Error()))
	default:
		bag.Add(diag.NewError(diag.UnknownCode, q.Span, err.Error()))
	}
}

// stageStatus сравнивает число ошибок с отметкой до начала стадии.
func stageStatus(bag *diag.Bag, errsBefore int) Status {
	if errorCount(bag) > errsBefore {
		return StatusError
	}
	return StatusDone
}

func errorCount(bag *diag.Bag) int {
	n := 0
	for _, d := range bag.Items() {
		if d.Severity >= diag.SevError {
			n++
		}
	}
	return n
}
