package driver

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"multrait/internal/diag"
	"multrait/internal/manifest"
	"multrait/internal/resolver"
	"multrait/internal/rules"
	"multrait/internal/source"
	"multrait/internal/types"
)

// recordSink собирает события; mutex нужен для параллельных прогонов.
type recordSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordSink) OnEvent(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
}

func (s *recordSink) countStatus(status Status) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, evt := range s.events {
		if evt.Status == status {
			n++
		}
	}
	return n
}

func testOptions() Options {
	return Options{MaxDiagnostics: 32}
}

func virtualFile(t *testing.T, fs *source.FileSet, name, content string) source.FileID {
	t.Helper()
	return fs.AddVirtual(name, []byte(content))
}

func loadTestManifest(t *testing.T, content string) *manifest.Manifest {
	t.Helper()
	path := filepath.Join(t.TempDir(), manifest.FileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	m, err := manifest.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	return m
}

func resultLabel(result FileResult, idx int) string {
	return types.Label(result.Types, result.Resolutions[idx].Result)
}

func TestResolveFileBasic(t *testing.T) {
	fs := source.NewFileSet()
	fileID := virtualFile(t, fs, "queries.mq", "complex<f32> * i64;\nbool * bool;\n")

	result := ResolveFile(fs, fileID, Setup{}, testOptions())

	if result.FromCache {
		t.Fatalf("unexpected cache hit")
	}
	if len(result.Resolutions) != 2 {
		t.Fatalf("resolutions = %d, want 2", len(result.Resolutions))
	}
	if got := resultLabel(result, 0); got != "complex<f64>" {
		t.Fatalf("first result = %q, want complex<f64>", got)
	}
	if result.Resolutions[0].Rank != rules.RankFamily {
		t.Fatalf("first rank = %v, want family", result.Resolutions[0].Rank)
	}
	if result.Resolutions[1].Err == nil {
		t.Fatalf("bool * bool must not resolve")
	}
	if !errors.Is(result.Resolutions[1].Err, resolver.ErrNoResolution) {
		t.Fatalf("unexpected error: %v", result.Resolutions[1].Err)
	}
	if result.Resolved() != 1 || result.Failed() != 1 {
		t.Fatalf("resolved/failed = %d/%d", result.Resolved(), result.Failed())
	}

	// Неразрешённый запрос превращается в диагностику с нотами на операнды.
	if result.Bag.Len() != 1 {
		t.Fatalf("bag length = %d, want 1", result.Bag.Len())
	}
	d := result.Bag.Items()[0]
	if d.Code != diag.ResolveNoRule {
		t.Fatalf("code = %s", d.Code.ID())
	}
	if len(d.Notes) != 2 {
		t.Fatalf("notes = %d, want 2", len(d.Notes))
	}
	file := fs.Get(fileID)
	if got := string(file.Content[d.Primary.Start:d.Primary.End]); got != "bool * bool;" {
		t.Fatalf("primary span covers %q", got)
	}
	if got := string(file.Content[d.Notes[0].Span.Start:d.Notes[0].Span.End]); got != "bool" {
		t.Fatalf("left note span covers %q", got)
	}

	if result.Timing == nil || len(result.Timing.Phases) != 2 {
		t.Fatalf("timing report = %+v", result.Timing)
	}
	if result.Timing.Phases[0].Name != "parse" || result.Timing.Phases[1].Name != "resolve" {
		t.Fatalf("phase names = %+v", result.Timing.Phases)
	}
}

func TestResolveFileParseRecovery(t *testing.T) {
	fs := source.NewFileSet()
	fileID := virtualFile(t, fs, "queries.mq", "bool<x> * i64;\nf32 * f64;\n")

	result := ResolveFile(fs, fileID, Setup{}, testOptions())

	if len(result.Resolutions) != 1 {
		t.Fatalf("resolutions = %d, want 1 after resync", len(result.Resolutions))
	}
	if got := resultLabel(result, 0); got != "f64" {
		t.Fatalf("surviving query = %q, want f64", got)
	}
	if !result.Bag.HasErrors() {
		t.Fatalf("parse error not recorded")
	}
}

func TestResolveFileWithManifest(t *testing.T) {
	m := loadTestManifest(t, `[package]
name = "demo"

[[extern]]
name = "quaternion"

[[extern.mult]]
rhs = "f32"
result = "quaternion"
commutative = true

[[extern.mult]]
rhs = "quaternion"
result = "quaternion"
`)

	fs := source.NewFileSet()
	fileID := virtualFile(t, fs, "queries.mq", "quaternion * f32;\nconst quaternion& * quaternion;\nf32 * quaternion;\n")

	result := ResolveFile(fs, fileID, Setup{Manifest: m}, testOptions())

	if result.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %d", result.Bag.Len())
	}
	for i := range result.Resolutions {
		if got := resultLabel(result, i); got != "quaternion" {
			t.Fatalf("query %d = %q, want quaternion", i, got)
		}
	}
}

func TestResolveFileEvents(t *testing.T) {
	sink := &recordSink{}
	opts := testOptions()
	opts.Sink = sink

	fs := source.NewFileSet()
	fileID := virtualFile(t, fs, "queries.mq", "f32 * i64;\n")
	ResolveFile(fs, fileID, Setup{}, opts)

	want := []struct {
		stage  Stage
		status Status
	}{
		{StageParse, StatusWorking},
		{StageParse, StatusDone},
		{StageResolve, StatusWorking},
		{StageResolve, StatusDone},
	}
	if len(sink.events) != len(want) {
		t.Fatalf("events = %d, want %d", len(sink.events), len(want))
	}
	for i, w := range want {
		evt := sink.events[i]
		if evt.Stage != w.stage || evt.Status != w.status {
			t.Fatalf("event %d = %s/%s, want %s/%s", i, evt.Stage, evt.Status, w.stage, w.status)
		}
		if evt.File != "queries.mq" {
			t.Fatalf("event %d file = %q", i, evt.File)
		}
	}
}

func TestResolveFileErrorEvent(t *testing.T) {
	sink := &recordSink{}
	opts := testOptions()
	opts.Sink = sink

	fs := source.NewFileSet()
	fileID := virtualFile(t, fs, "queries.mq", "bool * bool;\n")
	ResolveFile(fs, fileID, Setup{}, opts)

	// parse прошёл чисто, resolve должен отметиться ошибкой
	if got := sink.events[1].Status; got != StatusDone {
		t.Fatalf("parse status = %s, want done", got)
	}
	if got := sink.events[3].Status; got != StatusError {
		t.Fatalf("resolve status = %s, want error", got)
	}
}

func TestResolveFileTimings(t *testing.T) {
	opts := testOptions()
	opts.Timings = true

	fs := source.NewFileSet()
	fileID := virtualFile(t, fs, "queries.mq", "f32 * i64;\n")
	result := ResolveFile(fs, fileID, Setup{}, opts)

	if result.Bag.Len() != 1 {
		t.Fatalf("bag length = %d, want 1 timing entry", result.Bag.Len())
	}
	d := result.Bag.Items()[0]
	if d.Code != diag.ObsTimings || d.Severity != diag.SevInfo {
		t.Fatalf("timing diagnostic = %s/%s", d.Code.ID(), d.Severity)
	}
	if len(d.Notes) != 1 {
		t.Fatalf("notes = %d, want 1", len(d.Notes))
	}

	var payload struct {
		Kind   string `json:"kind"`
		Phases []struct {
			Name string `json:"name"`
		} `json:"phases"`
	}
	if err := json.Unmarshal([]byte(d.Notes[0].Msg), &payload); err != nil {
		t.Fatalf("note is not JSON: %v", err)
	}
	if payload.Kind != "file" || len(payload.Phases) != 2 {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestResolveArgv(t *testing.T) {
	fs := source.NewFileSet()
	result := ResolveArgv(fs, "const complex<f32>& * i64", Setup{}, testOptions())

	if len(result.Resolutions) != 1 {
		t.Fatalf("resolutions = %d, want 1", len(result.Resolutions))
	}
	if got := resultLabel(result, 0); got != "complex<f64>" {
		t.Fatalf("result = %q, want complex<f64>", got)
	}
	if result.Path != "<argv>" {
		t.Fatalf("path = %q", result.Path)
	}
}

func TestResolveArgvParseError(t *testing.T) {
	tests := []struct {
		name  string
		query string
		code  diag.Code
	}{
		{"missing right operand", "f32 *", diag.ParseExpectType},
		{"trailing junk", "f32 * i64; junk", diag.ParseTrailingInput},
		{"empty", "", diag.ParseEmptyQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := source.NewFileSet()
			result := ResolveArgv(fs, tt.query, Setup{}, testOptions())
			if len(result.Resolutions) != 0 {
				t.Fatalf("resolutions = %d, want 0", len(result.Resolutions))
			}
			found := false
			for _, d := range result.Bag.Items() {
				if d.Code == tt.code {
					found = true
				}
			}
			if !found {
				t.Fatalf("missing %s in diagnostics", tt.code.ID())
			}
		})
	}
}

func TestResolveArgvUnresolved(t *testing.T) {
	fs := source.NewFileSet()
	result := ResolveArgv(fs, "bool * bool", Setup{}, testOptions())

	if len(result.Resolutions) != 1 || result.Resolutions[0].Err == nil {
		t.Fatalf("resolutions = %+v", result.Resolutions)
	}
	if result.Bag.Len() != 1 || result.Bag.Items()[0].Code != diag.ResolveNoRule {
		t.Fatalf("bag = %+v", result.Bag.Items())
	}
	if !strings.Contains(result.Bag.Items()[0].Message, "bool * bool") {
		t.Fatalf("message = %q", result.Bag.Items()[0].Message)
	}
}
