package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"multrait/internal/diag"
)

func writeQueryFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestResolveDirBasic(t *testing.T) {
	dir := t.TempDir()
	writeQueryFile(t, dir, "a.mq", "f32 * i64;\n")
	writeQueryFile(t, dir, "b.mq", "bool * bool;\n")
	writeQueryFile(t, dir, filepath.Join("sub", "c.mq"), "vec<f32, 3> * f32;\n")
	writeQueryFile(t, dir, "ignored.txt", "not queries")

	fs, results, err := ResolveDir(context.Background(), dir, Setup{}, testOptions())
	if err != nil {
		t.Fatalf("ResolveDir returned error: %v", err)
	}
	if fs == nil {
		t.Fatalf("nil FileSet")
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want 3", len(results))
	}

	// Порядок детерминирован: пути отсортированы.
	if !strings.HasSuffix(results[0].Path, "a.mq") ||
		!strings.HasSuffix(results[1].Path, "b.mq") ||
		!strings.HasSuffix(results[2].Path, "c.mq") {
		t.Fatalf("order = %q, %q, %q", results[0].Path, results[1].Path, results[2].Path)
	}

	if got := resultLabel(results[0], 0); got != "f64" {
		t.Fatalf("a.mq = %q, want f64", got)
	}
	if results[1].Failed() != 1 {
		t.Fatalf("b.mq failed = %d, want 1", results[1].Failed())
	}
	if got := resultLabel(results[2], 0); got != "vec<f32, 3>" {
		t.Fatalf("c.mq = %q, want vec<f32, 3>", got)
	}
}

func TestResolveDirEmpty(t *testing.T) {
	fs, results, err := ResolveDir(context.Background(), t.TempDir(), Setup{}, testOptions())
	if err != nil {
		t.Fatalf("ResolveDir returned error: %v", err)
	}
	if fs == nil {
		t.Fatalf("nil FileSet")
	}
	if len(results) != 0 {
		t.Fatalf("results = %d, want 0", len(results))
	}
}

func TestResolveDirSingleJob(t *testing.T) {
	dir := t.TempDir()
	writeQueryFile(t, dir, "a.mq", "u8 * u16;\n")
	writeQueryFile(t, dir, "b.mq", "i8 * f32;\n")

	opts := testOptions()
	opts.Jobs = 1
	_, results, err := ResolveDir(context.Background(), dir, Setup{}, opts)
	if err != nil {
		t.Fatalf("ResolveDir returned error: %v", err)
	}
	if got := resultLabel(results[0], 0); got != "u16" {
		t.Fatalf("a.mq = %q, want u16", got)
	}
	if got := resultLabel(results[1], 0); got != "f32" {
		t.Fatalf("b.mq = %q, want f32", got)
	}
}

func TestResolveDirCancelled(t *testing.T) {
	dir := t.TempDir()
	writeQueryFile(t, dir, "a.mq", "f32 * i64;\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := ResolveDir(ctx, dir, Setup{}, testOptions())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestResolveDirEvents(t *testing.T) {
	dir := t.TempDir()
	writeQueryFile(t, dir, "a.mq", "f32 * i64;\n")
	writeQueryFile(t, dir, "b.mq", "u8 * u8;\n")

	sink := &recordSink{}
	opts := testOptions()
	opts.Sink = sink

	if _, _, err := ResolveDir(context.Background(), dir, Setup{}, opts); err != nil {
		t.Fatalf("ResolveDir returned error: %v", err)
	}

	if got := sink.countStatus(StatusQueued); got != 2 {
		t.Fatalf("queued events = %d, want 2", got)
	}
	if got := sink.countStatus(StatusWorking); got != 4 {
		t.Fatalf("working events = %d, want 4", got)
	}
	if got := sink.countStatus(StatusDone); got != 4 {
		t.Fatalf("done events = %d, want 4", got)
	}
	if got := sink.countStatus(StatusError); got != 0 {
		t.Fatalf("error events = %d, want 0", got)
	}
}

func TestResolveDirSharedManifest(t *testing.T) {
	m := loadTestManifest(t, `[package]
name = "demo"

[[extern]]
name = "quaternion"

[[extern.mult]]
rhs = "quaternion"
result = "quaternion"
`)

	dir := t.TempDir()
	writeQueryFile(t, dir, "a.mq", "quaternion * quaternion;\n")
	writeQueryFile(t, dir, "b.mq", "quaternion * quaternion;\n")

	_, results, err := ResolveDir(context.Background(), dir, Setup{Manifest: m}, testOptions())
	if err != nil {
		t.Fatalf("ResolveDir returned error: %v", err)
	}
	for i, result := range results {
		if result.Bag.HasErrors() {
			t.Fatalf("file %d has errors", i)
		}
		if got := resultLabel(result, 0); got != "quaternion" {
			t.Fatalf("file %d = %q, want quaternion", i, got)
		}
	}
}

func TestListMQFiles(t *testing.T) {
	dir := t.TempDir()
	writeQueryFile(t, dir, "z.mq", "f32 * f32;\n")
	writeQueryFile(t, dir, "a.mq", "f32 * f32;\n")
	writeQueryFile(t, dir, "notes.md", "# not a query file")

	files, err := listMQFiles(dir)
	if err != nil {
		t.Fatalf("listMQFiles returned error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %v", files)
	}
	if !strings.HasSuffix(files[0], "a.mq") || !strings.HasSuffix(files[1], "z.mq") {
		t.Fatalf("unsorted: %v", files)
	}
}

func TestResolveDirLoadErrorProducesIODiagnostic(t *testing.T) {
	dir := t.TempDir()
	writeQueryFile(t, dir, "ok.mq", "f32 * f32;\n")
	// Каталог с именем *.mq: WalkDir его не включит, а вот символьная
	// ссылка в никуда попадёт в список и не загрузится.
	if err := os.Symlink(filepath.Join(dir, "missing"), filepath.Join(dir, "broken.mq")); err != nil {
		t.Skipf("symlink not supported: %v", err)
	}

	_, results, err := ResolveDir(context.Background(), dir, Setup{}, testOptions())
	if err != nil {
		t.Fatalf("ResolveDir returned error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}

	var ioResult *FileResult
	for i := range results {
		if strings.HasSuffix(results[i].Path, "broken.mq") {
			ioResult = &results[i]
		}
	}
	if ioResult == nil {
		t.Fatalf("broken.mq missing from results")
	}
	if ioResult.Bag.Len() != 1 || ioResult.Bag.Items()[0].Code != diag.IOLoadFileError {
		t.Fatalf("diagnostics = %+v", ioResult.Bag.Items())
	}
}
