package multrait

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"multrait/internal/resolver"
	"multrait/internal/rules"
)

func TestResultType(t *testing.T) {
	cases := []struct {
		left  string
		right string
		want  string
	}{
		{"f32", "f64", "f64"},
		{"complex<f32>", "i64", "complex<f64>"},
		{"const complex<f32>&", "i64", "complex<f64>"},
		{"vec<f64, 3>", "f64", "vec<f64, 3>"},
		{"mat<f32, 2, 2>", "vec<f32, 2>", "vec<f32, 2>"},
		{"volatile i16&", "const u8", "i16"},
	}
	for _, tc := range cases {
		got, err := ResultType(tc.left, tc.right)
		if err != nil {
			t.Fatalf("ResultType(%q, %q) error: %v", tc.left, tc.right, err)
		}
		if got != tc.want {
			t.Fatalf("ResultType(%q, %q) = %q, want %q", tc.left, tc.right, got, tc.want)
		}
	}
}

func TestResultTypeNoDefault(t *testing.T) {
	_, err := ResultType("bool", "bool")
	if err == nil {
		t.Fatalf("expected error for bool * bool")
	}
	if !errors.Is(err, resolver.ErrNoResolution) {
		t.Fatalf("expected ErrNoResolution, got %v", err)
	}
}

func TestResultTypeMalformedOperand(t *testing.T) {
	if _, err := ResultType("complex<", "i64"); err == nil {
		t.Fatalf("expected error for malformed left operand")
	}
	if _, err := ResultType("f32", "vec<f32, 0>"); err == nil {
		t.Fatalf("expected error for malformed right operand")
	}
}

func TestEngineWithManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "multrait.toml")
	data := `[package]
name = "demo"

[[extern]]
name = "quaternion"

[[extern.mult]]
rhs = "f32"
result = "quaternion"
commutative = true

[[rule]]
left = "i8"
right = "i8"
result = "f32"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	engine, err := NewWithOptions(Options{ManifestPath: path})
	if err != nil {
		t.Fatalf("NewWithOptions: %v", err)
	}

	got, err := engine.ResultType("quaternion", "f32")
	if err != nil {
		t.Fatalf("quaternion * f32: %v", err)
	}
	if got != "quaternion" {
		t.Fatalf("quaternion * f32 = %q, want quaternion", got)
	}

	// Коммутативная сигнатура действует и с другой стороны.
	got, err = engine.ResultType("f32", "quaternion")
	if err != nil {
		t.Fatalf("f32 * quaternion: %v", err)
	}
	if got != "quaternion" {
		t.Fatalf("f32 * quaternion = %q, want quaternion", got)
	}

	got, err = engine.ResultType("i8", "i8")
	if err != nil {
		t.Fatalf("i8 * i8: %v", err)
	}
	if got != "f32" {
		t.Fatalf("i8 * i8 = %q, want f32 (literal rule)", got)
	}
}

func TestNewWithOptionsRejectsBadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "multrait.toml")
	data := `[package]
name = "demo"

[[extern]]
name = "f32"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	if _, err := NewWithOptions(Options{ManifestPath: path}); err == nil {
		t.Fatalf("expected error for extern shadowing a builtin")
	}
}

func TestResolveQuery(t *testing.T) {
	engine := New()

	res, err := engine.ResolveQuery("const complex<f32>& * i64")
	if err != nil {
		t.Fatalf("ResolveQuery: %v", err)
	}
	if res.Left != "const complex<f32>&" {
		t.Fatalf("Left = %q, want const complex<f32>&", res.Left)
	}
	if res.Right != "i64" {
		t.Fatalf("Right = %q, want i64", res.Right)
	}
	if res.Result != "complex<f64>" {
		t.Fatalf("Result = %q, want complex<f64>", res.Result)
	}
	if res.Rank != rules.RankFamily.String() {
		t.Fatalf("Rank = %q, want %q", res.Rank, rules.RankFamily.String())
	}
}

func TestResolveQueryUnresolvable(t *testing.T) {
	res, err := New().ResolveQuery("bool * bool;")
	if err == nil {
		t.Fatalf("expected error for bool * bool")
	}
	if !errors.Is(err, resolver.ErrNoResolution) {
		t.Fatalf("expected ErrNoResolution, got %v", err)
	}
	if res.Left != "bool" || res.Right != "bool" {
		t.Fatalf("operands = %q * %q, want bool * bool", res.Left, res.Right)
	}
}

func TestResolveQueryMalformed(t *testing.T) {
	if _, err := New().ResolveQuery("f32 *"); err == nil {
		t.Fatalf("expected error for truncated query")
	}
	if _, err := New().ResolveQuery(""); err == nil {
		t.Fatalf("expected error for empty query")
	}
}

func TestEngineConcurrent(t *testing.T) {
	engine := New()
	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			got, err := engine.ResultType("complex<f32>", "i64")
			if err == nil && got != "complex<f64>" {
				err = errors.New("got " + got)
			}
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		if err := <-done; err != nil {
			t.Fatalf("concurrent ResultType: %v", err)
		}
	}
}
