package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"multrait/internal/manifest"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new multrait extension set",
	Long: `Initialize a new multrait extension set by creating a manifest (multrait.toml)
and an example query file (queries.mq). If [path|name] is omitted, initializes
the current directory. If a non-existing name is provided, a directory will be
created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

// runInit scaffolds a multrait extension set at the specified target path
// (or the current working directory when no argument or "." is provided).
//
// It resolves the target path, creates the directory if it does not exist,
// derives a package name from the directory basename and refuses to
// initialize if multrait.toml already exists. On success it writes the
// manifest and an example query file and prints the created files.
func runInit(cmd *cobra.Command, args []string) error {
	// Resolve target directory
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		// treat as path or name relative to cwd
		arg := args[0]
		if !filepath.IsAbs(arg) {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		} else {
			target = arg
		}
	}

	// Ensure directory exists
	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	// Determine package name from directory basename
	name := filepath.Base(target)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "multrait-project"
	}

	// Create manifest file if not exists
	manifestPath := filepath.Join(target, manifest.FileName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("already initialized: %s exists", manifestPath)
	}

	if err := os.WriteFile(manifestPath, []byte(buildDefaultManifest(name)), os.FileMode(0o600)); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	// Create queries.mq if not exists
	queriesPath := filepath.Join(target, "queries.mq")
	createdQueries := false
	if _, err := os.Stat(queriesPath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(queriesPath, []byte(defaultQueriesMQ()), 0o600); err != nil {
			return fmt.Errorf("failed to write queries.mq: %w", err)
		}
		createdQueries = true
	}

	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, target); err2 == nil {
			rel = r
		}
	}
	fmt.Fprintf(os.Stdout, "Initialized multrait extension set in %s\n", rel)
	fmt.Fprintf(os.Stdout, "  - %s\n", manifest.FileName)
	if createdQueries {
		fmt.Fprintf(os.Stdout, "  - queries.mq\n")
	} else {
		fmt.Fprintf(os.Stdout, "  - queries.mq (existing)\n")
	}
	return nil
}

// buildDefaultManifest returns a minimal TOML manifest for a multrait
// extension set using the provided package name. Extern and rule examples
// are left commented out so a fresh set starts with the builtin table only.
func buildDefaultManifest(name string) string {
	return fmt.Sprintf(`# Multrait extension manifest
[package]
name = "%s"
version = "0.1.0"

# Declare opaque extern types and their multiplication signatures:
#
# [[extern]]
# name = "quaternion"
#
# [[extern.mult]]
# rhs = "f32"
# result = "quaternion"
# commutative = true

# Literal rules outrank the builtin families:
#
# [[rule]]
# left = "i8"
# right = "i8"
# result = "f32"
`, name)
}

// defaultQueriesMQ returns the example query file used when initializing a
// new extension set.
func defaultQueriesMQ() string {
	return `// Example result type queries. One per line, semicolon terminated.
complex<f32> * i64;
vec<f64, 3> * f64;
const mat<f32, 2, 2>& * vec<f32, 2>;
`
}
