package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"multrait/internal/diag"
	"multrait/internal/diagfmt"
	"multrait/internal/driver"
	"multrait/internal/manifest"
	"multrait/internal/rules"
	"multrait/internal/source"
	"multrait/internal/types"
)

// loadSetup discovers the nearest manifest above startDir and validates it
// against a scratch rule table. Manifest diagnostics are rendered once here;
// sessions created from the returned Setup apply the manifest silently.
// A missing manifest is not an error: the builtin table alone is used then.
func loadSetup(cmd *cobra.Command, startDir string) (driver.Setup, error) {
	m, found, err := manifest.Discover(startDir)
	if err != nil {
		return driver.Setup{}, err
	}
	if !found {
		return driver.Setup{}, nil
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return driver.Setup{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	fs := source.NewFileSet()
	in := types.NewInterner()
	reg := rules.Standard(in)
	bag := diag.NewBag(maxDiagnostics)
	m.Apply(fs, in, reg, &diag.BagReporter{Bag: bag})

	if bag.Len() > 0 {
		quiet, qErr := cmd.Root().PersistentFlags().GetBool("quiet")
		if qErr != nil {
			return driver.Setup{}, qErr
		}
		if !quiet || bag.HasErrors() {
			useColor, cErr := colorEnabled(cmd, os.Stderr)
			if cErr != nil {
				return driver.Setup{}, cErr
			}
			diagfmt.Pretty(os.Stderr, bag, fs, diagfmt.PrettyOpts{
				Color:   useColor,
				Context: 2,
			})
		}
		if bag.HasErrors() {
			return driver.Setup{}, fmt.Errorf("manifest %s has errors", m.Path)
		}
	}
	return driver.Setup{Manifest: m}, nil
}

// colorEnabled читает флаг --color и проверяет, является ли вывод терминалом.
func colorEnabled(cmd *cobra.Command, out *os.File) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	return colorFlag == "on" || (colorFlag == "auto" && isTerminal(out)), nil
}

// silentFailure подавляет usage-вывод cobra: диагностики уже напечатаны.
func silentFailure(cmd *cobra.Command) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return fmt.Errorf("")
}
