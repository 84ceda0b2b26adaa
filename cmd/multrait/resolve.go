package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"multrait/internal/diagfmt"
	"multrait/internal/driver"
	"multrait/internal/source"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [flags] \"<left> * <right>\"",
	Short: "Resolve the result type of a single multiplication query",
	Long:  `Resolve parses one query from the command line and prints the deduced result type`,
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
}

func runResolve(cmd *cobra.Command, args []string) error {
	query := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	setup, err := loadSetup(cmd, wd)
	if err != nil {
		return err
	}

	fs := source.NewFileSet()
	result := driver.ResolveArgv(fs, query, setup, driver.Options{MaxDiagnostics: maxDiagnostics})

	if result.Bag.Len() > 0 {
		useColor, cErr := colorEnabled(cmd, os.Stderr)
		if cErr != nil {
			return cErr
		}
		diagfmt.Pretty(os.Stderr, result.Bag, fs, diagfmt.PrettyOpts{
			Color:     useColor,
			Context:   2,
			ShowNotes: true,
		})
	}

	useColor, err := colorEnabled(cmd, os.Stdout)
	if err != nil {
		return err
	}

	switch format {
	case "pretty":
		err = diagfmt.FormatResolutionsPretty(os.Stdout, result.Types, result.Resolutions, fs, diagfmt.PrettyOpts{Color: useColor})
	case "short":
		err = diagfmt.FormatResolutionsShort(os.Stdout, result.Types, result.Resolutions, fs, diagfmt.PrettyOpts{Color: useColor})
	case "json":
		err = diagfmt.ResolutionsJSON(os.Stdout, result.Types, result.Resolutions, fs, diagfmt.JSONOpts{IncludePositions: true})
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	if err != nil {
		return err
	}

	if result.Bag.HasErrors() {
		return silentFailure(cmd)
	}
	return nil
}
