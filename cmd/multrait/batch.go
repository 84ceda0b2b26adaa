package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"multrait/internal/diag"
	"multrait/internal/diagfmt"
	"multrait/internal/driver"
	"multrait/internal/source"
)

var batchCmd = &cobra.Command{
	Use:   "batch [flags] <file.mq|directory>",
	Short: "Resolve every query in a file or in all *.mq files of a directory",
	Long:  `Batch reads multiplication queries from *.mq files and resolves the result type of each one`,
	Args:  cobra.ExactArgs(1),
	RunE:  runBatch,
}

func init() {
	batchCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	batchCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	batchCmd.Flags().Bool("disk-cache", false, "enable persistent disk cache for resolved files")
	batchCmd.Flags().String("ui", "auto", "interactive progress display (auto|on|off)")
	batchCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	batchCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

// batchFileJSON является пофайловой записью JSON-вывода batch.
type batchFileJSON struct {
	Resolutions []diagfmt.ResolutionJSON `json:"resolutions"`
	Resolved    int                      `json:"resolved"`
	Failed      int                      `json:"failed"`
	FromCache   bool                     `json:"from_cache,omitempty"`
	Diagnostics []diagfmt.DiagnosticJSON `json:"diagnostics,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	target := filepath.Clean(args[0])

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}

	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}

	enableDiskCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return fmt.Errorf("failed to get disk-cache flag: %w", err)
	}

	st, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat path: %w", err)
	}

	// Манифест ищется от целевой директории вверх по дереву.
	startDir := target
	if !st.IsDir() {
		startDir = filepath.Dir(target)
	}
	setup, err := loadSetup(cmd, startDir)
	if err != nil {
		return err
	}

	opts := driver.Options{
		MaxDiagnostics: maxDiagnostics,
		Timings:        showTimings,
	}
	if enableDiskCache {
		cache, cacheErr := driver.OpenDiskCache("multrait")
		if cacheErr != nil {
			return fmt.Errorf("failed to open disk cache: %w", cacheErr)
		}
		opts.Cache = cache
	}

	var (
		fs      *source.FileSet
		results []driver.FileResult
	)
	if st.IsDir() {
		jobs, jobsErr := cmd.Flags().GetInt("jobs")
		if jobsErr != nil {
			return fmt.Errorf("failed to get jobs flag: %w", jobsErr)
		}
		opts.Jobs = jobs

		uiValue, uiErr := cmd.Flags().GetString("ui")
		if uiErr != nil {
			return fmt.Errorf("failed to get ui flag: %w", uiErr)
		}
		mode, uiErr := readUIMode(uiValue)
		if uiErr != nil {
			return uiErr
		}

		if shouldUseTUI(mode) && format == "pretty" {
			files, listErr := listQueryFiles(target)
			if listErr != nil {
				return listErr
			}
			fs, results, err = runBatchWithUI(cmd.Context(), "resolving "+target, displayFileList(files), target, setup, opts)
		} else {
			fs, results, err = driver.ResolveDir(cmd.Context(), target, setup, opts)
		}
		if err != nil {
			return fmt.Errorf("resolution failed: %w", err)
		}
	} else {
		fs = source.NewFileSet()
		fileID, loadErr := fs.Load(target)
		if loadErr != nil {
			return fmt.Errorf("failed to load file: %w", loadErr)
		}
		results = []driver.FileResult{driver.ResolveFile(fs, fileID, setup, opts)}
	}

	exit := 0
	for _, r := range results {
		if r.Bag.HasErrors() {
			exit = 1
			break
		}
	}

	useColor, err := colorEnabled(cmd, os.Stdout)
	if err != nil {
		return err
	}
	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}
	prettyOpts := diagfmt.PrettyOpts{
		Color:    useColor,
		PathMode: pathMode,
	}
	diagOpts := diagfmt.PrettyOpts{
		Color:     useColor,
		Context:   2,
		PathMode:  pathMode,
		ShowNotes: withNotes,
	}
	jsonOpts := diagfmt.JSONOpts{
		IncludePositions: true,
		PathMode:         pathMode,
		IncludeNotes:     withNotes,
	}

	switch format {
	case "pretty":
		for idx, r := range results {
			if idx > 0 && !quiet {
				fmt.Fprintln(os.Stdout)
			}
			if !quiet {
				fmt.Fprintf(os.Stdout, "== %s ==\n", batchDisplayPath(r, fs, fullPath))
			}
			if r.Types != nil {
				if err := diagfmt.FormatResolutionsPretty(os.Stdout, r.Types, r.Resolutions, fs, prettyOpts); err != nil {
					return err
				}
			}
			if r.Bag.Len() > 0 {
				diagfmt.Pretty(os.Stdout, r.Bag, fs, diagOpts)
			}
		}
	case "short":
		for _, r := range results {
			if r.Types == nil {
				continue
			}
			if err := diagfmt.FormatResolutionsShort(os.Stdout, r.Types, r.Resolutions, fs, prettyOpts); err != nil {
				return err
			}
		}
		all := make([]diag.Diagnostic, 0, len(results))
		for _, r := range results {
			all = append(all, r.Bag.Items()...)
		}
		output := diag.FormatShortDiagnostics(all, fs, withNotes)
		if output != "" {
			fmt.Fprintln(os.Stdout, output)
		}
	case "json":
		output := make(map[string]batchFileJSON, len(results))
		for _, r := range results {
			resolutions := diagfmt.BuildResolutionsOutput(r.Types, r.Resolutions, fs, jsonOpts)
			entry := batchFileJSON{
				Resolutions: resolutions.Resolutions,
				Resolved:    resolutions.Resolved,
				Failed:      resolutions.Failed,
				FromCache:   r.FromCache,
			}
			if r.Bag.Len() > 0 {
				entry.Diagnostics = diagfmt.BuildDiagnosticsOutput(r.Bag, fs, jsonOpts).Diagnostics
			}
			output[batchDisplayPath(r, fs, fullPath)] = entry
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			return fmt.Errorf("failed to encode batch output: %w", err)
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	if showTimings && format == "pretty" {
		printStageTimings(os.Stdout, results)
	}

	if exit != 0 {
		return silentFailure(cmd)
	}
	return nil
}

// batchDisplayPath выбирает отображаемый путь файла: нормализованный из
// FileSet для загруженных файлов, исходный для файлов с ошибкой загрузки.
func batchDisplayPath(r driver.FileResult, fs *source.FileSet, fullPath bool) string {
	if r.Types == nil {
		if fullPath {
			if abs, err := filepath.Abs(r.Path); err == nil {
				return filepath.ToSlash(abs)
			}
		}
		return r.Path
	}
	mode := "auto"
	if fullPath {
		mode = "absolute"
	}
	return fs.Get(r.FileID).FormatPath(mode, fs.BaseDir())
}
