package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"multrait/internal/driver"
	"multrait/internal/source"
	"multrait/internal/ui"
)

type batchOutcome struct {
	fs      *source.FileSet
	results []driver.FileResult
	err     error
}

func runBatchWithUI(ctx context.Context, title string, files []string, dir string, setup driver.Setup, opts driver.Options) (*source.FileSet, []driver.FileResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan batchOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Sink = driver.ChannelSink{Ch: events}
		fs, results, err := driver.ResolveDir(ctx, dir, setup, optsCopy)
		outcomeCh <- batchOutcome{fs: fs, results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.fs, outcome.results, uiErr
	}
	return outcome.fs, outcome.results, outcome.err
}
