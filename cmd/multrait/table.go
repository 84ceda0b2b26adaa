package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"multrait/internal/diagfmt"
)

var tableCmd = &cobra.Command{
	Use:   "table [flags]",
	Short: "Print the active multiplication rule table",
	Long:  `Table prints every registered rule in match order: literals first, then families, then the fallback`,
	Args:  cobra.NoArgs,
	RunE:  runTable,
}

func init() {
	tableCmd.Flags().String("format", "text", "output format (text|json)")
}

func runTable(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	setup, err := loadSetup(cmd, wd)
	if err != nil {
		return err
	}
	session := setup.NewSession()

	switch format {
	case "text":
		return diagfmt.FormatRulesText(os.Stdout, session.Types, session.Registry)
	case "json":
		return diagfmt.FormatRulesJSON(os.Stdout, session.Types, session.Registry)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
