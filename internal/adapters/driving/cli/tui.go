package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/keaunsolNa/knock-crawling/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:     "browse",
	Aliases: []string{"tui"},
	Short:   "Browse records in an interactive terminal UI",
	Long: `Browse canonical records page by page and open one to see every field.

Controls:
  ↑/k, ↓/j  Move
  →/l, ←/h  Next / previous page
  Enter     Open record
  Esc       Back
  r         Refresh
  R         Run an ingestion pass
  q         Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	records, err := recordsService()
	if err != nil {
		return err
	}

	app, err := tui.NewApp(&tui.Ports{
		Records:   records,
		Ingestion: services.Ingestion,
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
