package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/upfund/internal/adapters/driving/tui"
	"github.com/custodia-labs/upfund/internal/core/ports/driving"
)

var tuiLimit int

// tuiRunner starts the application. Tests replace it to avoid taking over
// the terminal.
var tuiRunner = func(app *tui.App) error {
	return app.Run()
}

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for upfund.

The TUI lets you ask questions and browse the retrieved passages with
keyboard navigation.

Controls:
  ↑/k, ↓/j - Navigate results
  Enter    - Submit / Expand
  Tab      - Show or hide sources
  n        - New question
  Esc      - Back
  ?        - Toggle help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().IntVarP(&tuiLimit, "limit", "k", 0, "passages per question (0 = configured default)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) (err error) {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	ctx := commandContext(cmd)
	engine, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer engine.Close()

	app, err := tui.NewApp(tuiPorts(engine))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(ctx)

	if err := tuiRunner(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func tuiPorts(engine driving.Engine) *tui.Ports {
	ports := tui.NewPorts(engine, engine)
	ports.Stats = engine
	ports.Limit = tuiLimit
	return ports
}
