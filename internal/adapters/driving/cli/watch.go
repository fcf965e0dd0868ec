package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/upfund/internal/core/domain"
)

var watchSkipInitial bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-index whenever the raw documents directory changes",
	Long: `Runs an initial index, then watches the raw documents directory and
re-indexes after each burst of changes until interrupted.

Deleted files are not removed from the vector store.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchSkipInitial, "no-initial", false, "skip the initial index run")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer engine.Close()

	if !watchSkipInitial {
		cmd.Println("Indexing documents...")
		report, err := engine.IndexDocuments(ctx)
		if err != nil {
			return fmt.Errorf("indexing failed: %w", err)
		}
		printReport(cmd, report, false)
	}

	cmd.Println("Watching for changes. Press Ctrl+C to stop.")

	err = engine.Watch(ctx, func(report *domain.IngestReport, err error) {
		stamp := time.Now().Format(time.TimeOnly)
		if err != nil {
			cmd.PrintErrf("[%s] re-index failed: %v\n", stamp, err)
			return
		}
		cmd.Printf("[%s] re-indexed: %s\n", stamp, report)
	})
	if err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
