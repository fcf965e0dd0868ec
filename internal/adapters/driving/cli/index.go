package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/core/ports/driving"
)

// progressInterval is how often a long ingestion run reports it is alive.
const progressInterval = 2 * time.Second

var (
	indexShowWarnings bool
	indexShowStats    bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the raw documents directory",
	Long: `Extracts text from every supported file in the raw documents directory,
normalises and chunks it, embeds each chunk and upserts the result into the
vector store. Re-running is idempotent: chunk ids are derived from the file
path and chunk position.

Files without an extractor are skipped. Files that fail to extract and
chunks that fail to embed are reported as warnings; the run carries on.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVarP(&indexShowWarnings, "warnings", "w", false, "list every warning")
	indexCmd.Flags().BoolVar(&indexShowStats, "stats", false, "print the number of indexed entries afterwards")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	ctx := commandContext(cmd)
	engine, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer engine.Close()

	cmd.Println("Indexing documents...")

	report, err := indexWithProgress(ctx, cmd, engine)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	printReport(cmd, report, indexShowWarnings)

	if indexShowStats {
		n, err := engine.Count(ctx)
		if err != nil {
			return fmt.Errorf("counting entries: %w", err)
		}
		cmd.Printf("Index now holds %d entries.\n", n)
	}
	return nil
}

// indexWithProgress runs an ingestion while printing elapsed time.
func indexWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	ingestion driving.IngestionService,
) (*domain.IngestReport, error) {
	type result struct {
		report *domain.IngestReport
		err    error
	}

	done := make(chan result, 1)
	go func() {
		report, err := ingestion.IndexDocuments(ctx)
		done <- result{report, err}
	}()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	start := time.Now()
	printed := false
	for {
		select {
		case r := <-done:
			if printed {
				cmd.Println()
			}
			return r.report, r.err
		case <-ticker.C:
			cmd.Printf("\rIndexing... %s", time.Since(start).Round(time.Second))
			printed = true
		}
	}
}

func printReport(cmd *cobra.Command, report *domain.IngestReport, withWarnings bool) {
	if report == nil {
		return
	}

	cmd.Printf("Indexed %d chunks from %d files in %s.\n",
		report.ChunksIndexed, report.FilesIndexed, report.Duration.Round(time.Millisecond))
	cmd.Printf("  Files seen:    %d\n", report.FilesSeen)
	cmd.Printf("  Files skipped: %d\n", report.FilesSkipped)

	extraction := report.ExtractionFailures()
	embedding := report.EmbeddingFailures()
	if len(extraction) > 0 {
		cmd.Printf("  Extraction failures: %d\n", len(extraction))
	}
	if len(embedding) > 0 {
		cmd.Printf("  Embedding failures:  %d (stored as zero vectors)\n", len(embedding))
	}

	if len(report.Warnings) == 0 {
		return
	}
	if !withWarnings {
		cmd.Printf("%d warnings. Re-run with --warnings to list them.\n", len(report.Warnings))
		return
	}
	cmd.Println()
	cmd.Println("Warnings:")
	for _, w := range report.Warnings {
		cmd.Printf("  - %v\n", w)
	}
}
