package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/logger"
)

// snippetWidth bounds the chunk preview printed under each hit.
const snippetWidth = 160

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Retrieve the passages closest to a query",
	Long: `Embeds the query and returns the nearest chunks from the vector index,
best first. No answer is generated; use 'upfund ask' for that.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "k", 0, "number of hits (0 = configured default)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output hits as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]
	if searchJSON {
		logger.SetQuiet(true)
		defer logger.SetQuiet(false)
	}

	ctx := commandContext(cmd)
	engine, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer engine.Close()

	hits, err := engine.Retrieve(ctx, query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputJSON(cmd, hits)
	}
	outputHits(cmd, hits)
	return nil
}

// outputJSON prints v as indented JSON.
func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputHits(cmd *cobra.Command, hits []domain.RetrievedHit) {
	if len(hits) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range hits {
		// Format: [N] Title (Score)
		title := hits[i].Title
		if title == "" {
			title = "(untitled)"
		}
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, title, hits[i].Score)
		if snippet := snippet(hits[i].Chunk, snippetWidth); snippet != "" {
			cmd.Printf("      %s\n", snippet)
		}
		cmd.Println()
	}
}

// snippet collapses whitespace and truncates s to n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
