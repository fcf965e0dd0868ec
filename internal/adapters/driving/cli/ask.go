package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/upfund/internal/core/domain"
	"github.com/custodia-labs/upfund/internal/logger"
)

var (
	askLimit   int
	askJSON    bool
	askSources bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed documents",
	Long: `Retrieves the passages closest to the question and asks the configured
LLM to answer from those passages only. When retrieval or generation
fails a fixed fallback answer is printed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askLimit, "limit", "k", 0, "number of passages to ground on (0 = configured default)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer and its sources as JSON")
	askCmd.Flags().BoolVar(&askSources, "sources", true, "list the passages the answer was grounded on")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askJSON {
		logger.SetQuiet(true)
		defer logger.SetQuiet(false)
	}

	ctx := commandContext(cmd)
	engine, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer engine.Close()

	answer := engine.Ask(ctx, args[0], askLimit)

	if askJSON {
		return outputJSON(cmd, answer)
	}
	outputAnswer(cmd, answer, askSources)
	return nil
}

func outputAnswer(cmd *cobra.Command, answer domain.Answer, withSources bool) {
	cmd.Println(answer.Text)
	if !withSources || len(answer.Sources) == 0 {
		return
	}

	cmd.Println()
	cmd.Printf("Sources (%d):\n", len(answer.Sources))
	for i, hit := range answer.Sources {
		title := hit.Title
		if title == "" {
			title = "(untitled)"
		}
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, title, hit.Score)
	}
}
