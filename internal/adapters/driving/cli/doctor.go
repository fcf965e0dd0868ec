package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ErrUnhealthy is returned by doctor when any component check fails.
var ErrUnhealthy = errors.New("one or more components are unhealthy")

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check settings and connectivity",
	Long: `Validates the settings, then pings the embedding provider, the LLM and
the vector store and reports the number of indexed entries.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	healthy := true

	cmd.Print("settings      ")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("FAILED\n  %v\n", err)
		healthy = false
	} else {
		cmd.Println("OK")
	}

	ctx := commandContext(cmd)
	engine, err := openEngine(ctx)
	if err != nil {
		cmd.Printf("engine        FAILED\n  %v\n", err)
		return ErrUnhealthy
	}
	defer engine.Close()

	for _, c := range engine.Health(ctx) {
		label := fmt.Sprintf("%-13s ", c.Name)
		if c.Healthy() {
			cmd.Printf("%sOK (%s)\n", label, c.Detail)
			continue
		}
		cmd.Printf("%sFAILED (%s)\n  %v\n", label, c.Detail, c.Err)
		healthy = false
	}

	if n, err := engine.Count(ctx); err == nil {
		cmd.Printf("index         %d entries\n", n)
	}

	if !healthy {
		return ErrUnhealthy
	}
	return nil
}
