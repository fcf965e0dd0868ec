// Command upfund indexes a directory of documents and answers questions
// grounded on them.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/upfund/internal/adapters/driving/cli"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env is normal outside containers.
	_ = godotenv.Load()

	cli.SetVersion(version)
	cli.SetBootstrap(buildServices)

	if err := cli.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
