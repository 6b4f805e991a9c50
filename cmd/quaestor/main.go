package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/quaestor/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	// Backend credentials come from the environment; a .env file in
	// the working directory is a convenience, not a requirement.
	godotenv.Load() //nolint:errcheck

	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
