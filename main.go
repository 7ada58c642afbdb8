package main

import (
	"os"

	_ "github.com/agentx-labs/exthost/extensions/acme"
	"github.com/agentx-labs/exthost/internal/cli"
)

// version, commit, and date are set via ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	if err := cli.Execute(version, commit, date); err != nil {
		os.Exit(1)
	}
}
