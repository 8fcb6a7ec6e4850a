package main

import (
	"os"

	"github.com/charliek/wip/internal/cli"
	"github.com/charliek/wip/internal/domain"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(domain.GetExitCode(err))
	}
}
