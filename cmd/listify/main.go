package main

import (
	"os"

	"github.com/villegasmiguelangel268-maker/listify/internal/cli"
)

func main() {
	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
