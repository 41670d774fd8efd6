package main

import (
	"os"

	"github.com/charmbracelet/log"

	"github.com/termpilot/termpilot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
