package main

import (
	"log"
	"os"

	"github.com/fatih/color"

	"github.com/open-cli-collective/wtx/internal/cmd/root"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("wtx: ")

	cmd := root.NewCmdRoot()
	if err := cmd.Execute(); err != nil {
		_, _ = color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
