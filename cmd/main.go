// Package main is the markl command: the resume enhancement API server and its CLI tools.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "markl",
	Short: "Multi-provider AI resume enhancement service",
	Long: "markl forwards resume text to OpenAI, Anthropic or Gemini, turns the reply into " +
		"reviewable suggestions and tracks the tokens and cost spent doing it.",
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
