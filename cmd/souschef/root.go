// Package main provides the entry point for the souschef CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for souschef.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "souschef",
		Short: "Recipe discovery and scaling pipeline",
		Long: `Souschef turns a free-text cooking request into a saved recipe document.

It searches the web for candidate recipe pages, extracts the most
promising one into a structured record using an OpenAI-compatible
inference endpoint, optionally rescales it to a target serving count,
and renders the result as markdown.

By default, souschef talks to a local inference server at
http://127.0.0.1:1234/v1. Use --endpoint to point it elsewhere.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCookCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
