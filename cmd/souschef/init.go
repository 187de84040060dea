package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/souschef.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = ".souschef"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new souschef configuration file",
		Long: `Initialize creates a new .souschef configuration file in the current directory.

The generated file includes:
- The inference endpoint and model settings
- Commented examples for dietary constraints and blocked domains
- Documentation for all available options

Examples:
  # Create .souschef in current directory
  souschef init

  # Create config file at a specific path
  souschef init -o myconfig.yaml

  # Force overwrite existing file
  souschef init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if _, statErr := os.Stat(outputPath); statErr == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
	}

	content, err := configTemplate.ReadFile("templates/souschef.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	if dir := filepath.Dir(outputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `Created configuration file: %s

Edit this file to configure settings such as:
  - The inference endpoint, model, and API key
  - Dietary constraints applied to every run
  - Domains to exclude from search results
`, outputPath)

	return nil
}
