package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/open-rag/reporag/internal/apperr"
	"github.com/open-rag/reporag/internal/config"
)

var setupForce bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Write a default config file",
	Long: `setup writes a reporag.config.json populated with the defaults
named throughout spec §4 and §6, as a starting point for a first run.
It refuses to overwrite an existing file unless --force is given.`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVar(&setupForce, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = "reporag.config.json"
	}

	if _, err := os.Stat(path); err == nil && !setupForce {
		return apperr.New(apperr.CodeConfigError, fmt.Sprintf("%s already exists; pass --force to overwrite", path))
	}

	body, err := json.MarshalIndent(config.Default(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling default config: %w", err)
	}
	body = append(body, '\n')

	if err := os.WriteFile(path, body, 0o644); err != nil {
		return apperr.Wrap(apperr.CodeConfigError, "writing config file", err)
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
