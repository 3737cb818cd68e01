package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd is reporag's base command; every subcommand below builds its
// own App from the resolved config file rather than relying on a
// package-level init hook, so config errors surface as that
// subcommand's CONFIG_ERROR exit code instead of a bare startup panic.
var rootCmd = &cobra.Command{
	Use:   "reporag",
	Short: "reporag indexes a repository and serves retrieval-augmented answers over it",
	Long: `reporag chunks Markdown and source code, embeds and stores the
result in a hybrid vector/lexical collection, and serves search, ask,
and CRUD tools over MCP's stdio JSON-RPC transport.`,
}

// Execute adds all child commands to the root command and runs it. It
// translates a returned exitErr or apperr code into the process exit code spec §6
// names (0 success, 2 config error, 3 vector-store error, 4 partial
// failure, 1 otherwise); any other error exits 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCodeFor(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $MCP_CONFIG_FILE or ./reporag.config.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug-level) logging")
}
