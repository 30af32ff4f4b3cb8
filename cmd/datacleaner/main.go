// Command datacleaner consolidates and cleans CSV files from the command line.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/datacleaner/internal/config"
	"github.com/JonMunkholm/datacleaner/internal/core"
	"github.com/JonMunkholm/datacleaner/internal/logging"
)

func main() {
	// A missing .env is fine; real env vars win over it.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration:", err)
		os.Exit(2)
	}
	logging.SetupWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)

	if err := newRootCmd(cfg).Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError shows the coded user message when there is one, then the
// technical detail.
func printError(w io.Writer, err error) {
	if core.IsUserFacing(err) {
		fmt.Fprintln(w, core.FormatUserError(err))
	}
	fmt.Fprintln(w, "error:", err)
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "datacleaner",
		Short:         "Consolidate CSV files into one schema and clean their columns",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(cfg))
	root.AddCommand(newInspectCmd(cfg))
	root.AddCommand(newRulesCmd())
	return root
}
