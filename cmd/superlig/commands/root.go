// Package commands defines all Cobra CLI commands for the superlig binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/Kadirose05/superleaugechatbot-genai/internal/audit"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/config"
	"github.com/Kadirose05/superleaugechatbot-genai/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "superlig",
		Short: "Süper Lig football assistant answering Turkish questions over an indexed corpus",
		Long: `superlig answers natural language questions about Süper Lig football facts.

Questions are answered from an indexed document corpus: the question is
embedded, the most similar passages are retrieved, and an LLM generates a
Turkish answer grounded only in those passages. When no generation credential
is configured the assistant still retrieves and reports what it found.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.superlig/config.yaml).
See 'superlig --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.superlig/config.yaml)")

	root.AddCommand(
		NewAskCmd(),
		NewIngestCmd(),
		NewServeCmd(),
		NewVersionCmd(),
	)

	return root
}
