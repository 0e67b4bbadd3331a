package main

import (
	"github.com/spf13/cobra"

	"github.com/kailas-cloud/ragquery/internal/config"
	"github.com/kailas-cloud/ragquery/internal/logger"
	"github.com/kailas-cloud/ragquery/internal/version"
)

func newRootCmd() *cobra.Command {
	var (
		topK         int
		wrapWidth    int
		settingsPath string
		verbose      bool
	)

	cmd := &cobra.Command{
		Use:   "ragquery",
		Short: "Ask a question against a vector-indexed document collection",
		Long: `ragquery embeds a question, retrieves the most similar documents from
an Astra DB collection, and asks an OpenAI chat model to answer using
those documents as context.

Connection settings come from the environment (or a .env file):
ASTRA_DB_APPLICATION_TOKEN, ASTRA_DB_API_ENDPOINT,
ASTRA_DB_COLLECTION_NAME, ASTRA_DB_NAMESPACE, OPENAI_API_KEY.`,
		Version:       version.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(settingsPath)
			if err != nil {
				return err
			}
			if topK > 0 {
				cfg.Settings.TopK = topK
			}
			if wrapWidth > 0 {
				cfg.Settings.WrapWidth = wrapWidth
			}

			level := cfg.Settings.LogLevel
			if verbose {
				level = "debug"
			}
			log, err := logger.NewLogger(level)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			return runAsk(cmd.Context(), cfg, log, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&topK, "top", 0, "number of documents to retrieve (default 5)")
	cmd.Flags().IntVar(&wrapWidth, "wrap", 0, "answer wrap width in columns (default 150)")
	cmd.Flags().StringVar(&settingsPath, "settings", "", "path to an optional YAML settings file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}
