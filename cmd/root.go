// Package cmd contains the sahayi CLI commands.
package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/malayalamlabs/sahayi/internal/config"
	"github.com/malayalamlabs/sahayi/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "sahayi",
	Short: "Sahayi - multilingual college assistant",
	Long: `Sahayi answers college questions in English, Malayalam and Manglish.

It detects the language of each question, retrieves matching documents
from the knowledge base and generates a grounded answer with Gemini.
Without an API key it falls back to canned offline responses.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	// A local .env is a convenience for development; absence is fine.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

// loadConfig loads configuration and builds the logger from it.
func loadConfig() (*config.Config, log.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	logger := log.New(log.Config{Level: log.ParseLevel(cfg.LogLevel), JSON: cfg.LogJSON})
	return cfg, logger, nil
}
