package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/malayalamlabs/sahayi/internal/app"
)

var ingestFile string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load a JSONL corpus into the knowledge base",
	Long: `Ingest reads a JSONL corpus and embeds each document into the
knowledge base. Every line holds one document:

    {"text": "english text | malayalam text | manglish text"}

Documents keep positional IDs, so re-running ingest replaces the
previous corpus in place.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFile, "file", "",
		"corpus file to load (default: the configured corpus_path)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	path := ingestFile
	if path == "" {
		path = cfg.CorpusPath
	}
	if path == "" {
		return fmt.Errorf("no corpus file: pass --file or set SAHAYI_CORPUS_PATH")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer a.Close(ctx)

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening corpus file: %w", err)
	}
	defer f.Close()

	count, err := a.Knowledge.Ingest(ctx, f)
	if err != nil {
		return fmt.Errorf("after %d documents: %w", count, err)
	}

	fmt.Printf("Ingested %d documents from %s\n", count, path)
	return nil
}
