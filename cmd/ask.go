package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/malayalamlabs/sahayi/internal/app"
)

var askLanguage string

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question from the terminal",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askLanguage, "language", "",
		`answer language: "en", "ml" or "manglish" (default: detect from the question)`)
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var a *app.App
	if cfg.GeminiAPIKey == "" {
		fmt.Fprintln(os.Stderr, "warning: GEMINI_API_KEY not set, answering in offline mode")
		a = app.NewOffline(cfg, logger)
	} else {
		a, err = app.Setup(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("initializing application: %w", err)
		}
	}
	defer a.Close(ctx)

	question := strings.Join(args, " ")

	seq, lang, _ := a.Pipeline.StreamAnswer(ctx, question, askLanguage)
	logger.Debug("answering", "language", lang, "model", a.ModelName)

	for chunk := range seq {
		fmt.Print(chunk)
	}
	fmt.Println()
	return nil
}
