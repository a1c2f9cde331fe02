package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	flagConfig    string
	flagModel     string
	flagBaseURL   string
	flagThreshold float64
	flagLogLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "promptgate",
	Short: "Structured LLM workflow patterns from the command line",
	Long: `promptgate runs natural-language requests through structured-output LLM
workflows: a gated calendar-event chain, a routed smart-home assistant, and
a parallel request guard. Every inference call is recorded in a local
history database.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = false

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagModel, "model", "", "Model identifier (default: deepseek-r1:1.5b)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Inference endpoint base URL (default: http://localhost:11434/v1)")
	rootCmd.PersistentFlags().Float64Var(&flagThreshold, "threshold", 0, "Confidence threshold for gate checks (default: 0.7)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (default: info)")
}

func newLogger(level string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parsed)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
