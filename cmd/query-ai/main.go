// Package main is the entry point for query-ai, which forwards a prompt
// from stdin to a chat-completion API and prints the reply.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/openai/openai-go/option"

	"github.com/dspinellis/ai-repo-feedback/internal/config"
	"github.com/dspinellis/ai-repo-feedback/internal/llm"
)

func main() {
	model := flag.String("model", "", `the model to use (default "gpt-4o")`)
	maxTokens := flag.Int("max_tokens", 0, "the maximum number of tokens to include in the response (default 150)")
	configPath := flag.String("config", "", "path to YAML configuration file (optional)")
	flag.Parse()

	// A missing .env file is fine; real environment variables win anyway.
	_ = godotenv.Load()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Logging.Level)

	if *model == "" {
		*model = cfg.OpenAI.Model
	}
	if *maxTokens == 0 {
		*maxTokens = cfg.OpenAI.MaxTokens
	}

	prompt, err := io.ReadAll(os.Stdin)
	if err != nil {
		slog.Error("failed to read prompt from stdin", "error", err)
		os.Exit(1)
	}

	// max_tokens is parsed for CLI compatibility but not forwarded with
	// the request; the API's default response length applies.
	slog.Debug("querying model", "model", *model, "max_tokens", *maxTokens)

	client := llm.NewOpenAI(clientOptions(cfg)...)

	response, err := client.Complete(context.Background(), *model, strings.TrimSpace(string(prompt)))
	if err != nil {
		slog.Error("query failed", "model", *model, "error", err)
		os.Exit(1)
	}

	fmt.Println(response)
}

// loadConfig loads configuration from the specified path (YAML + env override)
// or from environment variables only if no path is given.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	return config.Load()
}

// clientOptions translates explicit configuration into SDK options.
// With no explicit values the SDK resolves OPENAI_API_KEY and
// OPENAI_BASE_URL from the environment on its own.
func clientOptions(cfg *config.Config) []option.RequestOption {
	var opts []option.RequestOption
	if cfg.OpenAI.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.OpenAI.APIKey))
	}
	if cfg.OpenAI.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	return opts
}

// setupLogger configures the global slog logger at the specified level.
// Diagnostics go to stderr; stdout carries only the completion text.
func setupLogger(level string) {
	var logLevel slog.Level

	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
