package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/agentkit/agentctl/app"
	"github.com/agentkit/agentctl/config"
	"github.com/agentkit/agentctl/internal/observability"
	"github.com/agentkit/agentctl/services"
)

// Exit codes: tooling that shells out to agentctl distinguishes bad input
// from missing credentials from upstream failures.
const (
	exitOK            = 0
	exitError         = 1
	exitValidation    = 2
	exitConfiguration = 3
	exitTransport     = 4
)

const usage = `agentctl - dispatch prompts, scrape pages, and search the web

Usage:
  agentctl llm    --provider <name> --prompt <text> [--model <id>] [--image <path>]
  agentctl plan   --prompt <text> [--provider openai|anthropic] [--model <id>] [--file <path>]
  agentctl scrape [--max-concurrent <n>] [--text <text>] <url> [<url>...]
  agentctl search [--engine auto|serpapi|google|ddg] [--num-results <n>] <query>
  agentctl chat   [--provider <name>] [--model <id>]
  agentctl serve  [--port <n>]

Providers: openai, anthropic, azure_openai, deepseek, gemini
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return exitValidation
	}

	cfg, err := config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitConfiguration
	}

	logger, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitConfiguration
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, err := app.NewDependencies(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitConfiguration
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Warn("shutdown incomplete", zap.Error(err))
		}
	}()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "llm":
		err = runLLM(ctx, deps, rest)
	case "plan":
		err = runPlan(ctx, deps, rest)
	case "scrape":
		err = runScrape(ctx, deps, rest)
	case "search":
		err = runSearch(ctx, deps, rest)
	case "chat":
		err = runChat(ctx, deps, rest)
	case "serve":
		err = runServe(ctx, deps, rest)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return exitOK
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n%s", cmd, usage)
		return exitValidation
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

// exitCode maps an error to the process exit code by its domain error type
func exitCode(err error) int {
	switch services.GetErrorType(err) {
	case services.ErrorTypeValidation:
		return exitValidation
	case services.ErrorTypeConfiguration:
		return exitConfiguration
	case services.ErrorTypeTransport:
		return exitTransport
	default:
		return exitError
	}
}
