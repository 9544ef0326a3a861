package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/agentkit/agentctl/app"
	"github.com/agentkit/agentctl/config"
	"github.com/agentkit/agentctl/services/llm"
)

// runLLM dispatches a single prompt to the selected provider and prints the
// completion to stdout.
func runLLM(ctx context.Context, deps *app.Dependencies, args []string) error {
	fs := flag.NewFlagSet("llm", flag.ExitOnError)
	provider := fs.String("provider", config.ProviderOpenAI, "LLM provider to use")
	prompt := fs.String("prompt", "", "prompt text (required)")
	model := fs.String("model", "", "model identifier (provider default when empty)")
	image := fs.String("image", "", "path to an image attachment")
	temperature := fs.Float64("temperature", config.DefaultTemperature, "sampling temperature")
	maxTokens := fs.Int("max-tokens", config.DefaultMaxTokens, "maximum completion tokens")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := deps.LLM.Query(ctx, &llm.QueryRequest{
		Provider:    *provider,
		Prompt:      *prompt,
		Model:       *model,
		ImagePath:   *image,
		Temperature: *temperature,
		MaxTokens:   *maxTokens,
	})
	if err != nil {
		return err
	}

	fmt.Println(result.Text)
	return nil
}
