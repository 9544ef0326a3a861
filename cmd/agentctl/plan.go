package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/agentkit/agentctl/app"
	"github.com/agentkit/agentctl/services/plan"
)

// runPlan asks a reasoning model for an implementation plan and prints it
func runPlan(ctx context.Context, deps *app.Dependencies, args []string) error {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	prompt := fs.String("prompt", "", "task description (required)")
	provider := fs.String("provider", "openai", "provider to use (openai or anthropic)")
	model := fs.String("model", "", "model identifier (default "+plan.DefaultModel+")")
	file := fs.String("file", "", "file whose content is added to the planning context")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result, err := deps.Plan.Plan(ctx, &plan.Request{
		Prompt:   *prompt,
		Provider: *provider,
		Model:    *model,
		FilePath: *file,
	})
	if err != nil {
		return err
	}

	fmt.Println("\n----- PLANNING RESULT -----")
	fmt.Println()
	fmt.Println(result.Text)
	fmt.Println("\n--------------------------")
	return nil
}
