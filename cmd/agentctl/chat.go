package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/chzyer/readline"

	"github.com/agentkit/agentctl/app"
	"github.com/agentkit/agentctl/config"
	"github.com/agentkit/agentctl/services/llm"
	"github.com/agentkit/agentctl/services/providers"
)

// runChat starts an interactive REPL against one provider. Conversation
// history is kept in memory and replayed with every turn.
func runChat(ctx context.Context, deps *app.Dependencies, args []string) error {
	fs := flag.NewFlagSet("chat", flag.ExitOnError)
	provider := fs.String("provider", config.ProviderOpenAI, "LLM provider to use")
	model := fs.String("model", "", "model identifier (provider default when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer func() { _ = rl.Close() }()

	fmt.Printf("Chatting with %s. Type /reset to clear history, /quit to exit.\n", *provider)

	var history []providers.Message
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch line {
		case "/quit", "/exit":
			return nil
		case "/reset":
			history = nil
			fmt.Println("History cleared.")
			continue
		}

		result, err := deps.LLM.Query(ctx, &llm.QueryRequest{
			Provider: *provider,
			Prompt:   line,
			Model:    *model,
			History:  history,
			Tool:     "chat",
		})
		if err != nil {
			fmt.Println(err)
			continue
		}

		fmt.Println(result.Text)
		history = append(history,
			providers.Message{Role: "user", Content: line},
			providers.Message{Role: "assistant", Content: result.Text},
		)
	}
	return nil
}
