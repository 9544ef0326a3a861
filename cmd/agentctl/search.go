package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/agentkit/agentctl/app"
	"github.com/agentkit/agentctl/config"
	"github.com/agentkit/agentctl/services/search"
)

// runSearch performs a web search and prints the hits
func runSearch(ctx context.Context, deps *app.Dependencies, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	engine := fs.String("engine", search.EngineAuto, "search engine (auto, serpapi, google, ddg)")
	numResults := fs.Int("num-results", config.DefaultNumResults, "number of results to return")
	if err := fs.Parse(args); err != nil {
		return err
	}

	resp, err := deps.Search.Search(ctx, &search.Request{
		Query:      strings.Join(fs.Args(), " "),
		Engine:     *engine,
		NumResults: *numResults,
	})
	if err != nil {
		return err
	}

	for _, res := range resp.Results {
		fmt.Printf("URL: %s\n", res.URL)
		fmt.Printf("Title: %s\n", res.Title)
		fmt.Printf("Snippet: %s\n", res.Snippet)
		fmt.Println()
	}
	return nil
}
