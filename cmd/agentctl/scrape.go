package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/agentkit/agentctl/app"
	"github.com/agentkit/agentctl/config"
	"github.com/agentkit/agentctl/services/scrape"
)

// runScrape fetches the given URLs and prints the extracted text of each.
// Failed URLs are reported inline and do not abort the batch.
func runScrape(ctx context.Context, deps *app.Dependencies, args []string) error {
	fs := flag.NewFlagSet("scrape", flag.ExitOnError)
	maxConcurrent := fs.Int("max-concurrent", config.DefaultMaxConcurrent, "maximum concurrent fetches")
	text := fs.String("text", "", "free text to extract additional URLs from")
	if err := fs.Parse(args); err != nil {
		return err
	}

	urls := fs.Args()
	if *text != "" {
		urls = append(urls, scrape.URLsFromText(*text)...)
	}

	results, err := deps.Scrape.Scrape(ctx, &scrape.Request{
		URLs:          urls,
		MaxConcurrent: *maxConcurrent,
	})
	if err != nil {
		return err
	}

	for i, res := range results {
		if i > 0 {
			fmt.Println()
		}
		fmt.Printf("=== %s ===\n", res.URL)
		if !res.Success {
			fmt.Printf("Error: %s\n", res.Error)
			continue
		}
		if res.Title != "" {
			fmt.Printf("Title: %s\n\n", res.Title)
		}
		fmt.Println(res.Content)
	}
	return nil
}
