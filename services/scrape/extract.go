package scrape

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mvdan/xurls"
)

// Containers tried in order when looking for the main content of a page.
// The first match wins; when none match the whole body is used.
var contentSelectors = []string{
	"main",
	"article",
	`[role="main"]`,
	"#content",
	".content",
	"#main",
	".main",
}

// ExtractText parses an HTML document and returns its readable text. Script,
// style and boilerplate navigation elements are stripped, then paragraphs,
// headings and list items from the main content container are joined with
// blank lines.
func ExtractText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}

	doc.Find("script, style, nav, footer, iframe").Remove()

	container := doc.Find("body")
	for _, sel := range contentSelectors {
		if s := doc.Find(sel); s.Length() > 0 {
			container = s.First()
			break
		}
	}

	var parts []string
	container.Find("p, h1, h2, h3, h4, h5, h6, li").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text != "" {
			parts = append(parts, text)
		}
	})

	if len(parts) == 0 {
		if text := strings.TrimSpace(container.Text()); text != "" {
			parts = append(parts, text)
		}
	}

	return strings.Join(parts, "\n\n"), nil
}

// ExtractTitle returns the document title of an HTML page
func ExtractTitle(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Find("title").First().Text()), nil
}

// URLsFromText pulls all absolute URLs out of free-form text, preserving
// order and dropping duplicates. Useful for piping prose straight into a
// scrape batch.
func URLsFromText(text string) []string {
	matches := xurls.Strict.FindAllString(text, -1)
	seen := make(map[string]bool, len(matches))
	var urls []string
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			urls = append(urls, m)
		}
	}
	return urls
}
