package search

// Engine identifiers accepted by the search service
const (
	EngineAuto       = "auto"
	EngineSerpAPI    = "serpapi"
	EngineGoogle     = "google"
	EngineDuckDuckGo = "ddg"
)

// Request describes a single web search
type Request struct {
	Query      string
	Engine     string
	NumResults int
}

// Result is one search hit
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Response carries the hits together with the engine that produced them
type Response struct {
	Engine  string   `json:"engine"`
	Results []Result `json:"results"`
}
