package answer

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bobmcallan/answerd/internal/common"

	"golang.org/x/net/html"
)

const (
	// maxExtractLen is a hard contract: extracted text is never longer.
	maxExtractLen   = 500
	inspectAttempts = 3
	fetchTimeout    = 10 * time.Second

	inspectorUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"
)

// Origin identifies which part of a page an extraction came from.
type Origin string

const (
	OriginStructuredData Origin = "structured_data"
	OriginTaggedElement  Origin = "tagged_element"
	OriginPageText       Origin = "page_text"
)

// Extraction is the most query-relevant text found on a page.
type Extraction struct {
	SourceURL string
	Text      string
	Origin    Origin
}

// Inspector fetches a URL and extracts query-relevant text from structured
// data, tag content attributes, or the full page text, in that priority.
type Inspector struct {
	httpClient *http.Client
	scorer     *Scorer
	logger     *common.Logger
}

// NewInspector creates an inspector with a 10s per-attempt fetch timeout.
func NewInspector(scorer *Scorer, logger *common.Logger, opts ...func(*Inspector)) *Inspector {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	i := &Inspector{
		httpClient: &http.Client{Timeout: fetchTimeout},
		scorer:     scorer,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// WithInspectorClient overrides the internal HTTP client.
func WithInspectorClient(hc *http.Client) func(*Inspector) {
	return func(i *Inspector) {
		i.httpClient = hc
	}
}

// Inspect fetches pageURL, retrying up to 3 times on network failure, and
// returns the first extraction that scores above zero against the query.
// Returns nil when the page yields nothing relevant; network failures are
// never surfaced as errors, only as a nil extraction.
func (i *Inspector) Inspect(ctx context.Context, pageURL, query string) *Extraction {
	queryWords := QueryWords(query)

	for attempt := 0; attempt < inspectAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil
		}

		doc, err := i.fetch(ctx, pageURL)
		if err != nil {
			i.logger.Debug().
				Str("url", pageURL).
				Int("attempt", attempt+1).
				Str("error", err.Error()).
				Msg("page fetch failed")
			continue
		}

		if ext := i.extract(doc, pageURL, queryWords); ext != nil {
			return ext
		}
		// Page fetched and parsed cleanly but nothing scored: no retry.
		return nil
	}

	return nil
}

func (i *Inspector) fetch(ctx context.Context, pageURL string) (*html.Node, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", inspectorUserAgent)

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch: status %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return doc, nil
}

// extract applies the priority chain: structured linked data, then content
// attributes of meta/div/span elements, then the full page text.
func (i *Inspector) extract(doc *html.Node, pageURL string, queryWords []string) *Extraction {
	if data := findStructuredData(doc); data != "" {
		if i.scorer.Score(data, queryWords) > 0 {
			return &Extraction{SourceURL: pageURL, Text: truncate(data), Origin: OriginStructuredData}
		}
	}

	for _, content := range findContentAttrs(doc) {
		lower := strings.ToLower(content)
		if i.scorer.Score(lower, queryWords) > 0 {
			return &Extraction{SourceURL: pageURL, Text: truncate(lower), Origin: OriginTaggedElement}
		}
	}

	text := strings.ToLower(visibleText(doc))
	if i.scorer.Score(text, queryWords) > 0 {
		return &Extraction{SourceURL: pageURL, Text: truncate(text), Origin: OriginPageText}
	}

	return nil
}

// truncate cuts on a rune boundary so a multibyte page never yields
// invalid UTF-8.
func truncate(s string) string {
	if len(s) <= maxExtractLen {
		return s
	}
	cut := maxExtractLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// findStructuredData returns the body of the first ld+json script block.
func findStructuredData(doc *html.Node) string {
	var data string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if data != "" {
			return
		}
		if n.Type == html.ElementNode && n.Data == "script" && nodeAttr(n, "type") == "application/ld+json" {
			var sb strings.Builder
			for child := n.FirstChild; child != nil; child = child.NextSibling {
				if child.Type == html.TextNode {
					sb.WriteString(child.Data)
				}
			}
			data = sb.String()
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return data
}

// findContentAttrs collects the content attribute of every meta, div and
// span element, in document order.
func findContentAttrs(doc *html.Node) []string {
	var values []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "meta", "div", "span":
				if v := nodeAttr(n, "content"); v != "" {
					values = append(values, v)
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return values
}

// visibleText concatenates text nodes, skipping script and style bodies.
func visibleText(doc *html.Node) string {
	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func nodeAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
