// Package search provides the DuckDuckGo client used for ranked web search
// and for the conversational completion channel on the same backend.
package search

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	defaultHTMLBaseURL = "https://html.duckduckgo.com"
	defaultChatBaseURL = "https://duckduckgo.com"
	defaultChatModel   = "gpt-4o-mini"
	defaultUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/58.0.3029.110 Safari/537.3"
)

// Candidate is one ranked search result. Backend ordering is preserved.
type Candidate struct {
	Title   string
	URL     string
	Snippet string
}

// Client captures the two operations the resolution pipelines need from the
// search backend.
type Client interface {
	Text(ctx context.Context, query string, maxResults int) ([]Candidate, error)
	Chat(ctx context.Context, prompt string) (string, error)
}

// DuckDuckGo is a thin client for the DuckDuckGo HTML endpoint and the
// duckchat completion API. The chat API is a bespoke two-step protocol
// (vqd token handshake, then an event stream) with no published SDK.
type DuckDuckGo struct {
	htmlBaseURL string
	chatBaseURL string
	region      string
	chatModel   string
	userAgent   string
	httpClient  *http.Client
}

// NewDuckDuckGo constructs a client with sane defaults.
func NewDuckDuckGo(region string, opts ...func(*DuckDuckGo)) *DuckDuckGo {
	c := &DuckDuckGo{
		htmlBaseURL: defaultHTMLBaseURL,
		chatBaseURL: defaultChatBaseURL,
		region:      region,
		chatModel:   defaultChatModel,
		userAgent:   defaultUserAgent,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithHTTPClient overrides the internal HTTP client.
func WithHTTPClient(hc *http.Client) func(*DuckDuckGo) {
	return func(c *DuckDuckGo) {
		c.httpClient = hc
	}
}

// WithBaseURLs overrides the search and chat base URLs (useful for tests).
func WithBaseURLs(htmlBase, chatBase string) func(*DuckDuckGo) {
	return func(c *DuckDuckGo) {
		if htmlBase != "" {
			c.htmlBaseURL = htmlBase
		}
		if chatBase != "" {
			c.chatBaseURL = chatBase
		}
	}
}

// WithChatModel overrides the completion model.
func WithChatModel(model string) func(*DuckDuckGo) {
	return func(c *DuckDuckGo) {
		if model != "" {
			c.chatModel = model
		}
	}
}

// Text executes a ranked search and returns up to maxResults candidates in
// backend order.
func (c *DuckDuckGo) Text(ctx context.Context, query string, maxResults int) ([]Candidate, error) {
	params := url.Values{}
	params.Set("q", query)
	if c.region != "" {
		params.Set("kl", c.region)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.htmlBaseURL+"/html/?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("search: create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search: backend returned %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("search: parse results page: %w", err)
	}

	candidates := parseResults(doc)
	if maxResults > 0 && len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}
	return candidates, nil
}

// Chat sends a prompt through the duckchat completion API and returns the
// assembled response text.
func (c *DuckDuckGo) Chat(ctx context.Context, prompt string) (string, error) {
	vqd, err := c.chatToken(ctx)
	if err != nil {
		return "", err
	}

	payload := map[string]interface{}{
		"model": c.chatModel,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("search: marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chatBaseURL+"/duckchat/v1/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("search: create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("x-vqd-4", vqd)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search: chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("search: chat api error %d: %s", resp.StatusCode, string(data))
	}

	return readChatStream(resp.Body)
}

// chatToken performs the vqd handshake required before a chat call.
func (c *DuckDuckGo) chatToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.chatBaseURL+"/duckchat/v1/status", nil)
	if err != nil {
		return "", fmt.Errorf("search: create status request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("x-vqd-accept", "1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("search: status request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	vqd := resp.Header.Get("x-vqd-4")
	if vqd == "" {
		return "", fmt.Errorf("search: chat token missing from status response")
	}
	return vqd, nil
}

// readChatStream assembles the message fragments from a duckchat event
// stream body.
func readChatStream(r io.Reader) (string, error) {
	var sb strings.Builder
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" || data == "[DONE]" {
			continue
		}
		var fragment struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal([]byte(data), &fragment); err != nil {
			continue
		}
		sb.WriteString(fragment.Message)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("search: read chat stream: %w", err)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("search: chat response was empty")
	}
	return text, nil
}

// parseResults walks the results page and extracts ranked candidates.
// Each result block carries an anchor with class result__a and a snippet
// element with class result__snippet.
func parseResults(doc *html.Node) []Candidate {
	var candidates []Candidate

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "result") {
			if c, ok := parseResultNode(n); ok {
				candidates = append(candidates, c)
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return candidates
}

func parseResultNode(n *html.Node) (Candidate, bool) {
	var c Candidate

	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.ElementNode {
			switch {
			case node.Data == "a" && hasClass(node, "result__a") && c.URL == "":
				c.Title = strings.TrimSpace(textContent(node))
				c.URL = resolveRedirect(attr(node, "href"))
			case hasClass(node, "result__snippet") && c.Snippet == "":
				c.Snippet = strings.TrimSpace(textContent(node))
			}
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)

	if c.URL == "" {
		return Candidate{}, false
	}
	return c, true
}

// resolveRedirect unwraps the uddg redirect parameter DuckDuckGo wraps
// result links in, falling back to the raw href.
func resolveRedirect(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(node *html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
