package news

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"XAUCopilot/internal/model"
)

// DefaultDuckDuckGoURL is the JavaScript-free DuckDuckGo endpoint.
const DefaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo implements Searcher by scraping the HTML results page.
type DuckDuckGo struct {
	Endpoint string
	Region   string
	Client   *http.Client
}

// NewDuckDuckGo creates a searcher with optional proxy support.
func NewDuckDuckGo(proxyURL string) *DuckDuckGo {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &DuckDuckGo{
		Endpoint: DefaultDuckDuckGoURL,
		Region:   "wt-wt",
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

// Search posts the query with the df (date filter) parameter and parses up to
// maxResults organic results. Ads are skipped.
func (d *DuckDuckGo) Search(ctx context.Context, query string, maxResults int, timeLimit string) ([]model.NewsItem, error) {
	form := url.Values{}
	form.Set("q", query)
	form.Set("b", "")
	form.Set("kl", d.Region)
	if timeLimit != "" {
		form.Set("df", timeLimit)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", "https://html.duckduckgo.com/")

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("duckduckgo: status %d, body: %s", resp.StatusCode, string(body))
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo parse: %w", err)
	}
	return parseResults(doc, maxResults), nil
}

func parseResults(doc *html.Node, maxResults int) []model.NewsItem {
	var items []model.NewsItem
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if maxResults > 0 && len(items) >= maxResults {
			return
		}
		if n.Type == html.ElementNode && hasClass(n, "result") {
			if !hasClass(n, "result--ad") {
				if it, ok := parseResult(n); ok {
					items = append(items, it)
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return items
}

func parseResult(n *html.Node) (model.NewsItem, bool) {
	var it model.NewsItem
	if a := findByClass(n, "result__a"); a != nil {
		it.Title = textContent(a)
		it.URL = resolveLink(attr(a, "href"))
	}
	if s := findByClass(n, "result__snippet"); s != nil {
		it.Snippet = textContent(s)
	}
	if ts := findByClass(n, "result__timestamp"); ts != nil {
		it.Date = textContent(ts)
	}
	if it.Title == "" && it.Snippet == "" && it.URL == "" {
		return it, false
	}
	return it, true
}

// resolveLink unwraps DuckDuckGo redirect links (//duckduckgo.com/l/?uddg=...).
func resolveLink(href string) string {
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

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func findByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode && hasClass(n, class) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}
