// Package preview fetches a best-effort local preview of a product page
// before the pipeline run starts, so the dashboard has something to show
// while the remote fetch_product stage is still working.
package preview

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"
)

const maxExcerpt = 280

// Preview holds the locally extracted product page summary.
type Preview struct {
	Title    string
	Excerpt  string
	SiteName string
}

// Fetcher fetches product pages via HTTP + readability extraction.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a preview fetcher.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// Fetch downloads the product page and extracts title and excerpt. Callers
// treat any error as non-fatal; the run proceeds without a preview.
func (f *Fetcher) Fetch(ctx context.Context, productURL string) (*Preview, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, productURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating preview request: %w", err)
	}
	req.Header.Set("User-Agent", "prodscope/1.0 (product dashboard)")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching product page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("fetching product page: %s", http.StatusText(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading product page: %w", err)
	}

	parsedURL, _ := url.Parse(productURL)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return nil, fmt.Errorf("extracting product page content: %w", err)
	}

	excerpt := strings.TrimSpace(article.Excerpt)
	if excerpt == "" {
		excerpt = strings.TrimSpace(article.TextContent)
	}
	excerpt = truncate(excerpt, maxExcerpt)

	return &Preview{
		Title:    strings.TrimSpace(article.Title),
		Excerpt:  excerpt,
		SiteName: article.SiteName,
	}, nil
}

// truncate shortens s to at most n runes, never splitting a multi-byte
// character, and marks the cut with an ellipsis.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}
