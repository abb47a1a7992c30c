// Package fetcher downloads article pages and extracts their main text.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"crypto_news/internal/domain"
)

const defaultMaxBodyBytes = 2 << 20

type Config struct {
	Timeout      time.Duration
	MaxBodyBytes int64
}

type Fetcher struct {
	httpClient   *http.Client
	maxBodyBytes int64
	logger       *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Fetcher {
	maxBytes := cfg.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBodyBytes
	}
	return &Fetcher{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		maxBodyBytes: maxBytes,
		logger:       logger.With("component", "fetcher"),
	}
}

// FetchText returns the readable body text of the page at url. Every failure
// wraps domain.ErrFetch.
func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", domain.ErrFetch, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; CryptoNewsIngester/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: execute request: %v", domain.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d", domain.ErrFetch, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: parse html: %v", domain.ErrFetch, err)
	}

	text := ExtractText(doc)
	if text == "" {
		return "", fmt.Errorf("%w: no text content", domain.ErrFetch)
	}

	f.logger.Debug("fetched page text", "url", url, "chars", len(text))
	return text, nil
}

// ExtractText prefers <article>, then <main>, then <body>. Paragraph text is
// joined when the container has paragraphs; otherwise its whole text is used.
func ExtractText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, header, footer, aside, form, iframe").Remove()

	var root *goquery.Selection
	for _, selector := range []string{"article", "main", "body"} {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			root = sel
			break
		}
	}
	if root == nil {
		root = doc.Selection
	}

	var paragraphs []string
	root.Find("p").Each(func(_ int, p *goquery.Selection) {
		if t := collapseSpace(p.Text()); t != "" {
			paragraphs = append(paragraphs, t)
		}
	})
	if len(paragraphs) > 0 {
		return strings.Join(paragraphs, "\n")
	}
	return collapseSpace(root.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
