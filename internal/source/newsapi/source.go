package newsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"crypto_news/internal/domain"
)

const (
	SourceID   = "newsapi"
	SourceName = "NewsAPI"

	// removedTitle marks articles NewsAPI has withdrawn.
	removedTitle = "[Removed]"
)

// Config holds NewsAPI source configuration.
type Config struct {
	BaseURL        string
	APIKey         string
	Keywords       []string
	Language       string
	PageSize       int
	MaxPages       int
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Source fetches crypto articles from the NewsAPI everything endpoint.
type Source struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	query          string
	language       string
	pageSize       int
	maxPages       int
	maxAttempts    int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Source {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	maxPages := cfg.MaxPages
	if maxPages < 1 {
		maxPages = 1
	}
	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		query:          strings.Join(cfg.Keywords, " OR "),
		language:       cfg.Language,
		pageSize:       cfg.PageSize,
		maxPages:       maxPages,
		maxAttempts:    maxAttempts,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         logger.With("source", SourceID),
	}
}

func (s *Source) ID() string {
	return SourceID
}

func (s *Source) Name() string {
	return SourceName
}

// FetchArticles returns records published since the given time, newest first.
// A failure on the first page is an error; a failure on a later page ends
// pagination and keeps what was already fetched.
func (s *Source) FetchArticles(ctx context.Context, since time.Time) ([]domain.RawArticle, error) {
	if s.apiKey == "" {
		return nil, fmt.Errorf("%w: api key not configured", domain.ErrFeed)
	}

	var all []APIArticle

	for page := 1; page <= s.maxPages; page++ {
		resp, err := s.fetchPage(ctx, since, page)
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("%w: fetch page %d: %v", domain.ErrFeed, page, err)
			}
			s.logger.Warn("stopping pagination after page failure", "page", page, "error", err)
			break
		}

		all = append(all, resp.Articles...)

		s.logger.Debug("fetched page",
			"page", page,
			"articles", len(resp.Articles),
			"total", len(all),
			"total_results", resp.TotalResults,
		)

		if len(resp.Articles) < s.pageSize || len(all) >= resp.TotalResults {
			break
		}
	}

	return transform(all), nil
}

// permanentError marks failures retrying cannot fix.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func (s *Source) fetchPage(ctx context.Context, since time.Time, page int) (*APIResponse, error) {
	params := url.Values{}
	params.Set("q", s.query)
	params.Set("from", since.UTC().Format("2006-01-02T15:04:05"))
	params.Set("sortBy", "publishedAt")
	params.Set("language", s.language)
	params.Set("pageSize", strconv.Itoa(s.pageSize))
	params.Set("page", strconv.Itoa(page))
	reqURL := s.baseURL + "?" + params.Encode()

	var resp *APIResponse
	var err error

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		resp, err = s.doRequest(ctx, reqURL)
		if err == nil {
			return resp, nil
		}

		var perm *permanentError
		if errors.As(err, &perm) || attempt == s.maxAttempts {
			break
		}

		backoff := s.calculateBackoff(attempt)
		s.logger.Warn("request failed, retrying",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("after %d attempts: %w", s.maxAttempts, err)
}

func (s *Source) doRequest(ctx context.Context, reqURL string) (*APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &permanentError{fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "CryptoNewsIngester/1.0")
	req.Header.Set("X-Api-Key", s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, &permanentError{err}
		}
		return nil, err
	}

	var apiResp APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if apiResp.Status != "ok" {
		return nil, &permanentError{fmt.Errorf("api error %s: %s", apiResp.Code, apiResp.Message)}
	}

	return &apiResp, nil
}

func (s *Source) calculateBackoff(attempt int) time.Duration {
	backoff := s.initialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > s.maxBackoff {
		backoff = s.maxBackoff
	}
	return backoff
}

// transform keeps fields as delivered; validation belongs to the pipeline.
func transform(items []APIArticle) []domain.RawArticle {
	articles := make([]domain.RawArticle, 0, len(items))
	for _, a := range items {
		if a.Title == removedTitle {
			continue
		}
		articles = append(articles, domain.RawArticle{
			Title:       a.Title,
			URL:         a.URL,
			PublishedAt: a.PublishedAt,
			SourceName:  a.Source.Name,
			Author:      nonEmpty(a.Author),
			Description: nonEmpty(a.Description),
			Content:     nonEmpty(a.Content),
		})
	}
	return articles
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}
