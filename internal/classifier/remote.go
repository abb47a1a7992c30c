package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"crypto_news/internal/domain"
)

const (
	defaultMaxInputChars = 4000
	maxTopics            = 5
	maxToneLength        = 50

	systemPrompt = "You are a sentiment analysis expert specializing in cryptocurrency journalism. " +
		"Analyze the sentiment of this crypto news article and return a JSON object with: " +
		"1. sentiment_score: a float between -1.0 (very negative) and 1.0 (very positive) where 0 is neutral " +
		"2. sentiment_label: one of 'positive', 'negative', or 'neutral' " +
		"3. tone: the overall tone (analytical, confident, tentative, informative, critical, etc.) " +
		"4. key_topics: a list of 2-5 crypto-specific topic names such as 'Bitcoin', 'DeFi', 'Regulation', 'NFT', 'Mining'"
)

type RemoteConfig struct {
	Endpoint      string
	APIKey        string
	Model         string
	MaxInputChars int
}

// RemoteClassifier calls an OpenAI-compatible chat completions endpoint. Any
// failure yields the neutral fallback together with an error wrapping
// domain.ErrClassification.
type RemoteClassifier struct {
	httpClient    *http.Client
	endpoint      string
	apiKey        string
	model         string
	maxInputChars int
	logger        *slog.Logger
}

func NewRemoteClassifier(cfg RemoteConfig, httpClient *http.Client, logger *slog.Logger) *RemoteClassifier {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	maxChars := cfg.MaxInputChars
	if maxChars <= 0 || maxChars > defaultMaxInputChars {
		maxChars = defaultMaxInputChars
	}
	return &RemoteClassifier{
		httpClient:    httpClient,
		endpoint:      cfg.Endpoint,
		apiKey:        cfg.APIKey,
		model:         cfg.Model,
		maxInputChars: maxChars,
		logger:        logger.With("component", "remote_classifier"),
	}
}

func (c *RemoteClassifier) Name() string {
	return "remote"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// analysis mirrors the structured payload the model is asked to produce.
// Pointers distinguish missing fields from zero values.
type analysis struct {
	SentimentScore *float64  `json:"sentiment_score"`
	SentimentLabel *string   `json:"sentiment_label"`
	Tone           *string   `json:"tone"`
	KeyTopics      *[]string `json:"key_topics"`
}

func (c *RemoteClassifier) Classify(ctx context.Context, text string) (domain.Classification, error) {
	result, err := c.classify(ctx, text)
	if err != nil {
		return domain.NeutralClassification(), fmt.Errorf("%w: %v", domain.ErrClassification, err)
	}
	return result, nil
}

func (c *RemoteClassifier) classify(ctx context.Context, text string) (domain.Classification, error) {
	if c.endpoint == "" {
		return domain.Classification{}, fmt.Errorf("classifier endpoint not configured")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: truncateRunes(text, c.maxInputChars)},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
	})
	if err != nil {
		return domain.Classification{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Classification{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.logger.Debug("requesting classification", "model", c.model, "chars", len(body))
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Classification{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return domain.Classification{}, fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return domain.Classification{}, fmt.Errorf("decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return domain.Classification{}, fmt.Errorf("empty choices")
	}

	return parseAnalysis(chat.Choices[0].Message.Content)
}

func parseAnalysis(content string) (domain.Classification, error) {
	var a analysis
	if err := json.Unmarshal([]byte(content), &a); err != nil {
		return domain.Classification{}, fmt.Errorf("decode analysis: %w", err)
	}

	switch {
	case a.SentimentScore == nil:
		return domain.Classification{}, fmt.Errorf("missing sentiment_score")
	case a.SentimentLabel == nil:
		return domain.Classification{}, fmt.Errorf("missing sentiment_label")
	case a.Tone == nil:
		return domain.Classification{}, fmt.Errorf("missing tone")
	case a.KeyTopics == nil:
		return domain.Classification{}, fmt.Errorf("missing key_topics")
	}

	score := *a.SentimentScore
	if score < -1 || score > 1 {
		return domain.Classification{}, fmt.Errorf("sentiment_score %v out of range", score)
	}

	label := domain.SentimentLabel(strings.ToLower(strings.TrimSpace(*a.SentimentLabel)))
	if !label.Valid() {
		return domain.Classification{}, fmt.Errorf("invalid sentiment_label %q", *a.SentimentLabel)
	}

	tone := strings.ToLower(strings.TrimSpace(*a.Tone))
	if tone == "" {
		return domain.Classification{}, fmt.Errorf("empty tone")
	}
	tone = strings.TrimSpace(truncateRunes(tone, maxToneLength))

	return domain.Classification{
		SentimentScore: score,
		SentimentLabel: label,
		Tone:           tone,
		Topics:         normalizeTopics(*a.KeyTopics),
	}, nil
}

func normalizeTopics(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	topics := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		topics = append(topics, t)
		if len(topics) == maxTopics {
			break
		}
	}
	return topics
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
