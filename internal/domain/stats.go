package domain

import "time"

// IngestStats holds statistics about a single ingestion batch.
type IngestStats struct {
	RunID               string        `json:"run_id"`
	SourceID            string        `json:"source_id"`
	Fetched             int           `json:"fetched"`
	Added               int           `json:"added"`
	Duplicates          int           `json:"duplicates"`
	Invalid             int           `json:"invalid"`
	Failed              int           `json:"failed"`
	TimestampFallbacks  int           `json:"timestamp_fallbacks"`
	ClassifierFallbacks int           `json:"classifier_fallbacks"`
	OutletMismatches    int           `json:"outlet_mismatches"`
	Published           int           `json:"published"`
	Duration            time.Duration `json:"duration"`
}

// DatasetStats is the aggregate read-side view over the store.
type DatasetStats struct {
	Journalists int                `json:"journalists"`
	Outlets     int                `json:"outlets"`
	Articles    int                `json:"articles"`
	Topics      int                `json:"topics"`
	Sentiment   map[string]float64 `json:"sentiment_percent"`
	Tones       []NamedCount       `json:"tones"`
	TopTopics   []NamedCount       `json:"top_topics"`
	TopOutlets  []NamedCount       `json:"top_outlets"`
}

type NamedCount struct {
	Name  string `db:"name" json:"name"`
	Count int    `db:"count" json:"count"`
}
