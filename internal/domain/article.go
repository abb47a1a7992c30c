package domain

import "time"

type Article struct {
	ID             int64          `json:"id"`
	Title          string         `json:"title"`
	URL            string         `json:"url"`
	Content        *string        `json:"content,omitempty"`
	PublishedAt    *time.Time     `json:"published_at,omitempty"`
	SentimentScore *float64       `json:"sentiment_score,omitempty"`
	SentimentLabel SentimentLabel `json:"sentiment_label"`
	Tone           *string        `json:"tone,omitempty"`
	JournalistID   *int64         `json:"journalist_id,omitempty"`
	OutletID       *int64         `json:"outlet_id,omitempty"`
	Topics         []Topic        `json:"topics,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type Outlet struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Website     *string   `db:"website" json:"website,omitempty"`
	Country     *string   `db:"country" json:"country,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	ImageURL    *string   `db:"image_url" json:"image_url,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type Journalist struct {
	ID              int64     `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Email           *string   `db:"email" json:"email,omitempty"`
	TwitterHandle   *string   `db:"twitter_handle" json:"twitter_handle,omitempty"`
	Bio             *string   `db:"bio" json:"bio,omitempty"`
	Location        *string   `db:"location" json:"location,omitempty"`
	Region          *string   `db:"region" json:"region,omitempty"`
	Verified        bool      `db:"verified" json:"verified"`
	Beat            *string   `db:"beat" json:"beat,omitempty"`
	ProfileImageURL *string   `db:"profile_image_url" json:"profile_image_url,omitempty"`
	OutletID        *int64    `db:"outlet_id" json:"outlet_id,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type Topic struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// RawArticle is a single feed record before validation. Optional fields stay
// nil when the feed omits them or sends null.
type RawArticle struct {
	Title       string
	URL         string
	PublishedAt string
	SourceName  string
	Author      *string
	Description *string
	Content     *string
}

type SyncState struct {
	ID            int64     `db:"id"`
	SourceID      string    `db:"source_id"`
	LastSyncedAt  time.Time `db:"last_synced_at"`
	TotalIngested int64     `db:"total_ingested"`
}
