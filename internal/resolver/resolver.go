// Package resolver maps the free-form names carried by feed records onto
// stored Outlet, Journalist and Topic rows, creating them on first sight.
package resolver

//go:generate mockgen -source=resolver.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crypto_news/internal/domain"
)

const (
	UnknownSource = "Unknown Source"
	UnknownAuthor = "Unknown Author"
	UnknownRegion = "Unknown"
	maxNameLength = 100
)

type OutletStore interface {
	Upsert(ctx context.Context, outlet *domain.Outlet) (*domain.Outlet, error)
}

type JournalistStore interface {
	FindByNameInOutlet(ctx context.Context, name string, outletID int64) (*domain.Journalist, error)
	FindByName(ctx context.Context, name string) (*domain.Journalist, error)
	Create(ctx context.Context, journalist *domain.Journalist) (int64, error)
	LockName(ctx context.Context, name string) error
}

type TopicStore interface {
	Upsert(ctx context.Context, topic *domain.Topic) (*domain.Topic, error)
}

// Resolver is safe for concurrent use as long as each call runs inside its own
// transaction: outlet and topic rest on unique constraints, journalist on a
// per-name transaction lock.
type Resolver struct {
	outlets     OutletStore
	journalists JournalistStore
	topics      TopicStore
}

func New(outlets OutletStore, journalists JournalistStore, topics TopicStore) *Resolver {
	return &Resolver{
		outlets:     outlets,
		journalists: journalists,
		topics:      topics,
	}
}

func (r *Resolver) ResolveOutlet(ctx context.Context, name string) (*domain.Outlet, error) {
	name = normalizeName(name, UnknownSource)
	description := "Crypto news outlet: " + name

	outlet, err := r.outlets.Upsert(ctx, &domain.Outlet{Name: name, Description: &description})
	if err != nil {
		return nil, fmt.Errorf("%w: outlet %q: %v", domain.ErrResolution, name, err)
	}
	return outlet, nil
}

// ResolveJournalist prefers a journalist of the same name in the given outlet,
// then any journalist of that name, and creates one in the outlet otherwise.
func (r *Resolver) ResolveJournalist(ctx context.Context, name string, outletID int64) (*domain.Journalist, error) {
	name = normalizeName(name, UnknownAuthor)

	if err := r.journalists.LockName(ctx, name); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrResolution, err)
	}

	j, err := r.journalists.FindByNameInOutlet(ctx, name, outletID)
	if err == nil {
		return j, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: journalist %q: %v", domain.ErrResolution, name, err)
	}

	j, err = r.journalists.FindByName(ctx, name)
	if err == nil {
		return j, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: journalist %q: %v", domain.ErrResolution, name, err)
	}

	region := UnknownRegion
	j = &domain.Journalist{
		Name:     name,
		Region:   &region,
		OutletID: &outletID,
	}
	if _, err := r.journalists.Create(ctx, j); err != nil {
		return nil, fmt.Errorf("%w: journalist %q: %v", domain.ErrResolution, name, err)
	}
	return j, nil
}

// ResolveTopics resolves each distinct non-empty name in order.
func (r *Resolver) ResolveTopics(ctx context.Context, names []string) ([]domain.Topic, error) {
	seen := make(map[string]struct{}, len(names))
	topics := make([]domain.Topic, 0, len(names))

	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		name = truncate(name, maxNameLength)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		description := fmt.Sprintf("Articles related to %s", name)
		topic, err := r.topics.Upsert(ctx, &domain.Topic{Name: name, Description: &description})
		if err != nil {
			return nil, fmt.Errorf("%w: topic %q: %v", domain.ErrResolution, name, err)
		}
		topics = append(topics, *topic)
	}
	return topics, nil
}

func normalizeName(name, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	return truncate(name, maxNameLength)
}

// truncate cuts s to at most n runes; names are stored in VARCHAR(100) columns.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
