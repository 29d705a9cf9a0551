package cache

import (
	"context"
	"log/slog"

	"github.com/RozzaysRed/OnlineShop-Blazor/internal/domain"
)

// Store holds the locally cached snapshot of a user's assembled line items.
// The snapshot is replaced wholesale, never patched in place.
type Store interface {
	// Get returns the cached snapshot. The second return reports whether a
	// snapshot exists; an empty cart snapshot is still a hit.
	Get(ctx context.Context, userID int64) ([]domain.LineItem, bool, error)

	// Set replaces the snapshot for the user.
	Set(ctx context.Context, userID int64, items []domain.LineItem) error

	// Delete drops the snapshot for the user.
	Delete(ctx context.Context, userID int64) error
}

// Fetcher resolves the authoritative line items from the cart service.
type Fetcher interface {
	FetchItems(ctx context.Context, userID int64) ([]domain.LineItem, error)
}

// Service implements the read-through collection cache used by the
// storefront: reads come from the snapshot when one exists, a miss hydrates
// from the cart service, and writes replace the snapshot wholesale.
type Service struct {
	store   Store
	fetcher Fetcher
	logger  *slog.Logger
}

// NewService wires the cache service.
func NewService(store Store, fetcher Fetcher, l *slog.Logger) *Service {
	return &Service{store: store, fetcher: fetcher, logger: l}
}

// GetCollection returns the user's line items, serving the cached snapshot
// when present and hydrating from the cart service otherwise. A failing
// store degrades to a remote fetch instead of failing the read.
func (s *Service) GetCollection(ctx context.Context, userID int64) ([]domain.LineItem, error) {
	items, ok, err := s.store.Get(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "cache read failed, falling back to remote",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
	} else if ok {
		return items, nil
	}

	fetched, err := s.fetcher.FetchItems(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.store.Set(ctx, userID, fetched); err != nil {
		s.logger.WarnContext(ctx, "cache hydrate failed",
			slog.Int64("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
	return fetched, nil
}

// SaveCollection replaces the cached snapshot with the given items. Callers
// pass the post-mutation collection after an add, update, or delete.
func (s *Service) SaveCollection(ctx context.Context, userID int64, items []domain.LineItem) error {
	return s.store.Set(ctx, userID, items)
}

// RemoveCollection drops the cached snapshot, forcing the next read to
// hydrate from the cart service.
func (s *Service) RemoveCollection(ctx context.Context, userID int64) error {
	return s.store.Delete(ctx, userID)
}
