package ports

import (
	"context"

	"github.com/samirrijal/transitcat/internal/core/domain"
)

// NetworkSource loads a complete network document (file, database, ...).
type NetworkSource interface {
	Load(ctx context.Context) (*domain.NetworkDocument, error)
}

// NetworkWriter persists a network document, replacing what was stored.
type NetworkWriter interface {
	Save(ctx context.Context, doc *domain.NetworkDocument) error
}
