package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/transitcat/internal/adapters/postgres"
	"github.com/samirrijal/transitcat/internal/adapters/valkey"
	"github.com/samirrijal/transitcat/internal/core/usecases"
	"github.com/samirrijal/transitcat/internal/pkg/render"
)

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Network  *usecases.NetworkService
	Requests *usecases.RequestService
	// Render is the default map style; query parameters may override its size.
	Render render.Settings
	NATS   *nats.Conn
	DB     *postgres.DB
	Cache  *valkey.Cache
}
