// Package bootstrap wires configuration into a loaded network snapshot for
// the server binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/samirrijal/transitcat/internal/adapters/document"
	"github.com/samirrijal/transitcat/internal/adapters/postgres"
	"github.com/samirrijal/transitcat/internal/core/domain"
	"github.com/samirrijal/transitcat/internal/core/ports"
	"github.com/samirrijal/transitcat/internal/core/routing"
	"github.com/samirrijal/transitcat/internal/core/snapshot"
	"github.com/samirrijal/transitcat/internal/pkg/config"
)

// Source picks the network source named by cfg. The returned DB is nil for
// file sources; callers own closing it.
func Source(ctx context.Context, cfg *config.Config) (ports.NetworkSource, *postgres.DB, error) {
	switch cfg.Network.Source {
	case config.SourcePostgres:
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, nil, fmt.Errorf("database: %w", err)
		}
		return postgres.NewNetworkRepo(db), db, nil
	case config.SourceFile:
		return document.NewFileSource(cfg.Network.Path), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown network source %q", cfg.Network.Source)
	}
}

// Options converts the routing and network sections of cfg.
func Options(cfg *config.Config) (snapshot.Options, error) {
	engine, err := routing.ParseEngine(cfg.Routing.Engine)
	if err != nil {
		return snapshot.Options{}, err
	}
	return snapshot.Options{
		Settings: domain.RoutingSettings{
			BusWaitTime: cfg.Routing.BusWaitTime,
			BusVelocity: cfg.Routing.BusVelocity,
		},
		Engine:          engine,
		StrictDistances: cfg.Network.StrictDistances,
	}, nil
}

// Snapshot loads the network from src and builds the routing snapshot.
func Snapshot(ctx context.Context, cfg *config.Config, src ports.NetworkSource) (*snapshot.Snapshot, error) {
	opts, err := Options(cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	doc, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load network: %w", err)
	}

	snap, err := snapshot.Build(ctx, doc, opts)
	if err != nil {
		return nil, err
	}

	summary := snap.Summary()
	slog.InfoContext(ctx, "network snapshot built",
		"snapshot_id", summary.SnapshotID,
		"stops", summary.Stops,
		"routes", summary.Routes,
		"vertices", summary.Vertices,
		"edges", summary.Edges,
		"engine", summary.Engine,
		"took", time.Since(start).String(),
	)
	return snap, nil
}
