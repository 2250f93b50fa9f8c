package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/transitcat/internal/core/domain"
)

// NetworkRepo implements ports.NetworkSource and ports.NetworkWriter with pgx.
type NetworkRepo struct {
	db *DB
}

// NewNetworkRepo creates a new NetworkRepo.
func NewNetworkRepo(db *DB) *NetworkRepo {
	return &NetworkRepo{db: db}
}

// Load reads the whole network. Stops come back in name order and routes
// keep their stored stop sequence.
func (r *NetworkRepo) Load(ctx context.Context) (*domain.NetworkDocument, error) {
	doc := &domain.NetworkDocument{}

	rows, err := r.db.Pool.Query(ctx, `SELECT name, latitude, longitude FROM stops ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query stops: %w", err)
	}
	index := make(map[string]int)
	for rows.Next() {
		var s domain.StopRecord
		if err := rows.Scan(&s.Name, &s.Latitude, &s.Longitude); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan stop: %w", err)
		}
		index[s.Name] = len(doc.Stops)
		doc.Stops = append(doc.Stops, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stops: %w", err)
	}

	rows, err = r.db.Pool.Query(ctx, `SELECT from_stop, to_stop, meters FROM stop_distances ORDER BY from_stop, to_stop`)
	if err != nil {
		return nil, fmt.Errorf("query distances: %w", err)
	}
	for rows.Next() {
		var from, to string
		var meters int
		if err := rows.Scan(&from, &to, &meters); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan distance: %w", err)
		}
		i, ok := index[from]
		if !ok {
			continue
		}
		if doc.Stops[i].RoadDistances == nil {
			doc.Stops[i].RoadDistances = make(map[string]int)
		}
		doc.Stops[i].RoadDistances[to] = meters
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("distances: %w", err)
	}

	rows, err = r.db.Pool.Query(ctx, `
		SELECT r.name, r.is_roundtrip, rs.stop_name
		FROM routes r
		JOIN route_stops rs ON rs.route_name = r.name
		ORDER BY r.name, rs.position
	`)
	if err != nil {
		return nil, fmt.Errorf("query routes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name, stop string
		var roundtrip bool
		if err := rows.Scan(&name, &roundtrip, &stop); err != nil {
			return nil, fmt.Errorf("scan route stop: %w", err)
		}
		if n := len(doc.Routes); n == 0 || doc.Routes[n-1].Name != name {
			doc.Routes = append(doc.Routes, domain.RouteRecord{Name: name, IsRoundtrip: roundtrip})
		}
		last := &doc.Routes[len(doc.Routes)-1]
		last.Stops = append(last.Stops, stop)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("routes: %w", err)
	}

	return doc, nil
}

// Save replaces the stored network with doc in a single transaction.
func (r *NetworkRepo) Save(ctx context.Context, doc *domain.NetworkDocument) error {
	return pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE route_stops, routes, stop_distances, stops`); err != nil {
			return fmt.Errorf("truncate: %w", err)
		}

		batch := &pgx.Batch{}
		for _, s := range doc.Stops {
			batch.Queue(`INSERT INTO stops (name, latitude, longitude) VALUES ($1, $2, $3)`,
				s.Name, s.Latitude, s.Longitude)
		}
		for _, s := range doc.Stops {
			for to, meters := range s.RoadDistances {
				batch.Queue(`INSERT INTO stop_distances (from_stop, to_stop, meters) VALUES ($1, $2, $3)`,
					s.Name, to, meters)
			}
		}
		for _, rt := range doc.Routes {
			batch.Queue(`INSERT INTO routes (name, is_roundtrip) VALUES ($1, $2)`, rt.Name, rt.IsRoundtrip)
			for pos, stop := range rt.Stops {
				batch.Queue(`INSERT INTO route_stops (route_name, position, stop_name) VALUES ($1, $2, $3)`,
					rt.Name, pos, stop)
			}
		}

		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("batch exec %d: %w", i, err)
			}
		}
		return br.Close()
	})
}
