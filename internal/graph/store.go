// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

// Package graph implements the Neo4j store for historical transit
// network snapshots.
//
// The graph schema has Station and Year nodes. A Station belongs to a
// Year via IN_YEAR; service between stations in that year is a
// CONNECTS_TO relationship carrying the line attributes. Every read
// runs in its own session through a circuit breaker so that a dead
// database degrades to fast SERVICE_UNAVAILABLE responses instead of
// piling up blocked requests.
package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/fahrplanbuch/fahrplanbuch/internal/config"
	"github.com/fahrplanbuch/fahrplanbuch/internal/logging"
	"github.com/fahrplanbuch/fahrplanbuch/internal/metrics"
)

var (
	// ErrNotFound is returned when the requested station or year does not
	// exist in the graph.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable is returned when the circuit breaker is open and the
	// database is not being queried.
	ErrUnavailable = errors.New("graph database unavailable")
)

// Store executes Cypher queries against the Neo4j cluster.
type Store struct {
	driver   neo4j.DriverWithContext
	database string
	breaker  *gobreaker.CircuitBreaker[any]
}

// NewStore connects to Neo4j and verifies connectivity before returning.
func NewStore(ctx context.Context, cfg *config.Neo4jConfig) (*Store, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
		func(c *neo4j.Config) {
			if cfg.MaxConnectionPoolSize > 0 {
				c.MaxConnectionPoolSize = cfg.MaxConnectionPoolSize
			}
		},
	)
	if err != nil {
		return nil, fmt.Errorf("creating neo4j driver: %w", err)
	}

	connectCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := driver.VerifyConnectivity(connectCtx); err != nil {
		return nil, fmt.Errorf("connecting to neo4j: %w", err)
	}

	logging.Info().Str("uri", cfg.URI).Msg("connected to neo4j")

	return &Store{
		driver:   driver,
		database: cfg.Database,
		breaker:  newBreaker("neo4j"),
	}, nil
}

// Close releases the driver and its connection pool.
func (s *Store) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// Ping verifies database connectivity. Used by the health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.driver.VerifyConnectivity(ctx)
	metrics.RecordGraphQuery("ping", time.Since(start), err)
	return err
}

// session opens a session bound to the configured database.
func (s *Store) session(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{DatabaseName: s.database})
}

// read runs fn in a read transaction behind the circuit breaker and
// records query metrics under the given operation name.
func (s *Store) read(ctx context.Context, operation string, fn neo4j.ManagedTransactionWork) (any, error) {
	return s.execute(ctx, operation, func() (any, error) {
		session := s.session(ctx)
		defer session.Close(ctx)
		return session.ExecuteRead(ctx, fn)
	})
}

// write runs fn in a write transaction behind the circuit breaker.
func (s *Store) write(ctx context.Context, operation string, fn neo4j.ManagedTransactionWork) (any, error) {
	return s.execute(ctx, operation, func() (any, error) {
		session := s.session(ctx)
		defer session.Close(ctx)
		return session.ExecuteWrite(ctx, fn)
	})
}

func (s *Store) execute(ctx context.Context, operation string, fn func() (any, error)) (any, error) {
	start := time.Now()
	result, err := s.breaker.Execute(fn)
	metrics.RecordGraphQuery(operation, time.Since(start), err)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logging.Ctx(ctx).Warn().Str("operation", operation).Msg("circuit breaker rejected query")
			return nil, ErrUnavailable
		}
		return nil, err
	}
	return result, nil
}
