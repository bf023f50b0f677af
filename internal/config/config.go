// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

// Package config loads and validates the Fahrplanbuch server configuration
// from defaults, an optional YAML file, and environment variables.
package config

import (
	"fmt"
	"time"
)

// Config is the top-level server configuration.
type Config struct {
	Neo4j    Neo4jConfig    `koanf:"neo4j"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Cache    CacheConfig    `koanf:"cache"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// Neo4jConfig holds the graph database connection settings.
type Neo4jConfig struct {
	// URI is the bolt or neo4j scheme connection string,
	// e.g. neo4j://localhost:7687 or neo4j+s://host.databases.neo4j.io.
	URI      string `koanf:"uri"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	// Database selects the target database. Empty uses the server default.
	Database string `koanf:"database"`
	// MaxConnectionPoolSize caps concurrent driver connections.
	MaxConnectionPoolSize int `koanf:"max_connection_pool_size"`
	// ConnectTimeout bounds the initial connectivity check.
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
	// Timeout applies to request read and write deadlines.
	Timeout time.Duration `koanf:"timeout"`
	// Environment is "development" or "production".
	Environment string `koanf:"environment"`
}

// SecurityConfig holds authentication and request limiting settings.
type SecurityConfig struct {
	// JWTSecret signs and verifies bearer tokens for mutating endpoints.
	// Required in production.
	JWTSecret string `koanf:"jwt_secret"`
	// TokenLifetime bounds tokens minted by the ops tooling.
	TokenLifetime time.Duration `koanf:"token_lifetime"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// CacheConfig holds TTLs for the in-memory response caches.
type CacheConfig struct {
	// SnapshotTTL bounds staleness of cached network snapshots.
	SnapshotTTL time.Duration `koanf:"snapshot_ttl"`
	// YearsTTL bounds staleness of the available-years list.
	YearsTTL time.Duration `koanf:"years_ttl"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks the configuration for missing or inconsistent values.
func (c *Config) Validate() error {
	if c.Neo4j.URI == "" {
		return fmt.Errorf("neo4j.uri is required (set NEO4J_URI)")
	}
	if c.Neo4j.Username == "" {
		return fmt.Errorf("neo4j.username is required (set NEO4J_USERNAME)")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("server.timeout must be positive")
	}
	if c.IsProduction() && c.Security.JWTSecret == "" {
		return fmt.Errorf("security.jwt_secret is required in production (set JWT_SECRET)")
	}
	if c.Security.JWTSecret != "" && len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("security.jwt_secret must be at least 32 bytes")
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs <= 0 {
			return fmt.Errorf("security.rate_limit_reqs must be positive")
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive")
		}
	}
	if c.Cache.SnapshotTTL <= 0 {
		return fmt.Errorf("cache.snapshot_ttl must be positive")
	}
	if c.Cache.YearsTTL <= 0 {
		return fmt.Errorf("cache.years_ttl must be positive")
	}
	return nil
}
