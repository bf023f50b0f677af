// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := defaultConfig()
	cfg.Neo4j.URI = "neo4j://localhost:7687"
	cfg.Neo4j.Password = "letmein"
	return cfg
}

func TestValidateAcceptsDefaults(t *testing.T) {
	t.Parallel()

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "missing URI",
			mutate:  func(c *Config) { c.Neo4j.URI = "" },
			wantErr: "neo4j.uri",
		},
		{
			name:    "missing username",
			mutate:  func(c *Config) { c.Neo4j.Username = "" },
			wantErr: "neo4j.username",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "server.port",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Server.Timeout = 0 },
			wantErr: "server.timeout",
		},
		{
			name: "production without jwt secret",
			mutate: func(c *Config) {
				c.Server.Environment = "production"
				c.Security.JWTSecret = ""
			},
			wantErr: "jwt_secret",
		},
		{
			name:    "short jwt secret",
			mutate:  func(c *Config) { c.Security.JWTSecret = "too-short" },
			wantErr: "at least 32 bytes",
		},
		{
			name:    "zero rate limit",
			mutate:  func(c *Config) { c.Security.RateLimitReqs = 0 },
			wantErr: "rate_limit_reqs",
		},
		{
			name:    "zero snapshot TTL",
			mutate:  func(c *Config) { c.Cache.SnapshotTTL = 0 },
			wantErr: "snapshot_ttl",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateRateLimitDisabledSkipsChecks(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Security.RateLimitDisabled = true
	cfg.Security.RateLimitReqs = 0
	cfg.Security.RateLimitWindow = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled rate limit should skip checks: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("NEO4J_URI", "neo4j://graph:7687")
	t.Setenv("NEO4J_USERNAME", "reader")
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("HTTP_PORT", "8080")
	t.Setenv("CACHE_SNAPSHOT_TTL", "2h")
	t.Setenv("CORS_ORIGINS", "https://fahrplanbuch.berlin, https://staging.fahrplanbuch.berlin")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Neo4j.URI != "neo4j://graph:7687" {
		t.Errorf("URI = %q", cfg.Neo4j.URI)
	}
	if cfg.Neo4j.Username != "reader" {
		t.Errorf("Username = %q", cfg.Neo4j.Username)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if cfg.Cache.SnapshotTTL != 2*time.Hour {
		t.Errorf("SnapshotTTL = %v", cfg.Cache.SnapshotTTL)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[0] != "https://fahrplanbuch.berlin" {
		t.Errorf("CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q", cfg.Logging.Level)
	}
}

func TestLoadDefaultsApplied(t *testing.T) {
	t.Setenv("NEO4J_URI", "neo4j://localhost:7687")
	t.Setenv("NEO4J_PASSWORD", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 5000 {
		t.Errorf("default port = %d, want 5000", cfg.Server.Port)
	}
	if cfg.Cache.YearsTTL != time.Hour {
		t.Errorf("default years TTL = %v", cfg.Cache.YearsTTL)
	}
	if cfg.Neo4j.Username != "neo4j" {
		t.Errorf("default username = %q", cfg.Neo4j.Username)
	}
}

func TestEnvTransformFuncSkipsUnknown(t *testing.T) {
	t.Parallel()

	if got := envTransformFunc("PATH"); got != "" {
		t.Errorf("unmapped variable should be skipped, got %q", got)
	}
	if got := envTransformFunc("NEO4J_URI"); got != "neo4j.uri" {
		t.Errorf("NEO4J_URI mapped to %q", got)
	}
}

func TestAddr(t *testing.T) {
	t.Parallel()

	sc := ServerConfig{Host: "127.0.0.1", Port: 5000}
	if got := sc.Addr(); got != "127.0.0.1:5000" {
		t.Errorf("Addr() = %q", got)
	}
}
