// Fahrplanbuch - Historical Berlin Transit Network API
// Copyright 2026 Fahrplanbuch contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/fahrplanbuch/fahrplanbuch

// Package client is a Go consumer for the Fahrplanbuch HTTP API.
//
// It mirrors what a map frontend does with the raw snapshot payload:
// fetch a year, collapse parallel connections down to one edge per
// station pair, and filter by line. Requests are paced client side so a
// polling consumer stays under the server's rate limit.
package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/fahrplanbuch/fahrplanbuch/internal/models"
)

// Sentinel errors mapped from API error codes.
var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrRateLimited      = errors.New("rate limited")
	ErrUnavailable      = errors.New("service unavailable")
)

// Config holds client construction parameters.
type Config struct {
	// BaseURL is the server root, e.g. "http://localhost:5000".
	BaseURL string

	// Token is the bearer token for mutation calls. Read calls work
	// without one.
	Token string

	// Timeout for individual HTTP requests. Defaults to 30s.
	Timeout time.Duration

	// RequestsPerSecond paces outgoing requests. Zero disables pacing.
	RequestsPerSecond float64
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("client: base URL is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("client: invalid base URL: %w", err)
	}
	return nil
}

// Client talks to the Fahrplanbuch API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New creates a Client from the given configuration.
func New(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	timeout := config.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	var limiter *rate.Limiter
	if config.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1)
	}

	return &Client{
		baseURL:    config.BaseURL,
		token:      config.Token,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}, nil
}

// AvailableYears lists the years the server has snapshots for.
func (c *Client) AvailableYears(ctx context.Context) ([]int, error) {
	var years []int
	if err := c.get(ctx, "/api/available-years", &years); err != nil {
		return nil, err
	}
	return years, nil
}

// Snapshot fetches one year's network and reshapes it for rendering:
// parallel connections between the same two stations collapse to one,
// regardless of edge direction. transportType may be empty for all
// types.
func (c *Client) Snapshot(ctx context.Context, year int, transportType string) (*NetworkData, error) {
	path := "/api/network-snapshot/" + strconv.Itoa(year)
	if transportType != "" {
		path += "?type=" + url.QueryEscape(transportType)
	}

	var snapshot models.NetworkSnapshot
	if err := c.get(ctx, path, &snapshot); err != nil {
		return nil, err
	}
	return reshape(&snapshot), nil
}

// UpdateStation sets a station's coordinates. Requires an admin token.
func (c *Client) UpdateStation(ctx context.Context, stopID string, lat, lng float64) (*models.Station, error) {
	body, err := json.Marshal(map[string]float64{
		"latitude":  lat,
		"longitude": lng,
	})
	if err != nil {
		return nil, fmt.Errorf("client: encode body: %w", err)
	}

	path := "/api/stations/" + url.PathEscape(stopID) + "/update"
	var station models.Station
	if err := c.do(ctx, http.MethodPost, path, body, &station); err != nil {
		return nil, err
	}
	return &station, nil
}

// UpdateStationAndRefresh updates a station and re-fetches the snapshot
// it was being viewed in, so the caller renders the moved station
// without a second round of bookkeeping.
func (c *Client) UpdateStationAndRefresh(ctx context.Context, stopID string, lat, lng float64, year int, transportType string) (*models.Station, *NetworkData, error) {
	station, err := c.UpdateStation(ctx, stopID, lat, lng)
	if err != nil {
		return nil, nil, err
	}
	data, err := c.Snapshot(ctx, year, transportType)
	if err != nil {
		return station, nil, err
	}
	return station, data, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// envelope mirrors the server's response wrapper with the payload left
// raw for typed decoding.
type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("client: rate limiter: %w", err)
		}
	}

	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("client: decode response (status %d): %w", resp.StatusCode, err)
	}

	if resp.StatusCode >= 400 || env.Status == "error" {
		return apiError(resp.StatusCode, env.Error)
	}

	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("client: decode payload: %w", err)
		}
	}
	return nil
}

// apiError maps the server's error code onto a sentinel, keeping the
// server message in the wrap.
func apiError(status int, apiErr *models.APIError) error {
	code, message := "", ""
	if apiErr != nil {
		code, message = apiErr.Code, apiErr.Message
	}

	var sentinel error
	switch code {
	case "INVALID_PARAMETER":
		sentinel = ErrInvalidParameter
	case "UNAUTHORIZED":
		sentinel = ErrUnauthorized
	case "FORBIDDEN":
		sentinel = ErrForbidden
	case "NOT_FOUND":
		sentinel = ErrNotFound
	case "RATE_LIMIT_EXCEEDED":
		sentinel = ErrRateLimited
	case "SERVICE_UNAVAILABLE":
		sentinel = ErrUnavailable
	default:
		return fmt.Errorf("client: server error (status %d): %s", status, message)
	}
	return fmt.Errorf("client: %s: %w", message, sentinel)
}
