// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package scorer calls a trained job-mail classifier served over HTTP.
//
// The service exposes two endpoints:
//
//	GET  /health   200 when the model artifact is loaded
//	POST /predict  {"texts": [...]} -> {"predictions": [{"label": 1, "probability": 0.93}, ...]}
//
// Predictions are positionally aligned with the submitted texts.
package scorer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/jobtrail/ai"
)

// DefaultTimeout bounds a single request to the scorer.
const DefaultTimeout = 60 * time.Second

// Client talks to the scorer service.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	logger   *slog.Logger
}

var (
	_ ai.Classifier       = (*Client)(nil)
	_ ai.ReadinessChecker = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithToken sends token as a bearer credential.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the scorer at endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		http:     &http.Client{Timeout: DefaultTimeout},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "scorer")
	return c
}

type predictRequest struct {
	Texts []string `json:"texts"`
}

type predictResponse struct {
	Predictions []struct {
		Label       int      `json:"label"`
		Probability *float64 `json:"probability"`
	} `json:"predictions"`
}

// Predict scores texts in one request.
func (c *Client) Predict(ctx context.Context, texts []string) ([]ai.Prediction, error) {
	c.logger.Debug("requesting predictions", "count", len(texts))

	var resp predictResponse
	if err := c.do(ctx, http.MethodPost, "/predict", predictRequest{Texts: texts}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Predictions) != len(texts) {
		return nil, fmt.Errorf("%w: %d predictions for %d texts", ai.ErrResultMismatch, len(resp.Predictions), len(texts))
	}

	predictions := make([]ai.Prediction, len(texts))
	for i, p := range resp.Predictions {
		predictions[i] = ai.Prediction{Label: p.Label, Probability: p.Probability}
	}
	return predictions, nil
}

// Ready checks the health endpoint. Any failure, including an unreachable
// service, is reported as ai.ErrModelUnavailable.
func (c *Client) Ready(ctx context.Context) error {
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil); err != nil {
		return fmt.Errorf("%w: %w", ai.ErrModelUnavailable, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any, v any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
