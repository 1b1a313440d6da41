// Package solver talks to the external AC power-flow service. The service
// owns the grid file and the Newton-Raphson solve; this client only submits
// candidate operating states and reads back convergence.
package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/acdcgrid/ghds/core/scaling"
	"github.com/acdcgrid/ghds/infra/logger"
)

// Config defines the power-flow service endpoint.
type Config struct {
	URL            string `json:"url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 120
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("solver url is required")
	}
	return nil
}

// Client implements scaling.Oracle over HTTP. Each Evaluate call is one full
// power-flow solve on the remote side; calls are issued sequentially by the
// prober and are expected to be deterministic for identical states.
type Client struct {
	cfg  Config
	http *http.Client
	log  logger.Logger
}

// NewClient creates a power-flow oracle client.
func NewClient(cfg Config) (*Client, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:  logger.New("solver-client"),
	}, nil
}

type evaluateRequest struct {
	LoadMW       float64 `json:"load_mw"`
	LoadMVAr     float64 `json:"load_mvar"`
	GenerationMW float64 `json:"generation_mw"`
}

type evaluateResponse struct {
	Converged bool `json:"converged"`
}

// Evaluate submits the candidate state and reports convergence. Transport
// errors and non-200 responses are infrastructure failures; the numerical
// outcome travels only in the response body.
func (c *Client) Evaluate(ctx context.Context, state scaling.SystemState) (bool, error) {
	payload, err := json.Marshal(evaluateRequest{
		LoadMW:       state.LoadMW,
		LoadMVAr:     state.LoadMVAr,
		GenerationMW: state.GenerationMW,
	})
	if err != nil {
		return false, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("power flow request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("power flow service returned %s", resp.Status)
	}
	var out evaluateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("decode power flow response: %w", err)
	}
	c.log.Debugw("power flow evaluated", map[string]any{
		"load_mw":   state.LoadMW,
		"gen_mw":    state.GenerationMW,
		"converged": out.Converged,
	})
	return out.Converged, nil
}
