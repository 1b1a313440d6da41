// Package nyiso fetches NYISO historical data: zonal integrated load and
// interface limits/flows, as daily CSV files. Transport failures are retried
// a bounded number of times with a fixed backoff; the numerical pipeline
// itself never retries.
package nyiso

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	coremetrics "github.com/acdcgrid/ghds/core/metrics"
	"github.com/acdcgrid/ghds/core/model"
	"github.com/acdcgrid/ghds/infra/logger"
)

// ErrFetchExhausted indicates every fetch attempt for a feed failed.
var ErrFetchExhausted = errors.New("historical data fetch exhausted retries")

// Config defines the connection parameters for the NYISO data client.
type Config struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	Retries        int    `json:"retries"`
	BackoffSeconds int    `json:"backoff_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://mis.nyiso.com/public/csv"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 45
	}
	if c.Retries <= 0 {
		c.Retries = 3
	}
	if c.BackoffSeconds <= 0 {
		c.BackoffSeconds = 2
	}
}

// Client downloads and parses the daily CSV feeds. Parsed documents are
// cached per date so the seven zone lookups of one run share one download.
type Client struct {
	cfg  Config
	http *http.Client
	log  logger.Logger
	sink coremetrics.FetchRecorder

	mu        sync.Mutex
	loadCache map[string][]loadRow
	flowCache map[string][]flowRow
}

// NewClient creates a data client. The sink may be nil.
func NewClient(cfg Config, sink coremetrics.FetchRecorder) *Client {
	cfg.SetDefaults()
	return &Client{
		cfg:       cfg,
		http:      &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:       logger.New("nyiso-client"),
		sink:      sink,
		loadCache: make(map[string][]loadRow),
		flowCache: make(map[string][]flowRow),
	}
}

// ZoneLoad returns the hourly integrated load for one NYISO zone and date.
func (c *Client) ZoneLoad(ctx context.Context, zone string, date time.Time) (model.ZoneSeries, error) {
	rows, err := c.dailyLoad(ctx, date)
	if err != nil {
		return model.ZoneSeries{}, err
	}
	var timestamps []time.Time
	var values []float64
	for _, r := range rows {
		if r.Zone == zone {
			timestamps = append(timestamps, r.Timestamp)
			values = append(values, r.Load)
		}
	}
	if len(values) == 0 {
		return model.ZoneSeries{}, fmt.Errorf("no load samples for zone %s on %s", zone, date.Format("2006-01-02"))
	}
	return model.NewZoneSeries(zone, timestamps, values)
}

// InterfaceFlows returns the hourly-mean flow and limits for one named
// interface and date. The raw feed samples every few minutes; samples are
// grouped by hour and averaged, matching the hourly zonal load axis.
func (c *Client) InterfaceFlows(ctx context.Context, name string, date time.Time) (model.InterfaceSeries, error) {
	rows, err := c.dailyFlows(ctx, date)
	if err != nil {
		return model.InterfaceSeries{}, err
	}
	type bucket struct {
		flow, pos, neg float64
		n              int
	}
	var hours []time.Time
	buckets := make(map[time.Time]*bucket)
	for _, r := range rows {
		if r.Interface != name {
			continue
		}
		h := r.Timestamp.Truncate(time.Hour)
		b, ok := buckets[h]
		if !ok {
			b = &bucket{}
			buckets[h] = b
			hours = append(hours, h)
		}
		b.flow += r.Flow
		b.pos += r.PositiveLimit
		b.neg += r.NegativeLimit
		b.n++
	}
	if len(hours) == 0 {
		return model.InterfaceSeries{}, fmt.Errorf("no interface samples for %q on %s", name, date.Format("2006-01-02"))
	}
	out := model.InterfaceSeries{
		Name:          name,
		Timestamps:    make([]time.Time, len(hours)),
		Flow:          make([]float64, len(hours)),
		PositiveLimit: make([]float64, len(hours)),
		NegativeLimit: make([]float64, len(hours)),
	}
	for i, h := range hours {
		b := buckets[h]
		out.Timestamps[i] = h
		out.Flow[i] = b.flow / float64(b.n)
		out.PositiveLimit[i] = b.pos / float64(b.n)
		out.NegativeLimit[i] = b.neg / float64(b.n)
	}
	return out, nil
}

func (c *Client) dailyLoad(ctx context.Context, date time.Time) ([]loadRow, error) {
	key := date.Format("20060102")
	c.mu.Lock()
	cached, ok := c.loadCache[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}
	url := fmt.Sprintf("%s/palIntegrated/%spalIntegrated.csv", c.cfg.BaseURL, key)
	body, err := c.fetch(ctx, "actual_load", url)
	if err != nil {
		return nil, err
	}
	rows, err := parseLoadCSV(body)
	if err != nil {
		return nil, fmt.Errorf("parse actual load for %s: %w", key, err)
	}
	c.mu.Lock()
	c.loadCache[key] = rows
	c.mu.Unlock()
	return rows, nil
}

func (c *Client) dailyFlows(ctx context.Context, date time.Time) ([]flowRow, error) {
	key := date.Format("20060102")
	c.mu.Lock()
	cached, ok := c.flowCache[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}
	url := fmt.Sprintf("%s/ExternalLimitsFlows/%sExternalLimitsFlows.csv", c.cfg.BaseURL, key)
	body, err := c.fetch(ctx, "interface_flows", url)
	if err != nil {
		return nil, err
	}
	rows, err := parseFlowCSV(body)
	if err != nil {
		return nil, fmt.Errorf("parse interface flows for %s: %w", key, err)
	}
	c.mu.Lock()
	c.flowCache[key] = rows
	c.mu.Unlock()
	return rows, nil
}

// fetch downloads one URL with bounded retries and fixed backoff.
func (c *Client) fetch(ctx context.Context, feed, url string) ([]byte, error) {
	backoff := time.Duration(c.cfg.BackoffSeconds) * time.Second
	var lastErr error
	for attempt := 1; attempt <= c.cfg.Retries; attempt++ {
		body, err := c.get(ctx, url)
		if err == nil {
			c.record(feed, attempt, true)
			return body, nil
		}
		lastErr = err
		c.log.Warnf("fetch %s attempt %d/%d failed: %v", feed, attempt, c.cfg.Retries, err)
		if attempt < c.cfg.Retries {
			select {
			case <-ctx.Done():
				c.record(feed, attempt, false)
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}
	c.record(feed, c.cfg.Retries, false)
	return nil, fmt.Errorf("%w: %s: %v", ErrFetchExhausted, url, lastErr)
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) record(feed string, attempts int, success bool) {
	if c.sink == nil {
		return
	}
	ev := coremetrics.FetchEvent{Feed: feed, Attempts: attempts, Success: success, Time: time.Now()}
	if err := c.sink.RecordFetch(ev); err != nil {
		c.log.Errorf("record fetch: %v", err)
	}
}
