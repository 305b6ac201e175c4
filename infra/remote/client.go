// Package remote talks HTTP+JSON to the schedule persistence service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bsb-logistics/ganttboard/core/model"
	coreremote "github.com/bsb-logistics/ganttboard/core/remote"
	"github.com/bsb-logistics/ganttboard/infra/logger"
)

// Config locates the persistence service.
type Config struct {
	BaseURL        string `json:"base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8000"
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("remote base_url %q is not an absolute url", c.BaseURL)
	}
	return nil
}

// Client implements core/remote.Backend.
type Client struct {
	baseURL string
	http    *http.Client
	log     logger.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = logger.OrNop(l) }
}

// NewClient creates a client for cfg.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.SetDefaults()
	c := &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		log:     logger.New("remote-client"),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

var _ coreremote.Backend = (*Client)(nil)

type refreshRequest struct {
	VehicleIDs []string        `json:"vehicleIds"`
	Range      model.TimeRange `json:"range"`
}

func (c *Client) ListVehicles(ctx context.Context, r model.TimeRange) ([]model.Vehicle, error) {
	q := url.Values{}
	q.Set("start", r.Start.String())
	q.Set("end", r.End.String())
	return call[[]model.Vehicle](ctx, c, "list vehicles", http.MethodGet, "/api/gantt/vehicles?"+q.Encode(), nil)
}

func (c *Client) RefreshVehicles(ctx context.Context, ids []string, r model.TimeRange) ([]model.Vehicle, error) {
	if ids == nil {
		ids = []string{}
	}
	body := refreshRequest{VehicleIDs: ids, Range: r}
	return call[[]model.Vehicle](ctx, c, "refresh vehicles", http.MethodPost, "/api/gantt/vehicles/refresh", body)
}

func (c *Client) CreateTrip(ctx context.Context, d model.TripDraft) (model.Trip, error) {
	return callEntity[model.Trip](ctx, c, "create trip", http.MethodPost, "/api/gantt/trip", d)
}

func (c *Client) DeleteTrip(ctx context.Context, tripID string) error {
	_, err := call[json.RawMessage](ctx, c, "delete trip", http.MethodDelete, "/api/gantt/trip/"+url.PathEscape(tripID), nil)
	return err
}

func (c *Client) CreateTask(ctx context.Context, d model.TaskDraft) (model.Task, error) {
	return callEntity[model.Task](ctx, c, "create task", http.MethodPost, "/api/gantt/task", d)
}

func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	_, err := call[json.RawMessage](ctx, c, "delete task", http.MethodDelete, "/api/gantt/task/"+url.PathEscape(taskID), nil)
	return err
}

func (c *Client) CommitVehicleDrag(ctx context.Context, d model.VehicleDrag) error {
	_, err := call[json.RawMessage](ctx, c, "drag vehicle", http.MethodPost, "/api/gantt/drag/pm", d)
	return err
}

func (c *Client) CommitTimeDrag(ctx context.Context, d model.TimeDrag) error {
	_, err := call[json.RawMessage](ctx, c, "drag time", http.MethodPost, "/api/gantt/drag/time", d)
	return err
}

func (c *Client) Containers(ctx context.Context, f model.ContainerFilter) ([]model.Container, error) {
	q := url.Values{}
	for k, v := range map[string]string{
		"search":          f.Search,
		"logisticsStatus": f.LogisticsStatus,
		"deliverType":     f.DeliverType,
		"terminal":        f.Terminal,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	path := "/api/orders/containers"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return call[[]model.Container](ctx, c, "list containers", http.MethodGet, path, nil)
}

func (c *Client) Container(ctx context.Context, ctnNumber string) (model.Container, error) {
	return callEntity[model.Container](ctx, c, "get container", http.MethodGet, "/api/orders/container/"+url.PathEscape(ctnNumber), nil)
}

// deadlinePaths maps each deadline list onto its endpoint.
var deadlinePaths = map[model.Deadline]string{
	model.DeadlineLastPickup:   "/api/orders/get_last_pickup_ctns",
	model.DeadlineLastDehire:   "/api/orders/get_last_dehire_ctns",
	model.DeadlineTodayDeliver: "/api/orders/get_today_deliver_ctns",
}

type dayRequest struct {
	QueryDate string `json:"query_date"`
}

type dueResponse struct {
	Date []model.Container `json:"date"`
}

func (c *Client) DueContainers(ctx context.Context, d model.Deadline, day string) ([]model.Container, error) {
	path, ok := deadlinePaths[d]
	if !ok {
		return nil, fmt.Errorf("unknown deadline %q", d)
	}
	resp, err := call[dueResponse](ctx, c, "due containers", http.MethodPost, path, dayRequest{QueryDate: day})
	if err != nil {
		return nil, err
	}
	if resp.Date == nil {
		return []model.Container{}, nil
	}
	return resp.Date, nil
}

func (c *Client) PlanTask(ctx context.Context, r model.PlanRequest) (model.Task, error) {
	return callEntity[model.Task](ctx, c, "plan task", http.MethodPost, "/api/orders/plan-to-task", r)
}

// call performs one request and unwraps the envelope. A non-zero code is a
// rejection; anything that prevents reading an envelope is a transport error.
// Missing data yields the zero value.
func call[T any](ctx context.Context, c *Client, op, method, path string, body any) (T, error) {
	var out T
	data, err := c.exchange(ctx, op, method, path, body)
	if err != nil || data == nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &coreremote.TransportError{Op: op, Err: fmt.Errorf("failed to decode data: %w", err)}
	}
	return out, nil
}

// callEntity is call for endpoints that must answer with data.
func callEntity[T any](ctx context.Context, c *Client, op, method, path string, body any) (T, error) {
	var out T
	data, err := c.exchange(ctx, op, method, path, body)
	if err != nil {
		return out, err
	}
	if data == nil {
		return out, &coreremote.TransportError{Op: op, Err: coreremote.ErrMissingEntity}
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &coreremote.TransportError{Op: op, Err: fmt.Errorf("failed to decode data: %w", err)}
	}
	return out, nil
}

// exchange returns the envelope data, or nil when the service sent none.
func (c *Client) exchange(ctx context.Context, op, method, path string, body any) (json.RawMessage, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, &coreremote.TransportError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return nil, &coreremote.TransportError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &coreremote.TransportError{Op: op, Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &coreremote.TransportError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}
	c.log.Debugw("remote call", map[string]any{
		"op": op, "method": method, "path": path, "status": resp.StatusCode, "elapsed_ms": time.Since(start).Milliseconds(),
	})

	var env coreremote.Envelope[json.RawMessage]
	decodeErr := json.Unmarshal(data, &env)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && env.Code != coreremote.CodeOK {
			return nil, coreremote.Reject(env.Code, env.Message)
		}
		return nil, &coreremote.TransportError{Op: op, Err: fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, truncate(data))}
	}
	if decodeErr != nil {
		return nil, &coreremote.TransportError{Op: op, Err: fmt.Errorf("failed to decode response: %w", decodeErr)}
	}
	if env.Code != coreremote.CodeOK {
		return nil, coreremote.Reject(env.Code, env.Message)
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil, nil
	}
	return env.Data, nil
}

func truncate(b []byte) string {
	const limit = 256
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}

