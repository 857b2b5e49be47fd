// Package remote implements the order store against the shop's REST
// backend. Each operation maps to one request; the client holds no
// authoritative cache of the collection.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/bubbletea-slz/teahouse/internal/entity"
	"github.com/bubbletea-slz/teahouse/internal/filtering"
	"github.com/bubbletea-slz/teahouse/internal/store"
)

// Client talks to the /pedidos API. It satisfies store.Store.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

// Option customises a Client.
type Option func(*Client)

// WithNow overrides the clock, used by tests.
func WithNow(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a remote store client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse remote base url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("remote base url must be absolute")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Create posts the draft; the backend assigns identity and purchase code.
func (c *Client) Create(ctx context.Context, draft entity.Draft, price decimal.Decimal) (entity.Order, error) {
	body := createRequest{
		Cliente:     draft.Client,
		TipoCha:     teaToWire[draft.TeaType],
		Tamanho:     sizeToWire[draft.Size],
		Observacoes: draft.Notes,
		Preco:       price.InexactFloat64(),
	}

	var created wireOrder
	if err := c.do(ctx, http.MethodPost, "/pedidos", nil, body, &created); err != nil {
		return entity.Order{}, err
	}
	return created.toEntity()
}

// List asks the backend to filter. The "week" bucket has no wire
// representation (the data param is a single ISO date), so it is fetched
// unfiltered and resolved through the local filter pipeline.
func (c *Client) List(ctx context.Context, f filtering.Filter) ([]entity.Order, error) {
	query := url.Values{}
	if f.Client != "" {
		query.Set("cliente", f.Client)
	}
	if f.Status != "" && f.Status != "all" {
		query.Set("status", statusToWire[f.Status])
	}

	localWeek := false
	switch f.DateBucket {
	case filtering.BucketToday:
		query.Set("data", c.now().Format("2006-01-02"))
	case filtering.BucketYesterday:
		query.Set("data", c.now().AddDate(0, 0, -1).Format("2006-01-02"))
	case filtering.BucketWeek:
		localWeek = true
	}

	var wire []wireOrder
	if err := c.do(ctx, http.MethodGet, "/pedidos", query, nil, &wire); err != nil {
		return nil, err
	}

	orders := make([]entity.Order, 0, len(wire))
	for _, w := range wire {
		order, err := w.toEntity()
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if localWeek {
		return filtering.Apply(orders, filtering.Filter{DateBucket: filtering.BucketWeek}, c.now()), nil
	}
	return filtering.Apply(orders, filtering.Filter{}, c.now()), nil
}

// GetByID fetches a single order.
func (c *Client) GetByID(ctx context.Context, id int64) (entity.Order, error) {
	var wire wireOrder
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/pedidos/%d", id), nil, nil, &wire); err != nil {
		return entity.Order{}, err
	}
	return wire.toEntity()
}

// Update reads the current order, merges the patch, and PUTs the full
// set of editable fields back. A status field in the patch is applied
// through the dedicated status endpoint afterwards.
func (c *Client) Update(ctx context.Context, id int64, patch store.Patch) (entity.Order, error) {
	current, err := c.GetByID(ctx, id)
	if err != nil {
		return entity.Order{}, err
	}

	if patch.Client != nil {
		current.Client = *patch.Client
	}
	if patch.TeaType != nil {
		current.TeaType = *patch.TeaType
	}
	if patch.Size != nil {
		current.Size = *patch.Size
	}
	if patch.Notes != nil {
		current.Notes = *patch.Notes
	}

	body := updateRequest{
		Cliente:     current.Client,
		TipoCha:     teaToWire[current.TeaType],
		Tamanho:     sizeToWire[current.Size],
		Observacoes: current.Notes,
	}

	var updated wireOrder
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/pedidos/%d", id), nil, body, &updated); err != nil {
		return entity.Order{}, err
	}
	if patch.Status != nil {
		return c.UpdateStatus(ctx, id, *patch.Status)
	}
	return updated.toEntity()
}

// UpdateStatus patches the order status.
func (c *Client) UpdateStatus(ctx context.Context, id int64, status entity.Status) (entity.Order, error) {
	query := url.Values{}
	query.Set("novoStatus", statusToWire[status])

	var wire wireOrder
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/pedidos/%d/status", id), query, nil, &wire); err != nil {
		return entity.Order{}, err
	}
	return wire.toEntity()
}

// Delete removes the order. The order is fetched first so the caller
// still gets the removed record back (the backend answers 204).
func (c *Client) Delete(ctx context.Context, id int64) (entity.Order, error) {
	removed, err := c.GetByID(ctx, id)
	if err != nil {
		return entity.Order{}, err
	}
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/pedidos/%d", id), nil, nil, nil); err != nil {
		return entity.Order{}, err
	}
	return removed, nil
}

// ClearAll degrades to one delete per order: the backend has no bulk
// endpoint. A mid-sequence failure leaves a mixed state behind and is
// surfaced to the caller.
func (c *Client) ClearAll(ctx context.Context) (int, error) {
	orders, err := c.List(ctx, filtering.Filter{})
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, order := range orders {
		if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/pedidos/%d", order.ID), nil, nil, nil); err != nil {
			return removed, fmt.Errorf("clear all stopped after %d of %d orders: %w", removed, len(orders), err)
		}
		removed++
	}
	return removed, nil
}

// Statistics degrades to zero values on failure. The dashboard numbers
// are a non-critical read and must not take the UI down with them.
func (c *Client) Statistics(ctx context.Context) (filtering.Statistics, error) {
	var wire wireStatistics
	if err := c.do(ctx, http.MethodGet, "/pedidos/estatisticas", nil, nil, &wire); err != nil {
		c.logger.Warn("statistics request failed, serving zero values", zap.Error(err))
		return filtering.Statistics{TotalRevenue: decimal.Zero, TodayRevenue: decimal.Zero}, nil
	}

	return filtering.Statistics{
		Total:        wire.TotalPedidos,
		TodayCount:   wire.PedidosHoje,
		TotalRevenue: decimal.NewFromFloat(wire.ReceitaTotal),
		TodayRevenue: decimal.NewFromFloat(wire.ReceitaHoje),
	}, nil
}

// do performs one request/response cycle against the backend.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := *c.baseURL
	endpoint.Path, _ = url.JoinPath(endpoint.Path, path)
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return store.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.asError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// asError surfaces the server message when one is provided, otherwise a
// generic HTTP-status error.
func (c *Client) asError(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)

	var payload errorResponse
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Message != "" {
		return fmt.Errorf("backend error: %s", payload.Message)
	}
	return fmt.Errorf("backend error: %s", resp.Status)
}
