// Package store talks to the hosted Supabase project: the PostgREST
// document API for reads and writes, and the Realtime websocket for live
// subscriptions. Nothing in here owns storage; every call is a request to
// the managed platform.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"stackit/internal/config"
)

// ErrNotFound is returned when a single-document lookup matches nothing.
var ErrNotFound = errors.New("store: document not found")

// RequestError is a failed call to the remote store.
type RequestError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("store %s failed (status %d): %s", e.Op, e.StatusCode, e.Message)
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     zerolog.Logger
}

func NewClient(cfg config.SupabaseConfig, log zerolog.Logger) *Client {
	key := cfg.ServiceRoleKey
	if key == "" {
		key = cfg.AnonKey
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		apiKey:  key,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     log.With().Str("component", "store").Logger(),
	}
}

// From starts a query against one collection.
func (c *Client) From(collection string) *Query {
	return &Query{client: c, collection: collection}
}

type Query struct {
	client     *Client
	collection string
	filters    []filter
	orders     []string
	limit      int
	single     bool
}

type filter struct {
	column string
	value  string
}

// Eq filters on column equality.
func (q *Query) Eq(column string, value any) *Query {
	q.filters = append(q.filters, filter{column, fmt.Sprintf("eq.%v", value)})
	return q
}

// Contains filters array columns on membership of every given element.
func (q *Query) Contains(column string, values ...string) *Query {
	q.filters = append(q.filters, filter{column, fmt.Sprintf("cs.{%s}", strings.Join(values, ","))})
	return q
}

func (q *Query) Order(column string, ascending bool) *Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.orders = append(q.orders, column+"."+dir)
	return q
}

func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Single expects exactly one document; Get returns ErrNotFound otherwise.
func (q *Query) Single() *Query {
	q.single = true
	return q
}

func (q *Query) params() url.Values {
	params := url.Values{}
	for _, f := range q.filters {
		params.Add(f.column, f.value)
	}
	if len(q.orders) > 0 {
		params.Set("order", strings.Join(q.orders, ","))
	}
	if q.limit > 0 {
		params.Set("limit", fmt.Sprintf("%d", q.limit))
	}
	return params
}

func (q *Query) endpoint(params url.Values) string {
	reqURL := fmt.Sprintf("%s/rest/v1/%s", q.client.baseURL, q.collection)
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	return reqURL
}

// Get runs the query and decodes the result into dest. With Single set,
// dest receives one document, otherwise a slice.
func (q *Query) Get(ctx context.Context, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.endpoint(q.params()), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if q.single {
		req.Header.Set("Accept", "application/vnd.pgrst.object+json")
	}
	return q.client.do(req, "select "+q.collection, dest)
}

// Insert writes one document. When dest is non-nil the stored representation
// is decoded back into it.
func (q *Query) Insert(ctx context.Context, doc any, dest any) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.endpoint(nil), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if dest != nil {
		req.Header.Set("Prefer", "return=representation")
		return q.client.doRows(req, "insert "+q.collection, dest)
	}
	req.Header.Set("Prefer", "return=minimal")
	return q.client.do(req, "insert "+q.collection, nil)
}

// Update patches every document matching the filters. The number of patched
// documents is returned so callers can tell a foreign id from a real update.
func (q *Query) Update(ctx context.Context, patch any) (int, error) {
	body, err := json.Marshal(patch)
	if err != nil {
		return 0, fmt.Errorf("marshal patch: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, q.endpoint(q.params()), bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	var rows []json.RawMessage
	if err := q.client.do(req, "update "+q.collection, &rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Delete removes every document matching the filters and reports how many.
func (q *Query) Delete(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, q.endpoint(q.params()), nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Prefer", "return=representation")

	var rows []json.RawMessage
	if err := q.client.do(req, "delete "+q.collection, &rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

// RPC calls a database function through PostgREST.
func (c *Client) RPC(ctx context.Context, fn string, params any, dest any) error {
	var body []byte
	if params != nil {
		var err error
		body, err = json.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshal params: %w", err)
		}
	}
	reqURL := fmt.Sprintf("%s/rest/v1/rpc/%s", c.baseURL, fn)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, "rpc "+fn, dest)
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
}

func (c *Client) do(req *http.Request, op string, dest any) error {
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotAcceptable || resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		var errResp struct {
			Message string `json:"message"`
		}
		json.NewDecoder(resp.Body).Decode(&errResp)
		reqErr := &RequestError{Op: op, StatusCode: resp.StatusCode, Message: errResp.Message}
		c.log.Error().Int("status", resp.StatusCode).Str("op", op).Msg(errResp.Message)
		return reqErr
	}

	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

// doRows decodes a representation array and unwraps the first row into dest.
func (c *Client) doRows(req *http.Request, op string, dest any) error {
	var rows []json.RawMessage
	if err := c.do(req, op, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return ErrNotFound
	}
	if err := json.Unmarshal(rows[0], dest); err != nil {
		return fmt.Errorf("%s: decode row: %w", op, err)
	}
	return nil
}
