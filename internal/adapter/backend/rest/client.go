package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/mmcdole/marquee/internal/domain"
)

const defaultTable = "movies"

// returnRepresentation asks the data API to echo the affected rows
const returnRepresentation = "return=representation"

// TokenSource supplies the signed-in user's access token, "" when signed out
type TokenSource interface {
	AccessToken() string
}

// Client implements domain.ItemRepository over the data API
type Client struct {
	t      *transport
	table  string
	tokens TokenSource
	logger *slog.Logger
}

// NewClient creates a data API client. tokens may be nil, in which case
// every request carries only the API key.
func NewClient(baseURL, apiKey string, tokens TokenSource, opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	table := opts.Table
	if table == "" {
		table = defaultTable
	}
	return &Client{
		t:      newTransport(baseURL, apiKey, opts, logger),
		table:  table,
		tokens: tokens,
		logger: logger,
	}
}

// Ping checks that the table is reachable with the configured key
func (c *Client) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("select", "id")
	q.Set("limit", "1")
	_, err := c.t.do(ctx, c.request(http.MethodGet, q, nil))
	if err != nil {
		return storeError(err)
	}
	return nil
}

func (c *Client) ListItems(ctx context.Context) ([]domain.Item, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "created_at.desc")

	body, err := c.t.do(ctx, c.request(http.MethodGet, q, nil))
	if err != nil {
		return nil, storeError(err)
	}
	return decodeItems(body)
}

func (c *Client) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	q := byID(id)
	q.Set("select", "*")

	body, err := c.t.do(ctx, c.request(http.MethodGet, q, nil))
	if err != nil {
		return nil, storeError(err)
	}
	return decodeOne(body)
}

func (c *Client) InsertItem(ctx context.Context, draft domain.ItemDraft) (*domain.Item, error) {
	req := c.request(http.MethodPost, nil, draft)
	req.prefer = returnRepresentation

	body, err := c.t.do(ctx, req)
	if err != nil {
		return nil, storeError(err)
	}
	item, err := decodeOne(body)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: insert returned no row", domain.ErrStore)
	}
	return item, err
}

func (c *Client) UpdateItem(ctx context.Context, id string, patch domain.ItemPatch) (*domain.Item, error) {
	req := c.request(http.MethodPatch, byID(id), patch)
	req.prefer = returnRepresentation

	body, err := c.t.do(ctx, req)
	if err != nil {
		return nil, storeError(err)
	}
	return decodeOne(body)
}

func (c *Client) RemoveItem(ctx context.Context, id string) error {
	req := c.request(http.MethodDelete, byID(id), nil)
	req.prefer = returnRepresentation

	body, err := c.t.do(ctx, req)
	if err != nil {
		return storeError(err)
	}
	_, err = decodeOne(body)
	return err
}

func (c *Client) request(method string, q url.Values, body any) request {
	req := request{
		method: method,
		path:   "/rest/v1/" + url.PathEscape(c.table),
		query:  q,
		body:   body,
	}
	if c.tokens != nil {
		req.bearer = c.tokens.AccessToken()
	}
	return req
}

func byID(id string) url.Values {
	q := url.Values{}
	q.Set("id", "eq."+id)
	return q
}

func decodeItems(body []byte) ([]domain.Item, error) {
	var items []domain.Item
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("%w: failed to parse response: %w", domain.ErrStore, err)
	}
	return items, nil
}

// decodeOne expects a single-row representation; no rows means the filter
// matched nothing
func decodeOne(body []byte) (*domain.Item, error) {
	items, err := decodeItems(body)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, domain.ErrNotFound
	}
	return &items[0], nil
}

// invalidTextRepresentation is the Postgres code for a malformed literal,
// e.g. an id that is not a UUID
const invalidTextRepresentation = "22P02"

// storeError maps a transport failure onto the domain error classes
func storeError(err error) error {
	serr, ok := asStatus(err)
	if !ok {
		return fmt.Errorf("%w: %w", domain.ErrStore, err)
	}
	switch {
	case serr.Code == invalidTextRepresentation:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, serr.Msg)
	case serr.Status == http.StatusUnauthorized || serr.Status == http.StatusForbidden:
		return fmt.Errorf("%w: %w: %s", domain.ErrStore, domain.ErrAuth, serr.Msg)
	case serr.Status == http.StatusBadRequest ||
		serr.Status == http.StatusConflict ||
		serr.Status == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", domain.ErrValidation, serr.Msg)
	default:
		return fmt.Errorf("%w: %w", domain.ErrStore, serr)
	}
}
