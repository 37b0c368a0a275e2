// Package graphql is the read-only client for the Rick and Morty GraphQL API.
//
// GraphQL errors do not discard data: a *ResponseError is returned together
// with whatever the response carried. Transport failures are not retried.
package graphql

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/multiverse/internal/domain"
	"github.com/MrSnakeDoc/multiverse/internal/logger"
)

// DefaultEndpoint is the public API.
const DefaultEndpoint = "https://rickandmortyapi.com/graphql"

// DefaultMaxIDsBatch bounds the ids sent in one charactersByIds query.
const DefaultMaxIDsBatch = 20

const maxResponseBytes = 8 << 20

type CharacterPage struct {
	Info    domain.Info        `json:"info"`
	Results []domain.Character `json:"results"`
}

type EpisodePage struct {
	Info    domain.Info      `json:"info"`
	Results []domain.Episode `json:"results"`
}

type LocationPage struct {
	Info    domain.Info       `json:"info"`
	Results []domain.Location `json:"results"`
}

type Client struct {
	endpoint    string
	http        *http.Client
	cache       *Cache
	maxIDsBatch int
	log         logger.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default transport.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithCache enables response caching.
func WithCache(cache *Cache) Option {
	return func(c *Client) { c.cache = cache }
}

// WithMaxIDsBatch splits CharactersByIDs into queries of at most n ids.
func WithMaxIDsBatch(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxIDsBatch = n
		}
	}
}

func New(endpoint string, timeout time.Duration, log logger.Logger, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:    endpoint,
		http:        newHTTPClient(timeout),
		maxIDsBatch: DefaultMaxIDsBatch,
		log:         log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: timeout,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			MaxIdleConns:    10,
			IdleConnTimeout: 90 * time.Second,
		},
	}
}

func (c *Client) Endpoint() string { return c.endpoint }

// Cache returns the response cache, nil when caching is off.
func (c *Client) Cache() *Cache { return c.cache }

// Characters fetches one page of the character list. page < 1 means 1.
func (c *Client) Characters(ctx context.Context, page int, filter domain.CharacterFilter) (CharacterPage, error) {
	vars := map[string]any{"page": normalizePage(page)}
	if f := filter.Normalize(); !f.IsEmpty() {
		vars["filter"] = f.Variables()
	}

	var out struct {
		Characters *CharacterPage `json:"characters"`
	}
	err := c.do(ctx, opCharacters, vars, &out)
	if out.Characters == nil {
		return CharacterPage{}, err
	}
	return *out.Characters, err
}

// Character fetches a single character with its episodes.
func (c *Client) Character(ctx context.Context, id string) (domain.Character, error) {
	var out struct {
		Character *domain.Character `json:"character"`
	}
	err := c.do(ctx, opCharacter, map[string]any{"id": id}, &out)
	if out.Character == nil {
		if err == nil {
			err = ErrNotFound
		}
		return domain.Character{}, err
	}
	return *out.Character, err
}

// CharactersByIDs fetches several characters and returns them in the order
// of ids. Unknown ids are skipped.
func (c *Client) CharactersByIDs(ctx context.Context, ids []string) ([]domain.Character, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	found := make(map[string]domain.Character, len(ids))
	var errs []error
	for start := 0; start < len(ids); start += c.maxIDsBatch {
		end := min(start+c.maxIDsBatch, len(ids))

		var out struct {
			CharactersByIDs []*domain.Character `json:"charactersByIds"`
		}
		if err := c.do(ctx, opCharactersByIDs, map[string]any{"ids": ids[start:end]}, &out); err != nil {
			errs = append(errs, err)
		}
		for _, ch := range out.CharactersByIDs {
			if ch != nil {
				found[ch.ID] = *ch
			}
		}
	}

	result := make([]domain.Character, 0, len(found))
	for _, id := range ids {
		if ch, ok := found[id]; ok {
			result = append(result, ch)
			delete(found, id)
		}
	}
	return result, errors.Join(errs...)
}

func (c *Client) Episodes(ctx context.Context, page int) (EpisodePage, error) {
	var out struct {
		Episodes *EpisodePage `json:"episodes"`
	}
	err := c.do(ctx, opEpisodes, map[string]any{"page": normalizePage(page)}, &out)
	if out.Episodes == nil {
		return EpisodePage{}, err
	}
	return *out.Episodes, err
}

func (c *Client) Locations(ctx context.Context, page int) (LocationPage, error) {
	var out struct {
		Locations *LocationPage `json:"locations"`
	}
	err := c.do(ctx, opLocations, map[string]any{"page": normalizePage(page)}, &out)
	if out.Locations == nil {
		return LocationPage{}, err
	}
	return *out.Locations, err
}

// Ping checks that the endpoint answers GraphQL. It bypasses the cache.
func (c *Client) Ping(ctx context.Context) error {
	var out struct {
		Typename string `json:"__typename"`
	}
	return c.roundTrip(ctx, operation{name: "Ping", query: "query Ping { __typename }"}, nil, &out)
}

type request struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []Error         `json:"errors"`
}

func (c *Client) do(ctx context.Context, op operation, vars map[string]any, out any) error {
	key := CacheKey(op.name, vars)
	if data, ok := c.cache.Get(key); ok {
		c.log.Debug("graphql cache hit", logger.String("operation", op.name))
		return json.Unmarshal(data, out)
	}

	start := time.Now()
	data, err := c.post(ctx, op, vars, out)
	if err != nil {
		c.log.Warn("graphql query failed",
			logger.String("operation", op.name),
			logger.Duration("duration", time.Since(start)),
			logger.Error(err),
		)
		return err
	}

	c.cache.Set(key, data)
	c.log.Debug("graphql query",
		logger.String("operation", op.name),
		logger.Duration("duration", time.Since(start)),
	)
	return nil
}

func (c *Client) roundTrip(ctx context.Context, op operation, vars map[string]any, out any) error {
	_, err := c.post(ctx, op, vars, out)
	return err
}

// post sends the query and decodes data into out. It returns the raw data
// only when the response was fully successful.
func (c *Client) post(ctx context.Context, op operation, vars map[string]any, out any) (json.RawMessage, error) {
	body, err := json.Marshal(request{
		OperationName: op.name,
		Query:         op.query,
		Variables:     vars,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", op.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graphql %s: %w", op.name, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("graphql %s: failed to read response: %w", op.name, err)
	}

	var r response
	if err := json.Unmarshal(raw, &r); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &StatusError{Operation: op.name, StatusCode: resp.StatusCode}
		}
		return nil, fmt.Errorf("graphql %s: failed to decode response: %w", op.name, err)
	}

	if len(r.Data) > 0 && !bytes.Equal(r.Data, []byte("null")) {
		if err := json.Unmarshal(r.Data, out); err != nil {
			return nil, fmt.Errorf("graphql %s: failed to decode data: %w", op.name, err)
		}
	}

	if len(r.Errors) > 0 {
		return nil, &ResponseError{Operation: op.name, Errors: r.Errors}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Operation: op.name, StatusCode: resp.StatusCode}
	}
	return r.Data, nil
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}
