// Package sparql implements the subset of the SPARQL 1.1 protocol the
// roster import needs: SELECT queries returning JSON results and updates.
package sparql

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

type Client interface {
	Query(ctx context.Context, query string) (*Results, error)
	Update(ctx context.Context, update string) error
}

type HTTPClient struct {
	endpoint string
	client   *http.Client
}

func NewHTTPClient(endpoint string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Query(ctx context.Context, query string) (*Results, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(query))
	if err != nil {
		return nil, errors.Wrap(err, "build query request")
	}
	req.Header.Set("Content-Type", "application/sparql-query")
	req.Header.Set("Accept", "application/sparql-results+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "execute query")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Errorf("query failed: %s: %s", resp.Status, readBodySnippet(resp.Body))
	}

	var results Results
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, errors.Wrap(err, "decode query results")
	}
	return &results, nil
}

func (c *HTTPClient) Update(ctx context.Context, update string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(update))
	if err != nil {
		return errors.Wrap(err, "build update request")
	}
	req.Header.Set("Content-Type", "application/sparql-update")

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "execute update")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Errorf("update failed: %s: %s", resp.Status, readBodySnippet(resp.Body))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func readBodySnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(b))
}
