// Package kafkaconnect implements a minimal Kafka Connect REST client,
// shaped after creiche-confluent-go's pkg/client (Config + Do(ctx, Request)
// with JSON (de)serialization and a typed API error on non-2xx), adapted to
// the Connect REST surface this project needs: validating and deploying a
// compiled connector's config (spec.md §1 Non-goals: "does not speak Kafka
// Connect's wire protocol" reconciliation, only pushes declared state).
package kafkaconnect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/foundryhq/foundry/internal/ferrors"
)

// Config points the client at one Connect REST endpoint.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client is a thin wrapper over http.Client for the Connect REST surface.
type Client struct {
	cfg Config
}

func New(cfg Config) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &Client{cfg: cfg}
}

// APIError is returned for any non-2xx Connect REST response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("kafka connect returned %d: %s", e.StatusCode, e.Body)
}

// request issues method against path with an optional JSON body, decoding a
// JSON response into out if non-nil.
func (c *Client) request(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return ferrors.NewExecution("", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return ferrors.NewExecution("", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return ferrors.NewExecution("", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return ferrors.NewExecution("", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ferrors.NewExecution("", &APIError{StatusCode: resp.StatusCode, Body: string(respBody)})
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return ferrors.NewExecution("", err)
		}
	}
	return nil
}

// ConnectorConfigRequest is the body of PUT /connectors/<name>/config.
type ConnectorConfigRequest map[string]string

// ValidateResponse is the (partial) shape of a config/validate response; only
// the fields callers need to check for structural violations are modeled.
type ValidateResponse struct {
	ErrorCount int `json:"error_count"`
}

// Validate calls PUT /connector-plugins/<connectorClass>/config/validate.
func (c *Client) Validate(ctx context.Context, connectorClass, name string, config ConnectorConfigRequest) (*ValidateResponse, error) {
	var out ValidateResponse
	path := fmt.Sprintf("/connector-plugins/%s/config/validate", connectorClass)
	if err := c.request(ctx, http.MethodPut, path, config, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Deploy calls PUT /connectors/<name>/config to create or update a connector.
func (c *Client) Deploy(ctx context.Context, name string, config ConnectorConfigRequest) error {
	path := fmt.Sprintf("/connectors/%s/config", name)
	return c.request(ctx, http.MethodPut, path, config, nil)
}
