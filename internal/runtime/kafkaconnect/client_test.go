package kafkaconnect

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateReturnsErrorCount(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/connector-plugins/io.debezium.connector.postgresql.PostgresConnector/config/validate", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(ValidateResponse{ErrorCount: 0})
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	resp, err := c.Validate(context.Background(), "io.debezium.connector.postgresql.PostgresConnector", "orders_source", ConnectorConfigRequest{"a": "b"})
	require.NoError(t, err)
	require.Equal(t, 0, resp.ErrorCount)
}

func TestDeployPutsConnectorConfig(t *testing.T) {
	t.Parallel()

	var gotBody ConnectorConfigRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/connectors/orders_source/config", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	err := c.Deploy(context.Background(), "orders_source", ConnectorConfigRequest{"connector.class": "X"})
	require.NoError(t, err)
	require.Equal(t, "X", gotBody["connector.class"])
}

func TestRequestReturnsAPIErrorOnNon2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid config"}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	err := c.Deploy(context.Background(), "orders_source", ConnectorConfigRequest{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid config")
}

func TestNewDefaultsHTTPClient(t *testing.T) {
	t.Parallel()

	c := New(Config{BaseURL: "http://localhost:8083"})
	require.Equal(t, http.DefaultClient, c.cfg.HTTPClient)
}
