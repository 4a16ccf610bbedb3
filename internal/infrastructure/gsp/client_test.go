package gsp

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/erp/einvoice/internal/domain/einvoice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:      baseURL,
		ClientID:     "client-1",
		ClientSecret: "secret-1",
		Username:     "api_user",
		Password:     "api_pass",
		GSTIN:        "29AABCT1332L1ZT",
		Timeout:      2 * time.Second,
	}
}

func testCredentials() einvoice.Credentials {
	return einvoice.Credentials{
		AccessToken: einvoice.AccessToken{Value: "access-abc"},
		Session:     einvoice.AuthSession{AuthToken: "auth-xyz", Sek: "sek-123", UserName: "api_user"},
	}
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestConfig_MissingSettings(t *testing.T) {
	t.Run("complete config", func(t *testing.T) {
		cfg := testConfig("https://gsp.example.com")
		assert.Empty(t, cfg.MissingSettings())
		assert.NoError(t, cfg.Validate())
	})

	t.Run("reports every missing key", func(t *testing.T) {
		cfg := Config{BaseURL: "https://gsp.example.com", Username: "u"}
		assert.Equal(t, []string{"gsp.client_id", "gsp.client_secret", "gsp.password", "gsp.gstin"}, cfg.MissingSettings())

		err := cfg.Validate()
		require.Error(t, err)
		assert.True(t, einvoice.IsKind(err, einvoice.KindConfiguration))
		e, ok := einvoice.AsError(err)
		require.True(t, ok)
		assert.Len(t, e.Missing, 4)
	})

	t.Run("whitespace counts as missing", func(t *testing.T) {
		cfg := testConfig("  ")
		assert.Equal(t, []string{"gsp.base_url"}, cfg.MissingSettings())
	})
}

func TestClient_Authenticate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, DefaultAuthPath, r.URL.Path)
		assert.Equal(t, "client-1", r.Header.Get("client_id"))
		assert.Equal(t, "secret-1", r.Header.Get("client_secret"))
		writeJSON(w, http.StatusOK, `{"status":1,"data":{"accessToken":"tok"}}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	resp, err := client.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":1,"data":{"accessToken":"tok"}}`, string(resp.Body))
}

func TestClient_EnhancedAuthenticate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultEnhancedAuthPath, r.URL.Path)
		assert.Equal(t, "Bearer access-abc", r.Header.Get("Authorization"))
		assert.Equal(t, "29AABCT1332L1ZT", r.Header.Get("gstin"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "api_user", body["Username"])
		assert.Equal(t, "api_pass", body["Password"])
		assert.Equal(t, true, body["ForceRefreshAccessToken"])

		writeJSON(w, http.StatusOK, `{"Status":1,"Data":{"AuthToken":"a","Sek":"s","UserName":"u"}}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.EnhancedAuthenticate(context.Background(), "access-abc", true)
	require.NoError(t, err)
}

func TestClient_GenerateIRN_SendsSessionHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultGenerateIRNPath, r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "auth-xyz", r.Header.Get("AuthToken"))
		assert.Equal(t, "sek-123", r.Header.Get("sek"))
		assert.Equal(t, "api_user", r.Header.Get("user_name"))
		assert.Equal(t, "Bearer access-abc", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "1.1", body["Version"])
		writeJSON(w, http.StatusOK, `{"Status":"1","Data":{"Irn":"abc"}}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.GenerateIRN(context.Background(), testCredentials(), map[string]string{"Version": "1.1"})
	require.NoError(t, err)
}

func TestClient_CancelIRN(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultCancelIRNPath, r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "irn-1", body["Irn"])
		assert.Equal(t, "2", body["CnlRsn"])
		assert.Equal(t, "wrong entry", body["CnlRem"])
		writeJSON(w, http.StatusOK, `{"Status":1}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.CancelIRN(context.Background(), testCredentials(), einvoice.CancelRequest{
		Irn:    "irn-1",
		Reason: einvoice.CancelReason("2"),
		Remark: "wrong entry",
	})
	require.NoError(t, err)
}

func TestClient_GetIRNByDocument_QueryParameters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, DefaultIRNByDocPath, r.URL.Path)
		assert.Equal(t, "INV", r.URL.Query().Get("doctype"))
		assert.Equal(t, "INV/2024/001", r.URL.Query().Get("docnum"))
		assert.Equal(t, "15/01/2024", r.URL.Query().Get("docdate"))
		writeJSON(w, http.StatusOK, `{"Status":1}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.GetIRNByDocument(context.Background(), testCredentials(), einvoice.DocumentLookup{
		Type:   einvoice.DocumentTypeInvoice,
		Number: "INV/2024/001",
		Date:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
}

func TestClient_NonSuccessStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusUnauthorized, `{"message":"token expired"}`)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.RetryOnTransportError = true
	client := NewClient(cfg)

	_, err := client.Authenticate(context.Background())
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusUnauthorized, te.StatusCode)
	assert.Equal(t, "token expired", te.Message)
	assert.JSONEq(t, `{"message":"token expired"}`, string(te.Body))
	assert.Equal(t, int32(1), calls.Load(), "non-2xx replies are not retried")
}

func TestClient_NonJSONContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.Authenticate(context.Background())

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusOK, te.StatusCode)
	assert.Contains(t, te.Message, "text/html")
}

func TestClient_PlainTextErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	_, err := client.Authenticate(context.Background())

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusBadGateway, te.StatusCode)
	assert.Equal(t, "bad gateway", te.Message)
}

// closedServerURL returns an address nothing listens on
func closedServerURL(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return "http://" + addr
}

type countingTransport struct {
	calls atomic.Int32
	next  http.RoundTripper
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return c.next.RoundTrip(r)
}

func TestClient_ConnectionErrorRetry(t *testing.T) {
	t.Run("retries once when enabled", func(t *testing.T) {
		transport := &countingTransport{next: http.DefaultTransport}
		cfg := testConfig(closedServerURL(t))
		cfg.RetryOnTransportError = true
		client := NewClient(cfg, WithHTTPClient(&http.Client{Transport: transport, Timeout: time.Second}))

		_, err := client.Authenticate(context.Background())
		var te *TransportError
		require.True(t, errors.As(err, &te))
		assert.Zero(t, te.StatusCode)
		assert.Error(t, te.Unwrap())
		assert.Equal(t, int32(2), transport.calls.Load())
	})

	t.Run("single attempt when disabled", func(t *testing.T) {
		transport := &countingTransport{next: http.DefaultTransport}
		cfg := testConfig(closedServerURL(t))
		client := NewClient(cfg, WithHTTPClient(&http.Client{Transport: transport, Timeout: time.Second}))

		_, err := client.Authenticate(context.Background())
		require.Error(t, err)
		assert.Equal(t, int32(1), transport.calls.Load())
	})

	t.Run("no retry after context cancellation", func(t *testing.T) {
		transport := &countingTransport{next: http.DefaultTransport}
		cfg := testConfig(closedServerURL(t))
		cfg.RetryOnTransportError = true
		client := NewClient(cfg, WithHTTPClient(&http.Client{Transport: transport}))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := client.Authenticate(ctx)
		require.Error(t, err)
		assert.LessOrEqual(t, transport.calls.Load(), int32(1))
	})
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	cfg := testConfig(server.URL)
	cfg.Timeout = 50 * time.Millisecond
	client := NewClient(cfg)

	_, err := client.Authenticate(context.Background())
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.StatusCode)
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{BaseURL: "https://gsp.example.com/"})
	assert.Equal(t, "https://gsp.example.com", client.cfg.BaseURL)
	assert.Equal(t, DefaultTimeout, client.cfg.Timeout)
	assert.Equal(t, DefaultAuthPath, client.cfg.AuthPath)
	assert.Equal(t, DefaultTimeout, client.httpClient.Timeout)
	assert.Len(t, client.MissingSettings(), 5)
}

func TestIsJSON(t *testing.T) {
	assert.True(t, isJSON("application/json"))
	assert.True(t, isJSON("application/json; charset=utf-8"))
	assert.True(t, isJSON("application/problem+json"))
	assert.False(t, isJSON("text/plain"))
	assert.False(t, isJSON(""))
}
