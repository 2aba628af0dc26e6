package runtime

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aowss/orderbook/internal/cache"
	"github.com/aowss/orderbook/internal/config"
	"github.com/aowss/orderbook/internal/ratelimit"
	"github.com/aowss/orderbook/pkg/matchcore"
)

const testJWTSecret = "test-secret"

func newTestServer(t *testing.T) (*Server, func()) {
	t.Helper()
	mux, err := NewMultiplexer(4, nil)
	require.NoError(t, err)
	require.NoError(t, mux.Register(testSymbol("BTC-USD")))

	limiter, err := ratelimit.New(1000, "1s")
	require.NoError(t, err)

	symbols := cache.New(time.Minute, 0)
	symbols.Put(config.SymbolSpec{Name: "BTC-USD", TickSize: 1})

	s := NewServer(mux, limiter, nil, symbols, testJWTSecret, nil)
	return s, mux.Close
}

func TestServerHealth(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestServerListSymbols(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/symbols", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "BTC-USD")
}

func TestServerBookSnapshotEmpty(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/symbols/BTC-USD/book", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Empty(t, body["asks"])
	assert.Empty(t, body["bids"])
}

func TestServerBookSnapshotUnknownSymbol(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/symbols/NOPE/book", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServerSubmitCommandRequiresAuth(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()

	body := `{"opcode":"place","order_id":1,"price":1000,"size":10,"action":"ask","order_type":"gtc"}`
	req := httptest.NewRequest(http.MethodPost, "/symbols/BTC-USD/commands", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestServerSubmitCommandPlacesOrder(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()

	token := signTestToken(t, testJWTSecret, 42, false)
	body := `{"opcode":"place","order_id":1,"price":1000,"size":10,"action":"ask","order_type":"gtc"}`
	req := httptest.NewRequest(http.MethodPost, "/symbols/BTC-USD/commands", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp matchcore.CommandResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, matchcore.ResultSuccess, resp.Code)
	assert.Equal(t, uint64(1), resp.OrderID)
}

func TestServerSubmitCommandUnknownSymbol(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()

	token := signTestToken(t, testJWTSecret, 42, false)
	body := `{"opcode":"place","order_id":1,"price":1000,"size":10,"action":"ask","order_type":"gtc"}`
	req := httptest.NewRequest(http.MethodPost, "/symbols/NOPE/commands", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
