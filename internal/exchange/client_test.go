package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/llenroc/surgebot/internal/trade"
)

const (
	testAPIKey = "test-api-key"
	testSecret = "test-api-secret"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(server.URL, "ws://unused", testAPIKey, testSecret)
	return client, server
}

// verifySignature recomputes the HMAC over the query and compares it to the
// signature parameter Binance expects.
func verifySignature(t *testing.T, rawQuery string) {
	t.Helper()

	idx := strings.LastIndex(rawQuery, "&signature=")
	require.Positive(t, idx, "signature parameter missing")

	payload := rawQuery[:idx]
	signature := rawQuery[idx+len("&signature="):]

	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write([]byte(payload))
	require.Equal(t, hex.EncodeToString(mac.Sum(nil)), signature, "signature mismatch")

	require.Contains(t, payload, "timestamp=", "timestamp parameter missing")
}

func TestPrices(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/ticker/price", r.URL.Path)
		w.Write([]byte(`[
			{"symbol":"XYZUSDT","price":"10.5"},
			{"symbol":"BTCUSDT","price":"64321.01"},
			{"symbol":"BADUSDT","price":"not-a-number"}
		]`))
	}))
	defer server.Close()

	prices, err := client.Prices(context.Background())
	require.NoError(t, err)

	require.Equal(t, 10.5, prices["XYZUSDT"])
	require.Equal(t, 64321.01, prices["BTCUSDT"])
	require.NotContains(t, prices, "BADUSDT", "unparseable prices are skipped")
}

func TestAccountBalances(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/account", r.URL.Path)
		require.Equal(t, testAPIKey, r.Header.Get("X-MBX-APIKEY"))
		verifySignature(t, r.URL.RawQuery)

		w.Write([]byte(`{"balances":[
			{"asset":"USDT","free":"1000.50","locked":"0.00"},
			{"asset":"BTC","free":"0.25","locked":"0.10"}
		]}`))
	}))
	defer server.Close()

	balances, err := client.AccountBalances(context.Background())
	require.NoError(t, err)

	require.Equal(t, 1000.50, balances["USDT"])
	require.Equal(t, 0.25, balances["BTC"], "only the free amount counts")
}

func TestPlaceMarketOrder(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v3/order", r.URL.Path)
		require.Equal(t, testAPIKey, r.Header.Get("X-MBX-APIKEY"))
		verifySignature(t, r.URL.RawQuery)

		params := r.URL.Query()
		require.Equal(t, "XYZUSDT", params.Get("symbol"))
		require.Equal(t, "BUY", params.Get("side"))
		require.Equal(t, "MARKET", params.Get("type"))
		require.Equal(t, "9.43", params.Get("quantity"))
		require.NotEmpty(t, params.Get("newClientOrderId"))

		w.Write([]byte(`{
			"symbol":"XYZUSDT",
			"orderId":12345,
			"clientOrderId":"abc-123",
			"transactTime":1700000000000,
			"executedQty":"9.43000000",
			"fills":[{"price":"10.60","qty":"9.43"}]
		}`))
	}))
	defer server.Close()

	order, err := client.PlaceMarketOrder(context.Background(), "XYZUSDT", trade.SideBuy, 9.43)
	require.NoError(t, err)

	require.Equal(t, "12345", order.ID)
	require.Equal(t, "abc-123", order.ClientOrderID)
	require.Equal(t, "XYZUSDT", order.Symbol)
	require.Equal(t, trade.SideBuy, order.Side)
	require.Equal(t, 9.43, order.Quantity)
	require.Equal(t, 10.60, order.Price, "fill price wins over the request price")
	require.False(t, order.PlacedAt.IsZero())
}

func TestPlaceMarketOrderRejection(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code":-2010,"msg":"Account has insufficient balance"}`))
	}))
	defer server.Close()

	_, err := client.PlaceMarketOrder(context.Background(), "XYZUSDT", trade.SideSell, 1.0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "insufficient balance")
}

func TestExchangeInfo(t *testing.T) {
	client, server := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v3/exchangeInfo", r.URL.Path)
		w.Write([]byte(`{"timezone":"UTC","symbols":[{"symbol":"XYZUSDT","status":"TRADING"}]}`))
	}))
	defer server.Close()

	require.NoError(t, client.ExchangeInfo(context.Background()))
}
