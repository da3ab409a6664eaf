// Package exchange provides the Binance REST and WebSocket clients.
package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/llenroc/surgebot/internal/trade"
)

// Client talks to the Binance spot REST API and opens ticker streams.
// It implements trade.Exchange and trade.AccountProvider.
type Client struct {
	restURL string
	wsURL   string
	apiKey  string
	secret  string
	hc      *http.Client
}

// NewClient creates a Client for the given endpoints and credentials.
func NewClient(restURL, wsURL, apiKey, secret string) *Client {
	return &Client{
		restURL: strings.TrimRight(restURL, "/"),
		wsURL:   strings.TrimRight(wsURL, "/"),
		apiKey:  apiKey,
		secret:  secret,
		hc:      &http.Client{Timeout: 10 * time.Second},
	}
}

// tickerPrice is one entry of the /api/v3/ticker/price response.
type tickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// Prices returns the current price for every traded pair.
func (c *Client) Prices(ctx context.Context) (map[string]float64, error) {
	var tickers []tickerPrice
	if err := c.get(ctx, "/api/v3/ticker/price", nil, &tickers); err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}

	prices := make(map[string]float64, len(tickers))
	for _, t := range tickers {
		price, err := strconv.ParseFloat(t.Price, 64)
		if err != nil {
			slog.Debug("unparseable_price", "symbol", t.Symbol, "raw", t.Price)
			continue
		}
		prices[t.Symbol] = price
	}

	return prices, nil
}

// accountResponse is the subset of /api/v3/account the bot reads.
type accountResponse struct {
	Balances []struct {
		Asset  string `json:"asset"`
		Free   string `json:"free"`
		Locked string `json:"locked"`
	} `json:"balances"`
}

// AccountBalances returns the free amount per asset.
func (c *Client) AccountBalances(ctx context.Context) (map[string]float64, error) {
	var account accountResponse
	if err := c.signedGet(ctx, "/api/v3/account", url.Values{}, &account); err != nil {
		return nil, fmt.Errorf("fetch account: %w", err)
	}

	balances := make(map[string]float64, len(account.Balances))
	for _, b := range account.Balances {
		free, err := strconv.ParseFloat(b.Free, 64)
		if err != nil {
			continue
		}
		balances[b.Asset] = free
	}

	return balances, nil
}

// ExchangeInfo fetches exchange metadata. The payload is only sanity-checked;
// the cycle logic does not consume it.
func (c *Client) ExchangeInfo(ctx context.Context) error {
	var info struct {
		Timezone string `json:"timezone"`
		Symbols  []struct {
			Symbol string `json:"symbol"`
			Status string `json:"status"`
		} `json:"symbols"`
	}
	if err := c.get(ctx, "/api/v3/exchangeInfo", nil, &info); err != nil {
		return fmt.Errorf("fetch exchange info: %w", err)
	}

	slog.Debug("exchange_info_loaded", "symbols", len(info.Symbols))
	return nil
}

// orderResponse is the FULL response of POST /api/v3/order.
type orderResponse struct {
	Symbol        string `json:"symbol"`
	OrderID       int64  `json:"orderId"`
	ClientOrderID string `json:"clientOrderId"`
	TransactTime  int64  `json:"transactTime"`
	ExecutedQty   string `json:"executedQty"`
	Fills         []struct {
		Price string `json:"price"`
		Qty   string `json:"qty"`
	} `json:"fills"`
}

// PlaceMarketOrder submits a market order and returns the normalized result.
func (c *Client) PlaceMarketOrder(ctx context.Context, symbol string, side trade.Side, quantity float64) (trade.Order, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", string(side))
	params.Set("type", trade.OrderTypeMarket)
	params.Set("quantity", strconv.FormatFloat(quantity, 'f', -1, 64))
	params.Set("newClientOrderId", uuid.NewString())
	params.Set("newOrderRespType", "FULL")

	var resp orderResponse
	if err := c.signedPost(ctx, "/api/v3/order", params, &resp); err != nil {
		return trade.Order{}, fmt.Errorf("submit %s %s: %w", side, symbol, err)
	}

	order := trade.Order{
		ID:            strconv.FormatInt(resp.OrderID, 10),
		ClientOrderID: resp.ClientOrderID,
		Symbol:        resp.Symbol,
		Side:          side,
		Type:          trade.OrderTypeMarket,
		Quantity:      quantity,
		PlacedAt:      time.UnixMilli(resp.TransactTime),
	}

	if executed, err := strconv.ParseFloat(resp.ExecutedQty, 64); err == nil && executed > 0 {
		order.Quantity = executed
	}
	if len(resp.Fills) > 0 {
		if price, err := strconv.ParseFloat(resp.Fills[0].Price, 64); err == nil {
			order.Price = price
		}
	}

	return order, nil
}

// get performs an unauthenticated GET and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.restURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	return c.do(req, out)
}

// signedGet performs a signed GET with the API key header.
func (c *Client) signedGet(ctx context.Context, path string, params url.Values, out any) error {
	query := c.sign(params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.restURL+path+"?"+query, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-MBX-APIKEY", c.apiKey)

	return c.do(req, out)
}

// signedPost performs a signed POST with the parameters in the query string.
func (c *Client) signedPost(ctx context.Context, path string, params url.Values, out any) error {
	query := c.sign(params)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.restURL+path+"?"+query, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-MBX-APIKEY", c.apiKey)

	return c.do(req, out)
}

// sign appends the timestamp and HMAC-SHA256 signature Binance requires on
// authenticated endpoints.
func (c *Client) sign(params url.Values) string {
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))

	query := params.Encode()
	mac := hmac.New(sha256.New, []byte(c.secret))
	mac.Write([]byte(query))

	return query + "&signature=" + hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode failed: %w", err)
	}

	return nil
}
