package exchange

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Reconnection constants
const (
	InitialBackoff = 1 * time.Second
	MaxBackoff     = 60 * time.Second
	BackoffFactor  = 2.0
	JitterPercent  = 0.2

	ReadTimeout  = 70 * time.Second
	WriteTimeout = 10 * time.Second
)

// tickerStream manages one miniTicker WebSocket subscription with automatic
// reconnection. Ticks are delivered to the onTick callback in arrival order.
type tickerStream struct {
	url     string
	symbol  string
	onTick  func(price float64)
	conn    *websocket.Conn
	connMu  sync.Mutex
	backoff time.Duration

	stopChan chan struct{}
	stopOnce sync.Once
}

// SubscribeTicker opens a live miniTicker stream for the symbol. The returned
// function cancels the subscription; calling it more than once is safe.
func (c *Client) SubscribeTicker(symbol string, onTick func(price float64)) (func(), error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}

	s := &tickerStream{
		url:      fmt.Sprintf("%s/%s@miniTicker", c.wsURL, strings.ToLower(symbol)),
		symbol:   symbol,
		onTick:   onTick,
		backoff:  InitialBackoff,
		stopChan: make(chan struct{}),
	}

	go s.runLoop()

	return s.stop, nil
}

// stop cancels the stream. It never blocks: the monitor unsubscribes from
// inside a tick callback, which runs on the read goroutine itself.
func (s *tickerStream) stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		s.closeConnection()
	})
}

// runLoop handles connection, reading, and reconnection.
func (s *tickerStream) runLoop() {
	for {
		select {
		case <-s.stopChan:
			slog.Info("ticker_stream_stopping", "symbol", s.symbol)
			return
		default:
		}

		if err := s.connect(); err != nil {
			slog.Error("ticker_connect_failed", "symbol", s.symbol, "error", err, "backoff", s.backoff)
			s.waitBackoff()
			continue
		}

		if err := s.readLoop(); err != nil {
			slog.Warn("ticker_read_error", "symbol", s.symbol, "error", err)
		}

		s.closeConnection()

		select {
		case <-s.stopChan:
			return
		default:
			s.waitBackoff()
		}
	}
}

// connect dials the stream endpoint.
func (s *tickerStream) connect() error {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, resp, err := dialer.Dial(s.url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial failed with status %d: %w", resp.StatusCode, err)
		}
		return fmt.Errorf("dial failed: %w", err)
	}

	conn.SetPingHandler(func(appData string) error {
		conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
		return conn.WriteMessage(websocket.PongMessage, []byte(appData))
	})

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()

	// Reset backoff on successful connection
	s.backoff = InitialBackoff

	slog.Info("ticker_stream_connected", "symbol", s.symbol, "endpoint", s.url)
	return nil
}

// readLoop reads messages until an error or stop signal.
func (s *tickerStream) readLoop() error {
	for {
		select {
		case <-s.stopChan:
			return nil
		default:
		}

		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()

		if conn == nil {
			return fmt.Errorf("connection is nil")
		}

		conn.SetReadDeadline(time.Now().Add(ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read error: %w", err)
		}

		s.handleMessage(message)
	}
}

// miniTickerEvent is the Binance <symbol>@miniTicker payload.
type miniTickerEvent struct {
	Event  string `json:"e"` // "24hrMiniTicker"
	Symbol string `json:"s"`
	Close  string `json:"c"` // current close price
}

// handleMessage parses a miniTicker event and dispatches the close price.
func (s *tickerStream) handleMessage(data []byte) {
	var event miniTickerEvent
	if err := json.Unmarshal(data, &event); err != nil {
		slog.Debug("ticker_parse_error", "symbol", s.symbol, "error", err)
		return
	}

	if event.Event != "24hrMiniTicker" || event.Close == "" {
		slog.Debug("ticker_message_ignored", "symbol", s.symbol, "event", event.Event)
		return
	}

	price, err := strconv.ParseFloat(event.Close, 64)
	if err != nil {
		slog.Debug("ticker_price_unparseable", "symbol", s.symbol, "raw", event.Close)
		return
	}

	s.onTick(price)
}

// closeConnection safely closes the WebSocket connection.
func (s *tickerStream) closeConnection() {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
		slog.Info("ticker_stream_disconnected", "symbol", s.symbol)
	}
}

// waitBackoff waits for the backoff duration with jitter.
func (s *tickerStream) waitBackoff() {
	jitter := time.Duration(float64(s.backoff) * JitterPercent * (rand.Float64()*2 - 1))
	wait := s.backoff + jitter

	slog.Debug("ticker_waiting_backoff", "symbol", s.symbol, "duration", wait)

	select {
	case <-s.stopChan:
	case <-time.After(wait):
	}

	s.backoff = time.Duration(float64(s.backoff) * BackoffFactor)
	if s.backoff > MaxBackoff {
		s.backoff = MaxBackoff
	}
}
