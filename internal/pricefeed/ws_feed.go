package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSFeedConfig configures WebSocket feed behavior.
type WSFeedConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
	// StaleAfter bounds how old a cached tick may be before Price
	// reports the feed unavailable for that symbol.
	StaleAfter time.Duration
}

// DefaultWSFeedConfig returns default WebSocket feed configuration.
func DefaultWSFeedConfig() WSFeedConfig {
	return WSFeedConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		StaleAfter:        2 * time.Minute,
	}
}

// WSFeed implements Feed over a WebSocket tick stream.
// It caches the last tick per symbol and serves reads from the cache,
// so Price never blocks on the network.
type WSFeed struct {
	name     string
	endpoint string
	config   WSFeedConfig

	conn   *websocket.Conn
	connMu sync.Mutex
	closed atomic.Bool

	// ticks holds the last received tick per symbol
	ticks   map[string]tick
	ticksMu sync.RWMutex

	// done signals shutdown
	done chan struct{}
	wg   sync.WaitGroup

	// reconnecting indicates reconnection in progress
	reconnecting atomic.Bool

	now func() time.Time
}

type tick struct {
	price      float64
	receivedAt time.Time
}

// NewWSFeed creates a new WebSocket feed and connects to the endpoint.
func NewWSFeed(ctx context.Context, name, endpoint string, config *WSFeedConfig) (*WSFeed, error) {
	cfg := DefaultWSFeedConfig()
	if config != nil {
		cfg = *config
	}

	f := &WSFeed{
		name:     name,
		endpoint: endpoint,
		config:   cfg,
		ticks:    make(map[string]tick),
		done:     make(chan struct{}),
		now:      time.Now,
	}

	if err := f.connect(ctx); err != nil {
		return nil, err
	}

	// Start reader goroutine
	f.wg.Add(1)
	go f.readLoop()

	// Start ping goroutine
	f.wg.Add(1)
	go f.pingLoop()

	return f, nil
}

// Name returns the configured source name.
func (f *WSFeed) Name() string {
	return f.name
}

// Price returns the last cached tick for a symbol.
func (f *WSFeed) Price(_ context.Context, symbol string) (float64, error) {
	if f.closed.Load() {
		return 0, ErrUnavailable
	}

	f.ticksMu.RLock()
	t, exists := f.ticks[symbol]
	f.ticksMu.RUnlock()

	if !exists {
		return 0, ErrUnknownSymbol
	}
	if f.config.StaleAfter > 0 && f.now().Sub(t.receivedAt) > f.config.StaleAfter {
		return 0, fmt.Errorf("tick for %s is stale: %w", symbol, ErrUnavailable)
	}
	return t.price, nil
}

// Close closes the WebSocket connection.
func (f *WSFeed) Close() error {
	if f.closed.Swap(true) {
		return nil // Already closed
	}

	close(f.done)

	f.connMu.Lock()
	if f.conn != nil {
		f.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		f.conn.Close()
	}
	f.connMu.Unlock()

	f.wg.Wait()
	return nil
}

// connect establishes WebSocket connection.
func (f *WSFeed) connect(ctx context.Context) error {
	f.connMu.Lock()
	defer f.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, f.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	f.conn = conn
	return nil
}

// readLoop reads tick messages from WebSocket and updates the cache.
func (f *WSFeed) readLoop() {
	defer f.wg.Done()

	reconnectDelay := f.config.ReconnectDelay

	for !f.closed.Load() {
		f.connMu.Lock()
		conn := f.conn
		f.connMu.Unlock()

		if conn == nil {
			select {
			case <-f.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(f.config.ReadTimeout))

		_, message, err := conn.ReadMessage()
		if err != nil {
			if f.closed.Load() {
				return
			}

			// Connection error - attempt reconnect with exponential backoff
			if !f.reconnecting.Swap(true) {
				go f.reconnect(reconnectDelay)
			}

			reconnectDelay = reconnectDelay * 2
			if reconnectDelay > f.config.MaxReconnectDelay {
				reconnectDelay = f.config.MaxReconnectDelay
			}

			select {
			case <-f.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		// Reset delay on successful read
		reconnectDelay = f.config.ReconnectDelay

		f.handleMessage(message)
	}
}

// reconnect attempts to reconnect after a delay.
func (f *WSFeed) reconnect(delay time.Duration) {
	defer f.reconnecting.Store(false)

	if f.closed.Load() {
		return
	}

	select {
	case <-f.done:
		return
	case <-time.After(delay):
	}

	f.connMu.Lock()
	if f.conn != nil {
		f.conn.Close()
		f.conn = nil
	}
	f.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Reconnect failure leaves conn nil, next read error retries
	f.connect(ctx)
}

// handleMessage parses a tick message and updates the cache.
// Malformed messages are dropped.
func (f *WSFeed) handleMessage(message []byte) {
	var msg wsTick
	if err := json.Unmarshal(message, &msg); err != nil {
		return
	}
	if msg.Symbol == "" || msg.Price <= 0 {
		return
	}

	f.ticksMu.Lock()
	f.ticks[msg.Symbol] = tick{price: msg.Price, receivedAt: f.now()}
	f.ticksMu.Unlock()
}

// pingLoop sends periodic ping frames to keep connection alive.
func (f *WSFeed) pingLoop() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-f.done:
			return
		case <-ticker.C:
			f.connMu.Lock()
			if f.conn != nil {
				f.conn.SetWriteDeadline(time.Now().Add(f.config.WriteTimeout))
				if err := f.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					// Connection might be dead, reader will handle reconnect
				}
			}
			f.connMu.Unlock()
		}
	}
}

// wsTick is the wire format of one tick message.
type wsTick struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
	Ts     int64   `json:"ts,omitempty"`
}
