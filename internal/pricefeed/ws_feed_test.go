package pricefeed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func TestWSFeed_Connect(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		defer conn.Close()

		// Keep connection open
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx := context.Background()
	feed, err := NewWSFeed(ctx, "test-exchange", wsURL, nil)
	if err != nil {
		t.Fatalf("NewWSFeed: %v", err)
	}
	defer feed.Close()

	if feed.closed.Load() {
		t.Error("feed should not be closed")
	}
	if feed.Name() != "test-exchange" {
		t.Errorf("expected test-exchange, got %s", feed.Name())
	}
}

func TestWSFeed_CachesTicks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		defer conn.Close()

		ticks := []wsTick{
			{Symbol: "BTC-USDT", Price: 50000.0},
			{Symbol: "ETH-USDT", Price: 3000.0},
			{Symbol: "BTC-USDT", Price: 50100.0}, // newer tick replaces older
		}
		for _, tk := range ticks {
			if err := conn.WriteJSON(tk); err != nil {
				return
			}
		}

		// Keep connection open
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx := context.Background()
	feed, err := NewWSFeed(ctx, "test-exchange", wsURL, nil)
	if err != nil {
		t.Fatalf("NewWSFeed: %v", err)
	}
	defer feed.Close()

	// Wait for ticks to arrive
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		price, err := feed.Price(ctx, "BTC-USDT")
		if err == nil && price == 50100.0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	price, err := feed.Price(ctx, "BTC-USDT")
	if err != nil {
		t.Fatalf("Price BTC-USDT: %v", err)
	}
	if price != 50100.0 {
		t.Errorf("expected last tick 50100.0, got %v", price)
	}

	price, err = feed.Price(ctx, "ETH-USDT")
	if err != nil {
		t.Fatalf("Price ETH-USDT: %v", err)
	}
	if price != 3000.0 {
		t.Errorf("expected 3000.0, got %v", price)
	}

	_, err = feed.Price(ctx, "DOGE-USDT")
	if !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("expected ErrUnknownSymbol, got %v", err)
	}
}

func TestWSFeed_StaleTick(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		defer conn.Close()

		if err := conn.WriteJSON(wsTick{Symbol: "BTC-USDT", Price: 50000.0}); err != nil {
			return
		}

		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx := context.Background()
	feed, err := NewWSFeed(ctx, "test-exchange", wsURL, nil)
	if err != nil {
		t.Fatalf("NewWSFeed: %v", err)
	}
	defer feed.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := feed.Price(ctx, "BTC-USDT"); err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Advance the feed clock past StaleAfter
	feed.now = func() time.Time {
		return time.Now().Add(feed.config.StaleAfter + time.Minute)
	}

	_, err = feed.Price(ctx, "BTC-USDT")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable for stale tick, got %v", err)
	}
}

func TestWSFeed_DropsMalformedMessages(t *testing.T) {
	feed := &WSFeed{
		ticks: make(map[string]tick),
		now:   time.Now,
	}

	feed.handleMessage([]byte("not json"))
	feed.handleMessage([]byte(`{"symbol":"","price":100}`))
	feed.handleMessage([]byte(`{"symbol":"BTC-USDT","price":-5}`))

	if len(feed.ticks) != 0 {
		t.Errorf("expected no ticks cached, got %d", len(feed.ticks))
	}

	feed.handleMessage([]byte(`{"symbol":"BTC-USDT","price":100.5}`))
	if len(feed.ticks) != 1 {
		t.Fatalf("expected 1 tick cached, got %d", len(feed.ticks))
	}
	if feed.ticks["BTC-USDT"].price != 100.5 {
		t.Errorf("expected 100.5, got %v", feed.ticks["BTC-USDT"].price)
	}
}

func TestWSFeed_Close(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Fatalf("upgrade: %v", err)
		}
		defer conn.Close()

		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	ctx := context.Background()
	feed, err := NewWSFeed(ctx, "test-exchange", wsURL, nil)
	if err != nil {
		t.Fatalf("NewWSFeed: %v", err)
	}

	err = feed.Close()
	if err != nil {
		t.Errorf("Close: %v", err)
	}

	if !feed.closed.Load() {
		t.Error("feed should be closed")
	}

	_, err = feed.Price(ctx, "BTC-USDT")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable after close, got %v", err)
	}

	// Double close should be safe
	err = feed.Close()
	if err != nil {
		t.Errorf("double Close: %v", err)
	}
}
