package bitmex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/comit-network/hermes/business/pricefeed/domain"
	"github.com/comit-network/hermes/internal/logger"
)

// mockLogger implements logger.LoggerInterface for testing.
type mockLogger struct{}

func (m *mockLogger) Debug(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Info(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any)               {}
func (m *mockLogger) Error(ctx context.Context, msg string, args ...any)              {}
func (m *mockLogger) Debugc(ctx context.Context, caller int, msg string, args ...any) {}
func (m *mockLogger) Infoc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Warnc(ctx context.Context, caller int, msg string, args ...any)  {}
func (m *mockLogger) Errorc(ctx context.Context, caller int, msg string, args ...any) {}

var _ logger.LoggerInterface = (*mockLogger)(nil)

// mockExchange creates a test WebSocket server standing in for BitMEX.
func mockExchange(t *testing.T, handler func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			t.Logf("websocket accept error: %v", err)
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")

		if handler != nil {
			handler(conn)
		}
	}))
}

func exchangeURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

// readSubscribe reads one frame and decodes it as a subscribe command.
func readSubscribe(t *testing.T, conn *websocket.Conn) wsCommand {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Logf("read subscribe: %v", err)
		return wsCommand{}
	}

	var cmd wsCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		t.Errorf("subscribe frame is not valid JSON: %v", err)
	}
	return cmd
}

func TestClient_SubscribesAndDeliversMarkPrices(t *testing.T) {
	var gotCmd wsCommand
	var cmdMu sync.Mutex

	server := mockExchange(t, func(conn *websocket.Conn) {
		cmd := readSubscribe(t, conn)
		cmdMu.Lock()
		gotCmd = cmd
		cmdMu.Unlock()

		ctx := context.Background()
		frames := []string{
			`{"success":true,"subscribe":"instrument:XBTUSD"}`,
			`{"table":"instrument","action":"partial","data":[{"symbol":"XBTUSD","markPrice":41234.56,"timestamp":"2022-01-05T12:00:00.000Z"}]}`,
		}
		for _, f := range frames {
			if err := conn.Write(ctx, websocket.MessageText, []byte(f)); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	})
	defer server.Close()

	client, err := NewClient(DefaultClientConfig(exchangeURL(server), "XBTUSD"), &mockLogger{})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()

	prices := make(chan domain.MarkPrice, 4)
	client.OnMarkPrice(func(p domain.MarkPrice) {
		prices <- p
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	select {
	case p := <-prices:
		if p.Value.String() != "41234.56" {
			t.Errorf("expected mark price 41234.56, got %s", p.Value)
		}
		if p.Symbol != "XBTUSD" {
			t.Errorf("expected symbol XBTUSD, got %s", p.Symbol)
		}
		if p.ReceivedAt.IsZero() {
			t.Error("expected a local receive time")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for mark price")
	}

	cmdMu.Lock()
	defer cmdMu.Unlock()
	if gotCmd.Op != "subscribe" {
		t.Errorf("expected op=subscribe, got %q", gotCmd.Op)
	}
	if len(gotCmd.Args) != 1 || gotCmd.Args[0] != "instrument:XBTUSD" {
		t.Errorf("expected args [instrument:XBTUSD], got %v", gotCmd.Args)
	}
}

func TestClient_IgnoresUnusableFrames(t *testing.T) {
	server := mockExchange(t, func(conn *websocket.Conn) {
		readSubscribe(t, conn)

		ctx := context.Background()
		frames := []string{
			`not json at all`,
			`{"info":"Welcome to the BitMEX Realtime API."}`,
			`{"table":"instrument","action":"update","data":[{"symbol":"XBTUSD","timestamp":"2022-01-05T12:00:01.000Z"}]}`,
			`{"table":"instrument","action":"update","data":[{"symbol":"ETHUSD","markPrice":3000.1,"timestamp":"2022-01-05T12:00:01.000Z"}]}`,
			`{"table":"trade","data":[{"symbol":"XBTUSD"}]}`,
			`{"table":"instrument","action":"update","data":[{"symbol":"XBTUSD","markPrice":41235.5,"timestamp":"2022-01-05T12:00:02.000Z"}]}`,
		}
		for _, f := range frames {
			if err := conn.Write(ctx, websocket.MessageText, []byte(f)); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	})
	defer server.Close()

	client, err := NewClient(DefaultClientConfig(exchangeURL(server), "XBTUSD"), &mockLogger{})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()

	prices := make(chan domain.MarkPrice, 8)
	client.OnMarkPrice(func(p domain.MarkPrice) {
		prices <- p
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	// Exactly one usable observation should come through.
	select {
	case p := <-prices:
		if p.Value.String() != "41235.5" {
			t.Errorf("expected only the usable mark price 41235.5, got %s", p.Value)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for the usable mark price")
	}

	select {
	case p := <-prices:
		t.Errorf("unexpected extra observation: %s", p.Value)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestClient_ResubscribesAfterDrop(t *testing.T) {
	var subscribes atomic.Int32

	server := mockExchange(t, func(conn *websocket.Conn) {
		cmd := readSubscribe(t, conn)
		if cmd.Op == "subscribe" {
			n := subscribes.Add(1)
			if n == 1 {
				// Drop the first connection right after the subscribe.
				conn.Close(websocket.StatusGoingAway, "dropping")
				return
			}
		}

		ctx := context.Background()
		frame := `{"table":"instrument","action":"partial","data":[{"symbol":"XBTUSD","markPrice":41300,"timestamp":"2022-01-05T12:01:00.000Z"}]}`
		if err := conn.Write(ctx, websocket.MessageText, []byte(frame)); err != nil {
			return
		}
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	})
	defer server.Close()

	client, err := NewClient(DefaultClientConfig(exchangeURL(server), "XBTUSD"), &mockLogger{})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	defer client.Close()

	prices := make(chan domain.MarkPrice, 4)
	client.OnMarkPrice(func(p domain.MarkPrice) {
		prices <- p
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	// The price arrives only on the second connection, which requires a
	// fresh subscribe after the redial.
	select {
	case p := <-prices:
		if p.Value.String() != "41300" {
			t.Errorf("expected mark price 41300 after redial, got %s", p.Value)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for mark price after redial")
	}

	if got := subscribes.Load(); got < 2 {
		t.Errorf("expected a subscribe per connection, got %d", got)
	}
}
