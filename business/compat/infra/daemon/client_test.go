package daemon

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

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

func newVersionServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_DaemonVersion(t *testing.T) {
	srv := newVersionServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/version" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"daemon_version":"0.4.20"}`))
	})

	client, err := NewClient(DefaultClientConfig(srv.URL), &mockLogger{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	v, err := client.DaemonVersion(context.Background())
	if err != nil {
		t.Fatalf("DaemonVersion: %v", err)
	}
	if v.String() != "0.4.20" {
		t.Errorf("version = %q, want %q", v.String(), "0.4.20")
	}
}

func TestClient_DaemonVersionHTTPError(t *testing.T) {
	srv := newVersionServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "daemon starting", http.StatusServiceUnavailable)
	})

	client, err := NewClient(DefaultClientConfig(srv.URL), &mockLogger{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := client.DaemonVersion(context.Background()); err == nil {
		t.Error("expected error on HTTP 503")
	}
}

func TestClient_DaemonVersionUnreachable(t *testing.T) {
	srv := newVersionServer(t, func(w http.ResponseWriter, r *http.Request) {})
	url := srv.URL
	srv.Close()

	client, err := NewClient(DefaultClientConfig(url), &mockLogger{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	if _, err := client.DaemonVersion(context.Background()); err == nil {
		t.Error("expected error when the daemon is unreachable")
	}
}

func TestClient_DaemonVersionMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not a version", body: `{"daemon_version":"yes"}`},
		{name: "empty version", body: `{"daemon_version":""}`},
		{name: "missing field", body: `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newVersionServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(tt.body))
			})

			client, err := NewClient(DefaultClientConfig(srv.URL), &mockLogger{})
			if err != nil {
				t.Fatalf("NewClient: %v", err)
			}

			if _, err := client.DaemonVersion(context.Background()); err == nil {
				t.Errorf("expected error for body %q", tt.body)
			}
		})
	}
}
