package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/comit-network/hermes/internal/apperror"
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

func newReleaseClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(DefaultClientConfig(srv.URL+"/repos/comit-network/hermes/releases/latest"), &mockLogger{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return client, &requests
}

func TestClient_LatestRelease(t *testing.T) {
	client, _ := newReleaseClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
			t.Errorf("Accept = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"tag_name":"v0.4.21","name":"0.4.21","draft":false}`))
	})

	v, err := client.LatestRelease(context.Background())
	if err != nil {
		t.Fatalf("LatestRelease: %v", err)
	}
	if v.String() != "0.4.21" {
		t.Errorf("version = %q, want %q (tag prefix stripped)", v.String(), "0.4.21")
	}
}

func TestClient_LatestReleaseCached(t *testing.T) {
	client, requests := newReleaseClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tag_name":"v1.2.3"}`))
	})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := client.LatestRelease(ctx); err != nil {
			t.Fatalf("LatestRelease #%d: %v", i+1, err)
		}
	}

	if got := requests.Load(); got != 1 {
		t.Errorf("server hit %d times, want 1 (later calls served from cache)", got)
	}
}

func TestClient_LatestReleaseRateLimited(t *testing.T) {
	client, _ := newReleaseClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"API rate limit exceeded for 1.2.3.4."}`))
	})

	_, err := client.LatestRelease(context.Background())
	if err == nil {
		t.Fatal("expected error on 403")
	}
	if code := apperror.GetCode(err); code != apperror.CodeGithubRateLimited {
		t.Errorf("code = %q, want %q", code, apperror.CodeGithubRateLimited)
	}
}

func TestClient_LatestReleaseAPIError(t *testing.T) {
	client, _ := newReleaseClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not Found"}`))
	})

	_, err := client.LatestRelease(context.Background())
	if err == nil {
		t.Fatal("expected error on 404")
	}
	if code := apperror.GetCode(err); code != apperror.CodeGithubAPIError {
		t.Errorf("code = %q, want %q", code, apperror.CodeGithubAPIError)
	}
}

func TestClient_LatestReleaseBadTag(t *testing.T) {
	client, _ := newReleaseClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tag_name":"nightly-build"}`))
	})

	_, err := client.LatestRelease(context.Background())
	if err == nil {
		t.Fatal("expected error for unparseable tag")
	}
	if code := apperror.GetCode(err); code != apperror.CodeInvalidVersionString {
		t.Errorf("code = %q, want %q", code, apperror.CodeInvalidVersionString)
	}
}

func TestClient_LatestReleaseUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client, err := NewClient(DefaultClientConfig(url), &mockLogger{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	if _, err := client.LatestRelease(context.Background()); err == nil {
		t.Error("expected error when GitHub is unreachable")
	}
}
