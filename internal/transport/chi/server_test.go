package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/skald-io/rankfuse/internal/domain"
)

type mockSearch struct {
	queryFn func(ctx context.Context, query string) ([]domain.HybridResult, error)
}

func (m *mockSearch) Query(ctx context.Context, query string) ([]domain.HybridResult, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, query)
	}
	return nil, nil
}

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(_ context.Context) error { return m.err }

type mockEmbedder struct {
	healthErr error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, nil
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error { return m.healthErr }

func newTestServer(search *mockSearch, p *mockPinger) http.Handler {
	return NewServer(search, p, &mockEmbedder{}, zap.NewNop()).Handler()
}

func TestHandleSearch_OK(t *testing.T) {
	search := &mockSearch{
		queryFn: func(_ context.Context, query string) ([]domain.HybridResult, error) {
			if query != "space galaxy adventure" {
				t.Errorf("query = %q", query)
			}
			return []domain.HybridResult{
				{Title: "Star Wars: A New Hope", Score: 0.0164},
			}, nil
		},
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/search",
		strings.NewReader(`{"query":"space galaxy adventure"}`))
	newTestServer(search, &mockPinger{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}

	var resp searchResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].Title != "Star Wars: A New Hope" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestHandleSearch_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty query", `{"query":"  "}`},
		{"invalid json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(tt.body))
			newTestServer(&mockSearch{}, &mockPinger{}).ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandleSearch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"embedding failure", domain.ErrEmbeddingProvider, http.StatusBadGateway},
		{"engine rejection", domain.ErrQueryExecution, http.StatusBadGateway},
		{"bad request", domain.ErrConfiguration, http.StatusBadRequest},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			search := &mockSearch{
				queryFn: func(_ context.Context, _ string) ([]domain.HybridResult, error) {
					return nil, tt.err
				},
			}
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"q"}`))
			newTestServer(search, &mockPinger{}).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleHealth(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		newTestServer(&mockSearch{}, &mockPinger{}).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("store down", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		newTestServer(&mockSearch{}, &mockPinger{err: errors.New("no reachable servers")}).ServeHTTP(rec, req)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("embedding provider down", func(t *testing.T) {
		srv := NewServer(&mockSearch{}, &mockPinger{},
			&mockEmbedder{healthErr: errors.New("401 unauthorized")}, zap.NewNop())
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		srv.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d", rec.Code)
		}
	})
}

func TestRecoverer(t *testing.T) {
	search := &mockSearch{
		queryFn: func(_ context.Context, _ string) ([]domain.HybridResult, error) {
			panic("boom")
		},
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"q"}`))
	newTestServer(search, &mockPinger{}).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
}
