package yield

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"treasury-agent/internal/domain"
)

func TestHTTPSource_FetchPools(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"name": "Aave", "chain": "Ethereum", "apy": 5.2, "tvl": 1000000},
			{"slug": "compound-v3", "chains": ["Ethereum"], "apyBase": 4.8, "totalLiquidityUSD": 800000},
			{"tvl": 42}
		]`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL)
	pools, err := src.FetchPools(context.Background())
	if err != nil {
		t.Fatalf("FetchPools failed: %v", err)
	}

	if len(pools) != 2 {
		t.Fatalf("len(pools) = %d, want 2 (nameless entry skipped)", len(pools))
	}
	if pools[0].Protocol != "Aave" || pools[0].APYOrZero() != 5.2 {
		t.Errorf("unexpected first pool: %+v", pools[0])
	}
	if pools[1].Protocol != "compound-v3" || pools[1].TVL != 800_000 {
		t.Errorf("unexpected second pool: %+v", pools[1])
	}
}

func TestHTTPSource_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL)
	_, err := src.FetchPools(context.Background())

	var ds *domain.DataSourceError
	if !errors.As(err, &ds) {
		t.Fatalf("expected DataSourceError, got %v", err)
	}
	if ds.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", ds.Status)
	}
	if ds.Endpoint != srv.URL {
		t.Errorf("Endpoint = %q, want %q", ds.Endpoint, srv.URL)
	}
	if class, ok := domain.ClassOf(err); !ok || class != domain.ClassTransient {
		t.Errorf("expected transient class, got %v", class)
	}
}

func TestHTTPSource_RetriesRateLimit(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if requests.Add(1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`[{"name": "Aave", "chain": "Ethereum", "apy": 5.2, "tvl": 1000000}]`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL)
	pools, err := src.FetchPools(context.Background())
	if err != nil {
		t.Fatalf("FetchPools failed after rate limiting: %v", err)
	}
	if len(pools) != 1 {
		t.Fatalf("len(pools) = %d, want 1", len(pools))
	}
	if got := requests.Load(); got != 3 {
		t.Errorf("server saw %d requests, want 3 (two 429s retried)", got)
	}
}

func TestHTTPSource_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"not": "an array"`))
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL)
	_, err := src.FetchPools(context.Background())

	var ds *domain.DataSourceError
	if !errors.As(err, &ds) {
		t.Fatalf("expected DataSourceError, got %v", err)
	}
	if ds.Err == nil {
		t.Error("expected the parse error to be wrapped")
	}
}

func TestHTTPSource_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // connection refused from here on

	src := NewHTTPSource(srv.URL)
	_, err := src.FetchPools(context.Background())

	var ds *domain.DataSourceError
	if !errors.As(err, &ds) {
		t.Fatalf("expected DataSourceError, got %v", err)
	}
	if ds.Err == nil {
		t.Error("expected the transport error to be wrapped")
	}
}

func TestNewHTTPSource_DefaultEndpoint(t *testing.T) {
	if got := NewHTTPSource("").Endpoint(); got != DefaultEndpoint {
		t.Errorf("Endpoint() = %q, want %q", got, DefaultEndpoint)
	}
}
