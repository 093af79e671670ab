package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRegisterIsOptIn(t *testing.T) {
	mux := http.NewServeMux()
	if Register(mux, Config{}) {
		t.Fatalf("expected pprof to stay disabled by default")
	}
	resp := httptest.NewRecorder()
	mux.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without pprof, got %d", resp.Code)
	}

	mux = http.NewServeMux()
	if !Register(mux, Config{EnablePprof: true}) {
		t.Fatalf("expected pprof to be registered")
	}
	resp = httptest.NewRecorder()
	mux.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected pprof index, got %d", resp.Code)
	}
}
