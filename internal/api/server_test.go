package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

// The mutating routes sit behind the bearer-token middleware, so a request
// without an Authorization header must be turned away before any handler
// touches the store.
func TestMutatingRoutesRequireToken(t *testing.T) {
	s := &Server{Echo: echo.New()}
	s.routes()

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/rfps"},
		{http.MethodPost, "/api/v1/rfps/generate"},
		{http.MethodPost, "/api/v1/rfps/abc123/send"},
		{http.MethodPost, "/api/v1/vendors"},
		{http.MethodPut, "/api/v1/vendors/abc123"},
		{http.MethodDelete, "/api/v1/vendors/abc123"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			rec := httptest.NewRecorder()
			s.Echo.ServeHTTP(rec, req)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("got status %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestHealthIsPublic(t *testing.T) {
	s := &Server{Echo: echo.New()}
	s.routes()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("got status %d, want %d", rec.Code, http.StatusOK)
	}
}
