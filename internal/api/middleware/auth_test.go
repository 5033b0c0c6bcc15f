// internal/api/middleware/auth_test.go
package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAPIKeyAuth(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		headers    map[string]string
		wantStatus int
	}{
		{"disabled", "", nil, http.StatusOK},
		{"header key", "secret-key", map[string]string{"X-API-Key": "secret-key"}, http.StatusOK},
		{"bearer token", "secret-key", map[string]string{"Authorization": "Bearer secret-key"}, http.StatusOK},
		{"header wins over bearer", "secret-key", map[string]string{
			"X-API-Key":     "secret-key",
			"Authorization": "Bearer wrong",
		}, http.StatusOK},
		{"missing", "secret-key", nil, http.StatusUnauthorized},
		{"wrong key", "secret-key", map[string]string{"X-API-Key": "wrong-key"}, http.StatusUnauthorized},
		{"basic scheme", "secret-key", map[string]string{"Authorization": "Basic secret-key"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			wrapped := APIKeyAuth(tt.configured)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest("GET", "/api/analyze/AAPL", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			wrapped.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if called != (tt.wantStatus == http.StatusOK) {
				t.Errorf("next handler called = %v", called)
			}
		})
	}
}

func TestAPIKeyAuth_ErrorEnvelope(t *testing.T) {
	wrapped := APIKeyAuth("secret-key")(http.NotFoundHandler())

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, httptest.NewRequest("GET", "/api/history/AAPL", nil))

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "UNAUTHORIZED" {
		t.Errorf("expected UNAUTHORIZED, got %q", body.Error.Code)
	}
}
