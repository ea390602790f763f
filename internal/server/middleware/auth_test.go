package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeValidator struct {
	err error
}

func (f *fakeValidator) ValidateToken(string) error { return f.err }

func protected(validator TokenValidator) http.Handler {
	return AuthMiddleware(validator)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		validator  *fakeValidator
		wantStatus int
	}{
		{name: "valid token", header: "Bearer good", validator: &fakeValidator{}, wantStatus: http.StatusOK},
		{name: "lowercase bearer", header: "bearer good", validator: &fakeValidator{}, wantStatus: http.StatusOK},
		{name: "missing header", header: "", validator: &fakeValidator{}, wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic abc", validator: &fakeValidator{}, wantStatus: http.StatusUnauthorized},
		{name: "no token", header: "Bearer", validator: &fakeValidator{}, wantStatus: http.StatusUnauthorized},
		{name: "invalid token", header: "Bearer bad", validator: &fakeValidator{err: errors.New("expired")}, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected(tt.validator).ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
