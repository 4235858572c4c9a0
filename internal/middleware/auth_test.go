package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name     string
		isAdmin  interface{}
		wantCode int
	}{
		{"admin claim present", true, 0},
		{"admin claim false", false, http.StatusForbidden},
		{"admin claim missing", nil, http.StatusForbidden},
		{"admin claim wrong type", "yes", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/api/fee-structures", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tt.isAdmin != nil {
				c.Set("isAdmin", tt.isAdmin)
			}

			called := false
			handler := RequireAdmin()(func(c echo.Context) error {
				called = true
				return c.NoContent(http.StatusOK)
			})

			err := handler(c)
			if tt.wantCode == 0 {
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
				if !called {
					t.Error("next handler was not called")
				}
				return
			}

			if called {
				t.Error("next handler should not run")
			}
			var he *echo.HTTPError
			if !errors.As(err, &he) {
				t.Fatalf("expected *echo.HTTPError, got %T", err)
			}
			if he.Code != tt.wantCode {
				t.Errorf("code = %d; want %d", he.Code, tt.wantCode)
			}
		})
	}
}
