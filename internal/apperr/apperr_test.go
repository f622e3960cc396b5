package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unauthenticated", Unauthenticated("no session"), http.StatusUnauthorized},
		{"forbidden", Forbidden("admins only"), http.StatusForbidden},
		{"not found", NotFound("product not found"), http.StatusNotFound},
		{"validation", Validation("name is required"), http.StatusBadRequest},
		{"conflict", Conflict("already owned"), http.StatusConflict},
		{"provider", Provider("stripe failed", errors.New("boom")), http.StatusBadGateway},
		{"wrapped", fmt.Errorf("loading: %w", NotFound("lesson not found")), http.StatusNotFound},
		{"plain", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusOf(tt.err); got != tt.want {
				t.Fatalf("StatusOf = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPublicMessageHidesInternal(t *testing.T) {
	if got := PublicMessage(Internal("sql: broken pipe", nil), "Failed"); got != "Failed" {
		t.Fatalf("PublicMessage(internal) = %q, want fallback", got)
	}
	if got := PublicMessage(errors.New("raw"), "Failed"); got != "Failed" {
		t.Fatalf("PublicMessage(plain) = %q, want fallback", got)
	}
	if got := PublicMessage(Validation("Product ID required"), "Failed"); got != "Product ID required" {
		t.Fatalf("PublicMessage(validation) = %q", got)
	}
}
