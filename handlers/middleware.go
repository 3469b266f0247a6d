package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/pocketbase/pocketbase/core"
)

type contextKey string

// OwnerKey holds the requesting owner id in the request context.
const OwnerKey contextKey = "owner"

// OwnerHeader carries the owner id for clients that do not authenticate
// against PocketBase.
const OwnerHeader = "X-Owner-ID"

// GetOwner extracts the owner id from the request context.
func GetOwner(r *http.Request) string {
	if val, ok := r.Context().Value(OwnerKey).(string); ok {
		return val
	}
	return ""
}

// OwnerMiddleware resolves the owner from the PocketBase auth record, or
// from the X-Owner-ID header when the request is unauthenticated, and
// stores it in the request context. Requests without either get 401.
func OwnerMiddleware() func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		owner := ""
		if e.Auth != nil {
			owner = e.Auth.Id
		}
		if owner == "" {
			owner = strings.TrimSpace(e.Request.Header.Get(OwnerHeader))
		}
		if owner == "" {
			return e.JSON(http.StatusUnauthorized, errorBody{Error: "missing owner"})
		}

		ctx := context.WithValue(e.Request.Context(), OwnerKey, owner)
		e.Request = e.Request.WithContext(ctx)
		return e.Next()
	}
}
