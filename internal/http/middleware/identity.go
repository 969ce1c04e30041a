package middleware

import (
	"context"
	"net/http"
	"strconv"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

func UserIDFromContext(ctx context.Context) (uint64, bool) {
	v := ctx.Value(userIDKey)
	id, ok := v.(uint64)
	return id, ok
}

// RequireUser scopes every request to the user named by the X-User-ID header.
// Authentication itself lives in the fronting layer; this service only needs
// the identity to partition data.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-User-ID")
		if raw == "" {
			http.Error(w, "missing X-User-ID", http.StatusUnauthorized)
			return
		}

		uid, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || uid == 0 {
			http.Error(w, "invalid X-User-ID", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
