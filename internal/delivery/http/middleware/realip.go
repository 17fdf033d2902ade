package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
)

const clientIPKey contextKey = "clientIP"

// ClientIPFromContext returns the resolved client IP from the context, if
// present.
func ClientIPFromContext(ctx context.Context) (string, bool) {
	ip, ok := ctx.Value(clientIPKey).(string)
	return ip, ok
}

// SetClientIP stores a client IP in the context. Exported for handler tests
// that call controllers directly without the middleware chain.
func SetClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIP resolves the originating client IP of each request and stores it
// in the request context. X-Forwarded-For (first hop) wins, then X-Real-IP,
// then the connection's remote address. The body is never consulted: the
// submitter IP must not be client-controlled beyond what proxies already
// allow.
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), clientIPKey, resolveClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func resolveClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if first, _, found := strings.Cut(fwd, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	if real := r.Header.Get("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
