package middleware

import (
	"net"
	"net/http"
	"strings"
)

// SecurityHeaders sets the response headers every API reply carries. HSTS is
// only sent when the server terminates TLS itself.
func SecurityHeaders(hsts bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			if hsts {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RedirectToHTTPS answers plain HTTP requests with a permanent redirect to the
// same URL over HTTPS. Hosts outside allowedHosts get 400 so a forged Host
// header cannot turn the redirect into an open redirect.
func RedirectToHTTPS(allowedHosts []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsHostAllowed(r.Host, allowedHosts) {
			http.Error(w, "Invalid host", http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, "https://"+r.Host+r.URL.RequestURI(), http.StatusMovedPermanently)
	})
}

// splitHost lowercases s and separates an optional port. Bare and bracketed
// IPv6 literals are both accepted.
func splitHost(s string) (host, port string) {
	s = strings.ToLower(strings.TrimSpace(s))
	if h, p, err := net.SplitHostPort(s); err == nil {
		return h, p
	}
	return strings.TrimSuffix(strings.TrimPrefix(s, "["), "]"), ""
}

// IsHostAllowed reports whether host matches an entry of allowedHosts. Ports
// are compared only when both sides name one. An empty list allows any host.
func IsHostAllowed(host string, allowedHosts []string) bool {
	if len(allowedHosts) == 0 {
		return true
	}

	h, p := splitHost(host)
	for _, allowed := range allowedHosts {
		ah, ap := splitHost(allowed)
		if h != ah {
			continue
		}
		if p == "" || ap == "" || p == ap {
			return true
		}
	}
	return false
}
