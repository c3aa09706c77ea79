package router

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/samber/lo"
)

type clientIPKey struct{}

// middlewareIP resolves the caller address used for access and rate-limit
// decisions. It is the socket peer unless that peer is a trusted proxy, in
// which case the forwarding headers are honored.
func middlewareIP(proxies allowlist) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := peerIP(r)
			if proxies.allows(ip) {
				if fwd := forwardedIP(r); fwd != "" {
					ip = fwd
				}
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), clientIPKey{}, normalizeIP(ip))))
		})
	}
}

// clientIP returns the address resolved by middlewareIP, or the socket peer
// when the middleware did not run.
func clientIP(r *http.Request) string {
	if ip, ok := r.Context().Value(clientIPKey{}).(string); ok {
		return ip
	}
	return normalizeIP(peerIP(r))
}

func peerIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if net.ParseIP(host) == nil {
		return ""
	}
	return host
}

func forwardedIP(r *http.Request) string {
	var ip string

	switch {
	case r.Header.Get("True-Client-IP") != "":
		ip = r.Header.Get("True-Client-IP")
	case r.Header.Get("X-Real-IP") != "":
		ip = r.Header.Get("X-Real-IP")
	case r.Header.Get("X-Forwarded-For") != "":
		ip, _, _ = strings.Cut(r.Header.Get("X-Forwarded-For"), ",")
	}

	ip = strings.TrimSpace(ip)
	if net.ParseIP(ip) == nil {
		return ""
	}
	return ip
}

// realIP is what the client claims to be. Only logs use it.
func realIP(r *http.Request) string {
	if ip := forwardedIP(r); ip != "" {
		return normalizeIP(ip)
	}
	return normalizeIP(peerIP(r))
}

// normalizeIP folds the loopback and IPv4-mapped spellings an address can
// arrive in: "::1" becomes "localhost" and "::ffff:10.0.0.1" becomes "10.0.0.1".
func normalizeIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if ip == "::1" {
		return "localhost"
	}
	return strings.TrimPrefix(ip, "::ffff:")
}

type allowlist map[string]struct{}

func newAllowlist(entries []string) allowlist {
	return lo.SliceToMap(lo.Compact(lo.Map(entries, func(e string, _ int) string {
		return normalizeIP(e)
	})), func(e string) (string, struct{}) {
		return e, struct{}{}
	})
}

func (a allowlist) allows(ip string) bool {
	if len(a) == 0 || ip == "" {
		return false
	}
	_, ok := a[normalizeIP(ip)]
	return ok
}
