package httpx

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/foliokit/folio/pkg/slogx"
)

// NetworkPolicy is an optional network-layer gate placed in front of
// sensitive routes. An empty policy permits everything; ranges come from
// configuration, never from hardcoded addresses.
type NetworkPolicy struct {
	allowed []*net.IPNet
}

// ParseNetworkPolicy builds a policy from CIDR ranges. Bare IPs are accepted
// and treated as single-host ranges.
func ParseNetworkPolicy(ranges []string) (*NetworkPolicy, error) {
	p := &NetworkPolicy{}
	for _, r := range ranges {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}

		if !strings.Contains(r, "/") {
			ip := net.ParseIP(r)
			if ip == nil {
				return nil, fmt.Errorf("network policy: invalid address %q", r)
			}
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			r = fmt.Sprintf("%s/%d", ip, bits)
		}

		_, ipnet, err := net.ParseCIDR(r)
		if err != nil {
			return nil, fmt.Errorf("network policy: invalid range %q: %w", r, err)
		}
		p.allowed = append(p.allowed, ipnet)
	}
	return p, nil
}

// Enabled reports whether any range is configured.
func (p *NetworkPolicy) Enabled() bool { return p != nil && len(p.allowed) > 0 }

// Allows reports whether the given address falls inside an allowed range.
func (p *NetworkPolicy) Allows(addr string) bool {
	if !p.Enabled() {
		return true
	}

	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}

	for _, n := range p.allowed {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// Middleware rejects requests from outside the allowed ranges with 403.
func (p *NetworkPolicy) Middleware() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !p.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			addr := clientIP(r)
			if !p.Allows(addr) {
				slogx.FromContext(r.Context()).Warn("network policy denied request",
					"remote_addr", addr,
					"path", r.URL.Path,
				)
				WriteError(w, http.StatusForbidden, "forbidden",
					"access restricted to authorized networks")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
