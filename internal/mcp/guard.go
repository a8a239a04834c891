package mcp

import (
	"net"
	"net/http"
	"strings"

	"github.com/wb-finances/wb-finances-mcp-server/internal/protocol"
)

// NewGuard requires a bearer token and a source address that is loopback or
// inside one of the comma separated CIDRs in allowlist.
func NewGuard(token, allowlist string) func(http.Handler) http.Handler {
	g := &guard{token: token, allowed: parseAllowlist(allowlist)}
	return g.wrap
}

type guard struct {
	token   string
	allowed []*net.IPNet
}

func (g *guard) wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := parseRemoteIP(r.RemoteAddr)
		if !g.isAllowed(ip) {
			deny(w, http.StatusForbidden, "request IP not allowed")
			return
		}

		const bearerPrefix = "Bearer "
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, bearerPrefix) {
			deny(w, http.StatusUnauthorized, "missing or invalid bearer token")
			return
		}

		provided := strings.TrimSpace(strings.TrimPrefix(auth, bearerPrefix))
		if provided != g.token {
			deny(w, http.StatusUnauthorized, "invalid bearer token")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func deny(w http.ResponseWriter, status int, message string) {
	writeJSON(w, protocol.Response{
		JSONRPC: "2.0",
		Error:   &protocol.ResponseError{Code: protocol.CodeServerError, Message: message},
	}, status)
}

func (g *guard) isAllowed(ip net.IP) bool {
	if ip == nil {
		return false
	}
	if ip.IsLoopback() {
		return true
	}
	for _, network := range g.allowed {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

func parseRemoteIP(remoteAddr string) net.IP {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err == nil {
		return net.ParseIP(host)
	}
	return net.ParseIP(remoteAddr)
}

func parseAllowlist(raw string) []*net.IPNet {
	var networks []*net.IPNet
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		_, network, err := net.ParseCIDR(entry)
		if err != nil {
			continue
		}
		networks = append(networks, network)
	}
	return networks
}
