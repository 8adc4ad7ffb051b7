// Package netguard classifies request origins as local-network or not.
// Mutating endpoints are only reachable from private, unique-local, or
// loopback addresses.
package netguard

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

var localRanges = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("fc00::/7"),
	netip.MustParsePrefix("::1/128"),
}

// IsLocalAddr reports whether the textual address falls within RFC1918
// private IPv4 space, IPv6 unique-local space, or loopback. Malformed or
// empty input is never local.
func IsLocalAddr(addr string) bool {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		return false
	}
	parsed, err := netip.ParseAddr(trimmed)
	if err != nil {
		return false
	}
	// IPv4-mapped IPv6 addresses classify as their embedded IPv4 address.
	parsed = parsed.Unmap()
	for _, prefix := range localRanges {
		if prefix.Contains(parsed) {
			return true
		}
	}
	return false
}

// Classifier resolves the candidate source addresses for a request. Proxy
// headers are ignored unless TrustProxy is explicitly enabled, so a remote
// client cannot spoof a local origin with a forged X-Forwarded-For.
type Classifier struct {
	TrustProxy bool
}

// ClientAddrs returns the candidate source addresses for the request,
// ordered proxy chain first when proxy trust is enabled.
func (c Classifier) ClientAddrs(r *http.Request) []string {
	if r == nil {
		return nil
	}
	var addrs []string
	if c.TrustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			for _, part := range strings.Split(xff, ",") {
				if trimmed := strings.TrimSpace(part); trimmed != "" {
					addrs = append(addrs, trimmed)
				}
			}
		}
		if xrip := strings.TrimSpace(r.Header.Get("X-Real-IP")); xrip != "" {
			addrs = append(addrs, xrip)
		}
	}
	if host := remoteHost(r.RemoteAddr); host != "" {
		addrs = append(addrs, host)
	}
	return addrs
}

// IsLocalRequest reports whether any candidate source address for the
// request is a local-network address.
func (c Classifier) IsLocalRequest(r *http.Request) bool {
	for _, addr := range c.ClientAddrs(r) {
		if IsLocalAddr(addr) {
			return true
		}
	}
	return false
}

func remoteHost(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
