package delivery

import (
	"net"
	"net/http"
	"strings"

	"github.com/Vovarama1992/mediavault/internal/domain"
)

const ipv4MappedPrefix = "::ffff:"

// ClientIP resolves the viewer address: first X-Forwarded-For hop, then the
// peer address. An IPv4-mapped IPv6 prefix is stripped. Returns "unknown"
// when nothing usable is present.
func ClientIP(r *http.Request) string {
	ip := ""
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		ip = strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	if ip == "" {
		ip = strings.TrimSpace(r.RemoteAddr)
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
	}

	ip = strings.TrimPrefix(ip, ipv4MappedPrefix)
	if ip == "" {
		return domain.UnknownIP
	}
	return ip
}
