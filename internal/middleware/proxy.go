package middleware

import (
	"log/slog"
	"net"
	"strings"

	"github.com/labstack/echo/v4"
)

// TrustedProxies makes c.RealIP() return the visitor's address behind a
// reverse proxy. X-Forwarded-For is walked from the right and the first hop
// outside the configured CIDRs (TRUSTED_PROXIES) is the client, so entries
// a visitor prepends are never reached. Loopback, link-local and private
// ranges are not trusted implicitly. It returns how many CIDRs were accepted.
func TrustedProxies(e *echo.Echo, cidrs []string) int {
	networks := parseProxies(cidrs)
	e.IPExtractor = proxyExtractor(networks)
	return len(networks)
}

// proxyExtractor builds the XFF extractor trusting only networks.
func proxyExtractor(networks []*net.IPNet) echo.IPExtractor {
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, network := range networks {
		opts = append(opts, echo.TrustIPRange(network))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

// parseProxies parses cidrs, logging and skipping invalid entries.
func parseProxies(cidrs []string) []*net.IPNet {
	var networks []*net.IPNet
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(strings.TrimSpace(cidr))
		if err != nil {
			slog.Warn("ignoring invalid trusted proxy CIDR", slog.String("cidr", cidr))
			continue
		}
		networks = append(networks, network)
	}
	return networks
}
