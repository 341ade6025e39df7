package security

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/nextlevelbuilder/toolspace/internal/toolerr"
)

// Resolver abstracts hostname resolution so tests can substitute a
// deterministic lookup without hitting real DNS, matching the teacher's
// pattern of injecting a dependency rather than mocking net.LookupIP
// globally.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// DefaultResolver resolves through the standard library.
var DefaultResolver Resolver = net.DefaultResolver

// CheckURL validates a URL against the egress policy in spec.md §4.5:
// it must parse, use http/https, carry a host, and every address that
// host resolves to must be public-unicast. It is called both on the
// initial URL and on every redirect hop (spec.md §4.5/§9 — the HTTP
// client must surface each hop to this gate before connecting).
func CheckURL(ctx context.Context, rawURL string, resolver Resolver) error {
	if resolver == nil {
		resolver = DefaultResolver
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return toolerr.Wrap(toolerr.KindBlockedNetwork, "url does not parse", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return toolerr.New(toolerr.KindBlockedNetwork, "only http and https schemes are allowed")
	}
	host := u.Hostname()
	if host == "" {
		return toolerr.New(toolerr.KindBlockedNetwork, "url has no host")
	}

	if ip := net.ParseIP(host); ip != nil {
		if !isPublicUnicast(ip) {
			return toolerr.New(toolerr.KindBlockedNetwork, fmt.Sprintf("address %s is not publicly routable", ip))
		}
		return nil
	}

	addrs, err := resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return toolerr.Wrap(toolerr.KindBlockedNetwork, "host does not resolve", err)
	}
	if len(addrs) == 0 {
		return toolerr.New(toolerr.KindBlockedNetwork, "host resolved to no addresses")
	}
	for _, addr := range addrs {
		if !isPublicUnicast(addr.IP) {
			return toolerr.New(toolerr.KindBlockedNetwork, fmt.Sprintf("host %s resolves to non-public address %s", host, addr.IP))
		}
	}
	return nil
}

// cgnatBlock is the shared address space for carrier-grade NAT
// (RFC 6598): 100.64.0.0/10.
var cgnatBlock = func() *net.IPNet {
	_, block, _ := net.ParseCIDR("100.64.0.0/10")
	return block
}()

// documentationBlocks are the IPv4/IPv6 ranges reserved for
// documentation (RFC 5737, RFC 3849) — never publicly routable, but
// also not flagged by net.IP's own classifiers.
var documentationBlocks = func() []*net.IPNet {
	cidrs := []string{
		"192.0.2.0/24",
		"198.51.100.0/24",
		"203.0.113.0/24",
		"2001:db8::/32",
	}
	blocks := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, block, err := net.ParseCIDR(c)
		if err == nil {
			blocks = append(blocks, block)
		}
	}
	return blocks
}()

// isPublicUnicast implements the address classification in spec.md
// §4.5: reject loopback, link-local, private (RFC1918/ULA), multicast,
// broadcast, unspecified, documentation-range, and CGNAT addresses —
// treating an IPv4-mapped IPv6 form the same as its IPv4 original.
func isPublicUnicast(ip net.IP) bool {
	if ip == nil {
		return false
	}
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}

	switch {
	case ip.IsLoopback(),
		ip.IsLinkLocalUnicast(),
		ip.IsLinkLocalMulticast(),
		ip.IsPrivate(),
		ip.IsMulticast(),
		ip.IsUnspecified(),
		ip.IsInterfaceLocalMulticast():
		return false
	}

	if ip4 := ip.To4(); ip4 != nil {
		if ip4.Equal(net.IPv4bcast) {
			return false
		}
		if cgnatBlock.Contains(ip4) {
			return false
		}
	}

	for _, block := range documentationBlocks {
		if block.Contains(ip) {
			return false
		}
	}

	return true
}

// IsPrivateOrRestricted is the exported negation of isPublicUnicast,
// for callers that want to ask "is this address one we must block"
// directly. Its name mirrors the `is_private_or_restricted_ip` export
// of the original Rust core.
func IsPrivateOrRestricted(ip net.IP) bool {
	return !isPublicUnicast(ip)
}

// RedirectHost extracts the bare, lowercased host component of rawURL
// for logging, stripped of any trailing port, so a redirect hop can be
// logged without leaking full query strings into audit logs. It returns
// "?" when rawURL does not parse.
func RedirectHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "?"
	}
	return strings.ToLower(u.Hostname())
}
