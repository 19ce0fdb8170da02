package session

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// parseAddr resolves host:port into a raw unix.Sockaddr for Bind. host
// may be empty (meaning INADDR_ANY), a literal IPv4 address, or a
// resolvable hostname.
func parseAddr(host string, port int) (unix.Sockaddr, error) {
	var ip net.IP
	if host == "" {
		ip = net.IPv4zero
	} else if parsed := net.ParseIP(host); parsed != nil {
		ip = parsed
	} else {
		addrs, err := net.LookupIP(host)
		if err != nil || len(addrs) == 0 {
			return nil, fmt.Errorf("session: resolve %q: %w", host, err)
		}
		ip = addrs[0]
	}

	ip4 := ip.To4()
	if ip4 == nil {
		return nil, fmt.Errorf("session: %q is not an IPv4 address", host)
	}

	sa := &unix.SockaddrInet4{Port: port}
	copy(sa.Addr[:], ip4)
	return sa, nil
}
