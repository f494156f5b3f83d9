// File: address/address.go
// Package address provides transport endpoint values for IPv4, IPv6 and
// Unix-domain sockets.
// License: Apache-2.0

package address

import (
	"fmt"
	"net"
	"net/netip"
	"strconv"

	"github.com/struven/netsock/api"
)

// Family identifies the address family of an endpoint.
type Family int

const (
	IPv4 Family = iota
	IPv6
	UnixLocal
)

// String returns the conventional network name for the family.
func (f Family) String() string {
	switch f {
	case IPv4:
		return "tcp4"
	case IPv6:
		return "tcp6"
	case UnixLocal:
		return "unix"
	default:
		return "unknown"
	}
}

// Addr is an immutable transport endpoint. The zero value is the IPv4
// wildcard 0.0.0.0:0, suitable for an ephemeral bind.
type Addr struct {
	family Family
	ip     netip.Addr
	port   uint16
	path   string
}

// Parse resolves host and port into an Addr. A literal IP avoids any
// resolver round trip; a name is resolved and the first address wins.
func Parse(host string, port uint16) (Addr, error) {
	if host == "" {
		return Addr{port: port}, nil
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		ips, rerr := net.LookupIP(host)
		if rerr != nil || len(ips) == 0 {
			return Addr{}, api.WrapError(api.ErrCodeInvalidArgument,
				fmt.Sprintf("cannot resolve host %q", host), rerr)
		}
		ip, _ = netip.AddrFromSlice(ips[0])
		ip = ip.Unmap()
	}
	fam := IPv4
	if ip.Is6() && !ip.Is4In6() {
		fam = IPv6
	} else {
		ip = ip.Unmap()
	}
	return Addr{family: fam, ip: ip, port: port}, nil
}

// ParseUnix returns a Unix-domain endpoint for the given socket file path.
func ParseUnix(path string) (Addr, error) {
	if path == "" {
		return Addr{}, api.NewError(api.ErrCodeInvalidArgument, "empty unix socket path")
	}
	return Addr{family: UnixLocal, path: path}, nil
}

// FromIP builds an endpoint from an already-parsed IP and port.
func FromIP(ip netip.Addr, port uint16) Addr {
	fam := IPv4
	if ip.Is6() && !ip.Is4In6() {
		fam = IPv6
	} else {
		ip = ip.Unmap()
	}
	return Addr{family: fam, ip: ip, port: port}
}

// Wildcard returns the any-address endpoint with port 0 for the family.
func Wildcard(f Family) Addr {
	return Addr{family: f}
}

// Family reports the address family.
func (a Addr) Family() Family { return a.family }

// Host returns the textual IP. Empty for Unix-domain endpoints; the zero IP
// of the family for wildcard endpoints.
func (a Addr) Host() string {
	if a.family == UnixLocal {
		return ""
	}
	if !a.ip.IsValid() {
		if a.family == IPv6 {
			return "::"
		}
		return "0.0.0.0"
	}
	return a.ip.String()
}

// Port returns the transport port. Zero for Unix-domain endpoints.
func (a Addr) Port() uint16 { return a.port }

// Path returns the socket file path for Unix-domain endpoints.
func (a Addr) Path() string { return a.path }

// IP returns the parsed address, which may be the invalid zero value for
// wildcard or Unix-domain endpoints.
func (a Addr) IP() netip.Addr { return a.ip }

// WithPort returns a copy of the endpoint with the port replaced.
func (a Addr) WithPort(port uint16) Addr {
	a.port = port
	return a
}

// String formats the endpoint as host:port, or as the path for Unix-domain
// endpoints.
func (a Addr) String() string {
	if a.family == UnixLocal {
		return a.path
	}
	return net.JoinHostPort(a.Host(), strconv.Itoa(int(a.port)))
}
