package config

import (
	"fmt"
	"net/netip"

	"go4.org/netipx"
)

// CIDRSubnet calculates a subnet address given a network address, a netmask
// size increase, and a subnet number. This mimics the behavior of Terraform's
// cidrsubnet function.
//
// Only IPv4 prefixes are supported.
func CIDRSubnet(prefix string, newbits, netnum int) (string, error) {
	p, err := netip.ParsePrefix(prefix)
	if err != nil {
		return "", fmt.Errorf("invalid CIDR prefix: %w", err)
	}
	if !p.Addr().Is4() {
		return "", fmt.Errorf("only IPv4 prefixes are supported, got %s", prefix)
	}

	newBits := p.Bits() + newbits
	if newBits > 32 {
		return "", fmt.Errorf("prefix extension of %d bits is too large for %s", newbits, prefix)
	}
	if netnum >= 1<<newbits {
		return "", fmt.Errorf("subnet number %d exceeds max subnets %d", netnum, 1<<newbits)
	}

	base := ipv4ToUint32(p.Masked().Addr())
	// #nosec G115
	base += uint32(netnum) << (32 - newBits)

	sub := netip.PrefixFrom(uint32ToIPv4(base), newBits)
	return sub.String(), nil
}

// CIDRHost calculates a host address within a prefix, mimicking Terraform's
// cidrhost function. Negative host numbers count from the end of the range.
func CIDRHost(prefix string, hostnum int) (string, error) {
	p, err := netip.ParsePrefix(prefix)
	if err != nil {
		return "", fmt.Errorf("invalid CIDR prefix: %w", err)
	}
	if !p.Addr().Is4() {
		return "", fmt.Errorf("only IPv4 prefixes are supported, got %s", prefix)
	}

	hostBits := 32 - p.Bits()
	maxHosts := uint64(1) << hostBits

	var offset uint64
	if hostnum < 0 {
		abs := uint64(-hostnum)
		if abs > maxHosts {
			return "", fmt.Errorf("host number %d exceeds max hosts %d", hostnum, maxHosts)
		}
		offset = maxHosts - abs
	} else {
		offset = uint64(hostnum)
		if offset >= maxHosts {
			return "", fmt.Errorf("host number %d exceeds max hosts %d", hostnum, maxHosts)
		}
	}

	base := uint64(ipv4ToUint32(p.Masked().Addr())) + offset
	// #nosec G115
	return uint32ToIPv4(uint32(base)).String(), nil
}

// PrefixInside reports whether inner lies entirely within outer. The bounds
// of inner's range are both checked so a partially overlapping prefix is
// rejected.
func PrefixInside(inner, outer netip.Prefix) bool {
	r := netipx.RangeOfPrefix(inner)
	return outer.Contains(r.From()) && outer.Contains(r.To())
}

func ipv4ToUint32(a netip.Addr) uint32 {
	b := a.As4()
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func uint32ToIPv4(v uint32) netip.Addr {
	// #nosec G115
	return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}
