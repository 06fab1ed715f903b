package discovery

import (
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// maxRangeSize bounds explicit start-end ranges so a typo cannot queue a
// scan of half the internet.
const maxRangeSize = 256

// CIDR prefixes are clamped into this band before expansion.
const (
	minPrefixBits = 24
	maxPrefixBits = 30
)

// ExpandTarget turns a scan target into the list of candidate addresses.
// Accepted forms:
//
//	10.0.0.5                single address
//	10.0.0.0/24             CIDR, prefix clamped to /24../30
//	10.0.0.10-10.0.0.50     explicit range, at most 256 addresses
//	10.0.0.10-50            short range over the last octet
//
// Only IPv4 targets are supported.
func ExpandTarget(target string) ([]string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, fmt.Errorf("discovery: empty scan target")
	}

	if strings.Contains(target, "/") {
		return expandCIDR(target)
	}
	if strings.Contains(target, "-") {
		parts := strings.SplitN(target, "-", 2)
		return expandRange(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]))
	}

	ip := net.ParseIP(target)
	if ip == nil || ip.To4() == nil {
		return nil, fmt.Errorf("discovery: invalid IPv4 address %q", target)
	}
	return []string{ip.To4().String()}, nil
}

func expandCIDR(target string) ([]string, error) {
	_, network, err := net.ParseCIDR(target)
	if err != nil {
		return nil, fmt.Errorf("discovery: invalid CIDR %q: %w", target, err)
	}
	base := network.IP.To4()
	if base == nil {
		return nil, fmt.Errorf("discovery: only IPv4 networks are supported: %q", target)
	}

	bits, _ := network.Mask.Size()
	if bits < minPrefixBits {
		bits = minPrefixBits
	}
	if bits > maxPrefixBits {
		bits = maxPrefixBits
	}

	mask := net.CIDRMask(bits, 32)
	start := binary.BigEndian.Uint32(base.Mask(mask))
	size := uint32(1) << (32 - bits)

	// Skip the network and broadcast addresses.
	ips := make([]string, 0, size-2)
	for offset := uint32(1); offset < size-1; offset++ {
		ips = append(ips, formatIPv4(start+offset))
	}
	return ips, nil
}

func expandRange(startStr, endStr string) ([]string, error) {
	startIP := net.ParseIP(startStr)
	if startIP == nil || startIP.To4() == nil {
		return nil, fmt.Errorf("discovery: invalid range start %q", startStr)
	}
	start := binary.BigEndian.Uint32(startIP.To4())

	var end uint32
	if endIP := net.ParseIP(endStr); endIP != nil && endIP.To4() != nil {
		end = binary.BigEndian.Uint32(endIP.To4())
	} else if octet, err := strconv.Atoi(endStr); err == nil && octet >= 0 && octet <= 255 {
		// Short form: only the final octet of the end address.
		end = start&0xffffff00 | uint32(octet)
	} else {
		return nil, fmt.Errorf("discovery: invalid range end %q", endStr)
	}

	if end < start {
		return nil, fmt.Errorf("discovery: range end %s precedes start %s", endStr, startStr)
	}
	if end-start+1 > maxRangeSize {
		end = start + maxRangeSize - 1
	}

	ips := make([]string, 0, end-start+1)
	for addr := start; addr <= end; addr++ {
		ips = append(ips, formatIPv4(addr))
	}
	return ips, nil
}

func formatIPv4(addr uint32) string {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], addr)
	return net.IP(b[:]).String()
}
