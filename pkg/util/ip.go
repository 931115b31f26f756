package util

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ParseIPWithMask parses an IP address with CIDR notation
// Returns the IP, mask length, and any error
func ParseIPWithMask(cidr string) (net.IP, int, error) {
	ip, ipNet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid CIDR notation: %s", cidr)
	}
	ones, _ := ipNet.Mask.Size()
	return ip, ones, nil
}

// ComputeNeighborIP returns the peer IP on a point-to-point subnet.
// IPv4 /30 and /31 and IPv6 /126 and /127 are point-to-point; anything else
// (and the network or broadcast address of a /30 or /126) returns "".
func ComputeNeighborIP(localIP string, maskLen int) string {
	ip := net.ParseIP(localIP)
	if ip == nil {
		return ""
	}
	if v4 := ip.To4(); v4 != nil {
		ip = v4
	}
	bits := len(ip) * 8
	last := len(ip) - 1

	switch maskLen {
	case bits - 1: // RFC 3021 / RFC 6164 point-to-point
		ip[last] ^= 1
	case bits - 2:
		// .0=network, .1=first host, .2=second host, .3=broadcast
		switch ip[last] & 0x03 {
		case 1:
			ip[last]++
		case 2:
			ip[last]--
		default:
			return ""
		}
	default:
		return ""
	}
	return ip.String()
}

// IsValidIPv4 checks if a string is a valid IPv4 address
func IsValidIPv4(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	return ip != nil && ip.To4() != nil
}

// IsValidIP checks if a string is a valid IPv4 or IPv6 address
func IsValidIP(ipStr string) bool {
	return net.ParseIP(ipStr) != nil
}

const maxASN = 4294967295 // max uint32, 4-byte ASN range

// ValidateASN checks if an AS number is valid (1 to 4294967295).
func ValidateASN(asn int) error {
	if asn < 1 || asn > maxASN {
		return fmt.Errorf("AS number must be between 1 and %d, got %d", maxASN, asn)
	}
	return nil
}

// ValidateVLANID checks that id is a usable 802.1Q VLAN ID.
func ValidateVLANID(id int) error {
	if id < 1 || id > 4094 {
		return fmt.Errorf("VLAN ID must be between 1 and 4094, got %d", id)
	}
	return nil
}

// FormatRouteDistinguisher generates an RD from an administrator and index
func FormatRouteDistinguisher(admin string, index int) string {
	return fmt.Sprintf("%s:%d", admin, index)
}

// FormatRouteTarget generates an RT from ASN and value
func FormatRouteTarget(asn, value int) string {
	return fmt.Sprintf("%d:%d", asn, value)
}

// SplitIPMask splits a CIDR notation into IP and mask length
// Returns the IP (without mask) and mask length
func SplitIPMask(cidr string) (string, int) {
	parts := strings.Split(cidr, "/")
	if len(parts) != 2 {
		return cidr, 0 // Return as-is if no mask
	}
	maskLen, err := strconv.Atoi(parts[1])
	if err != nil {
		return parts[0], 0
	}
	return parts[0], maskLen
}

// DeriveNeighborIP derives the BGP neighbor IP from a local IP address with CIDR mask.
// Works for point-to-point links (/30, /31, /126, /127).
// Returns error if the subnet is not point-to-point.
func DeriveNeighborIP(localIPWithMask string) (string, error) {
	ipStr, maskLen := SplitIPMask(localIPWithMask)
	if maskLen == 0 {
		return "", fmt.Errorf("IP address must include CIDR mask (e.g., 10.1.1.1/30)")
	}

	neighborIP := ComputeNeighborIP(ipStr, maskLen)
	if neighborIP == "" {
		return "", fmt.Errorf("cannot derive neighbor IP: %s is not on a point-to-point subnet", localIPWithMask)
	}
	return neighborIP, nil
}
