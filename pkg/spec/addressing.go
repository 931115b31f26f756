package spec

import (
	"fmt"
	"sort"

	"github.com/newtron-network/newtroute/pkg/util"
)

// IPv4Addr returns host address host on the link subnet of VLAN id.
func (l LinkSpec) IPv4Addr(id, host int) string {
	return fmt.Sprintf("%s.%d.%d", l.IPv4Prefix, id, host)
}

// IPv6Addr returns host address host on the link subnet of VLAN id.
// The id is rendered in decimal digits inside the hextet, matching the
// addresses the peer side configures.
func (l LinkSpec) IPv6Addr(id, host int) string {
	return fmt.Sprintf("%s:%d::%d", l.IPv6Prefix, id, host)
}

// LinkAddrs holds both ends of a VRF's point-to-point link.
type LinkAddrs struct {
	VLAN int

	// Daemon side (loader)
	LocalIPv4 string // "192.168.100.1/30"
	LocalIPv6 string // "fd00:cafe:100::1/126"

	// Node side (provisioner, BGP neighbor)
	PeerIPv4 string // "192.168.100.2/30"
	PeerIPv6 string // "fd00:cafe:100::2/126"
}

// NextHopIPv4 is the daemon-side IPv4 address without mask.
func (a LinkAddrs) NextHopIPv4() string {
	ip, _ := util.SplitIPMask(a.LocalIPv4)
	return ip
}

// NextHopIPv6 is the daemon-side IPv6 address without mask.
func (a LinkAddrs) NextHopIPv6() string {
	ip, _ := util.SplitIPMask(a.LocalIPv6)
	return ip
}

// NeighborIPv4 is the node-side IPv4 address without mask.
func (a LinkAddrs) NeighborIPv4() string {
	ip, _ := util.SplitIPMask(a.PeerIPv4)
	return ip
}

// NeighborIPv6 is the node-side IPv6 address without mask.
func (a LinkAddrs) NeighborIPv6() string {
	ip, _ := util.SplitIPMask(a.PeerIPv6)
	return ip
}

// Link computes the link addressing for VLAN id.
func (l LinkSpec) Link(id int) (LinkAddrs, error) {
	a := LinkAddrs{
		VLAN:      id,
		LocalIPv4: l.IPv4Addr(id, 1) + "/30",
		LocalIPv6: l.IPv6Addr(id, 1) + "/126",
	}
	peer4, err := util.DeriveNeighborIP(a.LocalIPv4)
	if err != nil {
		return LinkAddrs{}, err
	}
	peer6, err := util.DeriveNeighborIP(a.LocalIPv6)
	if err != nil {
		return LinkAddrs{}, err
	}
	a.PeerIPv4 = peer4 + "/30"
	a.PeerIPv6 = peer6 + "/126"
	return a, nil
}

// Assignment is a VRF with the VLAN it was assigned.
type Assignment struct {
	VRF  string
	VLAN int
}

// AssignVLANs sorts names, drops the default VRF and duplicates, and
// numbers the rest consecutively from base.
func AssignVLANs(names []string, base int) []Assignment {
	seen := make(map[string]bool)
	var sorted []string
	for _, n := range names {
		if n == DefaultVRF || seen[n] {
			continue
		}
		seen[n] = true
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	out := make([]Assignment, len(sorted))
	for i, n := range sorted {
		out[i] = Assignment{VRF: n, VLAN: base + i}
	}
	return out
}
