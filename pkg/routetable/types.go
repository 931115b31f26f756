// Package routetable reads and writes the per-VRF route table documents
// (ipv4.json, ipv6.json) exchanged between the dicer, the loader, and the
// interface provisioner. The layout follows FRR's "show bgp vrf all json"
// output: document[vrf].routes[prefix] is a list of paths.
package routetable

import (
	"fmt"
	"net/netip"
	"sort"
	"strconv"
	"strings"
)

// File names of the two documents inside a tables directory.
const (
	IPv4File = "ipv4.json"
	IPv6File = "ipv6.json"
)

// NextHop is a single next-hop of a path.
type NextHop struct {
	IP   string `json:"ip"`
	AFI  string `json:"afi"`
	Used bool   `json:"used"`
}

// Path is one route record.
type Path struct {
	Valid bool `json:"valid"`
	// Bestpath is nil when the record carries no best-path flag.
	Bestpath  *bool     `json:"bestpath,omitempty"`
	PathFrom  string    `json:"pathFrom,omitempty"`
	Prefix    string    `json:"prefix"`
	PrefixLen int       `json:"prefixLen"`
	Network   string    `json:"network"`
	Metric    int       `json:"metric"`
	Weight    int       `json:"weight"`
	ASPath    string    `json:"path"`
	Origin    string    `json:"origin,omitempty"`
	NextHops  []NextHop `json:"nexthops,omitempty"`
}

// IsBest reports whether the record is flagged as best path.
func (p *Path) IsBest() bool {
	return p.Bestpath != nil && *p.Bestpath
}

// ParseASPath splits the space-separated AS path. An empty or blank path
// yields an empty slice.
func (p *Path) ParseASPath() ([]uint32, error) {
	return ParseASPath(p.ASPath)
}

// ParseNetwork parses the record's network as a prefix. Host bits must be
// zero.
func (p *Path) ParseNetwork() (netip.Prefix, error) {
	prefix, err := netip.ParsePrefix(p.Network)
	if err != nil {
		return netip.Prefix{}, fmt.Errorf("network %q: %w", p.Network, err)
	}
	if prefix.Masked() != prefix {
		return netip.Prefix{}, fmt.Errorf("network %q has host bits set", p.Network)
	}
	return prefix, nil
}

// ParseASPath parses a space-separated list of AS numbers.
func ParseASPath(s string) ([]uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []uint32{}, nil
	}
	fields := strings.Split(s, " ")
	out := make([]uint32, len(fields))
	for i, f := range fields {
		n, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid AS number %q in path %q", f, s)
		}
		out[i] = uint32(n)
	}
	return out, nil
}

// FormatASPath renders AS numbers as a space-separated path.
func FormatASPath(asns []uint32) string {
	parts := make([]string, len(asns))
	for i, a := range asns {
		parts[i] = strconv.FormatUint(uint64(a), 10)
	}
	return strings.Join(parts, " ")
}

// VRFRoutes holds the routes of one VRF keyed by prefix.
type VRFRoutes struct {
	Routes map[string][]Path `json:"routes"`
}

// Table is a whole document keyed by VRF name.
type Table map[string]VRFRoutes

// VRFs returns the VRF names of the table, sorted.
func (t Table) VRFs() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Prefixes returns the route keys of a VRF, sorted.
func (t Table) Prefixes(vrf string) []string {
	routes := t[vrf].Routes
	keys := make([]string, 0, len(routes))
	for k := range routes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnionVRFs returns the sorted union of VRF names across tables.
func UnionVRFs(tables ...Table) []string {
	seen := make(map[string]bool)
	var names []string
	for _, t := range tables {
		for name := range t {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Stats summarizes one VRF of a table.
type Stats struct {
	VRF    string
	Routes int
	Paths  int
	Best   int
}

// Stats returns per-VRF counters in VRF order.
func (t Table) Stats() []Stats {
	var out []Stats
	for _, vrf := range t.VRFs() {
		s := Stats{VRF: vrf, Routes: len(t[vrf].Routes)}
		for _, paths := range t[vrf].Routes {
			s.Paths += len(paths)
			for i := range paths {
				if paths[i].IsBest() {
					s.Best++
				}
			}
		}
		out = append(out, s)
	}
	return out
}
