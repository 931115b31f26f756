// Package spec defines the harness description shared by the dicer, the
// route loader, and the interface provisioner: the VRF map, the route
// address space, BGP identities, and link addressing.
package spec

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultVRF is the VRF name every stage treats as the global table.
const DefaultVRF = "default"

// VRF pairs a VRF name with its overlay segment identifier.
type VRF struct {
	Name string
	VNI  int
}

// VRFMap is an ordered VRF name to VNI mapping. Order matters: the dicer
// assigns address slices in map order.
type VRFMap []VRF

// Lookup returns the VNI of the named VRF.
func (m VRFMap) Lookup(name string) (int, bool) {
	for _, v := range m {
		if v.Name == name {
			return v.VNI, true
		}
	}
	return 0, false
}

// Without returns a copy of the map with the named VRF removed.
func (m VRFMap) Without(name string) VRFMap {
	out := make(VRFMap, 0, len(m))
	for _, v := range m {
		if v.Name != name {
			out = append(out, v)
		}
	}
	return out
}

// UnmarshalYAML implements yaml.Unmarshaler. The map is read from a YAML
// mapping with declaration order preserved.
func (m *VRFMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: vrfs must be a mapping of name to vni", node.Line)
	}
	out := make(VRFMap, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var name string
		var vni int
		if err := node.Content[i].Decode(&name); err != nil {
			return err
		}
		if err := node.Content[i+1].Decode(&vni); err != nil {
			return fmt.Errorf("vrf %s: %w", name, err)
		}
		out = append(out, VRF{Name: name, VNI: vni})
	}
	*m = out
	return nil
}

// MarshalYAML implements yaml.Marshaler, emitting a mapping in map order.
func (m VRFMap) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, v := range m {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: v.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprintf("%d", v.VNI)},
		)
	}
	return node, nil
}

// RouteBlock is an address block cut into equal subnets of SubnetLen bits.
type RouteBlock struct {
	Block     string `yaml:"block"`
	SubnetLen int    `yaml:"subnet_len"`
}

// RouteSpace holds the blocks the dicer partitions.
type RouteSpace struct {
	IPv4 RouteBlock `yaml:"ipv4"`
	IPv6 RouteBlock `yaml:"ipv6"`

	// ASPathPool is the range of AS numbers sampled into AS paths,
	// e.g. "65536-65551".
	ASPathPool string `yaml:"as_path_pool"`
}

// BGPSpec describes the routing daemon and the AS numbers used when
// injecting paths.
type BGPSpec struct {
	// Address is the gobgp gRPC endpoint.
	Address string        `yaml:"address"`
	Timeout time.Duration `yaml:"timeout"`

	// Only paths whose AS path starts with SentinelAS are loaded.
	SentinelAS uint32 `yaml:"sentinel_as"`
	// LocalAS is prepended to every loaded AS path.
	LocalAS uint32 `yaml:"local_as"`
	// PeerAS is the remote AS of the per-VRF neighbors.
	PeerAS uint32 `yaml:"peer_as"`
}

// LinkSpec describes the per-VRF VLAN links between the daemon host and the
// test node. VRF i (sorted, default excluded) uses VLAN VLANBase+i and the
// /30 and /126 subnets derived from IPv4Prefix and IPv6Prefix.
type LinkSpec struct {
	Uplink     string `yaml:"uplink"`
	VLANBase   int    `yaml:"vlan_base"`
	IPv4Prefix string `yaml:"ipv4_prefix"`
	IPv6Prefix string `yaml:"ipv6_prefix"`
}

// UnderlaySpec describes the VXLAN/bridge interfaces built by the provisioner.
type UnderlaySpec struct {
	// VNIs overrides the VRF map for the provisioner. Empty means the
	// harness VRF map without the default VRF.
	VNIs VRFMap `yaml:"vnis,omitempty"`

	VXLANDevice     string `yaml:"vxlan_device"`
	VXLANPort       int    `yaml:"vxlan_port"`
	InterfacePrefix string `yaml:"interface_prefix"`
}

// Harness is the complete test harness description.
type Harness struct {
	VRFs     VRFMap       `yaml:"vrfs"`
	Routes   RouteSpace   `yaml:"routes"`
	BGP      BGPSpec      `yaml:"bgp"`
	Links    LinkSpec     `yaml:"links"`
	Underlay UnderlaySpec `yaml:"underlay"`
}

// ProvisionVNIs returns the VNI map the provisioner uses.
func (h *Harness) ProvisionVNIs() VRFMap {
	if len(h.Underlay.VNIs) > 0 {
		return h.Underlay.VNIs
	}
	return h.VRFs.Without(DefaultVRF)
}
