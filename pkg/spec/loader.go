package spec

import (
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/newtroute/pkg/util"
)

// MaxSubnetBits bounds how many subnets a route block may be cut into.
const MaxSubnetBits = 24

// Load reads a harness file. Fields absent from the file keep their
// defaults; an empty path returns the defaults. The result is validated.
func Load(path string) (*Harness, error) {
	h := Default()
	if path == "" {
		return h, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading harness %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, h); err != nil {
		return nil, fmt.Errorf("parsing harness %s: %w", path, err)
	}
	if err := h.Validate(); err != nil {
		return nil, fmt.Errorf("harness %s: %w", path, err)
	}
	util.WithField("path", path).Debugf("loaded harness with %d VRFs", len(h.VRFs))
	return h, nil
}

// Marshal renders the harness as YAML.
func (h *Harness) Marshal() ([]byte, error) {
	return yaml.Marshal(h)
}

// Validate checks the harness for internal consistency.
func (h *Harness) Validate() error {
	var v util.ValidationBuilder

	v.Add(len(h.VRFs) > 0, "at least one VRF is required")
	validateVRFMap(&v, "vrfs", h.VRFs)
	if len(h.Underlay.VNIs) > 0 {
		validateVRFMap(&v, "underlay.vnis", h.Underlay.VNIs)
	}

	validateBlock(&v, "routes.ipv4", h.Routes.IPv4, 32)
	validateBlock(&v, "routes.ipv6", h.Routes.IPv6, 128)

	if pool, err := util.ExpandASNRange(h.Routes.ASPathPool); err != nil {
		v.AddErrorf("routes.as_path_pool: %v", err)
	} else {
		v.Add(len(pool) > 0, "routes.as_path_pool must not be empty")
	}

	v.Add(h.BGP.Address != "", "bgp.address is required")
	v.Add(h.BGP.Timeout > 0, "bgp.timeout must be positive")
	for _, f := range []struct {
		name string
		asn  uint32
	}{
		{"bgp.sentinel_as", h.BGP.SentinelAS},
		{"bgp.local_as", h.BGP.LocalAS},
		{"bgp.peer_as", h.BGP.PeerAS},
	} {
		if err := util.ValidateASN(int(f.asn)); err != nil {
			v.AddErrorf("%s: %v", f.name, err)
		}
	}

	v.Add(h.Links.Uplink != "", "links.uplink is required")
	if err := util.ValidateVLANID(h.Links.VLANBase); err != nil {
		v.AddErrorf("links.vlan_base: %v", err)
	}
	// The VLAN ID doubles as the third octet of the IPv4 link subnet.
	// The default VRF never gets a link.
	if n := len(h.VRFs.Without(DefaultVRF)); h.Links.VLANBase+n-1 > 255 {
		v.AddErrorf("links.vlan_base %d leaves no IPv4 link subnet for %d VRFs", h.Links.VLANBase, n)
	}
	v.Add(util.IsValidIPv4(h.Links.IPv4Addr(h.Links.VLANBase, 1)),
		fmt.Sprintf("links.ipv4_prefix %q does not form IPv4 addresses", h.Links.IPv4Prefix))
	v.Add(util.IsValidIP(h.Links.IPv6Addr(h.Links.VLANBase, 1)),
		fmt.Sprintf("links.ipv6_prefix %q does not form IPv6 addresses", h.Links.IPv6Prefix))

	v.Add(h.Underlay.VXLANDevice != "", "underlay.vxlan_device is required")
	v.Add(h.Underlay.VXLANPort > 0 && h.Underlay.VXLANPort < 65536,
		fmt.Sprintf("underlay.vxlan_port %d out of range", h.Underlay.VXLANPort))

	return v.Build()
}

func validateVRFMap(v *util.ValidationBuilder, field string, m VRFMap) {
	names := make(map[string]bool)
	vnis := make(map[int]string)
	for _, vrf := range m {
		if vrf.Name == "" {
			v.AddErrorf("%s: empty VRF name", field)
			continue
		}
		if names[vrf.Name] {
			v.AddErrorf("%s: VRF %s listed twice", field, vrf.Name)
		}
		names[vrf.Name] = true
		if other, ok := vnis[vrf.VNI]; ok {
			v.AddErrorf("%s: VNI %d used by both %s and %s", field, vrf.VNI, other, vrf.Name)
		}
		vnis[vrf.VNI] = vrf.Name
		if vrf.VNI < 0 || vrf.VNI > 1<<24-1 {
			v.AddErrorf("%s: VNI %d of %s out of range", field, vrf.VNI, vrf.Name)
		}
	}
}

func validateBlock(v *util.ValidationBuilder, field string, b RouteBlock, bits int) {
	_, ipNet, err := net.ParseCIDR(b.Block)
	if err != nil {
		v.AddErrorf("%s.block: %v", field, err)
		return
	}
	ones, total := ipNet.Mask.Size()
	if total != bits {
		v.AddErrorf("%s.block %s is not a /%d address family block", field, b.Block, bits)
		return
	}
	if b.SubnetLen < ones || b.SubnetLen > bits {
		v.AddErrorf("%s.subnet_len %d must be between %d and %d", field, b.SubnetLen, ones, bits)
		return
	}
	if b.SubnetLen-ones > MaxSubnetBits {
		v.AddErrorf("%s: %s cut into /%d yields more than 2^%d subnets", field, b.Block, b.SubnetLen, MaxSubnetBits)
	}
}
