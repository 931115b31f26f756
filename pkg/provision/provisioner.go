// Package provision builds the per-VRF VLAN, VRF, VXLAN and bridge
// interfaces on a test node so it can peer with the loaded daemon.
package provision

import (
	"context"
	"fmt"
	"strings"

	"github.com/newtron-network/newtroute/pkg/routetable"
	"github.com/newtron-network/newtroute/pkg/spec"
	"github.com/newtron-network/newtroute/pkg/util"
)

const (
	vrfPrefix    = "Vrf_"
	vxlanPrefix  = "vx."
	bridgePrefix = "br."
)

// VRFPlan is everything built for one VRF.
type VRFPlan struct {
	VRF       string
	VLAN      int
	VNI       int
	Interface string // VLAN sub-interface, enslaved to VRF
	VXLAN     string
	Bridge    string
	Link      spec.LinkAddrs
}

// Plan is the full set of interfaces for a node.
type Plan struct {
	NodeAddr string // as given, assigned to the loopback
	Local    string // NodeAddr without mask, the VXLAN endpoint
	VRFs     []VRFPlan
}

// Provisioner builds node interfaces through a Backend.
type Provisioner struct {
	harness *spec.Harness
	backend Backend
}

// New creates a provisioner.
func New(h *spec.Harness, backend Backend) *Provisioner {
	return &Provisioner{harness: h, backend: backend}
}

// InterfaceName returns the VLAN sub-interface name for a VRF: the VRF name
// with "Vrf_" replaced by prefix.
func InterfaceName(vrf, prefix string) string {
	return strings.ReplaceAll(vrf, vrfPrefix, prefix)
}

// Plan computes the interfaces for every non-default VRF in tables without
// touching the node. A VRF with no VNI is an error.
func (p *Provisioner) Plan(tables *routetable.Tables, nodeAddr string) (*Plan, error) {
	local := nodeAddr
	if strings.Contains(nodeAddr, "/") {
		ip, _, err := util.ParseIPWithMask(nodeAddr)
		if err != nil {
			return nil, fmt.Errorf("%w: node address: %v", util.ErrInvalidConfig, err)
		}
		local = ip.String()
	}
	if !util.IsValidIP(local) {
		return nil, fmt.Errorf("%w: node address %q is not an IP address", util.ErrInvalidConfig, nodeAddr)
	}

	vnis := p.harness.ProvisionVNIs()
	plan := &Plan{NodeAddr: nodeAddr, Local: local}
	for _, a := range spec.AssignVLANs(tables.VRFs(), p.harness.Links.VLANBase) {
		vni, ok := vnis.Lookup(a.VRF)
		if !ok {
			return nil, fmt.Errorf("%w: no VNI for vrf %s", util.ErrNotFound, a.VRF)
		}
		link, err := p.harness.Links.Link(a.VLAN)
		if err != nil {
			return nil, fmt.Errorf("vrf %s: %w", a.VRF, err)
		}
		plan.VRFs = append(plan.VRFs, VRFPlan{
			VRF:       a.VRF,
			VLAN:      a.VLAN,
			VNI:       vni,
			Interface: InterfaceName(a.VRF, p.harness.Underlay.InterfacePrefix),
			VXLAN:     fmt.Sprintf("%s%d", vxlanPrefix, a.VLAN),
			Bridge:    fmt.Sprintf("%s%d", bridgePrefix, a.VLAN),
			Link:      link,
		})
	}
	return plan, nil
}

// Run plans and builds the node's interfaces. Steps run strictly in order
// and the first failure aborts; nothing is rolled back.
func (p *Provisioner) Run(ctx context.Context, tables *routetable.Tables, nodeAddr string) (*Plan, error) {
	plan, err := p.Plan(tables, nodeAddr)
	if err != nil {
		return nil, err
	}

	dev := p.harness.Underlay.VXLANDevice
	if err := p.backend.AddLoopbackAddr(ctx, dev, plan.NodeAddr); err != nil {
		return plan, fmt.Errorf("loopback address: %w", err)
	}
	for i := range plan.VRFs {
		if err := p.build(ctx, plan.Local, &plan.VRFs[i]); err != nil {
			return plan, fmt.Errorf("vrf %s: %w", plan.VRFs[i].VRF, err)
		}
	}
	return plan, nil
}

func (p *Provisioner) build(ctx context.Context, local string, v *VRFPlan) error {
	b := p.backend
	u := p.harness.Underlay

	steps := []struct {
		name string
		fn   func() error
	}{
		{"add vlan", func() error { return b.AddVLAN(ctx, v.Interface, p.harness.Links.Uplink, v.VLAN) }},
		{"vlan up", func() error { return b.SetUp(ctx, v.Interface) }},
		{"add vrf", func() error { return b.AddVRF(ctx, v.VRF, v.VLAN) }},
		{"vrf up", func() error { return b.SetUp(ctx, v.VRF) }},
		{"enslave vlan", func() error { return b.SetMaster(ctx, v.Interface, v.VRF) }},
		{"ipv4 address", func() error { return b.AddAddr(ctx, v.Interface, v.Link.PeerIPv4) }},
		{"ipv6 address", func() error { return b.AddAddr(ctx, v.Interface, v.Link.PeerIPv6) }},
		{"add vxlan", func() error {
			return b.AddVXLAN(ctx, VXLAN{Name: v.VXLAN, VNI: v.VNI, Device: u.VXLANDevice, Local: local, Port: u.VXLANPort})
		}},
		{"add bridge", func() error { return b.AddBridge(ctx, v.Bridge) }},
		{"enslave vxlan", func() error { return b.SetMaster(ctx, v.VXLAN, v.Bridge) }},
		{"enslave bridge", func() error { return b.SetMaster(ctx, v.Bridge, v.VRF) }},
		{"bridge up", func() error { return b.SetUp(ctx, v.Bridge) }},
		{"vxlan up", func() error { return b.SetUp(ctx, v.VXLAN) }},
	}

	log := util.WithFields(map[string]interface{}{"vrf": v.VRF, "vlan": v.VLAN, "vni": v.VNI})
	for _, s := range steps {
		log.Debugf("%s", s.name)
		if err := s.fn(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	log.Info("interfaces provisioned")
	return nil
}
