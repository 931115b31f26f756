package provision

import (
	"context"
	"strconv"

	"github.com/newtron-network/newtroute/pkg/runner"
)

// VXLAN describes a VXLAN tunnel interface.
type VXLAN struct {
	Name   string
	VNI    int
	Device string // underlay device the tunnel is bound to
	Local  string // local tunnel endpoint, no mask
	Port   int
}

// Backend creates and wires Linux network interfaces on a node.
type Backend interface {
	AddLoopbackAddr(ctx context.Context, dev, addr string) error
	AddVLAN(ctx context.Context, name, parent string, id int) error
	AddVRF(ctx context.Context, name string, table int) error
	AddVXLAN(ctx context.Context, vx VXLAN) error
	AddBridge(ctx context.Context, name string) error
	AddAddr(ctx context.Context, dev, cidr string) error
	SetMaster(ctx context.Context, dev, master string) error
	SetUp(ctx context.Context, dev string) error
}

// IPCommand is a Backend that runs iproute2 commands through a Runner,
// locally or on a remote node.
type IPCommand struct {
	run runner.Runner
}

// NewIPCommand returns an iproute2 backend.
func NewIPCommand(run runner.Runner) *IPCommand {
	return &IPCommand{run: run}
}

func (b *IPCommand) ip(ctx context.Context, args ...string) error {
	_, err := b.run.Run(ctx, "ip", args...)
	return err
}

func (b *IPCommand) AddLoopbackAddr(ctx context.Context, dev, addr string) error {
	return b.ip(ctx, "a", "add", addr, "dev", dev)
}

func (b *IPCommand) AddVLAN(ctx context.Context, name, parent string, id int) error {
	return b.ip(ctx, "link", "add", "link", parent, "name", name, "type", "vlan", "id", strconv.Itoa(id))
}

func (b *IPCommand) AddVRF(ctx context.Context, name string, table int) error {
	return b.ip(ctx, "link", "add", name, "type", "vrf", "table", strconv.Itoa(table))
}

func (b *IPCommand) AddVXLAN(ctx context.Context, vx VXLAN) error {
	return b.ip(ctx, "link", "add", vx.Name, "type", "vxlan",
		"id", strconv.Itoa(vx.VNI),
		"dev", vx.Device,
		"local", vx.Local,
		"dstport", strconv.Itoa(vx.Port),
		"nolearning")
}

func (b *IPCommand) AddBridge(ctx context.Context, name string) error {
	return b.ip(ctx, "link", "add", name, "type", "bridge")
}

func (b *IPCommand) AddAddr(ctx context.Context, dev, cidr string) error {
	return b.ip(ctx, "address", "add", cidr, "dev", dev)
}

func (b *IPCommand) SetMaster(ctx context.Context, dev, master string) error {
	return b.ip(ctx, "link", "set", "dev", dev, "master", master)
}

func (b *IPCommand) SetUp(ctx context.Context, dev string) error {
	return b.ip(ctx, "link", "set", "dev", dev, "up")
}
