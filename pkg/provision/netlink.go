package provision

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/vishvananda/netlink"
)

// Toolkit is the subset of the netlink package the Netlink backend uses.
type Toolkit interface {
	LinkAdd(link netlink.Link) error
	LinkByName(name string) (netlink.Link, error)
	LinkSetUp(link netlink.Link) error
	LinkSetMaster(link, master netlink.Link) error
	AddrAdd(link netlink.Link, addr *netlink.Addr) error
}

// Toolkit backed by the running kernel.
type kernelToolkit struct{}

func (kernelToolkit) LinkAdd(link netlink.Link) error              { return netlink.LinkAdd(link) }
func (kernelToolkit) LinkByName(name string) (netlink.Link, error) { return netlink.LinkByName(name) }
func (kernelToolkit) LinkSetUp(link netlink.Link) error            { return netlink.LinkSetUp(link) }
func (kernelToolkit) LinkSetMaster(link, master netlink.Link) error {
	return netlink.LinkSetMaster(link, master)
}
func (kernelToolkit) AddrAdd(link netlink.Link, a *netlink.Addr) error {
	return netlink.AddrAdd(link, a)
}

// Netlink is a Backend that talks to the local kernel over netlink.
type Netlink struct {
	toolkit Toolkit
}

// NewNetlink returns a netlink backend for the local node.
func NewNetlink() *Netlink {
	return &Netlink{toolkit: kernelToolkit{}}
}

// NewNetlinkWithToolkit returns a netlink backend using toolkit.
func NewNetlinkWithToolkit(toolkit Toolkit) *Netlink {
	return &Netlink{toolkit: toolkit}
}

func (n *Netlink) link(name string) (netlink.Link, error) {
	l, err := n.toolkit.LinkByName(name)
	if err != nil {
		return nil, fmt.Errorf("error getting link %s: %w", name, err)
	}
	return l, nil
}

func (n *Netlink) add(ctx context.Context, l netlink.Link) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.toolkit.LinkAdd(l); err != nil {
		return fmt.Errorf("error adding link %s: %w", l.Attrs().Name, err)
	}
	return nil
}

func (n *Netlink) AddLoopbackAddr(ctx context.Context, dev, addr string) error {
	if !strings.Contains(addr, "/") {
		ip := net.ParseIP(addr)
		if ip == nil {
			return fmt.Errorf("invalid address %q", addr)
		}
		if ip.To4() != nil {
			addr += "/32"
		} else {
			addr += "/128"
		}
	}
	return n.AddAddr(ctx, dev, addr)
}

func (n *Netlink) AddVLAN(ctx context.Context, name, parent string, id int) error {
	p, err := n.link(parent)
	if err != nil {
		return err
	}
	return n.add(ctx, &netlink.Vlan{
		LinkAttrs: netlink.LinkAttrs{
			Name:        name,
			ParentIndex: p.Attrs().Index,
		},
		VlanId: id,
	})
}

func (n *Netlink) AddVRF(ctx context.Context, name string, table int) error {
	return n.add(ctx, &netlink.Vrf{
		LinkAttrs: netlink.LinkAttrs{Name: name},
		Table:     uint32(table),
	})
}

func (n *Netlink) AddVXLAN(ctx context.Context, vx VXLAN) error {
	dev, err := n.link(vx.Device)
	if err != nil {
		return err
	}
	local := net.ParseIP(vx.Local)
	if local == nil {
		return fmt.Errorf("invalid vxlan local address %q", vx.Local)
	}
	return n.add(ctx, &netlink.Vxlan{
		LinkAttrs:    netlink.LinkAttrs{Name: vx.Name},
		VxlanId:      vx.VNI,
		VtepDevIndex: dev.Attrs().Index,
		SrcAddr:      local,
		Port:         vx.Port,
		Learning:     false,
	})
}

func (n *Netlink) AddBridge(ctx context.Context, name string) error {
	return n.add(ctx, &netlink.Bridge{
		LinkAttrs: netlink.LinkAttrs{Name: name},
	})
}

func (n *Netlink) AddAddr(ctx context.Context, dev, cidr string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l, err := n.link(dev)
	if err != nil {
		return err
	}
	addr, err := netlink.ParseAddr(cidr)
	if err != nil {
		return fmt.Errorf("error parsing address %s: %w", cidr, err)
	}
	if err := n.toolkit.AddrAdd(l, addr); err != nil {
		return fmt.Errorf("error adding address %s to %s: %w", cidr, dev, err)
	}
	return nil
}

func (n *Netlink) SetMaster(ctx context.Context, dev, master string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l, err := n.link(dev)
	if err != nil {
		return err
	}
	m, err := n.link(master)
	if err != nil {
		return err
	}
	if err := n.toolkit.LinkSetMaster(l, m); err != nil {
		return fmt.Errorf("error setting master of %s to %s: %w", dev, master, err)
	}
	return nil
}

func (n *Netlink) SetUp(ctx context.Context, dev string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	l, err := n.link(dev)
	if err != nil {
		return err
	}
	if err := n.toolkit.LinkSetUp(l); err != nil {
		return fmt.Errorf("error setting link %s up: %w", dev, err)
	}
	return nil
}
