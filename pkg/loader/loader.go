// Package loader injects synthesized route tables into a gobgp daemon and
// builds the per-VRF VLAN links and BGP neighbors on the daemon host.
package loader

import (
	"context"
	"fmt"
	"net/netip"
	"strconv"

	"github.com/newtron-network/newtroute/pkg/gobgp"
	"github.com/newtron-network/newtroute/pkg/routetable"
	"github.com/newtron-network/newtroute/pkg/runner"
	"github.com/newtron-network/newtroute/pkg/spec"
	"github.com/newtron-network/newtroute/pkg/util"
)

// SkipReason says why a path record was not loaded.
type SkipReason string

const (
	SkipNoBestpath SkipReason = "no-bestpath" // record has no bestpath flag
	SkipNotBest    SkipReason = "not-best"    // bestpath is false
	SkipEmptyPath  SkipReason = "empty-path"  // AS path string is empty
	SkipForeign    SkipReason = "foreign"     // AS path does not start with the sentinel AS
)

// Summary reports what a load did.
type Summary struct {
	VRFs    []spec.Assignment
	Added   int
	Skipped map[SkipReason]int
}

// Loader loads route tables into a daemon.
type Loader struct {
	harness *spec.Harness
	paths   gobgp.PathAdder
	run     runner.Runner
}

// New creates a loader. Paths go to paths; gobgp and ip commands go to run.
func New(h *spec.Harness, paths gobgp.PathAdder, run runner.Runner) *Loader {
	return &Loader{harness: h, paths: paths, run: run}
}

// Qualify decides whether p should be loaded. It returns the parsed AS
// path when it should, or the reason it is skipped.
func Qualify(p *routetable.Path, sentinelAS uint32) ([]uint32, SkipReason, error) {
	switch {
	case p.Bestpath == nil:
		return nil, SkipNoBestpath, nil
	case !*p.Bestpath:
		return nil, SkipNotBest, nil
	case p.ASPath == "":
		return nil, SkipEmptyPath, nil
	}
	asns, err := p.ParseASPath()
	if err != nil {
		return nil, "", err
	}
	if len(asns) == 0 {
		return nil, SkipEmptyPath, nil
	}
	if asns[0] != sentinelAS {
		return nil, SkipForeign, nil
	}
	return asns, "", nil
}

// Run loads both documents, then provisions a VLAN link and BGP neighbors
// for every non-default VRF. VRF creation failures are ignored; every
// other failure aborts the run.
func (l *Loader) Run(ctx context.Context, tables *routetable.Tables) (*Summary, error) {
	sum := &Summary{
		VRFs:    spec.AssignVLANs(tables.VRFs(), l.harness.Links.VLANBase),
		Skipped: make(map[SkipReason]int),
	}
	vlans := make(map[string]int, len(sum.VRFs))
	for _, a := range sum.VRFs {
		vlans[a.VRF] = a.VLAN
	}

	if err := l.loadTable(ctx, tables.IPv4, vlans, false, sum); err != nil {
		return sum, fmt.Errorf("ipv4: %w", err)
	}
	if err := l.loadTable(ctx, tables.IPv6, vlans, true, sum); err != nil {
		return sum, fmt.Errorf("ipv6: %w", err)
	}

	for _, a := range sum.VRFs {
		if err := l.provisionLink(ctx, a); err != nil {
			return sum, fmt.Errorf("vrf %s: %w", a.VRF, err)
		}
	}
	return sum, nil
}

func (l *Loader) loadTable(ctx context.Context, t routetable.Table, vlans map[string]int, ipv6 bool, sum *Summary) error {
	for _, vrf := range t.VRFs() {
		if vrf == spec.DefaultVRF {
			continue
		}
		id := vlans[vrf]
		link, err := l.harness.Links.Link(id)
		if err != nil {
			return fmt.Errorf("vrf %s: %w", vrf, err)
		}
		nextHop := link.NextHopIPv4()
		if ipv6 {
			nextHop = link.NextHopIPv6()
		}

		l.createVRF(ctx, vrf, id)

		log := util.WithVRF(vrf)
		added := 0
		for _, key := range t.Prefixes(vrf) {
			paths := t[vrf].Routes[key]
			for i := range paths {
				p := &paths[i]
				asns, reason, err := Qualify(p, l.harness.BGP.SentinelAS)
				if err != nil {
					return fmt.Errorf("vrf %s route %s: %w", vrf, key, err)
				}
				if reason != "" {
					sum.Skipped[reason]++
					continue
				}
				prefix, err := p.ParseNetwork()
				if err != nil {
					return fmt.Errorf("vrf %s route %s: %w", vrf, key, err)
				}
				if err := l.addPath(ctx, vrf, prefix, asns, nextHop); err != nil {
					return err
				}
				added++
			}
		}
		sum.Added += added
		log.Infof("loaded %d paths via %s", added, nextHop)
	}
	return nil
}

// createVRF adds the VRF to the daemon. The VRF usually exists already
// when the second document is loaded, so failure is expected and ignored.
func (l *Loader) createVRF(ctx context.Context, vrf string, id int) {
	rd := util.FormatRouteDistinguisher(strconv.Itoa(id), id)
	rt := util.FormatRouteTarget(id, id)
	if _, err := l.run.Run(ctx, "gobgp", "vrf", "add", vrf, "rd", rd, "rt", "both", rt); err != nil {
		util.WithVRF(vrf).Debugf("vrf add ignored: %v", err)
	}
}

func (l *Loader) addPath(ctx context.Context, vrf string, prefix netip.Prefix, asns []uint32, nextHop string) error {
	path := make([]uint32, 0, len(asns)+1)
	path = append(path, l.harness.BGP.LocalAS)
	path = append(path, asns...)

	return l.paths.AddPath(ctx, gobgp.Route{
		VRF:     vrf,
		Prefix:  prefix,
		ASPath:  path,
		NextHop: nextHop,
		Origin:  gobgp.OriginIncomplete,
	})
}

// provisionLink creates the VLAN sub-interface named after the VRF, assigns
// the daemon-side link addresses, and peers with the node side.
func (l *Loader) provisionLink(ctx context.Context, a spec.Assignment) error {
	link, err := l.harness.Links.Link(a.VLAN)
	if err != nil {
		return err
	}
	peerAS := fmt.Sprintf("%d", l.harness.BGP.PeerAS)

	steps := [][]string{
		{"ip", "link", "add", "link", l.harness.Links.Uplink, "name", a.VRF, "type", "vlan", "id", fmt.Sprintf("%d", a.VLAN)},
		{"ip", "link", "set", "dev", a.VRF, "up"},
		{"ip", "address", "add", link.LocalIPv4, "dev", a.VRF},
		{"gobgp", "neighbor", "add", link.NeighborIPv4(), "as", peerAS, "vrf", a.VRF},
		{"ip", "address", "add", link.LocalIPv6, "dev", a.VRF},
		{"gobgp", "neighbor", "add", link.NeighborIPv6(), "as", peerAS, "vrf", a.VRF},
	}
	for _, argv := range steps {
		if _, err := l.run.Run(ctx, argv[0], argv[1:]...); err != nil {
			return err
		}
	}
	util.WithFields(map[string]interface{}{"vrf": a.VRF, "vlan": a.VLAN}).Info("link provisioned")
	return nil
}
