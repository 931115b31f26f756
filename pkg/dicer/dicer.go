package dicer

import (
	"fmt"
	"math/rand/v2"
	"net"

	"github.com/newtron-network/newtroute/pkg/routetable"
	"github.com/newtron-network/newtroute/pkg/spec"
	"github.com/newtron-network/newtroute/pkg/util"
)

// Attributes stamped on every synthesized path.
const (
	pathFrom   = "external"
	pathMetric = 45
	pathWeight = 0
	pathOrigin = "IGP"
	nextHopIP  = "0.0.0.0"
	nextHopAFI = "ipv4"
)

// Dicer generates route tables for a harness.
type Dicer struct {
	routes spec.RouteSpace
	vrfs   spec.VRFMap
	pool   []uint32
	rng    *rand.Rand
}

// New creates a dicer for h. AS paths are drawn from rng.
func New(h *spec.Harness, rng *rand.Rand) (*Dicer, error) {
	pool, err := util.ExpandASNRange(h.Routes.ASPathPool)
	if err != nil {
		return nil, fmt.Errorf("as path pool: %w", err)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("as path pool %q is empty", h.Routes.ASPathPool)
	}
	return &Dicer{
		routes: h.Routes,
		vrfs:   h.VRFs,
		pool:   pool,
		rng:    rng,
	}, nil
}

// NewSeeded creates a dicer whose AS paths are reproducible for seed.
func NewSeeded(h *spec.Harness, seed uint64) (*Dicer, error) {
	return New(h, rand.New(rand.NewPCG(seed, seed)))
}

// ASPath samples between 1 and len(pool) distinct AS numbers from the pool.
func (d *Dicer) ASPath() []uint32 {
	n := 1 + d.rng.IntN(len(d.pool))
	perm := d.rng.Perm(len(d.pool))
	path := make([]uint32, n)
	for i := 0; i < n; i++ {
		path[i] = d.pool[perm[i]]
	}
	return path
}

// Dice generates both documents.
func (d *Dicer) Dice() (*routetable.Tables, error) {
	v4, err := d.table(d.routes.IPv4)
	if err != nil {
		return nil, fmt.Errorf("ipv4: %w", err)
	}
	v6, err := d.table(d.routes.IPv6)
	if err != nil {
		return nil, fmt.Errorf("ipv6: %w", err)
	}
	return &routetable.Tables{IPv4: v4, IPv6: v6}, nil
}

func (d *Dicer) table(b spec.RouteBlock) (routetable.Table, error) {
	slices, err := Partition(b, d.vrfs)
	if err != nil {
		return nil, err
	}
	t := make(routetable.Table, len(slices))
	for _, s := range slices {
		routes := make(map[string][]routetable.Path, len(s.Subnets))
		for _, subnet := range s.Subnets {
			routes[subnet.String()] = []routetable.Path{d.path(subnet)}
		}
		t[s.VRF] = routetable.VRFRoutes{Routes: routes}
		util.WithVRF(s.VRF).Debugf("assigned %s subnets [%d, %d)", b.Block, s.Start, s.End)
	}
	return t, nil
}

func (d *Dicer) path(subnet *net.IPNet) routetable.Path {
	best := true
	ones, _ := subnet.Mask.Size()
	return routetable.Path{
		Valid:     true,
		Bestpath:  &best,
		PathFrom:  pathFrom,
		Prefix:    subnet.IP.String(),
		PrefixLen: ones,
		Network:   subnet.String(),
		Metric:    pathMetric,
		Weight:    pathWeight,
		ASPath:    routetable.FormatASPath(d.ASPath()),
		Origin:    pathOrigin,
		NextHops: []routetable.NextHop{
			{IP: nextHopIP, AFI: nextHopAFI, Used: true},
		},
	}
}
