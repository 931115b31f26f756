// Package dicer synthesizes per-VRF route tables. Each address block is cut
// into equal subnets which are sliced contiguously across the VRF map; every
// subnet becomes one best-path route with a randomly sampled AS path.
package dicer

import (
	"fmt"
	"net"

	"github.com/apparentlymart/go-cidr/cidr"

	"github.com/newtron-network/newtroute/pkg/spec"
)

// Slice is the contiguous run of subnets assigned to one VRF. Start and End
// are subnet indexes within the block, End exclusive.
type Slice struct {
	VRF     string
	Start   int
	End     int
	Subnets []*net.IPNet
}

// SubnetCount returns how many subnets of b.SubnetLen fit in b.Block.
func SubnetCount(b spec.RouteBlock) (int, error) {
	_, block, err := net.ParseCIDR(b.Block)
	if err != nil {
		return 0, fmt.Errorf("route block %q: %w", b.Block, err)
	}
	ones, bits := block.Mask.Size()
	if b.SubnetLen < ones || b.SubnetLen > bits {
		return 0, fmt.Errorf("route block %s cannot be cut into /%d", b.Block, b.SubnetLen)
	}
	if b.SubnetLen-ones > spec.MaxSubnetBits {
		return 0, fmt.Errorf("route block %s cut into /%d yields more than 2^%d subnets", b.Block, b.SubnetLen, spec.MaxSubnetBits)
	}
	return 1 << uint(b.SubnetLen-ones), nil
}

// Partition slices b across vrfs in map order. Every VRF receives
// count/len(vrfs) subnets; the remainder at the end of the block is left
// unassigned.
func Partition(b spec.RouteBlock, vrfs spec.VRFMap) ([]Slice, error) {
	if len(vrfs) == 0 {
		return nil, fmt.Errorf("no VRFs to partition %s across", b.Block)
	}
	count, err := SubnetCount(b)
	if err != nil {
		return nil, err
	}
	_, block, _ := net.ParseCIDR(b.Block)
	ones, _ := block.Mask.Size()
	newBits := b.SubnetLen - ones
	sliceLen := count / len(vrfs)

	slices := make([]Slice, len(vrfs))
	for i, vrf := range vrfs {
		s := Slice{
			VRF:     vrf.Name,
			Start:   i * sliceLen,
			End:     (i + 1) * sliceLen,
			Subnets: make([]*net.IPNet, 0, sliceLen),
		}
		for n := s.Start; n < s.End; n++ {
			subnet, err := cidr.Subnet(block, newBits, n)
			if err != nil {
				return nil, fmt.Errorf("subnet %d of %s: %w", n, b.Block, err)
			}
			s.Subnets = append(s.Subnets, subnet)
		}
		slices[i] = s
	}
	return slices, nil
}
