// Package gobgp injects paths into a running gobgp daemon over its gRPC API.
package gobgp

import (
	"context"
	"fmt"
	"io"
	"net/netip"
	"time"

	api "github.com/osrg/gobgp/v3/api"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/anypb"

	"github.com/newtron-network/newtroute/pkg/routetable"
	"github.com/newtron-network/newtroute/pkg/util"
)

// OriginIncomplete is the BGP ORIGIN value stamped on injected paths.
const OriginIncomplete = 2

// Route is one path to inject into a VRF table.
type Route struct {
	VRF     string
	Prefix  netip.Prefix
	ASPath  []uint32
	NextHop string
	Origin  uint32
}

func (r Route) String() string {
	return fmt.Sprintf("%s %s via %s path [%s]", r.VRF, r.Prefix, r.NextHop, routetable.FormatASPath(r.ASPath))
}

// PathAdder adds a single path to the daemon.
type PathAdder interface {
	AddPath(ctx context.Context, r Route) error
}

// Client is a gobgp API client. Every call carries a fixed deadline.
type Client struct {
	conn    *grpc.ClientConn
	api     api.GobgpApiClient
	target  string
	timeout time.Duration
}

// Dial creates a client for the daemon at addr. The connection is
// established lazily on the first call.
func Dial(addr string, timeout time.Duration, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("gobgp client %s: %w", addr, err)
	}
	return &Client{
		conn:    conn,
		api:     api.NewGobgpApiClient(conn),
		target:  addr,
		timeout: timeout,
	}, nil
}

// Close releases the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// AddPath implements PathAdder.
func (c *Client) AddPath(ctx context.Context, r Route) error {
	req, err := NewAddPathRequest(r)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	util.WithFields(map[string]interface{}{
		"vrf":    r.VRF,
		"prefix": r.Prefix.String(),
		"target": c.target,
	}).Debug("AddPath")
	if _, err := c.api.AddPath(ctx, req); err != nil {
		return util.NewRPCError("AddPath", r.VRF+" "+r.Prefix.String(), err)
	}
	return nil
}

// NewAddPathRequest builds the VRF-table AddPath request for r, carrying
// ORIGIN, AS_PATH (one AS_SEQUENCE segment) and NEXT_HOP attributes.
func NewAddPathRequest(r Route) (*api.AddPathRequest, error) {
	if !r.Prefix.IsValid() {
		return nil, fmt.Errorf("route in %s has no prefix", r.VRF)
	}

	afi := api.Family_AFI_IP
	if r.Prefix.Addr().Is6() {
		afi = api.Family_AFI_IP6
	}

	nlri, err := anypb.New(&api.IPAddressPrefix{
		PrefixLen: uint32(r.Prefix.Bits()),
		Prefix:    r.Prefix.Addr().String(),
	})
	if err != nil {
		return nil, err
	}
	origin, err := anypb.New(&api.OriginAttribute{
		Origin: r.Origin,
	})
	if err != nil {
		return nil, err
	}
	asPath, err := anypb.New(&api.AsPathAttribute{
		Segments: []*api.AsSegment{
			{
				Type:    api.AsSegment_AS_SEQUENCE,
				Numbers: r.ASPath,
			},
		},
	})
	if err != nil {
		return nil, err
	}
	nextHop, err := anypb.New(&api.NextHopAttribute{
		NextHop: r.NextHop,
	})
	if err != nil {
		return nil, err
	}

	return &api.AddPathRequest{
		TableType: api.TableType_VRF,
		VrfId:     r.VRF,
		Path: &api.Path{
			Nlri:   nlri,
			Pattrs: []*anypb.Any{origin, asPath, nextHop},
			Family: &api.Family{Afi: afi, Safi: api.Family_SAFI_UNICAST},
		},
	}, nil
}

// Preview prints paths instead of sending them.
type Preview struct {
	Out    io.Writer
	Routes []Route
}

// AddPath implements PathAdder.
func (p *Preview) AddPath(ctx context.Context, r Route) error {
	if _, err := NewAddPathRequest(r); err != nil {
		return err
	}
	p.Routes = append(p.Routes, r)
	if p.Out != nil {
		fmt.Fprintf(p.Out, "  add-path %s\n", r)
	}
	return nil
}
