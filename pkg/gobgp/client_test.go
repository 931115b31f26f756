package gobgp

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/netip"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	api "github.com/osrg/gobgp/v3/api"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/newtron-network/newtroute/pkg/util"
)

func TestNewAddPathRequest_IPv4(t *testing.T) {
	r := Route{
		VRF:     "Vrf_one",
		Prefix:  netip.MustParsePrefix("203.0.113.36/32"),
		ASPath:  []uint32{64496, 64496, 65536},
		NextHop: "192.168.100.1",
		Origin:  OriginIncomplete,
	}
	req, err := NewAddPathRequest(r)
	if err != nil {
		t.Fatalf("NewAddPathRequest() error = %v", err)
	}
	if req.TableType != api.TableType_VRF || req.VrfId != "Vrf_one" {
		t.Errorf("table = %v/%q", req.TableType, req.VrfId)
	}
	if req.Path.Family.Afi != api.Family_AFI_IP || req.Path.Family.Safi != api.Family_SAFI_UNICAST {
		t.Errorf("family = %v", req.Path.Family)
	}

	var nlri api.IPAddressPrefix
	if err := req.Path.Nlri.UnmarshalTo(&nlri); err != nil {
		t.Fatal(err)
	}
	if nlri.Prefix != "203.0.113.36" || nlri.PrefixLen != 32 {
		t.Errorf("nlri = %s/%d", nlri.Prefix, nlri.PrefixLen)
	}

	if len(req.Path.Pattrs) != 3 {
		t.Fatalf("got %d attributes, want 3", len(req.Path.Pattrs))
	}
	var origin api.OriginAttribute
	if err := req.Path.Pattrs[0].UnmarshalTo(&origin); err != nil {
		t.Fatal(err)
	}
	if origin.Origin != 2 {
		t.Errorf("origin = %d, want 2", origin.Origin)
	}
	var asPath api.AsPathAttribute
	if err := req.Path.Pattrs[1].UnmarshalTo(&asPath); err != nil {
		t.Fatal(err)
	}
	if len(asPath.Segments) != 1 || asPath.Segments[0].Type != api.AsSegment_AS_SEQUENCE {
		t.Fatalf("segments = %v", asPath.Segments)
	}
	if diff := cmp.Diff([]uint32{64496, 64496, 65536}, asPath.Segments[0].Numbers); diff != "" {
		t.Errorf("AS path (-want +got):\n%s", diff)
	}
	var nh api.NextHopAttribute
	if err := req.Path.Pattrs[2].UnmarshalTo(&nh); err != nil {
		t.Fatal(err)
	}
	if nh.NextHop != "192.168.100.1" {
		t.Errorf("next hop = %s", nh.NextHop)
	}
}

func TestNewAddPathRequest_IPv6(t *testing.T) {
	req, err := NewAddPathRequest(Route{
		VRF:     "Vrf_two",
		Prefix:  netip.MustParsePrefix("2001:db8:0:5::/64"),
		ASPath:  []uint32{64496, 64496},
		NextHop: "fd00:cafe:101::1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if req.Path.Family.Afi != api.Family_AFI_IP6 {
		t.Errorf("afi = %v, want AFI_IP6", req.Path.Family.Afi)
	}
	var nlri api.IPAddressPrefix
	req.Path.Nlri.UnmarshalTo(&nlri)
	if nlri.Prefix != "2001:db8:0:5::" || nlri.PrefixLen != 64 {
		t.Errorf("nlri = %s/%d", nlri.Prefix, nlri.PrefixLen)
	}
}

func TestNewAddPathRequest_NoPrefix(t *testing.T) {
	if _, err := NewAddPathRequest(Route{VRF: "Vrf_one"}); err == nil {
		t.Error("NewAddPathRequest() without prefix should fail")
	}
}

// fakeServer records AddPath calls and optionally fails them.
type fakeServer struct {
	api.UnimplementedGobgpApiServer

	mu   sync.Mutex
	reqs []*api.AddPathRequest
	fail error
	hang bool
}

func (s *fakeServer) AddPath(ctx context.Context, req *api.AddPathRequest) (*api.AddPathResponse, error) {
	if s.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return nil, s.fail
	}
	s.reqs = append(s.reqs, req)
	return &api.AddPathResponse{}, nil
}

func startFake(t *testing.T, srv *fakeServer, timeout time.Duration) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	gs := grpc.NewServer()
	api.RegisterGobgpApiServer(gs, srv)
	go gs.Serve(lis)
	t.Cleanup(gs.Stop)

	c, err := Dial("passthrough:///bufnet", timeout,
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClient_AddPath(t *testing.T) {
	srv := &fakeServer{}
	c := startFake(t, srv, 5*time.Second)

	r := Route{
		VRF:     "Vrf_one",
		Prefix:  netip.MustParsePrefix("203.0.113.40/32"),
		ASPath:  []uint32{64496, 64496},
		NextHop: "192.168.100.1",
		Origin:  OriginIncomplete,
	}
	if err := c.AddPath(context.Background(), r); err != nil {
		t.Fatalf("AddPath() error = %v", err)
	}
	if len(srv.reqs) != 1 || srv.reqs[0].VrfId != "Vrf_one" {
		t.Fatalf("server saw %v", srv.reqs)
	}
}

func TestClient_AddPathError(t *testing.T) {
	srv := &fakeServer{fail: status.Error(codes.AlreadyExists, "vrf not found")}
	c := startFake(t, srv, 5*time.Second)

	err := c.AddPath(context.Background(), Route{
		VRF:    "Vrf_missing",
		Prefix: netip.MustParsePrefix("203.0.113.40/32"),
	})
	if !errors.Is(err, util.ErrRPCFailed) {
		t.Fatalf("AddPath() error = %v, want ErrRPCFailed", err)
	}
	if !strings.Contains(err.Error(), "Vrf_missing 203.0.113.40/32") {
		t.Errorf("error should name the route: %v", err)
	}
}

func TestClient_AddPathDeadline(t *testing.T) {
	srv := &fakeServer{hang: true}
	c := startFake(t, srv, 50*time.Millisecond)

	err := c.AddPath(context.Background(), Route{
		VRF:    "Vrf_one",
		Prefix: netip.MustParsePrefix("203.0.113.40/32"),
	})
	if status.Code(err) != codes.DeadlineExceeded {
		t.Errorf("AddPath() error = %v, want deadline exceeded", err)
	}
}

func TestPreview(t *testing.T) {
	var buf bytes.Buffer
	p := &Preview{Out: &buf}
	r := Route{
		VRF:     "Vrf_one",
		Prefix:  netip.MustParsePrefix("203.0.113.40/32"),
		ASPath:  []uint32{64496, 64496, 65540},
		NextHop: "192.168.100.1",
	}
	if err := p.AddPath(context.Background(), r); err != nil {
		t.Fatal(err)
	}
	if len(p.Routes) != 1 {
		t.Errorf("Routes = %v", p.Routes)
	}
	want := "  add-path Vrf_one 203.0.113.40/32 via 192.168.100.1 path [64496 64496 65540]\n"
	if buf.String() != want {
		t.Errorf("preview output = %q, want %q", buf.String(), want)
	}
}
