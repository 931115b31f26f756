package spec

import "time"

// Default returns the harness the fixtures were originally written against.
func Default() *Harness {
	return &Harness{
		VRFs: VRFMap{
			{Name: DefaultVRF, VNI: 0},
			{Name: "Vrf_one", VNI: 1},
			{Name: "Vrf_two", VNI: 2},
			{Name: "Vrf_boot", VNI: 10},
			{Name: "Vrf_mgmt", VNI: 20},
			{Name: "Vrf_storage", VNI: 30},
			{Name: "Vrf_internet", VNI: 42},
		},
		Routes: RouteSpace{
			IPv4:       RouteBlock{Block: "203.0.113.0/24", SubnetLen: 32},
			IPv6:       RouteBlock{Block: "2001:db8::/48", SubnetLen: 64},
			ASPathPool: "65536-65551",
		},
		BGP: BGPSpec{
			Address:    "localhost:50051",
			Timeout:    10 * time.Second,
			SentinelAS: 64496,
			LocalAS:    64496,
			PeerAS:     64497,
		},
		Links: LinkSpec{
			Uplink:     "eth1",
			VLANBase:   100,
			IPv4Prefix: "192.168",
			IPv6Prefix: "fd00:cafe",
		},
		Underlay: UnderlaySpec{
			VXLANDevice:     "lo",
			VXLANPort:       4789,
			InterfacePrefix: "ll.",
		},
	}
}
