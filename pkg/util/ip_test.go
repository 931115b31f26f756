package util

import (
	"testing"
)

func TestParseIPWithMask(t *testing.T) {
	tests := []struct {
		name     string
		cidr     string
		wantIP   string
		wantMask int
		wantErr  bool
	}{
		{name: "valid /30", cidr: "192.168.100.1/30", wantIP: "192.168.100.1", wantMask: 30},
		{name: "valid /126", cidr: "fd00:cafe:100::1/126", wantIP: "fd00:cafe:100::1", wantMask: 126},
		{name: "invalid - no mask", cidr: "192.168.1.100", wantErr: true},
		{name: "invalid - empty", cidr: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ip, mask, err := ParseIPWithMask(tt.cidr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseIPWithMask() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				if ip.String() != tt.wantIP {
					t.Errorf("ParseIPWithMask() IP = %v, want %v", ip.String(), tt.wantIP)
				}
				if mask != tt.wantMask {
					t.Errorf("ParseIPWithMask() mask = %v, want %v", mask, tt.wantMask)
				}
			}
		})
	}
}

func TestComputeNeighborIP(t *testing.T) {
	tests := []struct {
		name    string
		localIP string
		maskLen int
		want    string
	}{
		{"/31 first IP", "10.1.1.0", 31, "10.1.1.1"},
		{"/31 second IP", "10.1.1.1", 31, "10.1.1.0"},
		{"/30 first host", "192.168.100.1", 30, "192.168.100.2"},
		{"/30 second host", "192.168.100.2", 30, "192.168.100.1"},
		{"/30 network address", "10.1.1.0", 30, ""},
		{"/30 broadcast address", "10.1.1.3", 30, ""},
		{"/126 first host", "fd00:cafe:100::1", 126, "fd00:cafe:100::2"},
		{"/126 second host", "fd00:cafe:100::2", 126, "fd00:cafe:100::1"},
		{"/127 pair", "2001:db8::a", 127, "2001:db8::b"},
		{"/24 not point-to-point", "10.1.1.1", 24, ""},
		{"/64 not point-to-point", "2001:db8::1", 64, ""},
		{"invalid IP", "invalid", 30, ""},
		{"empty IP", "", 30, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeNeighborIP(tt.localIP, tt.maskLen)
			if got != tt.want {
				t.Errorf("ComputeNeighborIP(%q, %d) = %q, want %q", tt.localIP, tt.maskLen, got, tt.want)
			}
		})
	}
}

func TestDeriveNeighborIP(t *testing.T) {
	got, err := DeriveNeighborIP("192.168.101.1/30")
	if err != nil || got != "192.168.101.2" {
		t.Errorf("DeriveNeighborIP(/30) = %q, %v", got, err)
	}
	got, err = DeriveNeighborIP("fd00:cafe:101::1/126")
	if err != nil || got != "fd00:cafe:101::2" {
		t.Errorf("DeriveNeighborIP(/126) = %q, %v", got, err)
	}
	if _, err := DeriveNeighborIP("192.168.101.1"); err == nil {
		t.Error("DeriveNeighborIP without mask should fail")
	}
	if _, err := DeriveNeighborIP("192.168.101.1/24"); err == nil {
		t.Error("DeriveNeighborIP on /24 should fail")
	}
}

func TestValidateASN(t *testing.T) {
	for _, asn := range []int{1, 64496, 65536, 4294967295} {
		if err := ValidateASN(asn); err != nil {
			t.Errorf("ValidateASN(%d) = %v", asn, err)
		}
	}
	for _, asn := range []int{0, -1, 4294967296} {
		if err := ValidateASN(asn); err == nil {
			t.Errorf("ValidateASN(%d) should fail", asn)
		}
	}
}

func TestValidateVLANID(t *testing.T) {
	if err := ValidateVLANID(100); err != nil {
		t.Errorf("ValidateVLANID(100) = %v", err)
	}
	if err := ValidateVLANID(0); err == nil {
		t.Error("ValidateVLANID(0) should fail")
	}
	if err := ValidateVLANID(4095); err == nil {
		t.Error("ValidateVLANID(4095) should fail")
	}
}

func TestFormatRouteTarget(t *testing.T) {
	if got := FormatRouteTarget(100, 100); got != "100:100" {
		t.Errorf("FormatRouteTarget() = %q", got)
	}
	if got := FormatRouteDistinguisher("192.0.2.1", 7); got != "192.0.2.1:7" {
		t.Errorf("FormatRouteDistinguisher() = %q", got)
	}
}

func TestSplitIPMask(t *testing.T) {
	tests := []struct {
		in       string
		wantIP   string
		wantMask int
	}{
		{"10.0.0.1/32", "10.0.0.1", 32},
		{"10.0.0.1", "10.0.0.1", 0},
		{"10.0.0.1/x", "10.0.0.1", 0},
	}
	for _, tt := range tests {
		ip, mask := SplitIPMask(tt.in)
		if ip != tt.wantIP || mask != tt.wantMask {
			t.Errorf("SplitIPMask(%q) = %q, %d; want %q, %d", tt.in, ip, mask, tt.wantIP, tt.wantMask)
		}
	}
}
