package main

import (
	"bytes"
	"testing"

	"github.com/newtron-network/newtroute/pkg/routetable"
)

func TestIsMetaCmd(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{[]string{"settings", "show"}, true},
		{[]string{"version"}, true},
		{[]string{"dice"}, false},
		{[]string{"harness", "show"}, false},
		{[]string{"provision"}, false},
	}
	for _, tt := range tests {
		cmd, _, err := rootCmd.Find(tt.args)
		if err != nil {
			t.Fatalf("Find(%v): %v", tt.args, err)
		}
		if got := isMetaCmd(cmd); got != tt.want {
			t.Errorf("isMetaCmd(%v) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestPrintStats(t *testing.T) {
	yes := true
	tables := &routetable.Tables{
		IPv4: routetable.Table{"Vrf_one": {Routes: map[string][]routetable.Path{
			"203.0.113.36/32": {{Bestpath: &yes}, {}},
		}}},
		IPv6: routetable.Table{},
	}

	var buf bytes.Buffer
	printStats(&buf, tables)

	want := "FAMILY  VRF      ROUTES  PATHS  BEST\n" +
		"------  ---      ------  -----  ----\n" +
		"ipv4    Vrf_one  1       2      1\n"
	if buf.String() != want {
		t.Errorf("printStats:\n%q\nwant:\n%q", buf.String(), want)
	}
}
