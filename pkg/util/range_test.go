package util

import (
	"reflect"
	"testing"
)

func TestExpandRange(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    []int
		wantErr bool
	}{
		{name: "single value", spec: "5", want: []int{5}},
		{name: "simple range", spec: "1-5", want: []int{1, 2, 3, 4, 5}},
		{name: "comma separated", spec: "1,3,5", want: []int{1, 3, 5}},
		{name: "mixed", spec: "1-3,5,7-9", want: []int{1, 2, 3, 5, 7, 8, 9}},
		{name: "with spaces", spec: "1 - 3, 5", want: []int{1, 2, 3, 5}},
		{name: "duplicates removed", spec: "1-3,2-4", want: []int{1, 2, 3, 4}},
		{name: "empty parts", spec: "1,,2", want: []int{1, 2}},
		{name: "empty string", spec: "", want: nil},
		{name: "invalid - start > end", spec: "5-1", wantErr: true},
		{name: "invalid - not a number", spec: "abc", wantErr: true},
		{name: "invalid - bad end", spec: "1-x", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandRange(tt.spec)
			if (err != nil) != tt.wantErr {
				t.Errorf("ExpandRange(%q) error = %v, wantErr %v", tt.spec, err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandRange(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestExpandASNRange(t *testing.T) {
	got, err := ExpandASNRange("65536-65551")
	if err != nil {
		t.Fatalf("ExpandASNRange() error = %v", err)
	}
	if len(got) != 16 || got[0] != 65536 || got[15] != 65551 {
		t.Errorf("ExpandASNRange() = %v", got)
	}

	if _, err := ExpandASNRange("0-3"); err == nil {
		t.Error("ExpandASNRange with ASN 0 should fail")
	}
}

func TestCompactRange(t *testing.T) {
	tests := []struct {
		values []int
		want   string
	}{
		{nil, ""},
		{[]int{5}, "5"},
		{[]int{3, 1, 2, 5, 7, 8, 9}, "1-3,5,7-9"},
		{[]int{65536, 65537, 65537}, "65536-65537"},
	}
	for _, tt := range tests {
		if got := CompactRange(tt.values); got != tt.want {
			t.Errorf("CompactRange(%v) = %q, want %q", tt.values, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	spec := "65536-65540,65550"
	values, err := ExpandRange(spec)
	if err != nil {
		t.Fatal(err)
	}
	if got := CompactRange(values); got != spec {
		t.Errorf("CompactRange(ExpandRange(%q)) = %q", spec, got)
	}
}
