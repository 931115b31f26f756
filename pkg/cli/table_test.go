package cli

import (
	"bytes"
	"testing"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "VRF", "ROUTES")
	tbl.Row("Vrf_one", "36")
	tbl.Row("Vrf_internet", "36")
	tbl.Flush()

	want := "VRF           ROUTES\n" +
		"---           ------\n" +
		"Vrf_one       36\n" +
		"Vrf_internet  36\n"
	if buf.String() != want {
		t.Errorf("table output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	NewTableTo(&buf, "VRF", "ROUTES").Flush()
	if buf.Len() != 0 {
		t.Errorf("empty table printed %q", buf.String())
	}
}

func TestTable_Prefix(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTableTo(&buf, "A", "B").WithPrefix("  ")
	tbl.Row("1", "2")
	tbl.Flush()

	want := "  A  B\n  -  -\n  1  2\n"
	if buf.String() != want {
		t.Errorf("table output = %q, want %q", buf.String(), want)
	}
}
