package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/newtron-network/newtroute/pkg/cli"
	"github.com/newtron-network/newtroute/pkg/dicer"
	"github.com/newtron-network/newtroute/pkg/routetable"
)

var diceSeed uint64

var diceCmd = &cobra.Command{
	Use:   "dice",
	Short: "Synthesize per-VRF route tables",
	Long: `Cut the harness address blocks into per-VRF slices and write one
best path per subnet, with a random AS path, to ipv4.json and ipv6.json
in the tables directory.

Examples:
  newtroute dice
  newtroute dice -t /tmp/tables --seed 42`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var d *dicer.Dicer
		var err error
		if cmd.Flags().Changed("seed") {
			d, err = dicer.NewSeeded(harness, diceSeed)
		} else {
			d, err = dicer.New(harness, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
		}
		if err != nil {
			return err
		}

		tables, err := d.Dice()
		if err != nil {
			return err
		}
		dir := cfg.GetString(keyTables)
		if err := routetable.WriteDir(dir, tables); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Wrote %s and %s to %s\n\n", routetable.IPv4File, routetable.IPv6File, dir)
		printStats(out, tables)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show per-VRF route counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := routetable.ReadDir(cfg.GetString(keyTables))
		if err != nil {
			return err
		}
		printStats(cmd.OutOrStdout(), tables)
		return nil
	},
}

func init() {
	diceCmd.Flags().Uint64Var(&diceSeed, "seed", 0, "Seed for reproducible AS paths")
}

// printStats prints route, path and best-path counts per document and VRF.
func printStats(w io.Writer, tables *routetable.Tables) {
	t := cli.NewTableTo(w, "FAMILY", "VRF", "ROUTES", "PATHS", "BEST")
	for _, doc := range []struct {
		family string
		table  routetable.Table
	}{
		{"ipv4", tables.IPv4},
		{"ipv6", tables.IPv6},
	} {
		for _, s := range doc.table.Stats() {
			t.Row(doc.family, s.VRF, strconv.Itoa(s.Routes), strconv.Itoa(s.Paths), strconv.Itoa(s.Best))
		}
	}
	t.Flush()
}
