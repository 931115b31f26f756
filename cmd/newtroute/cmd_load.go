package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/newtron-network/newtroute/pkg/audit"
	"github.com/newtron-network/newtroute/pkg/cli"
	"github.com/newtron-network/newtroute/pkg/gobgp"
	"github.com/newtron-network/newtroute/pkg/loader"
	"github.com/newtron-network/newtroute/pkg/routetable"
	"github.com/newtron-network/newtroute/pkg/runner"
	"github.com/newtron-network/newtroute/pkg/util"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load route tables into gobgp",
	Long: `Inject every best path whose AS path starts with the sentinel AS into
gobgp, one AddPath call per path, then create a VLAN sub-interface and an
IPv4/IPv6 BGP neighbor per VRF on the daemon host.

gobgp and ip commands run locally, or on the daemon host with --ssh.

Examples:
  newtroute load                          # preview
  newtroute load -x --gobgp 10.0.0.1:50051 --ssh 10.0.0.1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		tables, err := routetable.ReadDir(cfg.GetString(keyTables))
		if err != nil {
			return err
		}

		addr := cfg.GetString(keyGobgp)
		if addr == "" {
			addr = harness.BGP.Address
		}
		fmt.Fprintf(out, "Load %d VRFs into gobgp at %s [%s]\n\n", len(tables.VRFs()), addr, cli.Mode(executeMode))

		var paths gobgp.PathAdder
		var run runner.Runner
		if executeMode {
			client, err := gobgp.Dial(addr, harness.BGP.Timeout)
			if err != nil {
				return err
			}
			defer client.Close()

			r, closeFn, err := commandRunner()
			if err != nil {
				return err
			}
			defer closeFn()

			paths, run = client, r
			if journal := openAudit(); journal != nil {
				defer journal.Close()
				paths, run = journalLoad(journal, paths, run, addr)
			}
		} else {
			paths = &gobgp.Preview{Out: out}
			run = runner.NewPreview(out)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		log := util.WithOperation("load").WithField("gobgp", addr)
		sum, err := loader.New(harness, paths, run).Run(ctx, tables)
		if sum != nil {
			printLoadSummary(out, sum)
		}
		if err != nil {
			fmt.Fprintln(out, cli.Red("FAILED"))
			return err
		}
		log.Infof("added %d paths to %d VRFs", sum.Added, len(sum.VRFs))
		return nil
	},
}

func init() {
	loadCmd.Flags().String("gobgp", "", "gobgp gRPC address (default from harness)")
}

// journalLoad wraps a load's path adder and command runner so every
// executed change lands in journal.
func journalLoad(journal audit.Logger, paths gobgp.PathAdder, run runner.Runner, addr string) (gobgp.PathAdder, runner.Runner) {
	return audit.NewPathAdder(paths, journal, addr, "load"),
		audit.NewRunner(run, journal, commandHost(), "load")
}

func printLoadSummary(w io.Writer, sum *loader.Summary) {
	fmt.Fprintln(w)
	t := cli.NewTableTo(w, "VRF", "VLAN")
	vlans := make([]int, 0, len(sum.VRFs))
	for _, a := range sum.VRFs {
		t.Row(a.VRF, strconv.Itoa(a.VLAN))
		vlans = append(vlans, a.VLAN)
	}
	t.Flush()

	fmt.Fprintln(w)
	if len(vlans) > 0 {
		fmt.Fprintf(w, "%s %s\n", cli.DotPad("vlans", 24), util.CompactRange(vlans))
	}
	fmt.Fprintf(w, "%s %d\n", cli.DotPad("paths added", 24), sum.Added)
	reasons := make([]string, 0, len(sum.Skipped))
	for r := range sum.Skipped {
		reasons = append(reasons, string(r))
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		fmt.Fprintf(w, "%s %d\n", cli.DotPad("skipped "+r, 24), sum.Skipped[loader.SkipReason(r)])
	}
}
