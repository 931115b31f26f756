package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/newtron-network/newtroute/pkg/audit"
	"github.com/newtron-network/newtroute/pkg/cli"
	"github.com/newtron-network/newtroute/pkg/provision"
	"github.com/newtron-network/newtroute/pkg/routetable"
	"github.com/newtron-network/newtroute/pkg/runner"
	"github.com/newtron-network/newtroute/pkg/util"
)

var provisionBackend string

var provisionCmd = &cobra.Command{
	Use:   "provision <node-addr>",
	Short: "Build VRF, VLAN, VXLAN and bridge interfaces on a node",
	Long: `Assign <node-addr> to the loopback, then for every non-default VRF in
the route tables create a VLAN sub-interface enslaved to a VRF device, the
node-side link addresses, and a VXLAN interface bridged into the VRF with
<node-addr> as its local endpoint.

Backends:
  ip       iproute2 commands, locally or over --ssh (default)
  netlink  kernel netlink calls on the local node

Preview always shows the equivalent ip commands.

Examples:
  newtroute provision 10.0.0.5                 # preview
  newtroute provision 10.0.0.5 -x
  newtroute provision 10.0.0.5 -x --ssh node1 --ssh-user root
  newtroute provision 10.0.0.5 -x --backend netlink`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		nodeAddr := args[0]
		out := cmd.OutOrStdout()

		tables, err := routetable.ReadDir(cfg.GetString(keyTables))
		if err != nil {
			return err
		}

		var backend provision.Backend
		switch {
		case !executeMode:
			backend = provision.NewIPCommand(runner.NewPreview(out))
		case provisionBackend == "netlink":
			if sshHost != "" {
				return fmt.Errorf("--backend netlink works on the local node only; use --backend ip with --ssh")
			}
			backend = provision.NewNetlink()
		case provisionBackend == "ip":
			r, closeFn, err := commandRunner()
			if err != nil {
				return err
			}
			defer closeFn()
			if journal := openAudit(); journal != nil {
				defer journal.Close()
				r = audit.NewRunner(r, journal, commandHost(), "provision")
			}
			backend = provision.NewIPCommand(r)
		default:
			return fmt.Errorf("unknown backend %q (valid: ip, netlink)", provisionBackend)
		}

		target := "local node"
		if sshHost != "" {
			target = sshHost
		}
		fmt.Fprintf(out, "Provision %s on %s [%s]\n\n", nodeAddr, target, cli.Mode(executeMode))

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		log := util.WithOperation("provision").WithFields(map[string]interface{}{"node": nodeAddr, "backend": provisionBackend})
		plan, err := provision.New(harness, backend).Run(ctx, tables, nodeAddr)
		if plan != nil {
			fmt.Fprintln(out)
			t := cli.NewTableTo(out, "VRF", "VLAN", "VNI", "INTERFACE", "VXLAN", "BRIDGE")
			for _, v := range plan.VRFs {
				t.Row(v.VRF, strconv.Itoa(v.VLAN), strconv.Itoa(v.VNI), v.Interface, v.VXLAN, v.Bridge)
			}
			t.Flush()
		}
		if err != nil {
			fmt.Fprintln(out, cli.Red("FAILED"))
			return err
		}
		log.Infof("built interfaces for %d VRFs", len(plan.VRFs))
		return nil
	},
}

func init() {
	provisionCmd.Flags().StringVar(&provisionBackend, "backend", "ip", "Interface backend: ip or netlink")
}
