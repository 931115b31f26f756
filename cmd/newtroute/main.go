// Newtroute - BGP test harness fixtures for gobgp
//
// Builds the route tables and interfaces a gobgp test harness needs:
//
//	newtroute dice                      # synthesize ipv4.json / ipv6.json
//	newtroute show                      # per-VRF route counts
//	newtroute load [-x]                 # inject paths into gobgp, build VLAN links
//	newtroute provision <addr> [-x]     # build VRF/VLAN/VXLAN/bridge on a node
//
// Commands that change a daemon or a node preview by default; -x executes.
//
// Configuration precedence: flag > NEWTROUTE_* environment variable >
// ~/.newtroute/settings.json > harness file > built-in defaults.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/newtron-network/newtroute/pkg/settings"
	"github.com/newtron-network/newtroute/pkg/spec"
	"github.com/newtron-network/newtroute/pkg/util"
	"github.com/newtron-network/newtroute/pkg/version"
)

var (
	// Global option flags
	harnessFile string
	tablesDir   string
	verbose     bool
	jsonLogs    bool

	// Local to write commands
	executeMode bool

	// Global state
	cfg          = viper.New()
	userSettings *settings.Settings
	harness      *spec.Harness
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:               "newtroute",
	Short:             "BGP test harness fixtures for gobgp",
	SilenceUsage:      true,
	SilenceErrors:     true,
	CompletionOptions: cobra.CompletionOptions{HiddenDefaultCmd: true},
	Long: `Newtroute synthesizes per-VRF route tables, loads them into a gobgp
daemon, and provisions the matching interfaces on a test node.

Write commands preview by default; use -x to execute.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		util.SetLogOutput(cmd.ErrOrStderr())
		if verbose {
			util.SetLogLevel("debug")
		} else {
			util.SetLogLevel("warn")
		}
		if jsonLogs {
			util.SetJSONFormat()
		}

		if isMetaCmd(cmd) {
			return nil
		}

		var err error
		userSettings, err = settings.Load()
		if err != nil {
			util.Warnf("Could not load settings: %v", err)
			userSettings = &settings.Settings{}
		}

		if err := bindConfig(cfg, cmd.Flags(), userSettings); err != nil {
			return err
		}

		harness, err = spec.Load(cfg.GetString(keyHarness))
		if err != nil {
			return fmt.Errorf("loading harness: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&harnessFile, "harness", "H", "", "Harness file (default: built-in harness)")
	rootCmd.PersistentFlags().StringVarP(&tablesDir, "tables", "t", "", "Directory holding ipv4.json and ipv6.json")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "log-json", false, "Log in JSON format")

	for _, cmd := range []*cobra.Command{loadCmd, provisionCmd} {
		addWriteFlags(cmd)
	}
	addSSHFlags(loadCmd)
	addSSHFlags(provisionCmd)

	rootCmd.AddGroup(
		&cobra.Group{ID: "tables", Title: "Route Tables:"},
		&cobra.Group{ID: "harness", Title: "Harness Operations:"},
		&cobra.Group{ID: "meta", Title: "Configuration & Meta:"},
	)

	for _, cmd := range []*cobra.Command{diceCmd, showCmd} {
		cmd.GroupID = "tables"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{loadCmd, provisionCmd} {
		cmd.GroupID = "harness"
		rootCmd.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{harnessCmd, auditCmd, settingsCmd, versionCmd} {
		cmd.GroupID = "meta"
		rootCmd.AddCommand(cmd)
	}
}

// addWriteFlags registers -x on commands that change a daemon or node.
func addWriteFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&executeMode, "execute", "x", false, "Execute changes (default is preview)")
}

// isMetaCmd reports whether cmd runs without a harness.
func isMetaCmd(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "settings", "audit", "version", "help", "completion":
			return true
		}
	}
	return false
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion("newtroute")
	},
}

func printVersion(tool string) {
	if version.Version == "dev" {
		fmt.Printf("%s dev build (use 'make build' for version info)\n", tool)
	} else {
		fmt.Printf("%s %s\n", tool, version.Info())
	}
}
