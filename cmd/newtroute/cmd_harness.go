package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/newtron-network/newtroute/pkg/spec"
)

var harnessCmd = &cobra.Command{
	Use:   "harness",
	Short: "Show or create harness files",
}

var harnessShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective harness",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := harness.Marshal()
		if err != nil {
			return err
		}
		if f := cfg.GetString(keyHarness); f != "" {
			fmt.Printf("# %s\n", f)
		} else {
			fmt.Println("# built-in defaults")
		}
		os.Stdout.Write(data)
		return nil
	},
}

var harnessInitCmd = &cobra.Command{
	Use:   "init <file>",
	Short: "Write the built-in harness to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		data, err := spec.Default().Marshal()
		if err != nil {
			return err
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	harnessCmd.AddCommand(harnessShowCmd, harnessInitCmd)
}
