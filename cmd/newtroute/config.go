package main

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/newtron-network/newtroute/pkg/settings"
)

// Configuration keys. Each is settable by flag, by NEWTROUTE_<KEY> in the
// environment, or by the settings file.
const (
	keyHarness = "harness"
	keyTables  = "tables"
	keyGobgp   = "gobgp"
	keySSHUser = "ssh_user"
	keySSHKey  = "ssh_key_file"
)

// flagNames maps configuration keys to the flags that set them.
var flagNames = map[string]string{
	keyHarness: "harness",
	keyTables:  "tables",
	keyGobgp:   "gobgp",
	keySSHUser: "ssh-user",
	keySSHKey:  "ssh-key",
}

// bindConfig layers flags over environment variables over settings.
// Flags missing from flags are skipped.
func bindConfig(v *viper.Viper, flags *pflag.FlagSet, s *settings.Settings) error {
	v.SetEnvPrefix("NEWTROUTE")
	v.AutomaticEnv()

	v.SetDefault(keyHarness, s.HarnessFile)
	v.SetDefault(keyTables, s.GetTablesDir())
	v.SetDefault(keyGobgp, s.GobgpAddress)
	v.SetDefault(keySSHUser, s.SSHUser)
	v.SetDefault(keySSHKey, s.SSHKeyFile)

	for key, name := range flagNames {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}
