package main

import (
	"github.com/spf13/cobra"

	"github.com/newtron-network/newtroute/pkg/runner"
)

var (
	sshHost     string
	sshPort     int
	sshUser     string
	sshKey      string
	sshPassword string
)

// addSSHFlags registers the flags selecting where commands run.
func addSSHFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sshHost, "ssh", "", "Run commands on this host over SSH (default: locally)")
	cmd.Flags().IntVar(&sshPort, "ssh-port", 22, "SSH port")
	cmd.Flags().StringVar(&sshUser, "ssh-user", "", "SSH user")
	cmd.Flags().StringVar(&sshKey, "ssh-key", "", "SSH private key file")
	cmd.Flags().StringVar(&sshPassword, "ssh-password", "", "SSH password (prompted when neither key nor password is given)")
}

// commandRunner returns the runner for executed commands and a function
// releasing it.
func commandRunner() (runner.Runner, func(), error) {
	if sshHost == "" {
		return runner.Local{}, func() {}, nil
	}
	s, err := runner.DialSSH(runner.SSHConfig{
		Host:           sshHost,
		Port:           sshPort,
		User:           cfg.GetString(keySSHUser),
		KeyFile:        cfg.GetString(keySSHKey),
		Password:       sshPassword,
		PromptPassword: true,
	})
	if err != nil {
		return nil, nil, err
	}
	return s, func() { s.Close() }, nil
}
