package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/newtron-network/newtroute/pkg/audit"
	"github.com/newtron-network/newtroute/pkg/cli"
	"github.com/newtron-network/newtroute/pkg/util"
)

var (
	auditHost      string
	auditOperation string
	auditFailures  bool
	auditLimit     int
	auditLast      string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the journal of executed changes",
	Long: `Show the commands and paths newtroute executed, from
~/.newtroute/audit.log. Only -x runs are journaled.

Examples:
  newtroute audit --last 1h
  newtroute audit --host node1 --failures`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := audit.NewFileLogger(audit.DefaultPath(), audit.RotationConfig{})
		if err != nil {
			return err
		}
		defer logger.Close()

		filter := audit.Filter{
			Host:        auditHost,
			Operation:   auditOperation,
			FailureOnly: auditFailures,
			Limit:       auditLimit,
		}
		if auditLast != "" {
			d, err := time.ParseDuration(auditLast)
			if err != nil {
				return fmt.Errorf("invalid --last: %w", err)
			}
			filter.StartTime = time.Now().Add(-d)
		}

		events, err := logger.Query(filter)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("No audit events found.")
			return nil
		}

		t := cli.NewTable("TIME", "HOST", "OP", "KIND", "TARGET", "RESULT")
		for _, e := range events {
			result := cli.Green("ok")
			if !e.Success {
				result = cli.Red(e.Error)
			}
			t.Row(e.Timestamp.Format("2006-01-02 15:04:05"), e.Host, e.Operation, string(e.Kind), e.Target, result)
		}
		t.Flush()
		return nil
	},
}

func init() {
	auditCmd.Flags().StringVar(&auditHost, "host", "", "Filter by host")
	auditCmd.Flags().StringVar(&auditOperation, "operation", "", "Filter by operation (load, provision)")
	auditCmd.Flags().BoolVar(&auditFailures, "failures", false, "Show only failed changes")
	auditCmd.Flags().IntVar(&auditLimit, "limit", 0, "Maximum number of events")
	auditCmd.Flags().StringVar(&auditLast, "last", "", "Show events from the last duration (e.g. 1h)")
}

// openAudit opens the change journal. Executed runs proceed unjournaled
// when it cannot be opened.
func openAudit() audit.Logger {
	logger, err := audit.NewFileLogger(audit.DefaultPath(), audit.RotationConfig{
		MaxSize:    10 * 1024 * 1024, // 10MB
		MaxBackups: 10,
	})
	if err != nil {
		util.Warnf("Could not initialize audit logging: %v", err)
		return nil
	}
	return logger
}

// commandHost names where executed commands run.
func commandHost() string {
	if sshHost != "" {
		return sshHost
	}
	return "localhost"
}
