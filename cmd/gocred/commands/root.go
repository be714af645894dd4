// Package commands implements the gocred command-line interface.
package commands

import (
	"time"

	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Execute runs the root command with os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds a fresh command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gocred",
		Short: "gocred - credential verification service",
		Long: `gocred verifies email/password pairs against scrypt-hashed records
kept in Redis or etcd.

Configuration is read from gocred.yaml (current directory or /etc/gocred),
GOCRED_* environment variables and flags, in increasing precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "config file (default: ./gocred.yaml or /etc/gocred/gocred.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("backend", "redis", "credential store: redis or etcd")
	pf.StringSlice("redis-addr", nil, "redis address, repeatable")
	pf.StringSlice("etcd-endpoint", nil, "etcd endpoint, repeatable")
	pf.String("key-prefix", "users/", "store key prefix for credential records")
	pf.Duration("store-timeout", 3*time.Second, "timeout for a single store request")

	root.AddCommand(
		newServeCmd(),
		newEnrollCmd(),
		newVerifyCmd(),
		newPasswdCmd(),
		newCheckCmd(),
		newVersionCmd(),
	)
	root.CompletionOptions.DisableDefaultCmd = true

	return root
}
