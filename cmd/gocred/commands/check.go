package commands

import (
	"context"
	"fmt"

	"github.com/MrEthical07/goCred/internal/backend"
	"github.com/spf13/cobra"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate configuration and print warnings",
		Long: `Validate configuration and print lint warnings.

With --ping the configured store is also contacted once, bounded by the
store request timeout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			engineCfg := cfg.Engine()
			warnings := engineCfg.Lint()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "configuration ok (backend=%s, prefix=%q)\n", cfg.Backend.Kind, cfg.Store.KeyPrefix)
			for _, w := range warnings {
				fmt.Fprintf(out, "%-5s %-22s %s\n", w.Severity, w.Code, w.Message)
			}

			if ping, _ := cmd.Flags().GetBool("ping"); !ping {
				return nil
			}

			be, err := backend.Open(cfg.Backend)
			if err != nil {
				return err
			}
			defer be.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Store.RequestTimeout)
			defer cancel()
			if err := be.Ping(ctx); err != nil {
				return err
			}
			fmt.Fprintf(out, "store ok (%s)\n", be.Kind)
			return nil
		},
	}
	cmd.Flags().Bool("per-record-salt", false, "check as if new records used a per-record salt")
	cmd.Flags().Bool("ping", false, "also contact the configured store")
	return cmd
}
