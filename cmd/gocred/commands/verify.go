package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errRejected = errors.New("credentials rejected")

func newVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a password against the stored record",
		Long: `Check a password for --email. Prints "accepted" or "rejected (<reason>)"
and exits non-zero on rejection.`,
		Args: cobra.NoArgs,
		RunE: runVerify,
	}
	cmd.Flags().String("email", "", "account email (required)")
	cmd.Flags().Bool("password-stdin", false, "read the password from stdin")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func runVerify(cmd *cobra.Command, _ []string) error {
	email, _ := cmd.Flags().GetString("email")

	pass, err := newSecretReader(cmd).read("Password: ")
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.engine.Verify(cmd.Context(), email, pass)
	if err != nil {
		return err
	}
	if !res.Accepted {
		fmt.Fprintf(cmd.OutOrStdout(), "rejected (%s)\n", res.Reason)
		return errRejected
	}

	fmt.Fprintln(cmd.OutOrStdout(), "accepted")
	return nil
}
