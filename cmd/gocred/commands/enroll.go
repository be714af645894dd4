package commands

import (
	"errors"
	"fmt"

	goCred "github.com/MrEthical07/goCred"
	"github.com/spf13/cobra"
)

func newEnrollCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Create a credential record",
		Long: `Create a credential record for --email. The password is prompted for
on a terminal, or read as one line from stdin with --password-stdin.
Existing records are never overwritten.`,
		Args: cobra.NoArgs,
		RunE: runEnroll,
	}
	cmd.Flags().String("email", "", "account email (required)")
	cmd.Flags().Bool("password-stdin", false, "read the password from stdin")
	cmd.Flags().Bool("per-record-salt", false, "write the record with a per-record salt")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func runEnroll(cmd *cobra.Command, _ []string) error {
	email, _ := cmd.Flags().GetString("email")

	pass, err := newSecretReader(cmd).readNew("Password: ")
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	acct, err := a.engine.Enroll(cmd.Context(), email, pass)
	if err != nil {
		if errors.Is(err, goCred.ErrAccountExists) {
			return fmt.Errorf("%s is already enrolled", email)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "enrolled %s uid=%s version=%d\n", acct.Email, acct.UID, acct.Version)
	return nil
}
