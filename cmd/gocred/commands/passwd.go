package commands

import (
	"errors"
	"fmt"

	goCred "github.com/MrEthical07/goCred"
	"github.com/spf13/cobra"
)

func newPasswdCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the password of an existing record",
		Long: `Change the password for --email. The current password is read first,
then the new one. With --password-stdin both are read as consecutive lines.`,
		Args: cobra.NoArgs,
		RunE: runPasswd,
	}
	cmd.Flags().String("email", "", "account email (required)")
	cmd.Flags().Bool("password-stdin", false, "read both passwords from stdin")
	cmd.Flags().Bool("per-record-salt", false, "rewrite the record with a per-record salt")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func runPasswd(cmd *cobra.Command, _ []string) error {
	email, _ := cmd.Flags().GetString("email")

	secrets := newSecretReader(cmd)
	oldPass, err := secrets.read("Current password: ")
	if err != nil {
		return err
	}
	newPass, err := secrets.readNew("New password: ")
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	err = a.engine.ChangePassword(cmd.Context(), email, oldPass, newPass)
	switch {
	case err == nil:
	case errors.Is(err, goCred.ErrInvalidCredentials):
		return errRejected
	case errors.Is(err, goCred.ErrStoreConflict):
		return errors.New("record changed concurrently, try again")
	default:
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "password changed for %s\n", email)
	return nil
}
