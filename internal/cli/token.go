package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MJE43/powerball-superposition/internal/api"
	"github.com/MJE43/powerball-superposition/internal/secrets"
)

func newTokenCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the API token stored in the OS keychain",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "set <token>",
			Short: "Store the token required by mutating API routes",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.tokenStore().Set(args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "token stored")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Report whether a token is stored",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				tok, err := a.tokenStore().Get()
				switch {
				case errors.Is(err, secrets.ErrNoToken):
					fmt.Fprintln(cmd.OutOrStdout(), "no token stored")
					return nil
				case err != nil:
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "token stored (%s)\n", mask(tok))
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove the stored token",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := a.tokenStore().Clear(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "token cleared")
				return nil
			},
		},
	)
	return cmd
}

func mask(tok string) string {
	if len(tok) <= 4 {
		return strings.Repeat("*", len(tok))
	}
	return tok[:2] + strings.Repeat("*", len(tok)-4) + tok[len(tok)-2:]
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			v := api.GetVersionInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "picker %s (commit %s, built %s)\n", v.EngineVersion, v.GitCommit, v.BuildTime)
		},
	}
}
