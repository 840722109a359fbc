package cli

import (
	"fmt"

	"github.com/msomdec/thanku/internal/service"
	"github.com/spf13/cobra"
)

func newTokenCmd() *cobra.Command {
	var username string

	c := &cobra.Command{
		Use:   "token",
		Short: "Print a fresh token for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAuth(cmd, func(auth *service.AuthService) error {
				user, err := auth.GetUserByUsername(cmd.Context(), username)
				if err != nil {
					return fmt.Errorf("find user %q: %w", username, err)
				}
				token, err := auth.IssueToken(user)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}

	c.Flags().StringVar(&username, "username", "", "login name")
	_ = c.MarkFlagRequired("username")
	return c
}
