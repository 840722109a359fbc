package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/msomdec/thanku/internal/config"
	"github.com/msomdec/thanku/internal/service"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(newUserCreateCmd())
	cmd.AddCommand(newUserListCmd())
	cmd.AddCommand(newUserPasswdCmd())
	cmd.AddCommand(newUserDeleteCmd())
	return cmd
}

// withAuth loads config, opens the database and hands an AuthService to fn.
func withAuth(cmd *cobra.Command, fn func(auth *service.AuthService) error) error {
	cfg, err := config.New()
	if err != nil {
		return err
	}

	db, err := openDB(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	auth, err := newAuthService(cfg, db)
	if err != nil {
		return err
	}
	return fn(auth)
}

// passwordOrPrompt returns password, or reads one from the terminal without
// echo when it is empty.
func passwordOrPrompt(cmd *cobra.Command, password string) (string, error) {
	if password != "" {
		return password, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Enter password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

func newUserCreateCmd() *cobra.Command {
	var username, name, imageURL, password string

	c := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordOrPrompt(cmd, password)
			if err != nil {
				return err
			}
			return withAuth(cmd, func(auth *service.AuthService) error {
				user, err := auth.CreateUser(cmd.Context(), username, name, imageURL, pw)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created user %q (id %d)\n", user.Username, user.ID)
				return nil
			})
		},
	}

	c.Flags().StringVar(&username, "username", "", "login name")
	c.Flags().StringVar(&name, "name", "", "display name")
	c.Flags().StringVar(&imageURL, "image-url", "", "avatar URL")
	c.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	_ = c.MarkFlagRequired("username")
	return c
}

func newUserListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAuth(cmd, func(auth *service.AuthService) error {
				users, err := auth.ListUsers(cmd.Context())
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tUSERNAME\tNAME")
				for _, u := range users {
					fmt.Fprintf(tw, "%d\t%s\t%s\n", u.ID, u.Username, u.Name)
				}
				return tw.Flush()
			})
		},
	}
}

func newUserPasswdCmd() *cobra.Command {
	var username, password string

	c := &cobra.Command{
		Use:   "passwd",
		Short: "Change a user's password",
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordOrPrompt(cmd, password)
			if err != nil {
				return err
			}
			return withAuth(cmd, func(auth *service.AuthService) error {
				user, err := auth.GetUserByUsername(cmd.Context(), username)
				if err != nil {
					return fmt.Errorf("find user %q: %w", username, err)
				}
				if err := auth.SetPassword(cmd.Context(), user.ID, pw); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated password for %q\n", user.Username)
				return nil
			})
		},
	}

	c.Flags().StringVar(&username, "username", "", "login name")
	c.Flags().StringVar(&password, "password", "", "new password (prompted when omitted)")
	_ = c.MarkFlagRequired("username")
	return c
}

func newUserDeleteCmd() *cobra.Command {
	var username string

	c := &cobra.Command{
		Use:   "delete",
		Short: "Delete a user and every credit they gave or received",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAuth(cmd, func(auth *service.AuthService) error {
				user, err := auth.GetUserByUsername(cmd.Context(), username)
				if err != nil {
					return fmt.Errorf("find user %q: %w", username, err)
				}
				if err := auth.DeleteUser(cmd.Context(), user.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted user %q\n", user.Username)
				return nil
			})
		},
	}

	c.Flags().StringVar(&username, "username", "", "login name")
	_ = c.MarkFlagRequired("username")
	return c
}
