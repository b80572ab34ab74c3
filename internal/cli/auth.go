package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dineshrk2005/medical-records-and-appoinment-tracker/internal/model"
)

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and keep the session",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	cmd.RunE = a.run(func(ctx context.Context, _ *cobra.Command, _ []string) error {
		u, err := a.mgr.Login(ctx, email, password)
		if err != nil {
			return err
		}
		return a.signedIn(ctx, u)
	})
	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "full name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	cmd.RunE = a.run(func(ctx context.Context, _ *cobra.Command, _ []string) error {
		u, err := a.mgr.Register(ctx, name, email, password)
		if err != nil {
			return err
		}
		return a.signedIn(ctx, u)
	})
	return cmd
}

// signedIn keeps the server token next to the session record.
func (a *app) signedIn(ctx context.Context, u model.User) error {
	if a.client != nil && a.level != nil {
		if err := a.level.SaveToken(ctx, a.client.Token()); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", u.Name, u.Email)
	return nil
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the current session",
		Args:  cobra.NoArgs,
		RunE: a.run(func(ctx context.Context, _ *cobra.Command, _ []string) error {
			if err := a.mgr.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		}),
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: a.run(func(context.Context, *cobra.Command, []string) error {
			st := a.mgr.Status()
			if !st.Authenticated() {
				fmt.Fprintln(a.out, "Not logged in")
				return nil
			}
			fmt.Fprintf(a.out, "%s <%s> (id %s)\n", st.User.Name, st.User.Email, st.User.ID)
			return nil
		}),
	}
}
