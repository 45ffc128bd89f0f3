package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/Joseda-hg/supertask/internal/model"
	"github.com/Joseda-hg/supertask/internal/session"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session tokens",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			if username == "" {
				return errors.New("username is required")
			}
			if password == "" {
				password = stdinLine(cmd.InOrStdin())
			}
			if err := rt.session.Login(ctx, username, password); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", displayName(rt.session.User()))
			return nil
		}),
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (read from stdin when empty)")
	return cmd
}

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var input model.RegisterInput

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			if input.Username == "" || input.Email == "" {
				return errors.New("username and email are required")
			}
			if input.Password == "" {
				input.Password = stdinLine(cmd.InOrStdin())
			}
			if input.PasswordConfirm == "" {
				input.PasswordConfirm = input.Password
			}
			if err := rt.session.Register(ctx, input); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s\n", displayName(rt.session.User()))
			return nil
		}),
	}

	flags := cmd.Flags()
	flags.StringVarP(&input.Username, "username", "u", "", "username")
	flags.StringVarP(&input.Email, "email", "e", "", "email")
	flags.StringVarP(&input.Password, "password", "p", "", "password (read from stdin when empty)")
	flags.StringVar(&input.PasswordConfirm, "confirm", "", "password confirmation (defaults to password)")
	flags.StringVar(&input.FirstName, "first-name", "", "first name")
	flags.StringVar(&input.LastName, "last-name", "", "last name")
	return cmd
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the refresh token and clear the stored session",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			// Local state is cleared even when the server call fails.
			if err := rt.session.Logout(ctx); err != nil {
				rt.log.WithError(err).Warn("server logout failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		}),
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			rt.session.Init(ctx)
			user := rt.session.User()
			if user == nil {
				return errors.New("not logged in")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n", displayName(user), user.Username)
			if user.Email != "" {
				fmt.Fprintln(out, user.Email)
			}
			return nil
		}),
	}
}

func newPasswdCmd(opts *rootOptions) *cobra.Command {
	var change model.PasswordChange

	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the account password",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			if change.OldPassword == "" || change.NewPassword == "" {
				return errors.New("old and new passwords are required")
			}
			if change.NewPasswordConfirm == "" {
				change.NewPasswordConfirm = change.NewPassword
			}
			msg, err := rt.session.Client().Auth.ChangePassword(ctx, change)
			if err != nil {
				return err
			}
			if msg.Message == "" {
				msg.Message = "password changed"
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg.Message)
			return nil
		}),
	}

	flags := cmd.Flags()
	flags.StringVar(&change.OldPassword, "old", "", "current password")
	flags.StringVar(&change.NewPassword, "new", "", "new password")
	flags.StringVar(&change.NewPasswordConfirm, "confirm", "", "new password confirmation (defaults to new)")
	return cmd
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the stored session tokens and their expiry",
		Args:  cobra.NoArgs,
		RunE: withRuntime(opts, func(ctx context.Context, cmd *cobra.Command, rt *runtime, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "api:  %s\n", rt.session.Client().BaseURL())
			fmt.Fprintf(out, "db:   %s\n", rt.cfg.DBPath)

			entries, err := rt.store.ListEntries(ctx)
			if err != nil {
				return fmt.Errorf("list stored values: %w", err)
			}
			stored := map[string]time.Time{}
			for _, entry := range entries {
				stored[entry.Key] = entry.UpdatedAt
			}

			tokens := rt.session.Client().Tokens()
			for _, kind := range []session.Kind{session.AccessToken, session.RefreshToken} {
				token, err := tokens.Get(kind)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %s\n", kind, describeToken(token, stored[string(kind)], time.Now()))
			}
			return nil
		}),
	}
}

// describeToken reads the exp claim without verifying the signature; the
// server is the only party that can do that.
func describeToken(token string, storedAt, now time.Time) string {
	if token == "" {
		return "missing"
	}

	parts := []string{"present"}
	if !storedAt.IsZero() {
		parts = append(parts, "stored "+storedAt.Local().Format("2006-01-02 15:04"))
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return strings.Join(append(parts, "unreadable"), ", ")
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return strings.Join(parts, ", ")
	}
	if exp.Time.Before(now) {
		parts = append(parts, "expired "+exp.Time.Local().Format("2006-01-02 15:04"))
	} else {
		parts = append(parts, "expires in "+exp.Time.Sub(now).Round(time.Minute).String())
	}
	return strings.Join(parts, ", ")
}

func displayName(user *model.User) string {
	if user == nil {
		return ""
	}
	name := strings.TrimSpace(user.FirstName + " " + user.LastName)
	if name == "" {
		return user.Username
	}
	return name
}
