// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/session"
)

func (a *app) loginCommand() *cobra.Command {
	var (
		token string
		dev   bool
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the credential",
		Long: `Sign in with a bearer token issued by the backend's OAuth flow, or with
--dev against a backend running its development profile.

Examples:
  recipectl login --token eyJhbGciOi...
  recipectl login --dev`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds := session.Credentials{Token: token}
			if dev {
				resp, err := a.api.DevToken(cmd.Context())
				if err != nil {
					return failure("development login", err)
				}
				creds = session.Credentials{Token: resp.Token, Email: resp.Email, Role: resp.Role}
			}

			if err := a.session.LoginWith(cmd.Context(), creds); err != nil {
				if errors.Is(err, apiclient.ErrUnauthorized) {
					return errors.New("the backend rejected the token")
				}
				return failure("sign-in", err)
			}
			user := a.session.User()
			return a.render(user, func() error {
				a.printer.Success("Signed in as %s (%s)", user.Name, user.Role)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "bearer token")
	cmd.Flags().BoolVar(&dev, "dev", false, "use the backend's development login")
	cmd.MarkFlagsOneRequired("token", "dev")
	cmd.MarkFlagsMutuallyExclusive("token", "dev")
	return cmd
}

func (a *app) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(cmd.Context()); err != nil {
				return err
			}
			if err := a.query.Clear(cmd.Context()); err != nil {
				return fmt.Errorf("clearing cache: %w", err)
			}
			a.printer.Success("Signed out")
			return nil
		},
	}
}

func (a *app) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			return a.render(user, func() error {
				a.printer.Header(user.Name)
				a.printer.Field("Email", user.Email)
				a.printer.Field("Role", string(user.Role))
				a.printer.Field("Member since", formatDate(user.CreatedAt))
				return nil
			})
		},
	}
}

func formatDate(t model.LocalTime) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateLayout)
}

func formatTime(t model.LocalTime) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
