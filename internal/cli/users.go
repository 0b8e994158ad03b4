// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/output"
	"github.com/olegiv/recipe-console/internal/permission"
	"github.com/olegiv/recipe-console/internal/query"
)

func (a *app) usersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"members"},
		Short:   "Manage members (producers only)",
	}
	cmd.AddCommand(a.usersListCommand(), a.usersSetRoleCommand())
	return cmd
}

// producer returns the signed-in member if they may manage members.
func (a *app) producer(cmd *cobra.Command) (*model.User, error) {
	user, err := a.signedIn(cmd.Context())
	if err != nil {
		return nil, err
	}
	if err := allowed(permission.CanManageUsers(user.Role), user.Role, "manage members"); err != nil {
		return nil, err
	}
	return user, nil
}

func (a *app) usersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List members and their roles",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			me, err := a.producer(cmd)
			if err != nil {
				return err
			}
			res := query.Users(cmd.Context(), a.query, a.api)
			if res.Err != nil {
				return failure("listing members", res.Err)
			}
			return a.render(res.Data, func() error {
				table := output.NewTable(a.printer.Out(), "ID", "NAME", "EMAIL", "ROLE", "")
				for _, u := range res.Data {
					note := ""
					if u.ID == me.ID {
						note = a.printer.Dim("(you)")
					} else if !u.Enabled {
						note = a.printer.Dim("disabled")
					}
					table.AddRow(strconv.FormatInt(u.ID, 10), u.Name, u.Email, string(u.Role), note)
				}
				return table.Render()
			})
		},
	}
}

func (a *app) usersSetRoleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set-role <id> <role>",
		Short: "Change a member's role",
		Long: `Change another member's role to CHEF, SERVICE, PURCHASER or PRODUCER.
Your own role cannot be changed.

Example:
  recipectl users set-role 3 SERVICE`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "member")
			if err != nil {
				return err
			}
			req := model.UpdateRoleRequest{Role: model.Role(strings.ToUpper(args[1]))}
			if err := a.forms.Validate(req); err != nil {
				return err
			}
			me, err := a.producer(cmd)
			if err != nil {
				return err
			}

			res := query.Users(cmd.Context(), a.query, a.api)
			if res.Err != nil {
				return failure("listing members", res.Err)
			}
			var target *model.User
			for i := range res.Data {
				if res.Data[i].ID == id {
					target = &res.Data[i]
					break
				}
			}
			if target == nil {
				return fmt.Errorf("member %d not found", id)
			}
			if !permission.CanChangeRole(me, target) {
				return errors.New("you cannot change your own role")
			}
			if target.Role == req.Role {
				a.printer.Info("%s is already %s", target.Name, target.Role)
				return nil
			}

			updated, err := query.UpdateUserRole(cmd.Context(), a.query, a.api, id, req)
			if err != nil {
				return failure("changing role", err)
			}
			return a.render(updated, func() error {
				a.printer.Success("%s is now %s", updated.Name, updated.Role)
				return nil
			})
		},
	}
}
