// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/output"
	"github.com/olegiv/recipe-console/internal/permission"
	"github.com/olegiv/recipe-console/internal/query"
)

func (a *app) recipesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recipes",
		Aliases: []string{"recipe"},
		Short:   "List, inspect and manage recipes",
	}
	cmd.AddCommand(
		a.recipesListCommand(),
		a.recipesGetCommand(),
		a.recipesStatusCommand(),
		a.recipesDeleteCommand(),
	)
	return cmd
}

func (a *app) recipesListCommand() *cobra.Command {
	var (
		status, category string
		page, size       int
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List recipes",
		Long: `List recipes, newest first.

Examples:
  recipectl recipes list
  recipectl recipes list --status PUBLISHED --category Soup
  recipectl recipes list --page 2 --size 50`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.signedIn(cmd.Context()); err != nil {
				return err
			}
			params := apiclient.ListRecipesParams{
				Category:   category,
				PageParams: pageParams(page, size),
			}
			if status != "" {
				s := model.RecipeStatus(strings.ToUpper(status))
				if !s.Valid() {
					return fmt.Errorf("unknown status %q", status)
				}
				params.Status = s
			}

			res := query.Recipes(cmd.Context(), a.query, a.api, params)
			if res.Err != nil {
				return failure("listing recipes", res.Err)
			}
			return a.render(res.Data, func() error {
				if len(res.Data.Content) == 0 {
					a.printer.Info("No recipes found.")
					return nil
				}
				table := output.NewTable(a.printer.Out(), "ID", "TITLE", "CATEGORY", "STATUS", "AUTHOR", "UPDATED")
				for _, r := range res.Data.Content {
					table.AddRow(
						strconv.FormatInt(r.ID, 10),
						a.printer.Bold(r.Title),
						deref(r.Category),
						a.printer.StatusBadge(r.Status),
						r.CreatedByName,
						formatDate(r.UpdatedAt),
					)
				}
				if err := table.Render(); err != nil {
					return err
				}
				a.pageFooter(res.Data.Number, res.Data.TotalPages, res.Data.TotalElements)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "filter by status (DRAFT, PUBLISHED, ARCHIVED)")
	cmd.Flags().StringVar(&category, "category", "", "filter by category")
	pageFlags(cmd, &page, &size)
	return cmd
}

func (a *app) recipesGetCommand() *cobra.Command {
	var history bool
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "recipe")
			if err != nil {
				return err
			}
			user, err := a.signedIn(cmd.Context())
			if err != nil {
				return err
			}

			res := query.Recipe(cmd.Context(), a.query, a.api, id)
			if res.Err != nil {
				return failure("loading recipe", res.Err)
			}
			r := res.Data

			var changes []model.RecipeHistory
			if history {
				h := query.RecipeHistory(cmd.Context(), a.query, a.api, id)
				if h.Err != nil {
					return failure("loading history", h.Err)
				}
				changes = h.Data
			}

			if a.jsonOut {
				if history {
					return a.printer.JSON(struct {
						*model.Recipe
						History []model.RecipeHistory `json:"history"`
					}{r, changes})
				}
				return a.printer.JSON(r)
			}
			return a.printRecipe(user, r, changes)
		},
	}
	cmd.Flags().BoolVar(&history, "history", false, "include the change history")
	return cmd
}

func (a *app) printRecipe(user *model.User, r *model.Recipe, changes []model.RecipeHistory) error {
	p := a.printer
	p.Header(fmt.Sprintf("#%d %s", r.ID, r.Title))
	p.Field("Status", p.StatusBadge(r.Status))
	p.Field("Category", deref(r.Category))
	if r.Servings != nil {
		p.Field("Servings", strconv.Itoa(*r.Servings))
	}
	p.Field("Author", r.CreatedBy.Name)
	p.Field("Updated", formatTime(r.UpdatedAt))
	p.Field("Description", deref(r.Description))
	p.Field("Concept", deref(r.Concept))

	if len(r.Ingredients) > 0 {
		p.Header("Ingredients")
		table := output.NewTable(p.Out(), "INGREDIENT", "QUANTITY", "NOTE")
		for _, ing := range r.Ingredients {
			qty := ""
			if ing.Quantity != nil {
				qty = strings.TrimSpace(strconv.FormatFloat(*ing.Quantity, 'f', -1, 64) + " " + deref(ing.Unit))
			}
			table.AddRow(ing.IngredientName, qty, deref(ing.PreparationNote))
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if len(r.CookingSteps) > 0 {
		p.Header("Steps")
		for _, s := range r.CookingSteps {
			line := fmt.Sprintf("%2d. %s", s.StepNumber, s.Description)
			if s.DurationMinutes != nil {
				line += p.Dim(fmt.Sprintf(" (%d min)", *s.DurationMinutes))
			}
			p.Print("%s", line)
		}
	}

	if len(changes) > 0 {
		p.Header("History")
		table := output.NewTable(p.Out(), "WHEN", "CHANGE", "FIELDS", "BY")
		for _, h := range changes {
			table.AddRow(formatTime(h.ChangedAt), h.ChangeType, deref(h.ChangedFields), h.ChangedByName)
		}
		if err := table.Render(); err != nil {
			return err
		}
	}

	if next := permission.StatusTransitions(user.Role, r.Status); len(next) > 0 {
		names := make([]string, len(next))
		for i, s := range next {
			names[i] = string(s)
		}
		p.Print("")
		p.Print("%s", p.Dim("Can move to: "+strings.Join(names, ", ")))
	}
	return nil
}

func (a *app) recipesStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move a recipe to another status",
		Long: `Move a recipe along its lifecycle: DRAFT to PUBLISHED, PUBLISHED to
ARCHIVED, ARCHIVED back to PUBLISHED.

Examples:
  recipectl recipes status 12 PUBLISHED
  recipectl recipes status 12 ARCHIVED --yes`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "recipe")
			if err != nil {
				return err
			}
			to := model.RecipeStatus(strings.ToUpper(args[1]))
			if !to.Valid() {
				return fmt.Errorf("unknown status %q", args[1])
			}
			user, err := a.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			if err := allowed(permission.CanChangeRecipeStatus(user.Role), user.Role, "change recipe status"); err != nil {
				return err
			}

			res := query.Recipe(cmd.Context(), a.query, a.api, id)
			if res.Err != nil {
				return failure("loading recipe", res.Err)
			}
			from := res.Data.Status
			if !permission.CanTransition(user.Role, from, to) {
				return fmt.Errorf("cannot move recipe from %s to %s", from, to)
			}

			ok, err := a.confirm("Move %q from %s to %s?", res.Data.Title, from, to)
			if err != nil || !ok {
				return err
			}

			updated, err := query.UpdateRecipeStatus(cmd.Context(), a.query, a.api, id, model.UpdateStatusRequest{Status: to})
			if err != nil {
				return failure("changing status", err)
			}
			return a.render(updated, func() error {
				a.printer.Success("%s is now %s", updated.Title, updated.Status)
				return nil
			})
		},
	}
}

func (a *app) recipesDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a recipe",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "recipe")
			if err != nil {
				return err
			}
			user, err := a.signedIn(cmd.Context())
			if err != nil {
				return err
			}
			if err := allowed(permission.CanDeleteRecipe(user.Role), user.Role, "delete recipes"); err != nil {
				return err
			}

			res := query.Recipe(cmd.Context(), a.query, a.api, id)
			if res.Err != nil {
				return failure("loading recipe", res.Err)
			}
			ok, err := a.confirm("Delete recipe %q?", res.Data.Title)
			if err != nil || !ok {
				return err
			}

			if err := query.DeleteRecipe(cmd.Context(), a.query, a.api, id); err != nil {
				return failure("deleting recipe", err)
			}
			a.printer.Success("Deleted recipe %q", res.Data.Title)
			return nil
		},
	}
}
