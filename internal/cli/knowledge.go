// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"errors"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/output"
	"github.com/olegiv/recipe-console/internal/query"
)

func (a *app) knowledgeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "knowledge",
		Aliases: []string{"kb"},
		Short:   "Search and read the knowledge base",
	}
	cmd.AddCommand(a.knowledgeSearchCommand(), a.knowledgeGetCommand())
	return cmd
}

func (a *app) knowledgeSearchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search articles by keyword",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			keyword := strings.TrimSpace(strings.Join(args, " "))
			if keyword == "" {
				return errors.New("keyword must not be blank")
			}
			if _, err := a.signedIn(cmd.Context()); err != nil {
				return err
			}

			res := query.SearchArticles(cmd.Context(), a.query, a.api, keyword)
			if res.Err != nil {
				return failure("searching articles", res.Err)
			}
			return a.render(res.Data, func() error {
				if len(res.Data) == 0 {
					a.printer.Info("No articles match %q.", keyword)
					return nil
				}
				return a.articleTable(res.Data)
			})
		},
	}
}

func (a *app) articleTable(articles []model.KnowledgeArticle) error {
	table := output.NewTable(a.printer.Out(), "ID", "TITLE", "CATEGORY", "AUTHOR", "UPDATED")
	for _, art := range articles {
		table.AddRow(
			strconv.FormatInt(art.ID, 10),
			a.printer.Bold(art.Title),
			art.CategoryName,
			art.AuthorName,
			formatDate(art.UpdatedAt),
		)
	}
	return table.Render()
}

func (a *app) knowledgeGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "article")
			if err != nil {
				return err
			}
			if _, err := a.signedIn(cmd.Context()); err != nil {
				return err
			}

			res := query.Article(cmd.Context(), a.query, a.api, id)
			if res.Err != nil {
				return failure("loading article", res.Err)
			}
			art := res.Data
			return a.render(art, func() error {
				p := a.printer
				p.Header(art.Title)
				p.Field("Category", art.CategoryName)
				p.Field("Author", art.AuthorName)
				p.Field("Tags", deref(art.Tags))
				if len(art.RelatedRecipes) > 0 {
					titles := make([]string, len(art.RelatedRecipes))
					for i, r := range art.RelatedRecipes {
						titles[i] = r.Title + " (#" + strconv.FormatInt(r.ID, 10) + ")"
					}
					p.Field("Recipes", strings.Join(titles, ", "))
				}
				p.Print("")
				// Raw Markdown.
				p.Print("%s", art.Content)
				return nil
			})
		},
	}
}
