// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/output"
	"github.com/olegiv/recipe-console/internal/query"
)

func (a *app) feedbackCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feedback",
		Short: "Customer feedback and summaries",
	}
	cmd.AddCommand(
		a.feedbackListCommand(),
		a.feedbackSummariesCommand(),
		a.feedbackGenerateCommand(),
		a.feedbackTrendCommand(),
	)
	return cmd
}

func (a *app) feedbackListCommand() *cobra.Command {
	var (
		recipeID, storeID int64
		page, size        int
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List registered feedback",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.signedIn(cmd.Context()); err != nil {
				return err
			}
			params := apiclient.ListFeedbacksParams{
				RecipeID:   recipeID,
				StoreID:    storeID,
				PageParams: pageParams(page, size),
			}
			res := query.Feedbacks(cmd.Context(), a.query, a.api, params)
			if res.Err != nil {
				return failure("listing feedback", res.Err)
			}
			return a.render(res.Data, func() error {
				if len(res.Data.Content) == 0 {
					a.printer.Info("No feedback registered.")
					return nil
				}
				table := output.NewTable(a.printer.Out(), "ID", "RECIPE", "PERIOD", "SATISFACTION", "EMOTION", "METHOD", "BY")
				for _, f := range res.Data.Content {
					emotion := ""
					if f.EmotionScore != nil {
						emotion = strconv.Itoa(*f.EmotionScore)
					}
					table.AddRow(
						strconv.FormatInt(f.ID, 10),
						f.RecipeTitle,
						f.PeriodStart+" – "+f.PeriodEnd,
						strconv.Itoa(f.SatisfactionScore),
						emotion,
						string(f.CollectionMethod),
						f.RegisteredByName,
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
	cmd.Flags().Int64Var(&recipeID, "recipe", 0, "filter by recipe id")
	cmd.Flags().Int64Var(&storeID, "store", 0, "filter by store id")
	pageFlags(cmd, &page, &size)
	return cmd
}

func (a *app) feedbackSummariesCommand() *cobra.Command {
	var (
		recipeID   int64
		page, size int
	)
	cmd := &cobra.Command{
		Use:   "summaries",
		Short: "List feedback summaries of a recipe",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.signedIn(cmd.Context()); err != nil {
				return err
			}
			params := apiclient.ListSummariesParams{RecipeID: recipeID, PageParams: pageParams(page, size)}
			res := query.Summaries(cmd.Context(), a.query, a.api, params)
			if res.Err != nil {
				return failure("listing summaries", res.Err)
			}
			return a.render(res.Data, func() error {
				if len(res.Data.Content) == 0 {
					a.printer.Info("No summaries yet. Create one with 'recipectl feedback generate'.")
					return nil
				}
				if err := a.summaryTable(res.Data.Content); err != nil {
					return err
				}
				a.pageFooter(res.Data.Number, res.Data.TotalPages, res.Data.TotalElements)
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&recipeID, "recipe", 0, "recipe id")
	_ = cmd.MarkFlagRequired("recipe")
	pageFlags(cmd, &page, &size)
	return cmd
}

func (a *app) summaryTable(summaries []model.FeedbackSummary) error {
	table := output.NewTable(a.printer.Out(), "ID", "PERIOD", "SATISFACTION", "EMOTION", "COUNT", "TREND")
	for _, s := range summaries {
		table.AddRow(
			strconv.FormatInt(s.ID, 10),
			s.PeriodStart+" – "+s.PeriodEnd,
			string(s.AvgSatisfaction),
			string(deref(s.AvgEmotion)),
			strconv.Itoa(s.FeedbackCount),
			deref(s.MainCommentTrend),
		)
	}
	return table.Render()
}

func (a *app) feedbackGenerateCommand() *cobra.Command {
	var (
		recipeID int64
		from, to string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Summarize a recipe's feedback over a period",
		Long: `Ask the backend to aggregate the feedback of one recipe over a period.

Example:
  recipectl feedback generate --recipe 7 --from 2026-01-01 --to 2026-03-31`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := model.GenerateFeedbackSummaryRequest{RecipeID: recipeID, PeriodStart: from, PeriodEnd: to}
			if err := a.forms.Validate(req); err != nil {
				return err
			}
			if _, err := a.signedIn(cmd.Context()); err != nil {
				return err
			}

			summary, err := query.GenerateSummary(cmd.Context(), a.query, a.api, req)
			if err != nil {
				return failure("generating summary", err)
			}
			return a.render(summary, func() error {
				p := a.printer
				p.Success("Summary #%d generated for %s", summary.ID, summary.RecipeTitle)
				p.Field("Period", summary.PeriodStart+" – "+summary.PeriodEnd)
				p.Field("Feedback", strconv.Itoa(summary.FeedbackCount))
				p.Field("Satisfaction", string(summary.AvgSatisfaction))
				p.Field("Emotion", string(deref(summary.AvgEmotion)))
				p.Field("Trend", deref(summary.MainCommentTrend))
				return nil
			})
		},
	}
	cmd.Flags().Int64Var(&recipeID, "recipe", 0, "recipe id")
	cmd.Flags().StringVar(&from, "from", "", "period start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "period end (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("recipe")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func (a *app) feedbackTrendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "trend <recipe>",
		Short: "Show satisfaction over time for a recipe",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "recipe")
			if err != nil {
				return err
			}
			if _, err := a.signedIn(cmd.Context()); err != nil {
				return err
			}

			res := query.Trend(cmd.Context(), a.query, a.api, id)
			if res.Err != nil {
				return failure("loading trend", res.Err)
			}
			return a.render(res.Data, func() error {
				if len(res.Data) == 0 {
					a.printer.Info("No summaries for this recipe yet.")
					return nil
				}
				table := output.NewTable(a.printer.Out(), "PERIOD", "SATISFACTION", "", "EMOTION", "COUNT")
				for _, s := range res.Data {
					table.AddRow(
						s.PeriodStart+" – "+s.PeriodEnd,
						string(s.AvgSatisfaction),
						scoreBar(s.AvgSatisfaction.Float()),
						string(deref(s.AvgEmotion)),
						strconv.Itoa(s.FeedbackCount),
					)
				}
				return table.Render()
			})
		},
	}
}

// scoreBar draws a score on the 1..5 scale as a bar of half-steps.
func scoreBar(score float64) string {
	score = math.Max(0, math.Min(score, model.ScoreMax))
	halves := int(math.Round(score * 2))
	return strings.Repeat("█", halves/2) + strings.Repeat("▌", halves%2)
}
