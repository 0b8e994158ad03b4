// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/output"
	"github.com/olegiv/recipe-console/internal/query"
)

func (a *app) aiCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai",
		Short: "AI consultations",
	}
	cmd.AddCommand(
		a.aiThreadsCommand(),
		a.aiNewCommand(),
		a.aiSendCommand(),
		a.aiWatchCommand(),
	)
	return cmd
}

func (a *app) aiThreadsCommand() *cobra.Command {
	var page, size int
	cmd := &cobra.Command{
		Use:   "threads",
		Short: "List consultation threads",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.signedIn(cmd.Context()); err != nil {
				return err
			}
			res := query.Threads(cmd.Context(), a.query, a.api, pageParams(page, size))
			if res.Err != nil {
				return failure("listing threads", res.Err)
			}
			return a.render(res.Data, func() error {
				if len(res.Data.Content) == 0 {
					a.printer.Info("No consultations yet. Start one with 'recipectl ai new'.")
					return nil
				}
				table := output.NewTable(a.printer.Out(), "ID", "THEME", "RECIPE", "UPDATED")
				for _, t := range res.Data.Content {
					table.AddRow(strconv.FormatInt(t.ID, 10), a.printer.Bold(t.Theme), deref(t.RecipeName), formatTime(t.UpdatedAt))
				}
				if err := table.Render(); err != nil {
					return err
				}
				a.pageFooter(res.Data.Number, res.Data.TotalPages, res.Data.TotalElements)
				return nil
			})
		},
	}
	pageFlags(cmd, &page, &size)
	return cmd
}

func (a *app) aiNewCommand() *cobra.Command {
	var (
		theme, message string
		recipeID       int64
	)
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a consultation",
		Long: `Start a consultation with a theme and an opening question, optionally
about a recipe.

Examples:
  recipectl ai new --theme "Spring menu" --message "Which greens pair with sea bream?"
  recipectl ai new --theme Plating --recipe 12 --message "How can this look lighter?"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := model.CreateAiThreadRequest{Theme: strings.TrimSpace(theme), InitialMessage: message}
			if recipeID != 0 {
				req.RecipeID = &recipeID
			}
			if err := a.forms.Validate(req); err != nil {
				return err
			}
			if _, err := a.signedIn(cmd.Context()); err != nil {
				return err
			}

			thread, err := query.CreateThread(cmd.Context(), a.query, a.api, req)
			if err != nil {
				return failure("starting consultation", err)
			}
			msgs := query.Messages(cmd.Context(), a.query, a.api, thread.ID)
			if msgs.Err != nil {
				return failure("loading messages", msgs.Err)
			}
			if a.jsonOut {
				return a.printer.JSON(struct {
					*model.AiThread
					Messages []model.AiMessage `json:"messages"`
				}{thread, msgs.Data})
			}
			a.printer.Success("Started consultation #%d: %s", thread.ID, thread.Theme)
			for _, m := range msgs.Data {
				a.printMessage(m)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&theme, "theme", "", "consultation theme")
	cmd.Flags().StringVar(&message, "message", "", "opening question")
	cmd.Flags().Int64Var(&recipeID, "recipe", 0, "recipe the consultation is about")
	_ = cmd.MarkFlagRequired("theme")
	_ = cmd.MarkFlagRequired("message")
	return cmd
}

func (a *app) aiSendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "send <thread> <message>",
		Short: "Ask a follow-up question",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "thread")
			if err != nil {
				return err
			}
			req := model.SendAiMessageRequest{Message: strings.Join(args[1:], " ")}
			if err := a.forms.Validate(req); err != nil {
				return err
			}
			if _, err := a.signedIn(cmd.Context()); err != nil {
				return err
			}

			reply, err := query.SendMessage(cmd.Context(), a.query, a.api, id, req)
			if err != nil {
				return failure("sending message", err)
			}
			return a.render(reply, func() error {
				a.printMessage(*reply)
				return nil
			})
		},
	}
}

func (a *app) aiWatchCommand() *cobra.Command {
	var untilReply bool
	cmd := &cobra.Command{
		Use:   "watch <thread>",
		Short: "Follow a consultation as messages arrive",
		Long: `Print a consultation and keep polling for new messages until interrupted.

Examples:
  recipectl ai watch 12
  recipectl ai watch 12 --until-reply   # stop at the next AI answer`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0], "thread")
			if err != nil {
				return err
			}
			if _, err := a.signedIn(cmd.Context()); err != nil {
				return err
			}
			return a.watch(cmd.Context(), id, untilReply)
		},
	}
	cmd.Flags().BoolVar(&untilReply, "until-reply", false, "exit after the next AI message")
	return cmd
}

// errReplied ends a watch started with --until-reply.
var errReplied = errors.New("reply received")

// watch prints the thread, then refetches its messages on the poll interval
// and prints the ones not seen yet.
func (a *app) watch(parent context.Context, threadID int64, untilReply bool) error {
	thread := query.Thread(parent, a.query, a.api, threadID)
	if thread.Err != nil {
		return failure("loading consultation", thread.Err)
	}
	first := query.Messages(parent, a.query, a.api, threadID)
	if first.Err != nil {
		return failure("loading messages", first.Err)
	}

	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(nil)

	seen := make(map[int64]bool)
	show := func(msgs []model.AiMessage) (replied bool) {
		for _, m := range msgs {
			if seen[m.ID] {
				continue
			}
			seen[m.ID] = true
			if a.jsonOut {
				_ = a.printer.JSON(m)
			} else {
				a.printMessage(m)
			}
			replied = replied || m.SenderType == model.SenderAI
		}
		return replied
	}

	if !a.jsonOut {
		a.printer.Header(fmt.Sprintf("#%d %s", thread.Data.ID, thread.Data.Theme))
	}
	show(first.Data)

	poller := query.NewPoller(a.cfg.PollInterval, a.cfg.PollMaxBackoff, func(ctx context.Context) error {
		res := query.RefetchMessages(ctx, a.query, a.api, threadID)
		if res.Err != nil {
			if errors.Is(res.Err, apiclient.ErrUnauthorized) || errors.Is(res.Err, apiclient.ErrNotFound) {
				cancel(failure("watching consultation", res.Err))
			}
			return res.Err
		}
		if show(res.Data) && untilReply {
			cancel(errReplied)
		}
		return nil
	})
	_ = poller.Run(ctx)

	switch cause := context.Cause(ctx); {
	case errors.Is(cause, errReplied):
		return nil
	case parent.Err() != nil:
		// Interrupted by the caller.
		return nil
	default:
		return cause
	}
}

func (a *app) printMessage(m model.AiMessage) {
	p := a.printer
	who := p.Bold("You")
	if m.SenderType == model.SenderAI {
		who = p.Bold("AI")
	}
	p.Print("%s %s", who, p.Dim(formatTime(m.CreatedAt)))
	p.Print("%s", m.Content)
	for _, ref := range m.ReferencedArticles {
		p.Print("%s", p.Dim(fmt.Sprintf("  see: %s (knowledge get %d)", ref.Title, ref.ID)))
	}
	p.Print("")
}
