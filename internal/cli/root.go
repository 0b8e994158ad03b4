// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package cli implements recipectl, the terminal client for the recipe
// backend.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/cache"
	"github.com/olegiv/recipe-console/internal/config"
	"github.com/olegiv/recipe-console/internal/form"
	"github.com/olegiv/recipe-console/internal/logging"
	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/output"
	"github.com/olegiv/recipe-console/internal/query"
	"github.com/olegiv/recipe-console/internal/session"
)

var (
	errNotLoggedIn = errors.New("not signed in; run 'recipectl login' first")
	errExpired     = errors.New("session expired; run 'recipectl login' again")
)

// Options configures the root command. A nil Config is loaded from the
// environment when a command runs.
type Options struct {
	Config *config.Config
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
}

// app is the state shared by every command of one invocation.
type app struct {
	opts Options

	// flags
	jsonOut   bool
	yes       bool
	verbose   bool
	colorMode string

	cfg     *config.Config
	printer *output.Printer
	in      *bufio.Reader
	store   *session.FileStore
	cache   cache.Cacher
	api     *apiclient.Client
	query   *query.Client
	session *session.Session
	forms   *form.Validator
}

// NewRootCommand builds the recipectl command tree.
func NewRootCommand(opts Options) *cobra.Command {
	a := &app{opts: opts}

	root := &cobra.Command{
		Use:   "recipectl",
		Short: "Recipe backend command-line client",
		Long: `recipectl works with recipes, the knowledge base, AI consultations,
customer feedback and members from the terminal.

Example usage:
  recipectl login --token <token>     # Sign in with a bearer token
  recipectl recipes list --status DRAFT
  recipectl ai watch 12               # Follow an AI consultation
  recipectl feedback trend 7`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}
	if opts.In != nil {
		root.SetIn(opts.In)
	}
	if opts.Out != nil {
		root.SetOut(opts.Out)
	}
	if opts.Err != nil {
		root.SetErr(opts.Err)
	}

	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "output raw JSON")
	root.PersistentFlags().BoolVarP(&a.yes, "yes", "y", false, "skip confirmation prompts")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose logging")
	root.PersistentFlags().StringVar(&a.colorMode, "color", "auto", "color output: auto, always, never")

	root.AddCommand(
		a.loginCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.recipesCommand(),
		a.knowledgeCommand(),
		a.aiCommand(),
		a.feedbackCommand(),
		a.usersCommand(),
		versionCommand(),
	)
	return root
}

// Execute runs recipectl with the process arguments and reports a failure on
// stderr.
func Execute(ctx context.Context, opts Options) error {
	root := NewRootCommand(opts)
	if err := root.ExecuteContext(ctx); err != nil {
		output.NewPrinter(root.OutOrStdout(), root.ErrOrStderr(), output.ResolveColors(output.ColorAuto)).
			Error("%s", err)
		return err
	}
	return nil
}

// init wires configuration, the credential file and the clients.
func (a *app) init(cmd *cobra.Command) error {
	mode, err := output.ParseColorMode(a.colorMode)
	if err != nil {
		return err
	}
	a.printer = output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ResolveColors(mode))
	a.in = bufio.NewReader(cmd.InOrStdin())

	a.cfg = a.opts.Config
	if a.cfg == nil {
		if a.cfg, err = config.LoadClient(); err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(logging.New(cmd.ErrOrStderr(), level))

	a.cache, _, err = cache.New(cache.Config{
		Type:             cacheType(a.cfg),
		RedisURL:         a.cfg.RedisURL,
		Prefix:           a.cfg.CachePrefix,
		DefaultTTL:       a.cfg.CacheTTL,
		MaxSize:          a.cfg.CacheMaxSize,
		FallbackToMemory: true,
	})
	if err != nil {
		return fmt.Errorf("creating cache: %w", err)
	}

	a.store = session.NewFileStore(a.cfg.CredentialsPath())
	a.api = apiclient.New(apiclient.Options{
		BaseURL:   a.cfg.APIBaseURL,
		Tokens:    a.store,
		Timeout:   a.cfg.APITimeout,
		RateLimit: a.cfg.RateLimit,
		RateBurst: a.cfg.RateBurst,
		OnUnauthorized: func(ctx context.Context) {
			if a.session != nil {
				_ = a.session.Expire(ctx)
			}
		},
	})
	a.query = query.NewClient(a.cache, query.Options{
		StaleTime: a.cfg.CacheStaleTime,
		Retention: a.cfg.CacheTTL,
		Retries:   uint64(max(a.cfg.QueryRetries, 0)),
		Scope:     query.ScopeFromTokens(a.store),
	})
	a.session = session.New(a.store, query.Profile(a.query, a.api))
	a.forms = form.New()

	slog.Debug("recipectl configured", "api", a.cfg.APIBaseURL, "credentials", a.store.Path())
	return nil
}

func (a *app) close() {
	if a.cache != nil {
		_ = a.cache.Close()
	}
}

func cacheType(cfg *config.Config) string {
	if cfg.UseRedisCache() {
		return cache.TypeRedis
	}
	return cache.TypeMemory
}

// signedIn restores the stored session and returns the member.
func (a *app) signedIn(ctx context.Context) (*model.User, error) {
	if err := a.session.Start(ctx); err != nil {
		if errors.Is(err, apiclient.ErrUnauthorized) {
			return nil, errExpired
		}
		return nil, err
	}
	user := a.session.User()
	if user == nil {
		return nil, errNotLoggedIn
	}
	return user, nil
}

// allowed fails with a readable message when role may not perform action.
// The backend still enforces its own rules.
func allowed(ok bool, role model.Role, action string) error {
	if ok {
		return nil
	}
	return fmt.Errorf("your role (%s) cannot %s", role, action)
}

// confirm asks a yes/no question unless --yes was given. Anything but y or
// yes, including end of input, declines.
func (a *app) confirm(format string, args ...any) (bool, error) {
	if a.yes {
		return true, nil
	}
	fmt.Fprintf(a.printer.Out(), format+" [y/N]: ", args...)
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	a.printer.Info("Cancelled.")
	return false, nil
}

// render prints v as JSON under --json, otherwise calls human.
func (a *app) render(v any, human func() error) error {
	if a.jsonOut {
		return a.printer.JSON(v)
	}
	return human()
}

// failure converts a backend error into the message a member should see.
func failure(action string, err error) error {
	if errors.Is(err, apiclient.ErrUnauthorized) {
		return errExpired
	}
	return fmt.Errorf("%s: %s", action, apiclient.Message(err))
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

// pageFlags registers one-based --page and --size.
func pageFlags(cmd *cobra.Command, page, size *int) {
	cmd.Flags().IntVar(page, "page", 1, "page number, starting at 1")
	cmd.Flags().IntVar(size, "size", model.DefaultPageSize, "page size")
}

// pageParams converts one-based flags to the backend's zero-based page.
func pageParams(page, size int) apiclient.PageParams {
	return apiclient.PageParams{Page: max(page-1, 0), Size: size}
}

// pageFooter prints "page x of y (n total)" below a listing.
func (a *app) pageFooter(number, totalPages int, total int64) {
	if totalPages == 0 {
		totalPages = 1
	}
	a.printer.Print("%s", a.printer.Dim(fmt.Sprintf("page %d of %d (%d total)", number+1, totalPages, total)))
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
