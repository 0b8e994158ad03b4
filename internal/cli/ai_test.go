// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/session"
	"github.com/olegiv/recipe-console/internal/testutil"
)

// startThread creates a consultation through the CLI and returns its id.
func startThread(t *testing.T, h *harness, theme, message string) int64 {
	t.Helper()
	res := h.run(t, "", "ai", "new", "--theme", theme, "--message", message, "--json")
	require.NoError(t, res.err)
	thread := decodeJSON[struct {
		ID       int64             `json:"id"`
		Messages []model.AiMessage `json:"messages"`
	}](t, res.out)
	require.Len(t, thread.Messages, 2)
	return thread.ID
}

func TestAI_NewSendAndList(t *testing.T) {
	h := newHarness(t)
	h.login(t, testutil.TokenChef)

	res := h.run(t, "", "ai", "new", "--theme", "Spring menu", "--message", "Which greens?")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Started consultation #")
	assert.Contains(t, res.out, "Consider: Which greens?")

	id := startThread(t, h, "Plating", "Lighter look?")
	res = h.run(t, "", "ai", "send", fmt.Sprint(id), "What", "about", "color?")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "AI")
	assert.Contains(t, res.out, "Consider: What about color?")

	res = h.run(t, "", "ai", "threads")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Spring menu")
	assert.Contains(t, res.out, "Plating")
}

func TestAI_NewValidation(t *testing.T) {
	h := newHarness(t)
	h.login(t, testutil.TokenChef)

	res := h.run(t, "", "ai", "new", "--theme", "Menu", "--message", "   ")
	assert.ErrorIs(t, res.err, apiclient.ErrValidation)
	assert.ErrorContains(t, res.err, "initialMessage")
}

func TestAI_SendBlankMessage(t *testing.T) {
	h := newHarness(t)
	h.login(t, testutil.TokenChef)
	id := startThread(t, h, "Menu", "Hello")

	res := h.run(t, "", "ai", "send", fmt.Sprint(id), " ")
	assert.ErrorIs(t, res.err, apiclient.ErrValidation)
}

func TestAIWatch_UntilReply(t *testing.T) {
	h := newHarness(t)
	h.login(t, testutil.TokenChef)
	id := startThread(t, h, "Menu", "Hello")
	messagesPath := fmt.Sprintf("/ai/threads/%d/messages", id)
	before := h.backend.Hits(messagesPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan result, 1)
	go func() { done <- h.runContext(ctx, "", "ai", "watch", fmt.Sprint(id), "--until-reply") }()

	// Send once the first poll tick has gone out.
	require.Eventually(t, func() bool { return h.backend.Hits(messagesPath) > before+1 }, 2*time.Second, 5*time.Millisecond)
	api := apiclient.New(apiclient.Options{
		BaseURL: h.backend.BaseURL(),
		Tokens:  session.NewMemoryStore(session.Credentials{Token: testutil.TokenChef}),
	})
	_, err := api.SendMessage(context.Background(), id, model.SendAiMessageRequest{Message: "And dessert?"})
	require.NoError(t, err)

	res := <-done
	require.NoError(t, res.err)
	require.NoError(t, ctx.Err(), "watch should stop at the reply, not the deadline")
	assert.Contains(t, res.out, "#"+fmt.Sprint(id)+" Menu")
	assert.Contains(t, res.out, "Consider: Hello")
	assert.Contains(t, res.out, "Consider: And dessert?")
}

func TestAIWatch_StopsWhenInterrupted(t *testing.T) {
	h := newHarness(t)
	h.login(t, testutil.TokenChef)
	id := startThread(t, h, "Menu", "Hello")

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()

	res := h.runContext(ctx, "", "ai", "watch", fmt.Sprint(id))
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Consider: Hello")
}

func TestAIWatch_ThreadDisappears(t *testing.T) {
	h := newHarness(t)
	h.login(t, testutil.TokenChef)
	id := startThread(t, h, "Menu", "Hello")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan result, 1)
	go func() { done <- h.runContext(ctx, "", "ai", "watch", fmt.Sprint(id)) }()

	messagesPath := fmt.Sprintf("/ai/threads/%d/messages", id)
	before := h.backend.Hits(messagesPath)
	require.Eventually(t, func() bool { return h.backend.Hits(messagesPath) > before+1 }, 2*time.Second, 5*time.Millisecond)
	h.backend.Fail("GET", messagesPath, 404)

	res := <-done
	assert.ErrorContains(t, res.err, "watching consultation")
	assert.NoError(t, ctx.Err())
}

func TestAIWatch_UnknownThread(t *testing.T) {
	h := newHarness(t)
	h.login(t, testutil.TokenChef)

	res := h.run(t, "", "ai", "watch", "999")
	assert.ErrorContains(t, res.err, "loading consultation")
}
