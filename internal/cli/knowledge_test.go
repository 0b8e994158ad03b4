// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cli

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/testutil"
)

func TestKnowledgeSearch(t *testing.T) {
	h := newHarness(t)
	h.backend.SeedArticle(1, "Dashi basics", "Kombu first, then katsuobushi.")
	h.backend.SeedArticle(2, "Plating", "Use odd numbers.")
	h.login(t, testutil.TokenChef)

	res := h.run(t, "", "knowledge", "search", "kombu")
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Dashi basics")
	assert.NotContains(t, res.out, "Plating")

	res = h.run(t, "", "kb", "search", "nothing", "here", "--json")
	require.NoError(t, res.err)
	assert.Empty(t, decodeJSON[[]model.KnowledgeArticle](t, res.out))
}

func TestKnowledgeSearch_BlankKeyword(t *testing.T) {
	h := newHarness(t)
	h.login(t, testutil.TokenChef)

	res := h.run(t, "", "knowledge", "search", "  ")
	assert.ErrorContains(t, res.err, "keyword must not be blank")
	assert.Zero(t, h.backend.Hits("/knowledge/articles/search"))
}

func TestKnowledgeGet(t *testing.T) {
	h := newHarness(t)
	content := "# Dashi\n\n    indented block\n"
	id := h.backend.SeedArticle(1, "Dashi basics", content)
	h.login(t, testutil.TokenService)

	res := h.run(t, "", "knowledge", "get", fmt.Sprint(id))
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Dashi basics")
	assert.Contains(t, res.out, "Techniques")
	assert.Contains(t, res.out, content)
}
