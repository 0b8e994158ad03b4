// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package query

import (
	"strconv"
	"strings"
)

// Kind names a mutation for invalidation and metrics.
type Kind string

// Mutation kinds.
const (
	KindCreateRecipe           Kind = "create_recipe"
	KindUpdateRecipe           Kind = "update_recipe"
	KindDeleteRecipe           Kind = "delete_recipe"
	KindUpdateRecipeStatus     Kind = "update_recipe_status"
	KindUpdateServiceDesign    Kind = "update_service_design"
	KindUpdateExperienceDesign Kind = "update_experience_design"
	KindCreateArticle          Kind = "create_article"
	KindUpdateArticle          Kind = "update_article"
	KindDeleteArticle          Kind = "delete_article"
	KindCreateThread           Kind = "create_thread"
	KindSendMessage            Kind = "send_message"
	KindCreateFeedback         Kind = "create_feedback"
	KindDeleteFeedback         Kind = "delete_feedback"
	KindGenerateSummary        Kind = "generate_summary"
	KindUpdateUserRole         Kind = "update_user_role"
)

// idSlot is replaced with the mutation's target id.
const idSlot = "{id}"

// Invalidations maps each mutation kind to the key prefix it invalidates on
// success.
var Invalidations = map[Kind]string{
	KindCreateRecipe:           "recipes",
	KindUpdateRecipe:           "recipes",
	KindDeleteRecipe:           "recipes",
	KindUpdateRecipeStatus:     "recipes",
	KindUpdateServiceDesign:    "recipes/{id}",
	KindUpdateExperienceDesign: "recipes/{id}",
	KindCreateArticle:          "knowledge",
	KindUpdateArticle:          "knowledge",
	KindDeleteArticle:          "knowledge",
	KindCreateThread:           "ai/threads",
	KindSendMessage:            "ai/messages/{id}",
	KindCreateFeedback:         "feedback",
	KindDeleteFeedback:         "feedback",
	KindGenerateSummary:        "feedback/summaries",
	KindUpdateUserRole:         "users",
}

// Prefix resolves the kind's invalidation prefix for target id. It returns
// nil for unknown kinds.
func (k Kind) Prefix(id int64) Key {
	tmpl, ok := Invalidations[k]
	if !ok {
		return nil
	}
	parts := strings.Split(tmpl, "/")
	key := make(Key, len(parts))
	for i, p := range parts {
		if p == idSlot {
			p = strconv.FormatInt(id, 10)
		}
		key[i] = p
	}
	return key
}
