// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package query

import (
	"context"
	"errors"

	"github.com/olegiv/recipe-console/internal/apiclient"
	"github.com/olegiv/recipe-console/internal/model"
	"github.com/olegiv/recipe-console/internal/session"
)

// =============================================================================
// KEYS
// =============================================================================

// RecipesKey is the key of a recipe list.
func RecipesKey(p apiclient.ListRecipesParams) Key { return NewKey("recipes", p.Values()) }

// RecipeKey is the key of one recipe.
func RecipeKey(id int64) Key { return NewKey("recipes", id) }

// RecipeHistoryKey is the key of a recipe's change log.
func RecipeHistoryKey(id int64) Key { return NewKey("recipes", id, "history") }

// CategoriesKey is the key of the knowledge category list.
func CategoriesKey() Key { return NewKey("knowledge", "categories") }

// ArticlesKey is the key of an article list.
func ArticlesKey(p apiclient.ListArticlesParams) Key {
	return NewKey("knowledge", "articles", p.Values())
}

// ArticleKey is the key of one article.
func ArticleKey(id int64) Key { return NewKey("knowledge", "articles", id) }

// SearchKey is the key of an article search.
func SearchKey(keyword string) Key { return NewKey("knowledge", "search", keyword) }

// ThreadsKey is the key of the caller's thread list.
func ThreadsKey(p apiclient.PageParams) Key { return NewKey("ai", "threads", p.Values()) }

// ThreadKey is the key of one thread.
func ThreadKey(id int64) Key { return NewKey("ai", "threads", id) }

// MessagesKey is the key of a thread's messages.
func MessagesKey(threadID int64) Key { return NewKey("ai", "messages", threadID) }

// FeedbacksKey is the key of a feedback list.
func FeedbacksKey(p apiclient.ListFeedbacksParams) Key { return NewKey("feedback", p.Values()) }

// FeedbackKey is the key of one feedback record.
func FeedbackKey(id int64) Key { return NewKey("feedback", "item", id) }

// SummariesKey is the key of a recipe's summary list.
func SummariesKey(p apiclient.ListSummariesParams) Key {
	return NewKey("feedback", "summaries", p.RecipeID, p.PageParams.Values())
}

// SummaryKey is the key of one summary.
func SummaryKey(id int64) Key { return NewKey("feedback", "summaries", "item", id) }

// TrendKey is the key of a recipe's satisfaction trend.
func TrendKey(recipeID int64) Key { return NewKey("feedback", "trend", recipeID) }

// UsersKey is the key of the member list.
func UsersKey() Key { return NewKey("users") }

// MeKey is the key of the caller's profile. It sits outside "users" so a
// role change does not drop every session's profile.
func MeKey() Key { return NewKey("profile") }

// =============================================================================
// RECIPES
// =============================================================================

// Recipes reads one page of the recipe list.
func Recipes(ctx context.Context, q *Client, api *apiclient.Client, p apiclient.ListRecipesParams) Result[model.Page[model.RecipeListItem]] {
	return Fetch(ctx, q, QueryOptions[model.Page[model.RecipeListItem]]{
		Key:     RecipesKey(p),
		Enabled: true,
		Fn: func(ctx context.Context) (model.Page[model.RecipeListItem], error) {
			return api.ListRecipes(ctx, p)
		},
	})
}

// Recipe reads one recipe. It is disabled until id is positive.
func Recipe(ctx context.Context, q *Client, api *apiclient.Client, id int64) Result[*model.Recipe] {
	return Fetch(ctx, q, QueryOptions[*model.Recipe]{
		Key:     RecipeKey(id),
		Enabled: id > 0,
		Fn:      func(ctx context.Context) (*model.Recipe, error) { return api.GetRecipe(ctx, id) },
	})
}

// RecipeHistory reads a recipe's change history.
func RecipeHistory(ctx context.Context, q *Client, api *apiclient.Client, id int64) Result[[]model.RecipeHistory] {
	return Fetch(ctx, q, QueryOptions[[]model.RecipeHistory]{
		Key:     RecipeHistoryKey(id),
		Enabled: id > 0,
		Fn:      func(ctx context.Context) ([]model.RecipeHistory, error) { return api.GetRecipeHistory(ctx, id) },
	})
}

// CreateRecipe creates a recipe and invalidates the recipe lists.
func CreateRecipe(ctx context.Context, q *Client, api *apiclient.Client, req model.CreateRecipeRequest) (*model.Recipe, error) {
	return Mutate(ctx, q, KindCreateRecipe, 0, func(ctx context.Context) (*model.Recipe, error) {
		return api.CreateRecipe(ctx, req)
	})
}

// UpdateRecipe replaces a recipe's editable fields.
func UpdateRecipe(ctx context.Context, q *Client, api *apiclient.Client, id int64, req model.UpdateRecipeRequest) (*model.Recipe, error) {
	return Mutate(ctx, q, KindUpdateRecipe, id, func(ctx context.Context) (*model.Recipe, error) {
		return api.UpdateRecipe(ctx, id, req)
	})
}

// UpdateServiceDesign invalidates only the recipe it edits.
func UpdateServiceDesign(ctx context.Context, q *Client, api *apiclient.Client, id int64, req model.UpdateServiceDesignRequest) (*model.Recipe, error) {
	return Mutate(ctx, q, KindUpdateServiceDesign, id, func(ctx context.Context) (*model.Recipe, error) {
		return api.UpdateServiceDesign(ctx, id, req)
	})
}

// UpdateExperienceDesign invalidates only the recipe it edits.
func UpdateExperienceDesign(ctx context.Context, q *Client, api *apiclient.Client, id int64, req model.UpdateExperienceDesignRequest) (*model.Recipe, error) {
	return Mutate(ctx, q, KindUpdateExperienceDesign, id, func(ctx context.Context) (*model.Recipe, error) {
		return api.UpdateExperienceDesign(ctx, id, req)
	})
}

// UpdateRecipeStatus moves a recipe to another status.
func UpdateRecipeStatus(ctx context.Context, q *Client, api *apiclient.Client, id int64, req model.UpdateStatusRequest) (*model.Recipe, error) {
	return Mutate(ctx, q, KindUpdateRecipeStatus, id, func(ctx context.Context) (*model.Recipe, error) {
		return api.UpdateRecipeStatus(ctx, id, req)
	})
}

// DeleteRecipe deletes a recipe and invalidates every recipe query.
func DeleteRecipe(ctx context.Context, q *Client, api *apiclient.Client, id int64) error {
	_, err := Mutate(ctx, q, KindDeleteRecipe, id, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, api.DeleteRecipe(ctx, id)
	})
	return err
}

// =============================================================================
// KNOWLEDGE
// =============================================================================

// Categories reads the knowledge categories.
func Categories(ctx context.Context, q *Client, api *apiclient.Client) Result[[]model.KnowledgeCategory] {
	return Fetch(ctx, q, QueryOptions[[]model.KnowledgeCategory]{
		Key:     CategoriesKey(),
		Enabled: true,
		Fn:      api.ListCategories,
	})
}

// Articles reads one page of articles, optionally for one category.
func Articles(ctx context.Context, q *Client, api *apiclient.Client, p apiclient.ListArticlesParams) Result[model.Page[model.KnowledgeArticle]] {
	return Fetch(ctx, q, QueryOptions[model.Page[model.KnowledgeArticle]]{
		Key:     ArticlesKey(p),
		Enabled: true,
		Fn: func(ctx context.Context) (model.Page[model.KnowledgeArticle], error) {
			return api.ListArticles(ctx, p)
		},
	})
}

// Article reads one knowledge article.
func Article(ctx context.Context, q *Client, api *apiclient.Client, id int64) Result[*model.KnowledgeArticle] {
	return Fetch(ctx, q, QueryOptions[*model.KnowledgeArticle]{
		Key:     ArticleKey(id),
		Enabled: id > 0,
		Fn:      func(ctx context.Context) (*model.KnowledgeArticle, error) { return api.GetArticle(ctx, id) },
	})
}

// SearchArticles is disabled for an empty keyword.
func SearchArticles(ctx context.Context, q *Client, api *apiclient.Client, keyword string) Result[[]model.KnowledgeArticle] {
	return Fetch(ctx, q, QueryOptions[[]model.KnowledgeArticle]{
		Key:     SearchKey(keyword),
		Enabled: keyword != "",
		Fn: func(ctx context.Context) ([]model.KnowledgeArticle, error) {
			return api.SearchArticles(ctx, keyword)
		},
	})
}

// CreateArticle adds a knowledge article.
func CreateArticle(ctx context.Context, q *Client, api *apiclient.Client, req model.CreateKnowledgeArticleRequest) (*model.KnowledgeArticle, error) {
	return Mutate(ctx, q, KindCreateArticle, 0, func(ctx context.Context) (*model.KnowledgeArticle, error) {
		return api.CreateArticle(ctx, req)
	})
}

// UpdateArticle edits a knowledge article.
func UpdateArticle(ctx context.Context, q *Client, api *apiclient.Client, id int64, req model.UpdateKnowledgeArticleRequest) (*model.KnowledgeArticle, error) {
	return Mutate(ctx, q, KindUpdateArticle, id, func(ctx context.Context) (*model.KnowledgeArticle, error) {
		return api.UpdateArticle(ctx, id, req)
	})
}

// DeleteArticle removes a knowledge article.
func DeleteArticle(ctx context.Context, q *Client, api *apiclient.Client, id int64) error {
	_, err := Mutate(ctx, q, KindDeleteArticle, id, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, api.DeleteArticle(ctx, id)
	})
	return err
}

// =============================================================================
// AI CONSULTATION
// =============================================================================

// Threads reads one page of the caller's consultation threads.
func Threads(ctx context.Context, q *Client, api *apiclient.Client, p apiclient.PageParams) Result[model.Page[model.AiThread]] {
	return Fetch(ctx, q, QueryOptions[model.Page[model.AiThread]]{
		Key:     ThreadsKey(p),
		Enabled: true,
		Fn:      func(ctx context.Context) (model.Page[model.AiThread], error) { return api.ListThreads(ctx, p) },
	})
}

// Thread reads one consultation thread.
func Thread(ctx context.Context, q *Client, api *apiclient.Client, id int64) Result[*model.AiThread] {
	return Fetch(ctx, q, QueryOptions[*model.AiThread]{
		Key:     ThreadKey(id),
		Enabled: id > 0,
		Fn:      func(ctx context.Context) (*model.AiThread, error) { return api.GetThread(ctx, id) },
	})
}

func messagesQuery(api *apiclient.Client, threadID int64) QueryOptions[[]model.AiMessage] {
	return QueryOptions[[]model.AiMessage]{
		Key:     MessagesKey(threadID),
		Enabled: threadID > 0,
		Fn:      func(ctx context.Context) ([]model.AiMessage, error) { return api.ListMessages(ctx, threadID) },
	}
}

// Messages reads the messages of a thread. It is disabled until threadID is positive.
func Messages(ctx context.Context, q *Client, api *apiclient.Client, threadID int64) Result[[]model.AiMessage] {
	return Fetch(ctx, q, messagesQuery(api, threadID))
}

// RefetchMessages ignores freshness; the chat poll calls it on every tick.
func RefetchMessages(ctx context.Context, q *Client, api *apiclient.Client, threadID int64) Result[[]model.AiMessage] {
	return Refetch(ctx, q, messagesQuery(api, threadID))
}

// CreateThread starts a consultation with its first message.
func CreateThread(ctx context.Context, q *Client, api *apiclient.Client, req model.CreateAiThreadRequest) (*model.AiThread, error) {
	return Mutate(ctx, q, KindCreateThread, 0, func(ctx context.Context) (*model.AiThread, error) {
		return api.CreateThread(ctx, req)
	})
}

// SendMessage posts to a thread and invalidates that thread's messages.
func SendMessage(ctx context.Context, q *Client, api *apiclient.Client, threadID int64, req model.SendAiMessageRequest) (*model.AiMessage, error) {
	return Mutate(ctx, q, KindSendMessage, threadID, func(ctx context.Context) (*model.AiMessage, error) {
		return api.SendMessage(ctx, threadID, req)
	})
}

// =============================================================================
// FEEDBACK
// =============================================================================

// Feedbacks reads one page of feedback, filtered by recipe or store.
func Feedbacks(ctx context.Context, q *Client, api *apiclient.Client, p apiclient.ListFeedbacksParams) Result[model.Page[model.ProductFeedback]] {
	return Fetch(ctx, q, QueryOptions[model.Page[model.ProductFeedback]]{
		Key:     FeedbacksKey(p),
		Enabled: true,
		Fn: func(ctx context.Context) (model.Page[model.ProductFeedback], error) {
			return api.ListFeedbacks(ctx, p)
		},
	})
}

// Feedback reads one feedback record.
func Feedback(ctx context.Context, q *Client, api *apiclient.Client, id int64) Result[*model.ProductFeedback] {
	return Fetch(ctx, q, QueryOptions[*model.ProductFeedback]{
		Key:     FeedbackKey(id),
		Enabled: id > 0,
		Fn:      func(ctx context.Context) (*model.ProductFeedback, error) { return api.GetFeedback(ctx, id) },
	})
}

// Summaries is disabled until a recipe is chosen.
func Summaries(ctx context.Context, q *Client, api *apiclient.Client, p apiclient.ListSummariesParams) Result[model.Page[model.FeedbackSummary]] {
	return Fetch(ctx, q, QueryOptions[model.Page[model.FeedbackSummary]]{
		Key:     SummariesKey(p),
		Enabled: p.RecipeID > 0,
		Fn: func(ctx context.Context) (model.Page[model.FeedbackSummary], error) {
			return api.ListSummaries(ctx, p)
		},
	})
}

// Summary reads one feedback summary.
func Summary(ctx context.Context, q *Client, api *apiclient.Client, id int64) Result[*model.FeedbackSummary] {
	return Fetch(ctx, q, QueryOptions[*model.FeedbackSummary]{
		Key:     SummaryKey(id),
		Enabled: id > 0,
		Fn:      func(ctx context.Context) (*model.FeedbackSummary, error) { return api.GetSummary(ctx, id) },
	})
}

// Trend reads the satisfaction trend of a recipe.
func Trend(ctx context.Context, q *Client, api *apiclient.Client, recipeID int64) Result[[]model.FeedbackSummary] {
	return Fetch(ctx, q, QueryOptions[[]model.FeedbackSummary]{
		Key:     TrendKey(recipeID),
		Enabled: recipeID > 0,
		Fn:      func(ctx context.Context) ([]model.FeedbackSummary, error) { return api.GetTrend(ctx, recipeID) },
	})
}

// CreateFeedback records customer feedback.
func CreateFeedback(ctx context.Context, q *Client, api *apiclient.Client, req model.CreateProductFeedbackRequest) (*model.ProductFeedback, error) {
	return Mutate(ctx, q, KindCreateFeedback, 0, func(ctx context.Context) (*model.ProductFeedback, error) {
		return api.CreateFeedback(ctx, req)
	})
}

// DeleteFeedback removes a feedback record.
func DeleteFeedback(ctx context.Context, q *Client, api *apiclient.Client, id int64) error {
	_, err := Mutate(ctx, q, KindDeleteFeedback, id, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, api.DeleteFeedback(ctx, id)
	})
	return err
}

// GenerateSummary asks the backend to summarize a period of feedback.
func GenerateSummary(ctx context.Context, q *Client, api *apiclient.Client, req model.GenerateFeedbackSummaryRequest) (*model.FeedbackSummary, error) {
	return Mutate(ctx, q, KindGenerateSummary, req.RecipeID, func(ctx context.Context) (*model.FeedbackSummary, error) {
		return api.GenerateSummary(ctx, req)
	})
}

// =============================================================================
// USERS
// =============================================================================

// Users reads the member list.
func Users(ctx context.Context, q *Client, api *apiclient.Client) Result[[]model.User] {
	return Fetch(ctx, q, QueryOptions[[]model.User]{
		Key:     UsersKey(),
		Enabled: true,
		Fn:      api.ListUsers,
	})
}

// Me reads the caller's profile, served from cache while fresh.
func Me(ctx context.Context, q *Client, api *apiclient.Client) Result[*model.User] {
	return Fetch(ctx, q, QueryOptions[*model.User]{
		Key:     MeKey(),
		Enabled: true,
		Fn:      api.GetMe,
	})
}

// RefetchMe fetches the caller's profile from the backend and replaces the
// cached copy.
func RefetchMe(ctx context.Context, q *Client, api *apiclient.Client) Result[*model.User] {
	return Refetch(ctx, q, QueryOptions[*model.User]{
		Key:     MeKey(),
		Enabled: true,
		Fn:      api.GetMe,
	})
}

// Profile adapts Me to the session's profile fetch. Fresh fetches bypass the
// cache. A failed refetch fails the profile even when a stale copy is cached.
func Profile(q *Client, api *apiclient.Client) session.ProfileFunc {
	return func(ctx context.Context, fresh bool) (*model.User, error) {
		var res Result[*model.User]
		if fresh {
			res = RefetchMe(ctx, q, api)
		} else {
			res = Me(ctx, q, api)
		}
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Data == nil {
			return nil, errors.New("empty profile response")
		}
		return res.Data, nil
	}
}

// UpdateUserRole changes a member's role and invalidates the member list.
func UpdateUserRole(ctx context.Context, q *Client, api *apiclient.Client, id int64, req model.UpdateRoleRequest) (*model.User, error) {
	return Mutate(ctx, q, KindUpdateUserRole, id, func(ctx context.Context) (*model.User, error) {
		return api.UpdateUserRole(ctx, id, req)
	})
}
