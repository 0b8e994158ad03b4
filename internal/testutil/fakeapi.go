// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/recipe-console/internal/model"
)

// Tokens issued by NewBackend, one per role.
const (
	TokenChef      = "token-chef"
	TokenService   = "token-service"
	TokenPurchaser = "token-purchaser"
	TokenProducer  = "token-producer"
)

// Backend is an in-memory stand-in for the recipe REST API, mounted under
// /api on an httptest server.
type Backend struct {
	Server *httptest.Server

	mu         sync.Mutex
	users      map[int64]*model.User
	tokens     map[string]int64
	recipes    map[int64]*model.Recipe
	history    map[int64][]model.RecipeHistory
	categories []model.KnowledgeCategory
	articles   map[int64]*model.KnowledgeArticle
	threads    map[int64]*model.AiThread
	messages   map[int64][]model.AiMessage
	feedbacks  map[int64]*model.ProductFeedback
	summaries  map[int64]*model.FeedbackSummary
	nextID     int64

	hits      map[string]int
	overrides map[string]int
}

// NewBackend starts a fake backend seeded with one member per role and two
// knowledge categories. It is closed when the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		users:     map[int64]*model.User{},
		tokens:    map[string]int64{},
		recipes:   map[int64]*model.Recipe{},
		history:   map[int64][]model.RecipeHistory{},
		articles:  map[int64]*model.KnowledgeArticle{},
		threads:   map[int64]*model.AiThread{},
		messages:  map[int64][]model.AiMessage{},
		feedbacks: map[int64]*model.ProductFeedback{},
		summaries: map[int64]*model.FeedbackSummary{},
		hits:      map[string]int{},
		overrides: map[string]int{},
		nextID:    100,
	}
	for i, seed := range []struct {
		token string
		role  model.Role
		name  string
	}{
		{TokenChef, model.RoleChef, "Chef"},
		{TokenService, model.RoleService, "Service"},
		{TokenPurchaser, model.RolePurchaser, "Purchaser"},
		{TokenProducer, model.RoleProducer, "Producer"},
	} {
		id := int64(i + 1)
		b.users[id] = &model.User{
			ID:      id,
			Email:   strings.ToLower(seed.name) + "@example.com",
			Name:    seed.name,
			Role:    seed.role,
			Enabled: true,
		}
		b.tokens[seed.token] = id
	}
	b.categories = []model.KnowledgeCategory{
		{ID: 1, Name: "Techniques", SortOrder: 1},
		{ID: 2, Name: "Ingredients", SortOrder: 2},
	}

	b.Server = httptest.NewServer(b.routes())
	t.Cleanup(b.Server.Close)
	return b
}

// BaseURL is the API prefix to configure clients with.
func (b *Backend) BaseURL() string {
	return b.Server.URL + "/api"
}

// Hits returns how many GET requests reached path (without /api and query).
func (b *Backend) Hits(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

// Fail makes every request to "METHOD /path" answer with status until
// cleared with status 0.
func (b *Backend) Fail(method, path string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + path
	if status == 0 {
		delete(b.overrides, key)
		return
	}
	b.overrides[key] = status
}

// SeedRecipes adds n DRAFT recipes owned by the chef and returns their ids.
func (b *Backend) SeedRecipes(n int) []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]int64, 0, n)
	for i := range n {
		r := b.newRecipe(model.CreateRecipeRequest{Title: fmt.Sprintf("Recipe %d", i+1)}, b.users[1])
		ids = append(ids, r.ID)
	}
	return ids
}

// SeedArticle adds an article authored by the given member.
func (b *Backend) SeedArticle(authorID int64, title, content string) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	a := b.newArticle(model.CreateKnowledgeArticleRequest{Title: title, Content: content, CategoryID: 1}, b.users[authorID])
	return a.ID
}

// Recipe returns a copy of the stored recipe.
func (b *Backend) Recipe(id int64) (model.Recipe, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.recipes[id]
	if !ok {
		return model.Recipe{}, false
	}
	return *r, true
}

func (b *Backend) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(b.count, b.override)

	r.Route("/api", func(r chi.Router) {
		r.Get("/dev/token", b.devToken)

		r.Group(func(r chi.Router) {
			r.Use(b.auth)

			r.Get("/users/me", b.me)
			r.Get("/users", b.listUsers)
			r.Put("/users/{id}/role", b.updateRole)

			r.Get("/recipes", b.listRecipes)
			r.Post("/recipes", b.createRecipe)
			r.Get("/recipes/{id}", b.getRecipe)
			r.Put("/recipes/{id}", b.updateRecipe)
			r.Delete("/recipes/{id}", b.deleteRecipe)
			r.Put("/recipes/{id}/status", b.updateStatus)
			r.Put("/recipes/{id}/service-design", b.updateServiceDesign)
			r.Put("/recipes/{id}/experience-design", b.updateExperienceDesign)
			r.Get("/recipes/{id}/history", b.recipeHistory)

			r.Get("/knowledge/categories", b.listCategories)
			r.Get("/knowledge/articles", b.listArticles)
			r.Post("/knowledge/articles", b.createArticle)
			r.Get("/knowledge/articles/search", b.searchArticles)
			r.Get("/knowledge/articles/{id}", b.getArticle)
			r.Put("/knowledge/articles/{id}", b.updateArticle)
			r.Delete("/knowledge/articles/{id}", b.deleteArticle)

			r.Get("/ai/threads", b.listThreads)
			r.Post("/ai/threads", b.createThread)
			r.Get("/ai/threads/{id}", b.getThread)
			r.Get("/ai/threads/{id}/messages", b.listMessages)
			r.Post("/ai/threads/{id}/messages", b.sendMessage)

			r.Get("/feedbacks", b.listFeedbacks)
			r.Post("/feedbacks", b.createFeedback)
			r.Post("/feedbacks/summaries/generate", b.generateSummary)
			r.Get("/feedbacks/summaries", b.listSummaries)
			r.Get("/feedbacks/summaries/trend", b.trend)
			r.Get("/feedbacks/summaries/{id}", b.getSummary)
			r.Get("/feedbacks/{id}", b.getFeedback)
			r.Delete("/feedbacks/{id}", b.deleteFeedback)
		})
	})
	return r
}

// =============================================================================
// MIDDLEWARE
// =============================================================================

type ctxUser struct{}

func (b *Backend) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			b.mu.Lock()
			b.hits[strings.TrimPrefix(r.URL.Path, "/api")]++
			b.mu.Unlock()
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) override(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		status, ok := b.overrides[r.Method+" "+strings.TrimPrefix(r.URL.Path, "/api")]
		b.mu.Unlock()
		if ok {
			writeError(w, status, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		b.mu.Lock()
		id, ok := b.tokens[token]
		b.mu.Unlock()
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(contextWithUser(r, id)))
	})
}

// =============================================================================
// USERS
// =============================================================================

func (b *Backend) devToken(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	u := *b.users[4]
	b.mu.Unlock()
	writeJSON(w, http.StatusOK, model.DevTokenResponse{Token: TokenProducer, Email: u.Email, Role: u.Role})
}

func (b *Backend) me(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.users[userID(r)])
}

func (b *Backend) listUsers(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasRole(r, model.RoleProducer) {
		writeError(w, http.StatusForbidden, "access denied")
		return
	}
	users := make([]model.User, 0, len(b.users))
	for _, id := range sortedKeys(b.users) {
		users = append(users, *b.users[id])
	}
	writeJSON(w, http.StatusOK, users)
}

func (b *Backend) updateRole(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateRoleRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasRole(r, model.RoleProducer) {
		writeError(w, http.StatusForbidden, "access denied")
		return
	}
	u, ok := b.users[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if !req.Role.Valid() {
		writeError(w, http.StatusBadRequest, "invalid role")
		return
	}
	u.Role = req.Role
	writeJSON(w, http.StatusOK, u)
}

// =============================================================================
// RECIPES
// =============================================================================

func (b *Backend) listRecipes(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	status := model.RecipeStatus(r.URL.Query().Get("status"))
	category := r.URL.Query().Get("category")
	var items []model.RecipeListItem
	for _, id := range sortedKeys(b.recipes) {
		rec := b.recipes[id]
		if rec.Status == model.StatusDeleted || (status != "" && rec.Status != status) {
			continue
		}
		if category != "" && (rec.Category == nil || *rec.Category != category) {
			continue
		}
		items = append(items, model.RecipeListItem{
			ID: rec.ID, Title: rec.Title, Description: rec.Description, Category: rec.Category,
			Servings: rec.Servings, Status: rec.Status, CreatedByName: rec.CreatedBy.Name,
			CreatedAt: rec.CreatedAt, UpdatedAt: rec.UpdatedAt,
		})
	}
	writeJSON(w, http.StatusOK, paginate(items, r))
}

func (b *Backend) createRecipe(w http.ResponseWriter, r *http.Request) {
	var req model.CreateRecipeRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasRole(r, model.RoleChef, model.RoleProducer) {
		writeError(w, http.StatusForbidden, "recipe creation not permitted")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		writeFieldError(w, "title", "must not be blank")
		return
	}
	writeJSON(w, http.StatusCreated, b.newRecipe(req, b.users[userID(r)]))
}

func (b *Backend) getRecipe(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.liveRecipe(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (b *Backend) updateRecipe(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateRecipeRequest
	if !decode(w, r, &req) {
		return
	}
	b.editRecipe(w, r, []model.Role{model.RoleChef, model.RoleProducer}, "UPDATE", func(rec *model.Recipe) error {
		if req.Title != "" {
			rec.Title = req.Title
		}
		if req.Description != "" {
			rec.Description = ptr(req.Description)
		}
		if req.Category != "" {
			rec.Category = ptr(req.Category)
		}
		if req.Servings != nil {
			rec.Servings = req.Servings
		}
		if req.Concept != "" {
			rec.Concept = ptr(req.Concept)
		}
		if req.Story != "" {
			rec.Story = ptr(req.Story)
		}
		return nil
	})
}

func (b *Backend) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasRole(r, model.RoleChef, model.RoleProducer) {
		writeError(w, http.StatusForbidden, "recipe deletion not permitted")
		return
	}
	rec, ok := b.liveRecipe(w, r)
	if !ok {
		return
	}
	rec.Status = model.StatusDeleted
	b.record(rec.ID, "DELETE", "status", userID(r))
	w.WriteHeader(http.StatusNoContent)
}

var allowedTransitions = map[model.RecipeStatus][]model.RecipeStatus{
	model.StatusDraft:     {model.StatusPublished},
	model.StatusPublished: {model.StatusArchived},
	model.StatusArchived:  {model.StatusPublished},
}

func (b *Backend) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateStatusRequest
	if !decode(w, r, &req) {
		return
	}
	b.editRecipe(w, r, []model.Role{model.RoleChef, model.RoleProducer}, "STATUS_CHANGE", func(rec *model.Recipe) error {
		if !slices.Contains(allowedTransitions[rec.Status], req.Status) {
			return fmt.Errorf("cannot change status from %s to %s", rec.Status, req.Status)
		}
		rec.Status = req.Status
		return nil
	})
}

func (b *Backend) updateServiceDesign(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateServiceDesignRequest
	if !decode(w, r, &req) {
		return
	}
	roles := []model.Role{model.RoleChef, model.RoleService, model.RoleProducer}
	b.editRecipe(w, r, roles, "SERVICE_DESIGN", func(rec *model.Recipe) error {
		rec.ServiceDesign = &model.ServiceDesign{
			ID:                  rec.ID,
			PlatingInstructions: optional(req.PlatingInstructions),
			ServiceMethod:       optional(req.ServiceMethod),
			CustomerScript:      optional(req.CustomerScript),
			StagingMethod:       optional(req.StagingMethod),
			Timing:              optional(req.Timing),
			Storytelling:        optional(req.Storytelling),
		}
		return nil
	})
}

func (b *Backend) updateExperienceDesign(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateExperienceDesignRequest
	if !decode(w, r, &req) {
		return
	}
	roles := []model.Role{model.RoleChef, model.RoleService, model.RoleProducer}
	b.editRecipe(w, r, roles, "EXPERIENCE_DESIGN", func(rec *model.Recipe) error {
		rec.ExperienceDesign = &model.ExperienceDesign{
			ID:                     rec.ID,
			TargetScene:            optional(req.TargetScene),
			EmotionalKeyPoints:     optional(req.EmotionalKeyPoints),
			SpecialOccasionSupport: optional(req.SpecialOccasionSupport),
			SeasonalPresentation:   optional(req.SeasonalPresentation),
			SensoryAppeal:          optional(req.SensoryAppeal),
		}
		return nil
	})
}

func (b *Backend) recipeHistory(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec, ok := b.liveRecipe(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, b.history[rec.ID])
}

// editRecipe applies fn to a live recipe under the lock. fn errors become 400.
func (b *Backend) editRecipe(w http.ResponseWriter, r *http.Request, roles []model.Role, change string, fn func(*model.Recipe) error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasRole(r, roles...) {
		writeError(w, http.StatusForbidden, "recipe edit not permitted")
		return
	}
	rec, ok := b.liveRecipe(w, r)
	if !ok {
		return
	}
	if err := fn(rec); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec.UpdatedAt = now()
	b.record(rec.ID, change, "", userID(r))
	writeJSON(w, http.StatusOK, rec)
}

func (b *Backend) liveRecipe(w http.ResponseWriter, r *http.Request) (*model.Recipe, bool) {
	rec, ok := b.recipes[pathID(r)]
	if !ok || rec.Status == model.StatusDeleted {
		writeError(w, http.StatusNotFound, "recipe not found")
		return nil, false
	}
	return rec, true
}

func (b *Backend) newRecipe(req model.CreateRecipeRequest, author *model.User) *model.Recipe {
	b.nextID++
	rec := &model.Recipe{
		ID:          b.nextID,
		Title:       req.Title,
		Description: optional(req.Description),
		Category:    optional(req.Category),
		Servings:    req.Servings,
		Status:      model.StatusDraft,
		Concept:     optional(req.Concept),
		Story:       optional(req.Story),
		CreatedBy:   model.CreatedBy{ID: author.ID, Name: author.Name, Role: author.Role},
		CreatedAt:   now(),
		UpdatedAt:   now(),
	}
	for _, s := range req.CookingSteps {
		b.nextID++
		rec.CookingSteps = append(rec.CookingSteps, model.CookingStep{
			ID: b.nextID, StepNumber: s.StepNumber, Description: s.Description,
			DurationMinutes: s.DurationMinutes, Temperature: optional(s.Temperature), Tips: optional(s.Tips),
		})
	}
	for _, in := range req.Ingredients {
		b.nextID++
		rec.Ingredients = append(rec.Ingredients, model.RecipeIngredient{
			ID: b.nextID, IngredientID: in.IngredientID, IngredientName: fmt.Sprintf("Ingredient %d", in.IngredientID),
			Quantity: in.Quantity, Unit: optional(in.Unit),
		})
	}
	b.recipes[rec.ID] = rec
	b.record(rec.ID, "CREATE", "", author.ID)
	return rec
}

func (b *Backend) record(recipeID int64, change, fields string, by int64) {
	b.nextID++
	b.history[recipeID] = append([]model.RecipeHistory{{
		ID: b.nextID, ChangeType: change, ChangedFields: optional(fields),
		ChangedByName: b.users[by].Name, ChangedAt: now(),
	}}, b.history[recipeID]...)
}

// =============================================================================
// KNOWLEDGE
// =============================================================================

func (b *Backend) listCategories(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.categories)
}

func (b *Backend) listArticles(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	categoryID, _ := strconv.ParseInt(r.URL.Query().Get("categoryId"), 10, 64)
	var items []model.KnowledgeArticle
	for _, id := range sortedKeys(b.articles) {
		a := b.articles[id]
		if categoryID > 0 && a.CategoryID != categoryID {
			continue
		}
		items = append(items, *a)
	}
	writeJSON(w, http.StatusOK, paginate(items, r))
}

func (b *Backend) searchArticles(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	keyword := strings.ToLower(r.URL.Query().Get("keyword"))
	items := []model.KnowledgeArticle{}
	for _, id := range sortedKeys(b.articles) {
		a := b.articles[id]
		if strings.Contains(strings.ToLower(a.Title), keyword) || strings.Contains(strings.ToLower(a.Content), keyword) {
			items = append(items, *a)
		}
	}
	writeJSON(w, http.StatusOK, items)
}

func (b *Backend) createArticle(w http.ResponseWriter, r *http.Request) {
	var req model.CreateKnowledgeArticleRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if strings.TrimSpace(req.Content) == "" {
		writeFieldError(w, "content", "must not be blank")
		return
	}
	writeJSON(w, http.StatusCreated, b.newArticle(req, b.users[userID(r)]))
}

func (b *Backend) getArticle(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.articles[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "article not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (b *Backend) updateArticle(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateKnowledgeArticleRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.articles[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "article not found")
		return
	}
	if a.AuthorID != userID(r) && !b.hasRole(r, model.RoleProducer) {
		writeError(w, http.StatusForbidden, "only the author may edit this article")
		return
	}
	if req.Title != "" {
		a.Title = req.Title
	}
	if req.Content != "" {
		a.Content = req.Content
	}
	if req.Tags != "" {
		a.Tags = ptr(req.Tags)
	}
	a.UpdatedAt = now()
	writeJSON(w, http.StatusOK, a)
}

func (b *Backend) deleteArticle(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	a, ok := b.articles[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "article not found")
		return
	}
	if a.AuthorID != userID(r) && !b.hasRole(r, model.RoleProducer) {
		writeError(w, http.StatusForbidden, "only the author may delete this article")
		return
	}
	delete(b.articles, a.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) newArticle(req model.CreateKnowledgeArticleRequest, author *model.User) *model.KnowledgeArticle {
	b.nextID++
	a := &model.KnowledgeArticle{
		ID: b.nextID, Title: req.Title, Content: req.Content, CategoryID: req.CategoryID,
		Tags: optional(req.Tags), AuthorID: author.ID, AuthorName: author.Name,
		RelatedRecipes: []model.RelatedRecipe{}, CreatedAt: now(), UpdatedAt: now(),
	}
	for _, c := range b.categories {
		if c.ID == req.CategoryID {
			a.CategoryName = c.Name
		}
	}
	b.articles[a.ID] = a
	return a
}

// =============================================================================
// AI CONSULTATION
// =============================================================================

func (b *Backend) listThreads(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	me := b.users[userID(r)].Name
	var items []model.AiThread
	for _, id := range sortedKeys(b.threads) {
		if b.threads[id].UserName == me {
			items = append(items, *b.threads[id])
		}
	}
	writeJSON(w, http.StatusOK, paginate(items, r))
}

func (b *Backend) createThread(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAiThreadRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if strings.TrimSpace(req.Theme) == "" || strings.TrimSpace(req.InitialMessage) == "" {
		writeFieldError(w, "initialMessage", "must not be blank")
		return
	}
	b.nextID++
	th := &model.AiThread{ID: b.nextID, Theme: req.Theme, RecipeID: req.RecipeID,
		UserName: b.users[userID(r)].Name, CreatedAt: now(), UpdatedAt: now()}
	if req.RecipeID != nil {
		if rec, ok := b.recipes[*req.RecipeID]; ok {
			th.RecipeName = ptr(rec.Title)
		}
	}
	b.threads[th.ID] = th
	b.appendExchange(th.ID, req.InitialMessage)
	writeJSON(w, http.StatusCreated, th)
}

func (b *Backend) getThread(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	th, ok := b.threads[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "thread not found")
		return
	}
	writeJSON(w, http.StatusOK, th)
}

func (b *Backend) listMessages(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pathID(r)
	if _, ok := b.threads[id]; !ok {
		writeError(w, http.StatusNotFound, "thread not found")
		return
	}
	msgs := b.messages[id]
	if msgs == nil {
		msgs = []model.AiMessage{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (b *Backend) sendMessage(w http.ResponseWriter, r *http.Request) {
	var req model.SendAiMessageRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pathID(r)
	if _, ok := b.threads[id]; !ok {
		writeError(w, http.StatusNotFound, "thread not found")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeFieldError(w, "message", "must not be blank")
		return
	}
	writeJSON(w, http.StatusOK, b.appendExchange(id, req.Message))
}

// appendExchange stores a user message and a canned AI reply, returning the reply.
func (b *Backend) appendExchange(threadID int64, content string) model.AiMessage {
	b.nextID++
	user := model.AiMessage{ID: b.nextID, SenderType: model.SenderUser, Content: content, CreatedAt: now()}
	b.nextID++
	reply := model.AiMessage{ID: b.nextID, SenderType: model.SenderAI, Content: "Consider: " + content, CreatedAt: now()}
	b.messages[threadID] = append(b.messages[threadID], user, reply)
	return reply
}

// =============================================================================
// FEEDBACK
// =============================================================================

func (b *Backend) listFeedbacks(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	recipeID, _ := strconv.ParseInt(r.URL.Query().Get("recipeId"), 10, 64)
	var items []model.ProductFeedback
	for _, id := range sortedKeys(b.feedbacks) {
		f := b.feedbacks[id]
		if recipeID > 0 && f.RecipeID != recipeID {
			continue
		}
		items = append(items, *f)
	}
	writeJSON(w, http.StatusOK, paginate(items, r))
}

func (b *Backend) createFeedback(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProductFeedbackRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.hasRole(r, model.RoleChef, model.RoleService, model.RoleProducer) {
		writeError(w, http.StatusForbidden, "feedback registration not permitted")
		return
	}
	if req.SatisfactionScore < model.ScoreMin || req.SatisfactionScore > model.ScoreMax {
		writeFieldError(w, "satisfactionScore", "must be between 1 and 5")
		return
	}
	b.nextID++
	f := &model.ProductFeedback{
		ID: b.nextID, RecipeID: req.RecipeID, StoreID: req.StoreID, PeriodStart: req.PeriodStart,
		PeriodEnd: req.PeriodEnd, SatisfactionScore: req.SatisfactionScore, EmotionScore: req.EmotionScore,
		Comment: optional(req.Comment), CollectionMethod: req.CollectionMethod,
		RegisteredByName: b.users[userID(r)].Name, CreatedAt: now(),
	}
	if rec, ok := b.recipes[req.RecipeID]; ok {
		f.RecipeTitle = rec.Title
	}
	b.feedbacks[f.ID] = f
	writeJSON(w, http.StatusCreated, f)
}

func (b *Backend) getFeedback(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.feedbacks[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "feedback not found")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (b *Backend) deleteFeedback(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := pathID(r)
	if _, ok := b.feedbacks[id]; !ok {
		writeError(w, http.StatusNotFound, "feedback not found")
		return
	}
	delete(b.feedbacks, id)
	w.WriteHeader(http.StatusNoContent)
}

func (b *Backend) generateSummary(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateFeedbackSummaryRequest
	if !decode(w, r, &req) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	var sum, count int
	for _, f := range b.feedbacks {
		if f.RecipeID == req.RecipeID && f.PeriodStart >= req.PeriodStart && f.PeriodEnd <= req.PeriodEnd {
			sum += f.SatisfactionScore
			count++
		}
	}
	avg := "0.00"
	if count > 0 {
		avg = strconv.FormatFloat(float64(sum)/float64(count), 'f', 2, 64)
	}
	b.nextID++
	s := &model.FeedbackSummary{
		ID: b.nextID, RecipeID: req.RecipeID, PeriodStart: req.PeriodStart, PeriodEnd: req.PeriodEnd,
		AvgSatisfaction: model.Decimal(avg), FeedbackCount: count, CreatedAt: now(), UpdatedAt: now(),
	}
	if rec, ok := b.recipes[req.RecipeID]; ok {
		s.RecipeTitle = rec.Title
	}
	b.summaries[s.ID] = s
	writeJSON(w, http.StatusOK, s)
}

func (b *Backend) listSummaries(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	recipeID, _ := strconv.ParseInt(r.URL.Query().Get("recipeId"), 10, 64)
	writeJSON(w, http.StatusOK, paginate(b.summariesFor(recipeID), r))
}

func (b *Backend) trend(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	recipeID, _ := strconv.ParseInt(r.URL.Query().Get("recipeId"), 10, 64)
	items := b.summariesFor(recipeID)
	if items == nil {
		items = []model.FeedbackSummary{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (b *Backend) getSummary(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.summaries[pathID(r)]
	if !ok {
		writeError(w, http.StatusNotFound, "summary not found")
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (b *Backend) summariesFor(recipeID int64) []model.FeedbackSummary {
	var items []model.FeedbackSummary
	for _, id := range sortedKeys(b.summaries) {
		if s := b.summaries[id]; s.RecipeID == recipeID {
			items = append(items, *s)
		}
	}
	return items
}

// =============================================================================
// HELPERS
// =============================================================================

func (b *Backend) hasRole(r *http.Request, roles ...model.Role) bool {
	u, ok := b.users[userID(r)]
	return ok && slices.Contains(roles, u.Role)
}

func contextWithUser(r *http.Request, id int64) context.Context {
	return context.WithValue(r.Context(), ctxUser{}, id)
}

func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(ctxUser{}).(int64)
	return id
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id
}

func paginate[T any](items []T, r *http.Request) model.Page[T] {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 {
		size = model.DefaultPageSize
	}
	total := len(items)
	totalPages := (total + size - 1) / size
	start := min(page*size, total)
	end := min(start+size, total)
	content := items[start:end]
	if content == nil {
		content = []T{}
	}
	return model.Page[T]{
		Content:       content,
		TotalElements: int64(total),
		TotalPages:    totalPages,
		Number:        page,
		Size:          size,
		First:         page == 0,
		Last:          page >= totalPages-1,
		Empty:         len(content) == 0,
	}
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{
		Status: status, Error: http.StatusText(status), Message: msg, Timestamp: now(),
	})
}

func writeFieldError(w http.ResponseWriter, field, msg string) {
	writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
		Status: http.StatusBadRequest, Error: "Bad Request", Message: "Validation failed",
		FieldErrors: []model.FieldError{{Field: field, Message: msg}}, Timestamp: now(),
	})
}

func now() model.LocalTime {
	return model.LocalTime{Time: time.Now().UTC().Truncate(time.Second)}
}

func ptr[T any](v T) *T {
	return &v
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
