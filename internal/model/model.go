// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the wire types exchanged with the recipe backend:
// enumerations, response records, request bodies and the page envelope.
package model

// Role is a member's role as issued by the backend.
type Role string

// Member roles.
const (
	RoleChef      Role = "CHEF"
	RoleService   Role = "SERVICE"
	RolePurchaser Role = "PURCHASER"
	RoleProducer  Role = "PRODUCER"
)

// AllRoles returns every known role in display order.
func AllRoles() []Role {
	return []Role{RoleChef, RoleService, RolePurchaser, RoleProducer}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleChef, RoleService, RolePurchaser, RoleProducer:
		return true
	}
	return false
}

// RecipeStatus is the lifecycle state of a recipe.
type RecipeStatus string

// Recipe statuses.
const (
	StatusDraft     RecipeStatus = "DRAFT"
	StatusPublished RecipeStatus = "PUBLISHED"
	StatusArchived  RecipeStatus = "ARCHIVED"
	StatusDeleted   RecipeStatus = "DELETED"
)

// Valid reports whether s is one of the known statuses.
func (s RecipeStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived, StatusDeleted:
		return true
	}
	return false
}

// SenderType identifies the author of an AI consultation message.
type SenderType string

const (
	SenderUser SenderType = "USER"
	SenderAI   SenderType = "AI"
)

// CollectionMethod is how a piece of customer feedback was gathered.
type CollectionMethod string

const (
	CollectionSurvey    CollectionMethod = "SURVEY"
	CollectionInterview CollectionMethod = "INTERVIEW"
	CollectionSNS       CollectionMethod = "SNS"
	CollectionDirect    CollectionMethod = "DIRECT"
	CollectionOther     CollectionMethod = "OTHER"
)

// AllCollectionMethods returns every collection method in display order.
func AllCollectionMethods() []CollectionMethod {
	return []CollectionMethod{CollectionSurvey, CollectionInterview, CollectionSNS, CollectionDirect, CollectionOther}
}

// Paging and form limits shared with the backend.
const (
	DefaultPageSize            = 20
	MaxPageSize                = 100
	MaxRecipeTitleLength       = 200
	MaxRecipeDescriptionLength = 2000
	MaxArticleTitleLength      = 200
	MaxThreadThemeLength       = 200
	ScoreMin                   = 1
	ScoreMax                   = 5
)
