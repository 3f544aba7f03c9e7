package store

import (
	"strings"

	"smartop/fleet-service/internal/models"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// UserSortColumns maps accepted sortBy values to columns.
var UserSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"firstName": "first_name",
	"lastName":  "last_name",
	"email":     "email",
	"role":      "role",
	"isActive":  "is_active",
	"lastLogin": "last_login",
}

// NormalizeUserQuery fills defaults. Unknown sort fields fall back to createdAt.
func NormalizeUserQuery(query models.UserQuery) models.UserQuery {
	query.Search = strings.TrimSpace(query.Search)
	if query.Page < 1 {
		query.Page = DefaultPage
	}
	if query.Limit < 1 {
		query.Limit = DefaultLimit
	}
	if query.Limit > MaxLimit {
		query.Limit = MaxLimit
	}
	if _, ok := UserSortColumns[query.SortBy]; !ok {
		query.SortBy = "createdAt"
	}
	if strings.EqualFold(query.SortOrder, "asc") {
		query.SortOrder = "asc"
	} else {
		query.SortOrder = "desc"
	}
	return query
}
