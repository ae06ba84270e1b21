// Package query validates the optional list parameters into a Spec the
// repository can execute. Client-supplied sort fields never reach the SQL
// layer directly: they are matched against a fixed allow-list first.
package query

import (
	"strconv"
	"strings"

	"taskdesk/internal/apierr"
)

const (
	DefaultLimit    = 10
	defaultSortName = "id"
)

// sortColumns is the allow-list of sortable task attributes, mapped to the
// column each one orders by.
var sortColumns = map[string]string{
	"id":          "id",
	"title":       "title",
	"date":        "date",
	"priority":    "priority",
	"is_complete": "is_complete",
}

// Params holds the raw query-string values as received. Empty string means
// the parameter was not supplied.
type Params struct {
	Title      string
	IsComplete string
	SortBy     string
	Order      string
	Skip       string
	Limit      string
}

// Spec is a validated list query. SortColumn is always a value from the
// allow-list, never client input.
type Spec struct {
	Title      *string
	IsComplete *bool
	SortColumn string
	Descending bool
	Skip       int
	Limit      int
}

// Build validates p into a Spec, applying defaults for anything omitted.
func Build(p Params) (Spec, error) {
	spec := Spec{
		SortColumn: sortColumns[defaultSortName],
		Skip:       0,
		Limit:      DefaultLimit,
	}

	if p.Title != "" {
		title := p.Title
		spec.Title = &title
	}

	if p.IsComplete != "" {
		isComplete, err := strconv.ParseBool(p.IsComplete)
		if err != nil {
			return Spec{}, apierr.BadRequest("Invalid is_complete value", err)
		}
		spec.IsComplete = &isComplete
	}

	if p.SortBy != "" {
		column, ok := sortColumns[p.SortBy]
		if !ok {
			return Spec{}, apierr.InvalidSortField(p.SortBy)
		}
		spec.SortColumn = column
	}

	switch strings.ToLower(p.Order) {
	case "", "asc":
	case "desc":
		spec.Descending = true
	default:
		return Spec{}, apierr.InvalidSortOrder(p.Order)
	}

	if p.Skip != "" {
		skip, err := strconv.Atoi(p.Skip)
		if err != nil || skip < 0 {
			return Spec{}, apierr.InvalidPagination("skip must be a non-negative integer")
		}
		spec.Skip = skip
	}

	if p.Limit != "" {
		limit, err := strconv.Atoi(p.Limit)
		if err != nil || limit < 1 {
			return Spec{}, apierr.InvalidPagination("limit must be a positive integer")
		}
		spec.Limit = limit
	}

	return spec, nil
}
