package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdesk/internal/apierr"
)

func assertKind(t *testing.T, err error, kind apierr.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apierr.From(err).Kind)
}

func TestBuildDefaults(t *testing.T) {
	spec, err := Build(Params{})
	require.NoError(t, err)

	assert.Nil(t, spec.Title)
	assert.Nil(t, spec.IsComplete)
	assert.Equal(t, "id", spec.SortColumn)
	assert.False(t, spec.Descending)
	assert.Equal(t, 0, spec.Skip)
	assert.Equal(t, DefaultLimit, spec.Limit)
}

func TestBuildAllSortFields(t *testing.T) {
	for name, column := range sortColumns {
		spec, err := Build(Params{SortBy: name})
		require.NoError(t, err, "sort field %q", name)
		assert.Equal(t, column, spec.SortColumn)
	}
}

func TestBuildRejectsUnknownSortField(t *testing.T) {
	for _, sortBy := range []string{"password", "user_id", "id; DROP TABLE tasks", "Title", "created_at"} {
		_, err := Build(Params{SortBy: sortBy})
		assertKind(t, err, apierr.KindInvalidSortField)
	}
}

func TestBuildOrder(t *testing.T) {
	spec, err := Build(Params{Order: "desc"})
	require.NoError(t, err)
	assert.True(t, spec.Descending)

	spec, err = Build(Params{Order: "ASC"})
	require.NoError(t, err)
	assert.False(t, spec.Descending)

	_, err = Build(Params{Order: "sideways"})
	assertKind(t, err, apierr.KindInvalidSortOrder)
}

func TestBuildPagination(t *testing.T) {
	spec, err := Build(Params{Skip: "5", Limit: "20"})
	require.NoError(t, err)
	assert.Equal(t, 5, spec.Skip)
	assert.Equal(t, 20, spec.Limit)

	for _, p := range []Params{
		{Skip: "-1"},
		{Skip: "abc"},
		{Limit: "0"},
		{Limit: "-3"},
		{Limit: "ten"},
	} {
		_, err := Build(p)
		assertKind(t, err, apierr.KindInvalidPagination)
	}
}

func TestBuildFilters(t *testing.T) {
	spec, err := Build(Params{Title: "groceries", IsComplete: "true"})
	require.NoError(t, err)
	require.NotNil(t, spec.Title)
	assert.Equal(t, "groceries", *spec.Title)
	require.NotNil(t, spec.IsComplete)
	assert.True(t, *spec.IsComplete)

	_, err = Build(Params{IsComplete: "maybe"})
	assertKind(t, err, apierr.KindBadRequest)
}
