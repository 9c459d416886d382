package repository

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authrelay/internal/apperr"
)

func testDefaults() Defaults {
	return Defaults{Page: 1, PageSize: 20, Ordering: "-created_at"}
}

func TestParseFindQueryDefaults(t *testing.T) {
	q, err := ParseFindQuery(url.Values{}, testDefaults())
	require.NoError(t, err)
	assert.Equal(t, "-created_at", q.Ordering)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, PageSize{Value: 20}, q.PageSize)
	assert.Nil(t, q.CreatedBefore)
	assert.Nil(t, q.CreatedAfter)
}

func TestParseFindQueryOverrides(t *testing.T) {
	values := url.Values{
		"ordering":  {"email"},
		"page":      {"3"},
		"page_size": {"5"},
	}
	q, err := ParseFindQuery(values, testDefaults())
	require.NoError(t, err)
	assert.Equal(t, "email", q.Ordering)
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, PageSize{Value: 5}, q.PageSize)
}

func TestParseFindQueryPage(t *testing.T) {
	cases := []struct {
		name string
		page string
		ok   bool
	}{
		{"positive", "2", true},
		{"zero", "0", false},
		{"negative", "-1", false},
		{"not a number", "abc", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFindQuery(url.Values{"page": {tc.page}}, testDefaults())
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			var ae *apperr.Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, 422, ae.Status)
			assert.Equal(t, "Page must be a positive integer", ae.Detail)
		})
	}
}

func TestParseFindQueryPageSize(t *testing.T) {
	t.Run("all", func(t *testing.T) {
		q, err := ParseFindQuery(url.Values{"page_size": {"all"}}, testDefaults())
		require.NoError(t, err)
		assert.True(t, q.PageSize.All)
	})
	t.Run("numeric", func(t *testing.T) {
		q, err := ParseFindQuery(url.Values{"page_size": {"50"}}, testDefaults())
		require.NoError(t, err)
		assert.Equal(t, PageSize{Value: 50}, q.PageSize)
	})
	t.Run("zero is accepted", func(t *testing.T) {
		q, err := ParseFindQuery(url.Values{"page_size": {"0"}}, testDefaults())
		require.NoError(t, err)
		assert.Equal(t, PageSize{Value: 0}, q.PageSize)
	})
	t.Run("negative", func(t *testing.T) {
		_, err := ParseFindQuery(url.Values{"page_size": {"-1"}}, testDefaults())
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, "Page size must be a positive integer", ae.Detail)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := ParseFindQuery(url.Values{"page_size": {"many"}}, testDefaults())
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, "Page size must be 'all' or a positive integer", ae.Detail)
	})
}

func TestParseFindQueryDatetimeLayouts(t *testing.T) {
	for _, raw := range []string{
		"2024-06-01T12:00:00Z",
		"2024-06-01T12:00:00",
		"2024-06-01",
	} {
		q, err := ParseFindQuery(url.Values{"created_after": {raw}}, testDefaults())
		require.NoError(t, err, raw)
		require.NotNil(t, q.CreatedAfter)
	}

	_, err := ParseFindQuery(url.Values{"created_after": {"yesterday"}}, testDefaults())
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 422, ae.Status)
}

func TestParseFindQueryConflictingDateFilters(t *testing.T) {
	t.Run("after pair", func(t *testing.T) {
		values := url.Values{
			"created_after":       {"2024-01-01"},
			"created_on_or_after": {"2024-01-01"},
		}
		_, err := ParseFindQuery(values, testDefaults())
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, "CONFLICTING_DATE_FILTERS: Cannot use both created_after and created_on_or_after", ae.Detail)
	})
	t.Run("before pair", func(t *testing.T) {
		values := url.Values{
			"created_before":       {"2024-01-01"},
			"created_on_or_before": {"2024-01-01"},
		}
		_, err := ParseFindQuery(values, testDefaults())
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, "CONFLICTING_DATE_FILTERS: Cannot use both created_before and created_on_or_before", ae.Detail)
	})
}

func TestParseFindQueryDateRange(t *testing.T) {
	t.Run("start after end", func(t *testing.T) {
		values := url.Values{
			"created_after":  {"2024-06-01"},
			"created_before": {"2024-01-01"},
		}
		_, err := ParseFindQuery(values, testDefaults())
		var ae *apperr.Error
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, "INVALID_DATE_RANGE: Start date must be before end date", ae.Detail)
	})
	t.Run("equal bounds rejected", func(t *testing.T) {
		values := url.Values{
			"created_after":  {"2024-06-01"},
			"created_before": {"2024-06-01"},
		}
		_, err := ParseFindQuery(values, testDefaults())
		assert.Error(t, err)
	})
	t.Run("valid range", func(t *testing.T) {
		values := url.Values{
			"created_on_or_after": {"2024-01-01"},
			"created_before":      {"2024-06-01"},
		}
		_, err := ParseFindQuery(values, testDefaults())
		assert.NoError(t, err)
	})
}

func TestPageSizeJSON(t *testing.T) {
	all, err := json.Marshal(PageSize{All: true})
	require.NoError(t, err)
	assert.Equal(t, `"all"`, string(all))

	n, err := json.Marshal(PageSize{Value: 20})
	require.NoError(t, err)
	assert.Equal(t, `20`, string(n))

	var p PageSize
	require.NoError(t, json.Unmarshal([]byte(`"all"`), &p))
	assert.True(t, p.All)

	require.NoError(t, json.Unmarshal([]byte(`15`), &p))
	assert.Equal(t, 15, p.Value)

	assert.Error(t, json.Unmarshal([]byte(`"some"`), &p))
}
