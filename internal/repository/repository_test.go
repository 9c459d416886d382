package repository

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authrelay/internal/apperr"
)

func TestEntityName(t *testing.T) {
	assert.Equal(t, "User", entityName("users"))
	assert.Equal(t, "Api_key", entityName("api_keys"))
	assert.Equal(t, "Webhook", entityName("webhooks"))
	assert.Equal(t, "", entityName("s"))
}

func TestOrderBy(t *testing.T) {
	r := New[struct{}](nil, "users", []string{"id", "email", "created_at"})

	order, err := r.orderBy("-created_at")
	require.NoError(t, err)
	assert.Equal(t, "created_at", order.Column.Name)
	assert.True(t, order.Desc)

	order, err = r.orderBy("email")
	require.NoError(t, err)
	assert.False(t, order.Desc)

	_, err = r.orderBy("-favourite_color")
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 422, ae.Status)
	assert.Equal(t, "unprocessable entity: attribute '-favourite_color' does not exist", ae.Detail)
}

func TestFieldFromConstraint(t *testing.T) {
	r := New[struct{}](nil, "api_keys", []string{"id", "name", "token", "user_id"})

	assert.Equal(t, "Token", r.fieldFromConstraint("idx_api_keys_token"))
	assert.Equal(t, "Name", r.fieldFromConstraint("idx_api_keys_name"))
	// user_id must win over the embedded "id".
	assert.Equal(t, "User_id", r.fieldFromConstraint("idx_api_keys_user_id"))
	assert.Equal(t, "", r.fieldFromConstraint("pk_something_else"))
	assert.Equal(t, "", r.fieldFromConstraint(""))
}

func TestDuplicateConstraint(t *testing.T) {
	constraint, ok := duplicateConstraint(&pgconn.PgError{Code: "23505", ConstraintName: "idx_users_email"})
	assert.True(t, ok)
	assert.Equal(t, "idx_users_email", constraint)

	_, ok = duplicateConstraint(&pgconn.PgError{Code: "23503"})
	assert.False(t, ok)

	_, ok = duplicateConstraint(assert.AnError)
	assert.False(t, ok)
}

// Update's no-change rejection rides on equalValue; driving Update itself
// needs a live database, so the diff semantics are pinned down here.
func TestEqualValue(t *testing.T) {
	now := time.Now()
	ptr := func(s string) *string { return &s }

	cases := []struct {
		name  string
		a, b  any
		equal bool
	}{
		{"strings", "x", "x", true},
		{"string vs bytes", "x", []byte("x"), true},
		{"int vs float64", 5, float64(5), true},
		{"int64 vs int", int64(7), 7, true},
		{"bools", true, true, true},
		{"bool mismatch", true, false, false},
		{"nil both", nil, nil, true},
		{"nil string pointer", (*string)(nil), nil, true},
		{"string pointer", ptr("x"), "x", true},
		{"times", now, now.UTC(), true},
		{"different strings", "x", "y", false},
		{"number mismatch", 5, 6.0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.equal, equalValue(tc.a, tc.b))
		})
	}
}
