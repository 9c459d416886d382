package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testCache(prefix string) *Cache {
	return New(nil, 360*time.Second, prefix, zap.NewNop().Sugar())
}

func TestKey(t *testing.T) {
	c := testCache("")
	assert.Equal(t, "UserService:abc", c.Key("UserService", "abc"))

	withPrefix := testCache("stage")
	assert.Equal(t, "stage:UserService:abc", withPrefix.Key("UserService", "abc"))
}

func TestNilClientDegradesToMiss(t *testing.T) {
	c := testCache("")
	ctx := context.Background()

	_, ok := c.Get(ctx, "UserService:abc")
	assert.False(t, ok)

	// Writes against a missing backend must not panic.
	c.Set(ctx, "UserService:abc", []byte(`{}`))
	c.Invalidate(ctx, "UserService:abc")
}

func TestETag(t *testing.T) {
	tag := ETag([]byte(`{"id":"abc"}`))
	assert.True(t, strings.HasPrefix(tag, `W/"`))
	assert.True(t, strings.HasSuffix(tag, `"`))
	// sha1 prefix of 8 bytes -> 16 hex chars inside W/"..."
	assert.Len(t, tag, len(`W/""`)+16)

	assert.Equal(t, tag, ETag([]byte(`{"id":"abc"}`)))
	assert.NotEqual(t, tag, ETag([]byte(`{"id":"def"}`)))
}
