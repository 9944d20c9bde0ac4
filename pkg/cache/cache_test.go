package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(client), mr
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, c.Set(ctx, "members", payload{Name: "alice", Count: 3}, time.Minute))

	var got payload
	hit, err := c.Get(ctx, "members", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "alice", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestCache_GetMiss(t *testing.T) {
	c, _ := newTestCache(t)

	var got map[string]string
	hit, err := c.Get(context.Background(), "nope", &got)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCache_Expiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "members", []string{"a"}, 30*time.Second))
	mr.FastForward(31 * time.Second)

	var got []string
	hit, _ := c.Get(ctx, "members", &got)
	assert.False(t, hit)
}

func TestCache_Delete(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "members", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "line-oa", 2, time.Minute))
	require.NoError(t, c.Delete(ctx, "members", "line-oa"))

	var got int
	hit, _ := c.Get(ctx, "members", &got)
	assert.False(t, hit)
	hit, _ = c.Get(ctx, "line-oa", &got)
	assert.False(t, hit)
}

func TestCache_DeletePrefix(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "phone-records", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "phone-records:page2", 2, time.Minute))
	require.NoError(t, c.Set(ctx, "members", 3, time.Minute))

	require.NoError(t, c.DeletePrefix(ctx, "phone-records"))

	var got int
	hit, _ := c.Get(ctx, "phone-records", &got)
	assert.False(t, hit)
	hit, _ = c.Get(ctx, "phone-records:page2", &got)
	assert.False(t, hit)
	hit, _ = c.Get(ctx, "members", &got)
	assert.True(t, hit)
}

func TestCache_CorruptEntryTreatedAsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("cache:members", "{not json"))

	var got map[string]string
	hit, err := c.Get(ctx, "members", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	// 脏数据应被清掉
	assert.False(t, mr.Exists("cache:members"))
}

func TestCache_NilClientDegrades(t *testing.T) {
	c := New(nil)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "members", 1, time.Minute))
	var got int
	hit, err := c.Get(ctx, "members", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, c.Delete(ctx, "members"))
	require.NoError(t, c.DeletePrefix(ctx, "members"))
}
