package etcdprov

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFakeEtcdProvider_GetSet(t *testing.T) {
	ctx := context.Background()
	provider := NewFakeEtcdProvider()

	t.Run("set then get", func(t *testing.T) {
		provider.Set(ctx, "/tabuplacer/instances/a", "v1")
		item := provider.Get(ctx, "/tabuplacer/instances/a")
		assert.Equal(t, "v1", item.Value)
		assert.Equal(t, EtcdRevision(2), item.ModRevision)
	})

	t.Run("missing key", func(t *testing.T) {
		item := provider.Get(ctx, "/tabuplacer/instances/none")
		assert.Equal(t, "/tabuplacer/instances/none", item.Key)
		assert.Equal(t, "", item.Value)
		assert.Equal(t, EtcdRevision(0), item.ModRevision)
	})

	t.Run("overwrite bumps revision", func(t *testing.T) {
		provider.Set(ctx, "/tabuplacer/instances/a", "v2")
		item := provider.Get(ctx, "/tabuplacer/instances/a")
		assert.Equal(t, "v2", item.Value)
		assert.Equal(t, EtcdRevision(3), item.ModRevision)
	})
}

func TestFakeEtcdProvider_List(t *testing.T) {
	ctx := context.Background()
	provider := NewFakeEtcdProvider()
	provider.Set(ctx, "/tabuplacer/results/2", "b")
	provider.Set(ctx, "/tabuplacer/results/1", "a")
	provider.Set(ctx, "/tabuplacer/results/3", "c")
	provider.Set(ctx, "/other/1", "x")

	items := provider.List(ctx, "/tabuplacer/results/", 0)
	assert.Len(t, items, 3)
	assert.Equal(t, "/tabuplacer/results/1", items[0].Key)
	assert.Equal(t, "/tabuplacer/results/3", items[2].Key)

	items = provider.List(ctx, "/tabuplacer/results/", 2)
	assert.Len(t, items, 2)
	assert.Equal(t, "b", items[1].Value)

	assert.Empty(t, provider.List(ctx, "/missing/", 0))
}
