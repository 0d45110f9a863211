package etcdprov

import (
	"context"

	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
)

var ErrKeyNotFound = kerror.Create("KeyNotFound", "key not found").
	WithErrorCode(kerror.EC_NOT_FOUND)

type EtcdRevision int64

type EtcdKvItem struct {
	Key         string
	Value       string
	ModRevision EtcdRevision
}

// EtcdProvider is the slice of etcd the placer needs: instance documents are read from a key,
// results may be written back. Failures panic with a *kerror.Kerror.
type EtcdProvider interface {
	// Get returns an item with empty Value and ModRevision 0 when the key does not exist.
	Get(ctx context.Context, key string) EtcdKvItem

	// List returns keys under prefix in key order. maxCount 0 means no limit.
	List(ctx context.Context, prefix string, maxCount int) []EtcdKvItem

	Set(ctx context.Context, key, value string)
}
