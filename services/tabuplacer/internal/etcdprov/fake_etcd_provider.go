package etcdprov

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// FakeEtcdProvider is an in-memory EtcdProvider for tests.
type FakeEtcdProvider struct {
	mu              sync.RWMutex
	data            map[string]*fakeKV
	currentRevision EtcdRevision
}

type fakeKV struct {
	Value       string
	ModRevision EtcdRevision
}

func NewFakeEtcdProvider() *FakeEtcdProvider {
	return &FakeEtcdProvider{
		data:            make(map[string]*fakeKV),
		currentRevision: 1,
	}
}

func (f *FakeEtcdProvider) Get(ctx context.Context, key string) EtcdKvItem {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if kv, ok := f.data[key]; ok {
		return EtcdKvItem{Key: key, Value: kv.Value, ModRevision: kv.ModRevision}
	}
	return EtcdKvItem{Key: key}
}

func (f *FakeEtcdProvider) Set(ctx context.Context, key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.currentRevision++
	f.data[key] = &fakeKV{Value: value, ModRevision: f.currentRevision}
}

func (f *FakeEtcdProvider) List(ctx context.Context, prefix string, maxCount int) []EtcdKvItem {
	f.mu.RLock()
	defer f.mu.RUnlock()
	items := []EtcdKvItem{}
	for k, v := range f.data {
		if strings.HasPrefix(k, prefix) {
			items = append(items, EtcdKvItem{Key: k, Value: v.Value, ModRevision: v.ModRevision})
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Key < items[j].Key
	})
	if maxCount > 0 && len(items) > maxCount {
		items = items[:maxCount]
	}
	return items
}
