package etcdprov

import (
	"context"
	"strings"
	"time"

	"github.com/xinkaiwang/tabuplacer/libs/xklib/kcommon"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/kerror"
	"github.com/xinkaiwang/tabuplacer/libs/xklib/klogging"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// etcdDefaultProvider talks to a real etcd cluster. Configured through env:
// ETCD_ENDPOINTS (comma separated, default localhost:2379) and ETCD_DIAL_TIMEOUT (seconds, default 5).
type etcdDefaultProvider struct {
	client *clientv3.Client
}

func NewDefaultEtcdProvider(ctx context.Context) EtcdProvider {
	endpoints := strings.Split(kcommon.GetEnvString("ETCD_ENDPOINTS", "localhost:2379"), ",")
	dialTimeout := kcommon.GetEnvInt("ETCD_DIAL_TIMEOUT", 5)
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: time.Duration(dialTimeout) * time.Second,
	})
	if err != nil {
		panic(kerror.Wrap(err, "EtcdConnectError", "failed to connect to etcd", false).
			WithErrorCode(kerror.EC_NETWORK_ERR).
			With("endpoints", strings.Join(endpoints, ",")))
	}
	klogging.Info(ctx).With("endpoints", strings.Join(endpoints, ",")).Log("EtcdConnected", "")
	return &etcdDefaultProvider{client: cli}
}

func (pvd *etcdDefaultProvider) Get(ctx context.Context, key string) EtcdKvItem {
	resp, err := pvd.client.Get(ctx, key)
	if err != nil {
		panic(kerror.Wrap(err, "EtcdGetError", "failed to get key from etcd", false).
			WithErrorCode(kerror.EC_NETWORK_ERR).
			With("key", key))
	}
	if len(resp.Kvs) == 0 {
		return EtcdKvItem{Key: key}
	}
	kv := resp.Kvs[0]
	return EtcdKvItem{
		Key:         string(kv.Key),
		Value:       string(kv.Value),
		ModRevision: EtcdRevision(kv.ModRevision),
	}
}

func (pvd *etcdDefaultProvider) List(ctx context.Context, prefix string, maxCount int) []EtcdKvItem {
	opts := []clientv3.OpOption{
		clientv3.WithPrefix(),
		clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend),
	}
	if maxCount > 0 {
		opts = append(opts, clientv3.WithLimit(int64(maxCount)))
	}
	resp, err := pvd.client.Get(ctx, prefix, opts...)
	if err != nil {
		panic(kerror.Wrap(err, "EtcdListError", "failed to list keys from etcd", false).
			WithErrorCode(kerror.EC_NETWORK_ERR).
			With("prefix", prefix))
	}
	klogging.Debug(ctx).With("prefix", prefix).With("count", len(resp.Kvs)).Log("EtcdList", "")
	items := make([]EtcdKvItem, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		items = append(items, EtcdKvItem{
			Key:         string(kv.Key),
			Value:       string(kv.Value),
			ModRevision: EtcdRevision(kv.ModRevision),
		})
	}
	return items
}

func (pvd *etcdDefaultProvider) Set(ctx context.Context, key, value string) {
	if _, err := pvd.client.Put(ctx, key, value); err != nil {
		panic(kerror.Wrap(err, "EtcdPutError", "failed to set key in etcd", false).
			WithErrorCode(kerror.EC_NETWORK_ERR).
			With("key", key))
	}
}
