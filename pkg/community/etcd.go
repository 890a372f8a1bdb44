package community

import (
	"context"
	"fmt"
	"strings"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// DefaultEtcdPrefix is the key prefix community records are stored under
const DefaultEtcdPrefix = "/communities/"

// kvGetter is the subset of clientv3.KV used by EtcdSource
type kvGetter interface {
	Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error)
}

// EtcdSource reads community records stored as YAML values under
// <prefix><community> keys.
type EtcdSource struct {
	kv      kvGetter
	prefix  string
	exclude excludeSet
}

// NewEtcdSource creates an EtcdSource. An empty prefix selects DefaultEtcdPrefix.
func NewEtcdSource(kv kvGetter, prefix string, exclude []string) *EtcdSource {
	if prefix == "" {
		prefix = DefaultEtcdPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &EtcdSource{
		kv:      kv,
		prefix:  prefix,
		exclude: newExcludeSet(exclude),
	}
}

// Communities fetches every record under the prefix
func (s *EtcdSource) Communities(ctx context.Context) ([]Community, error) {
	resp, err := s.kv.Get(ctx, s.prefix,
		clientv3.WithPrefix(),
		clientv3.WithSort(clientv3.SortByKey, clientv3.SortAscend))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch communities from etcd: %w", err)
	}

	communities := make([]Community, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		name := communityNameFromKey(string(kv.Key), s.prefix)
		if name == "" || s.exclude.has(name) {
			continue
		}
		communities = append(communities, Decode(name, kv.Value))
	}

	sortByName(communities)
	return communities, nil
}

// communityNameFromKey extracts the community name from an etcd key
// Examples:
//   - "/communities/ffhh" -> "ffhh"
//   - "/communities/ffhh/extra" -> "" (nested keys are not communities)
func communityNameFromKey(key, prefix string) string {
	name := strings.TrimPrefix(key, prefix)
	if name == key || strings.Contains(name, "/") {
		return ""
	}
	return name
}
