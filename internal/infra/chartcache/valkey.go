package chartcache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/astrachart/astrachart/internal/domain/chart"
)

// Valkey caches computed position datasets in a Valkey-compatible database,
// sharing the cache across instances. Keys already carry the content hash, so
// writes are idempotent and concurrent writers converge on identical bytes.
type Valkey struct {
	client valkey.Client
	prefix string
}

// NewValkey constructs the shared cache.
func NewValkey(client valkey.Client, prefix string) *Valkey {
	if prefix == "" {
		prefix = "chartcache"
	}
	return &Valkey{client: client, prefix: prefix}
}

func (v *Valkey) Get(ctx context.Context, key string) (chart.Result, bool, error) {
	cmd := v.client.B().Get().Key(v.cacheKey(key)).Build()
	payload, err := v.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return chart.Result{}, false, nil
		}
		return chart.Result{}, false, err
	}
	var result chart.Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return chart.Result{}, false, err
	}
	return result, true, nil
}

func (v *Valkey) Put(ctx context.Context, key string, value chart.Result) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	cmd := v.client.B().Set().Key(v.cacheKey(key)).Value(string(payload)).Build()
	return v.client.Do(ctx, cmd).Error()
}

func (v *Valkey) cacheKey(key string) string {
	return fmt.Sprintf("%s:%s", v.prefix, key)
}

var _ chart.ResultCache = (*Valkey)(nil)
