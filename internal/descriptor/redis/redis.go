package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/JulianoL13/app-config-aggregator/internal/descriptor"
	"github.com/redis/go-redis/v9"
)

const defaultTTL = 2 * time.Hour

// Repository stores the latest snapshot. Records live in sorted sets scored by
// rank, one for the whole selection and one per protocol.
type Repository struct {
	client    *redis.Client
	ttl       time.Duration
	keyPrefix string
}

func NewRepository(client *redis.Client, keyPrefix string) *Repository {
	if keyPrefix == "" {
		keyPrefix = "configs"
	}
	return &Repository{
		client:    client,
		ttl:       defaultTTL,
		keyPrefix: keyPrefix,
	}
}

// WithTTL sets the expiry of stored snapshots. Zero keeps them forever.
func (r *Repository) WithTTL(ttl time.Duration) *Repository {
	r.ttl = ttl
	return r
}

func (r *Repository) rankedKey() string {
	return fmt.Sprintf("%s:ranked", r.keyPrefix)
}

func (r *Repository) protocolKey(protocol string) string {
	return fmt.Sprintf("%s:protocol:%s", r.keyPrefix, protocol)
}

func (r *Repository) protocolsKey() string {
	return fmt.Sprintf("%s:protocols", r.keyPrefix)
}

func (r *Repository) metaKey() string {
	return fmt.Sprintf("%s:meta", r.keyPrefix)
}

// SaveSnapshot replaces the stored snapshot in one transaction.
func (r *Repository) SaveSnapshot(ctx context.Context, s descriptor.Snapshot) error {
	previous, err := r.client.SMembers(ctx, r.protocolsKey()).Result()
	if err != nil {
		return fmt.Errorf("list protocols: %w", err)
	}

	keys := []string{r.rankedKey(), r.protocolsKey(), r.metaKey()}
	stale := make([]string, 0, len(previous))
	for _, p := range previous {
		stale = append(stale, r.protocolKey(p))
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, slices.Concat(keys, stale)...)

	for _, rec := range s.Records {
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}

		z := redis.Z{Score: float64(rec.Rank), Member: data}
		pipe.ZAdd(ctx, r.rankedKey(), z)
		pipe.ZAdd(ctx, r.protocolKey(rec.Protocol), z)
		pipe.SAdd(ctx, r.protocolsKey(), rec.Protocol)
		keys = append(keys, r.protocolKey(rec.Protocol))
	}

	pipe.HSet(ctx, r.metaKey(),
		"run_id", s.RunID,
		"published_at", s.PublishedAt.UTC().Format(time.RFC3339Nano),
		"count", len(s.Records),
	)

	if r.ttl > 0 {
		for _, key := range keys {
			pipe.Expire(ctx, key, r.ttl)
		}
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (r *Repository) GetRecords(ctx context.Context, filter descriptor.Filter) ([]descriptor.Record, int, error) {
	exists, err := r.client.Exists(ctx, r.metaKey()).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("exists: %w", err)
	}
	if exists == 0 {
		return nil, 0, descriptor.ErrNoSnapshot
	}

	targetKey := r.rankedKey()
	if filter.Protocol != "" {
		targetKey = r.protocolKey(filter.Protocol)
	}

	total, err := r.client.ZCard(ctx, targetKey).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("zcard: %w", err)
	}
	if total == 0 {
		return nil, 0, nil
	}

	stop := int64(-1)
	if filter.Limit > 0 {
		stop = int64(filter.Limit) - 1
	}

	members, err := r.client.ZRange(ctx, targetKey, 0, stop).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("zrange: %w", err)
	}

	records := make([]descriptor.Record, 0, len(members))
	for _, m := range members {
		var rec descriptor.Record
		if err := json.Unmarshal([]byte(m), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}

	return records, int(total), nil
}

func (r *Repository) GetMeta(ctx context.Context) (descriptor.Meta, error) {
	fields, err := r.client.HGetAll(ctx, r.metaKey()).Result()
	if err != nil {
		return descriptor.Meta{}, fmt.Errorf("hgetall: %w", err)
	}
	if len(fields) == 0 {
		return descriptor.Meta{}, descriptor.ErrNoSnapshot
	}

	meta := descriptor.Meta{RunID: fields["run_id"]}
	if at, err := time.Parse(time.RFC3339Nano, fields["published_at"]); err == nil {
		meta.PublishedAt = at
	}
	if n, err := strconv.Atoi(fields["count"]); err == nil {
		meta.Count = n
	}
	return meta, nil
}

var (
	_ descriptor.Reader = (*Repository)(nil)
	_ descriptor.Writer = (*Repository)(nil)
)
