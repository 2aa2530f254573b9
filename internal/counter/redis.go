package counter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

// addVisitorScript appends a visitor id to the JSON array stored in a hash
// field unless it is already present. Returns {added, size}.
var addVisitorScript = redis.NewScript(`
local raw = redis.call('HGET', KEYS[1], ARGV[1])
local ids = {}
if raw then
  ids = cjson.decode(raw)
end
for _, v in ipairs(ids) do
  if v == ARGV[2] then
    return {0, #ids}
  end
end
table.insert(ids, ARGV[2])
redis.call('HSET', KEYS[1], ARGV[1], cjson.encode(ids))
return {1, #ids}
`)

// RedisStore keeps counts in two Redis hashes keyed by page id: one holding
// view counts and one holding a JSON array of visitor ids.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisStore creates a Redis-backed store. prefix namespaces both hashes,
// e.g. "portfolio:" gives "portfolio:views" and "portfolio:visitors".
func NewRedisStore(client *redis.Client, prefix string, timeout time.Duration) *RedisStore {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &RedisStore{
		client:  client,
		prefix:  prefix,
		timeout: timeout,
	}
}

// NewRedisClient builds a client from a redis:// or rediss:// URL, or from
// a plain address when url is empty.
func NewRedisClient(url, addr, password string, db int, timeout time.Duration) (*redis.Client, error) {
	if url != "" {
		opts, err := redis.ParseURL(url)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts.DialTimeout = timeout
		opts.ReadTimeout = timeout
		opts.WriteTimeout = timeout
		return redis.NewClient(opts), nil
	}
	if addr == "" {
		return nil, errors.New("redis address not configured")
	}
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}), nil
}

func (s *RedisStore) Name() string { return "redis" }

func (s *RedisStore) viewsKey() string    { return s.prefix + "views" }
func (s *RedisStore) visitorsKey() string { return s.prefix + "visitors" }

func (s *RedisStore) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.timeout)
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Views(ctx context.Context, page string) (int64, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	n, err := s.client.HGet(ctx, s.viewsKey(), page).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get views: %w", err)
	}
	return n, nil
}

func (s *RedisStore) SetViews(ctx context.Context, page string, n int64) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	if err := s.client.HSet(ctx, s.viewsKey(), page, n).Err(); err != nil {
		return fmt.Errorf("redis set views: %w", err)
	}
	return nil
}

func (s *RedisStore) Visitors(ctx context.Context, page string) ([]string, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	raw, err := s.client.HGet(ctx, s.visitorsKey(), page).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get visitors: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("decode visitors for %q: %w", page, err)
	}
	return ids, nil
}

func (s *RedisStore) SetVisitors(ctx context.Context, page string, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode visitors: %w", err)
	}

	ctx, cancel := s.ctx(ctx)
	defer cancel()

	if err := s.client.HSet(ctx, s.visitorsKey(), page, raw).Err(); err != nil {
		return fmt.Errorf("redis set visitors: %w", err)
	}
	return nil
}

func (s *RedisStore) VisitorCount(ctx context.Context, page string) (int64, error) {
	ids, err := s.Visitors(ctx, page)
	if err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

func (s *RedisStore) IncrViews(ctx context.Context, page string) (int64, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	n, err := s.client.HIncrBy(ctx, s.viewsKey(), page, 1).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr views: %w", err)
	}
	return n, nil
}

func (s *RedisStore) AddVisitor(ctx context.Context, page, id string) (bool, int64, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	res, err := addVisitorScript.Run(ctx, s.client, []string{s.visitorsKey()}, page, id).Int64Slice()
	if err != nil {
		return false, 0, fmt.Errorf("redis add visitor: %w", err)
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("redis add visitor: unexpected reply %v", res)
	}
	return res[0] == 1, res[1], nil
}

func (s *RedisStore) Pages(ctx context.Context) ([]string, error) {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	seen := make(map[string]struct{})
	for _, key := range []string{s.viewsKey(), s.visitorsKey()} {
		fields, err := s.client.HKeys(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("redis list pages: %w", err)
		}
		for _, f := range fields {
			seen[f] = struct{}{}
		}
	}

	pages := make([]string, 0, len(seen))
	for p := range seen {
		pages = append(pages, p)
	}
	sort.Strings(pages)
	return pages, nil
}

func (s *RedisStore) DeletePage(ctx context.Context, page string) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HDel(ctx, s.viewsKey(), page)
		pipe.HDel(ctx, s.visitorsKey(), page)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis delete page: %w", err)
	}
	return nil
}

func (s *RedisStore) DeleteAll(ctx context.Context) error {
	ctx, cancel := s.ctx(ctx)
	defer cancel()

	if err := s.client.Del(ctx, s.viewsKey(), s.visitorsKey()).Err(); err != nil {
		return fmt.Errorf("redis delete all: %w", err)
	}
	return nil
}
