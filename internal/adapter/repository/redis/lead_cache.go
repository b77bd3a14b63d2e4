package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/leadstore/internal/adapter/metrics"
	"github.com/V4T54L/leadstore/internal/domain"
)

// generationTTL must outlive any in-flight fill, which is bounded by the
// database query timeout.
const generationTTL = 24 * time.Hour

// setIfGeneration writes the value only while the generation key still holds
// the generation the caller read on its miss. A missing key counts as 0.
var setIfGeneration = redis.NewScript(`
local current = redis.call('GET', KEYS[2])
if (current or '0') ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// LeadCache implements domain.LeadCache with JSON values in Redis.
type LeadCache struct {
	client  *redis.Client
	logger  *slog.Logger
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewLeadCache creates a new Redis-backed lead cache. m may be nil.
func NewLeadCache(client *redis.Client, logger *slog.Logger, ttl time.Duration, m *metrics.Metrics) *LeadCache {
	return &LeadCache{
		client:  client,
		logger:  logger.With("component", "redis_lead_cache"),
		ttl:     ttl,
		metrics: m,
	}
}

// Both keys of an id share a hash tag so the script stays single-slot.
func leadKey(id int64) string {
	return fmt.Sprintf("leadstore:lead:{%d}", id)
}

func generationKey(id int64) string {
	return fmt.Sprintf("leadstore:lead:{%d}:gen", id)
}

// Get returns domain.ErrCacheMiss and the current generation when the lead
// is not cached.
func (c *LeadCache) Get(ctx context.Context, id int64) (*domain.Lead, int64, error) {
	vals, err := c.client.MGet(ctx, leadKey(id), generationKey(id)).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("get cached lead %d: %w", id, err)
	}

	generation, err := parseGeneration(vals[1])
	if err != nil {
		return nil, 0, fmt.Errorf("get cached lead %d: %w", id, err)
	}

	raw, ok := vals[0].(string)
	if !ok {
		c.miss()
		return nil, generation, domain.ErrCacheMiss
	}

	var lead domain.Lead
	if err := json.Unmarshal([]byte(raw), &lead); err != nil {
		// A corrupt entry is dropped and treated as a miss.
		c.logger.Warn("discarding undecodable cache entry", "error", err, "lead_id", id)
		_ = c.client.Del(ctx, leadKey(id)).Err()
		c.miss()
		return nil, generation, domain.ErrCacheMiss
	}

	c.hit()
	return &lead, generation, nil
}

func (c *LeadCache) Set(ctx context.Context, lead *domain.Lead, generation int64) error {
	raw, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("marshal lead %d: %w", lead.ID, err)
	}

	keys := []string{leadKey(lead.ID), generationKey(lead.ID)}
	stored, err := setIfGeneration.Run(ctx, c.client, keys, generation, raw, c.ttl.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("set cached lead %d: %w", lead.ID, err)
	}
	if stored == 0 {
		c.logger.Debug("dropped stale cache fill", "lead_id", lead.ID, "generation", generation)
	}
	return nil
}

func (c *LeadCache) Invalidate(ctx context.Context, id int64) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(id))
		pipe.Expire(ctx, generationKey(id), generationTTL)
		pipe.Del(ctx, leadKey(id))
		return nil
	})
	if err != nil {
		return fmt.Errorf("invalidate cached lead %d: %w", id, err)
	}
	return nil
}

func parseGeneration(v interface{}) (int64, error) {
	switch g := v.(type) {
	case nil:
		return 0, nil
	case string:
		n, err := strconv.ParseInt(g, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid generation %q: %w", g, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected generation type %T", v)
	}
}

func (c *LeadCache) hit() {
	if c.metrics != nil {
		c.metrics.CacheHits.Inc()
	}
}

func (c *LeadCache) miss() {
	if c.metrics != nil {
		c.metrics.CacheMisses.Inc()
	}
}
