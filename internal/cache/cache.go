// Package cache keeps property search results in Redis.
//
// Entries are keyed by a hash of the SQL statement and its arguments, under
// a generation number. Invalidate bumps the generation, so every entry
// written before it becomes unreachable at once and simply ages out by TTL.
//
// A nil *SearchCache is valid and caches nothing.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"

	"github.com/deppfellow/lightbnb/internal/models"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "lightbnb:search:"
	generationKey = keyPrefix + "generation"
)

type SearchCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New returns a cache on client, or nil when client is nil.
func New(client *redis.Client, ttl time.Duration) *SearchCache {
	if client == nil {
		return nil
	}
	return &SearchCache{client: client, ttl: ttl}
}

// Key resolves the entry for a statement and its arguments under the
// current generation. A search reads the key once and uses it for both Get
// and Set, so results read before an Invalidate are written to the old
// generation and never served. The key is empty on a nil cache.
func (c *SearchCache) Key(ctx context.Context, stmt string, args []any) (string, error) {
	if c == nil {
		return "", nil
	}

	gen, err := c.generation(ctx)
	if err != nil {
		return "", err
	}

	encodedArgs, err := json.Marshal(args)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode search arguments")
	}

	return keyPrefix + strconv.FormatInt(gen, 10) + ":" + Fingerprint(stmt, encodedArgs), nil
}

// Get returns the listings cached under key. ok is false on a miss.
func (c *SearchCache) Get(ctx context.Context, key string) (listings []models.PropertyListing, ok bool, err error) {
	if c == nil || key == "" {
		return nil, false, nil
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to read search cache")
	}

	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, false, errors.Wrapf(err, "failed to decode cached search %s", key)
	}

	return listings, true, nil
}

// Set stores listings under key for the cache TTL.
func (c *SearchCache) Set(ctx context.Context, key string, listings []models.PropertyListing) error {
	if c == nil || key == "" {
		return nil
	}

	data, err := json.Marshal(listings)
	if err != nil {
		return errors.Wrap(err, "failed to encode search results")
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, "failed to write search cache")
	}

	return nil
}

// Invalidate orphans every cached search.
func (c *SearchCache) Invalidate(ctx context.Context) error {
	if c == nil {
		return nil
	}

	if err := c.client.Incr(ctx, generationKey).Err(); err != nil {
		return errors.Wrap(err, "failed to bump search cache generation")
	}

	return nil
}

func (c *SearchCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to read search cache generation")
	}
	return gen, nil
}

// Fingerprint is the hex SHA-256 of a statement and its encoded arguments.
func Fingerprint(stmt string, encodedArgs []byte) string {
	h := sha256.New()
	h.Write([]byte(stmt))
	h.Write([]byte{0})
	h.Write(encodedArgs)
	return hex.EncodeToString(h.Sum(nil))
}
