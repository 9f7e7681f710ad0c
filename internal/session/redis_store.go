package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	sessionKeyPrefix = "reqsmith:session:" // reqsmith:session:{session_id} -> Document JSON
	// DefaultTTL bounds how long an idle session's document is retained.
	DefaultTTL = 24 * time.Hour
)

// RedisStore keeps documents in Redis so several server instances (or
// successive CLI invocations) share one session.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore. A non-positive ttl uses DefaultTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) key(id string) string {
	return sessionKeyPrefix + id
}

func (r *RedisStore) Load(ctx context.Context, id string) (*Document, error) {
	data, err := r.client.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return &doc, nil
}

func (r *RedisStore) Save(ctx context.Context, id string, doc Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if err := r.client.Set(ctx, r.key(id), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	log.Debug().Str("session_id", id).Str("document_id", doc.ID).Msg("Saved document to redis")
	return nil
}

func (r *RedisStore) MarkFiled(ctx context.Context, id, documentID, ticketKey string) error {
	key := r.key(id)
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("%w: %w", ErrEncode, err)
		}
		if doc.ID != documentID {
			return ErrStale
		}
		doc.TicketKey = ticketKey
		updated, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrEncode, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, r.ttl)
			return nil
		})
		return err
	}

	err := r.client.Watch(ctx, txf, key)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		// The key changed under WATCH, i.e. a new generation replaced it.
		return ErrStale
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrStale), errors.Is(err, ErrEncode):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}
