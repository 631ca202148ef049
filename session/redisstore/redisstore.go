// Package redisstore provides a Redis-backed session.Storage. Each browser
// session maps to one Redis hash so ClearAll is a single key deletion.
package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/oauthconnect/go-oauth-connect/session"
)

const defaultTTL = 24 * time.Hour

var _ session.Storage = (*Store)(nil)

// Store is scoped to a single browser session identified by sessionID.
// Redis failures degrade to "key absent" rather than surfacing errors, which
// downstream resolvers treat as a logged-out session.
type Store struct {
	client redis.Cmdable
	ctx    context.Context
	key    string
	ttl    time.Duration
	log    zerolog.Logger
}

type Option func(*Store)

// WithTTL overrides the session hash lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// New creates a Storage for one browser session. The context bounds every
// Redis call made through the store and should be the request context.
func New(ctx context.Context, client redis.Cmdable, sessionID string, options ...Option) *Store {
	store := &Store{
		client: client,
		ctx:    ctx,
		key:    "oauthconnect:session:" + sessionID,
		ttl:    defaultTTL,
		log:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(store)
	}
	return store
}

func (s *Store) Get(key string) (string, bool) {
	value, err := s.client.HGet(s.ctx, s.key, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		s.log.Err(err).Str("key", key).Msg("session store read failed")
		return "", false
	}
	return value, true
}

func (s *Store) Set(key, value string) {
	pipe := s.client.TxPipeline()
	pipe.HSet(s.ctx, s.key, key, value)
	pipe.Expire(s.ctx, s.key, s.ttl)
	if _, err := pipe.Exec(s.ctx); err != nil {
		s.log.Err(err).Str("key", key).Msg("session store write failed")
	}
}

func (s *Store) Delete(key string) {
	if err := s.client.HDel(s.ctx, s.key, key).Err(); err != nil {
		s.log.Err(err).Str("key", key).Msg("session store delete failed")
	}
}

func (s *Store) ClearAll() {
	if err := s.client.Del(s.ctx, s.key).Err(); err != nil {
		s.log.Err(err).Msg("session store clear failed")
	}
}
