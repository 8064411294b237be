package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prognoz-ai/prognoz-go/internal/database"
	"github.com/prognoz-ai/prognoz-go/internal/models"
)

// ErrSessionNotFound is returned when no session exists for a user or the
// session has expired.
var ErrSessionNotFound = errors.New("session not found")

const sessionKeyPrefix = "session:"

// SessionStore keeps per-user dashboard sessions in Redis: authentication
// state plus the provider API tokens the user has supplied. Sessions expire
// with the JWT lifetime so a stale token never resurrects provider
// credentials.
type SessionStore struct {
	redis *database.RedisClient
	ttl   time.Duration
}

func NewSessionStore(redis *database.RedisClient, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionStore{redis: redis, ttl: ttl}
}

func sessionKey(username string) string {
	return sessionKeyPrefix + username
}

// Create starts a fresh session with no provider tokens.
func (s *SessionStore) Create(ctx context.Context, username string) (*models.SessionContext, error) {
	session := &models.SessionContext{
		Username:      username,
		Authenticated: true,
		Tokens:        make(map[string]string),
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get loads the session for a username.
func (s *SessionStore) Get(ctx context.Context, username string) (*models.SessionContext, error) {
	data, err := s.redis.Get(ctx, sessionKey(username))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session models.SessionContext
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if session.Tokens == nil {
		session.Tokens = make(map[string]string)
	}
	return &session, nil
}

// SetTokens stores provider API tokens on an existing session. Empty values
// are ignored so a partial update never wipes a previously saved token.
func (s *SessionStore) SetTokens(ctx context.Context, username string, tokens map[string]string) (*models.SessionContext, error) {
	session, err := s.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	for provider, token := range tokens {
		if token == "" {
			continue
		}
		session.Tokens[provider] = token
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Destroy removes the session and every provider token it held.
func (s *SessionStore) Destroy(ctx context.Context, username string) error {
	return s.redis.Delete(ctx, sessionKey(username))
}

func (s *SessionStore) save(ctx context.Context, session *models.SessionContext) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(session.Username), data, s.ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}
