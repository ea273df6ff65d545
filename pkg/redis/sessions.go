package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	redisclient "github.com/redis/go-redis/v9"
	"julianmorley.ca/con-plar/storefront/pkg/cart"
	"julianmorley.ca/con-plar/storefront/pkg/storefront"
)

const (
	DefaultSessionTTL     = 1 * time.Hour
	DefaultSubmitGuardTTL = 30 * time.Second
	DefaultSessionPrefix  = "session:"
)

// SessionStore keeps storefront sessions in Redis hashes keyed by session id.
type SessionStore struct {
	client    *redisclient.Client
	ttl       time.Duration
	submitTTL time.Duration
	prefix    string
}

type SessionOption func(*SessionStore)

func WithSessionTTL(ttl time.Duration) SessionOption {
	return func(s *SessionStore) {
		s.ttl = ttl
	}
}

// WithSubmitGuardTTL bounds how long a crashed submission can block the
// session's next attempt.
func WithSubmitGuardTTL(ttl time.Duration) SessionOption {
	return func(s *SessionStore) {
		s.submitTTL = ttl
	}
}

func WithSessionPrefix(prefix string) SessionOption {
	return func(s *SessionStore) {
		s.prefix = prefix
	}
}

func NewSessionStore(client *redisclient.Client, opts ...SessionOption) *SessionStore {
	store := &SessionStore{
		client:    client,
		ttl:       DefaultSessionTTL,
		submitTTL: DefaultSubmitGuardTTL,
		prefix:    DefaultSessionPrefix,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *SessionStore) sessionKey(id string) string {
	return fmt.Sprintf("%s%s", s.prefix, id)
}

func (s *SessionStore) submitKey(id string) string {
	return fmt.Sprintf("%s%s:submitting", s.prefix, id)
}

func (s *SessionStore) Get(ctx context.Context, id string) (*storefront.Session, error) {
	data, err := s.client.HGetAll(ctx, s.sessionKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", id, err)
	}
	if len(data) == 0 {
		return nil, storefront.ErrSessionNotFound
	}

	session := storefront.NewSession(id)
	if section, ok := data["section"]; ok {
		if parsed, err := storefront.ParseSection(section); err == nil {
			session.View.Section = parsed
		}
	}
	session.View.CartOpen, _ = strconv.ParseBool(data["cart_open"])
	session.View.CheckoutOpen, _ = strconv.ParseBool(data["checkout_open"])
	if updatedAt, err := time.Parse(time.RFC3339Nano, data["updated_at"]); err == nil {
		session.UpdatedAt = updatedAt
	}
	if cartJSON, ok := data["cart"]; ok && cartJSON != "" {
		restored := cart.New()
		if err := json.Unmarshal([]byte(cartJSON), restored); err != nil {
			return nil, fmt.Errorf("failed to decode cart of session %s: %w", id, err)
		}
		session.Cart = restored
	}

	return session, nil
}

// Save writes the session and refreshes its TTL.
func (s *SessionStore) Save(ctx context.Context, session *storefront.Session) error {
	cartJSON, err := json.Marshal(session.Cart)
	if err != nil {
		return fmt.Errorf("failed to marshal cart of session %s: %w", session.ID, err)
	}

	key := s.sessionKey(session.ID)
	sessionData := map[string]interface{}{
		"section":       string(session.View.Section),
		"cart_open":     strconv.FormatBool(session.View.CartOpen),
		"checkout_open": strconv.FormatBool(session.View.CheckoutOpen),
		"cart":          string(cartJSON),
		"item_count":    strconv.Itoa(session.Cart.ItemCount()),
		"total":         session.Cart.Total().StringFixed(2),
		"updated_at":    session.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, sessionData)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session %s: %w", session.ID, err)
	}
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.sessionKey(id), s.submitKey(id)).Err()
}

// releaseSubmit deletes the submit flag only while it still holds the
// caller's token.
var releaseSubmit = redisclient.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// BeginSubmit sets the submit flag to a fresh token. The token is needed to
// release the flag again.
func (s *SessionStore) BeginSubmit(ctx context.Context, id string) (string, bool, error) {
	token := uuid.NewString()
	acquired, err := s.client.SetNX(ctx, s.submitKey(id), token, s.submitTTL).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to set submit flag for session %s: %w", id, err)
	}
	if !acquired {
		return "", false, nil
	}
	return token, true, nil
}

// EndSubmit clears the submit flag if it still belongs to token. A flag that
// expired and was taken by a later submission is left alone.
func (s *SessionStore) EndSubmit(ctx context.Context, id, token string) error {
	if err := releaseSubmit.Run(ctx, s.client, []string{s.submitKey(id)}, token).Err(); err != nil {
		return fmt.Errorf("failed to clear submit flag for session %s: %w", id, err)
	}
	return nil
}

// SubmitGuardTTL is how long a submit flag survives without being released.
func (s *SessionStore) SubmitGuardTTL() time.Duration {
	return s.submitTTL
}

func (s *SessionStore) IsSubmitting(ctx context.Context, id string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.submitKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to read submit flag for session %s: %w", id, err)
	}
	return exists > 0, nil
}
