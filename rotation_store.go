package credlock

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const ticketKeyPrefix = "crt"

var (
	errTicketNotFound         = errors.New("rotation ticket not found")
	errTicketRedisUnavailable = errors.New("rotation ticket redis unavailable")
)

// ticketStore enforces single use of rotation tickets. Only a hash of
// the ticket ID is stored, so a Redis snapshot cannot be replayed into
// valid tickets.
type ticketStore struct {
	redis  *redis.Client
	prefix string
}

func newTicketStore(redisClient *redis.Client) *ticketStore {
	return &ticketStore{
		redis:  redisClient,
		prefix: ticketKeyPrefix,
	}
}

func (s *ticketStore) key(ticketID string) string {
	sum := sha256.Sum256([]byte(ticketID))
	return s.prefix + ":" + base64.RawURLEncoding.EncodeToString(sum[:])
}

func (s *ticketStore) Save(ctx context.Context, ticketID, subject string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, s.key(ticketID), subject, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errTicketRedisUnavailable, err)
	}
	return nil
}

// Consume removes the ticket and returns its subject. The GETDEL is
// atomic: concurrent redemptions of the same ticket yield exactly one
// winner and errTicketNotFound for the rest.
func (s *ticketStore) Consume(ctx context.Context, ticketID string) (string, error) {
	subject, err := s.redis.GetDel(ctx, s.key(ticketID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errTicketNotFound
		}
		return "", fmt.Errorf("%w: %v", errTicketRedisUnavailable, err)
	}
	return subject, nil
}
