package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/digsafe/locate-ticket-service/internal/domain"
	"github.com/digsafe/locate-ticket-service/internal/persistence"
)

// TicketCache keeps recently fetched ticket aggregates in Redis. Cache
// misses and redis outages degrade to the repository; entries are
// invalidated on every write path so readers never see a stale member list.
type TicketCache struct {
	redis  *persistence.Redis
	ttl    time.Duration
	logger *zap.Logger
}

// NewTicketCache constructs the cache.
func NewTicketCache(r *persistence.Redis, ttl time.Duration, logger *zap.Logger) *TicketCache {
	return &TicketCache{redis: r, ttl: ttl, logger: logger}
}

func ticketKey(id string) string {
	return "ticket:" + id
}

// Get returns the cached ticket for id, or ok=false on miss or error.
func (c *TicketCache) Get(ctx context.Context, id string) (*domain.Ticket, bool) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return nil, false
	}
	raw, err := c.redis.Client.Get(ctx, ticketKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("ticket cache get failed", zap.Error(err))
		}
		return nil, false
	}
	var ticket domain.Ticket
	if err := json.Unmarshal(raw, &ticket); err != nil {
		c.logger.Warn("ticket cache entry corrupt; dropping", zap.String("ticket_id", id), zap.Error(err))
		c.Invalidate(ctx, id)
		return nil, false
	}
	return &ticket, true
}

// Set stores the ticket with the configured TTL. Failures are logged only.
func (c *TicketCache) Set(ctx context.Context, ticket *domain.Ticket) {
	if c == nil || c.redis == nil || c.redis.Client == nil || ticket == nil {
		return
	}
	raw, err := json.Marshal(ticket)
	if err != nil {
		return
	}
	if err := c.redis.Client.Set(ctx, ticketKey(ticket.ID), raw, c.ttl).Err(); err != nil {
		c.logger.Debug("ticket cache set failed", zap.Error(err))
	}
}

// Invalidate drops the cached entry for id.
func (c *TicketCache) Invalidate(ctx context.Context, id string) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return
	}
	if err := c.redis.Client.Del(ctx, ticketKey(id)).Err(); err != nil {
		c.logger.Debug("ticket cache invalidate failed", zap.Error(err))
	}
}
