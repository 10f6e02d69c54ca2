package rosterevents

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/geocoder89/rosterhub/internal/utils"
	"github.com/redis/go-redis/v9"
)

// streamAdder is the slice of *redis.Client the publisher needs.
type streamAdder interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

type RedisStreamPublisher struct {
	rdb    streamAdder
	stream string
	maxLen int64
}

func NewRedisStreamPublisher(rdb streamAdder, stream string, maxLen int64) *RedisStreamPublisher {
	return &RedisStreamPublisher{rdb: rdb, stream: stream, maxLen: maxLen}
}

func (p *RedisStreamPublisher) Publish(ctx context.Context, e Event) error {
	payload := ""
	if e.User != nil {
		b, err := json.Marshal(e.User)
		if err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
		payload = string(b)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"type":    e.Type,
			"user_id": strconv.Itoa(e.UserID),
			"payload": payload,
			"at":      utils.ISOTimestamp(e.At),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	if err := p.rdb.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", p.stream, err)
	}

	return nil
}
