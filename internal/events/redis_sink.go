package events

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/mergington/activities/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisStreamSink appends roster events to a Redis stream, trimming it to
// roughly maxLen entries.
type RedisStreamSink struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisStreamSink creates a sink writing to stream.
func NewRedisStreamSink(client *redis.Client, stream string, maxLen int64) *RedisStreamSink {
	return &RedisStreamSink{client: client, stream: stream, maxLen: maxLen}
}

// Name implements Sink.
func (s *RedisStreamSink) Name() string { return "redis" }

// Write implements Sink.
func (s *RedisStreamSink) Write(ctx context.Context, evt domain.RosterEvent) error {
	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"id":                evt.ID,
			"type":              string(evt.Type),
			"activity":          evt.Activity,
			"email":             evt.Email,
			"participant_count": strconv.Itoa(evt.ParticipantCount),
			"occurred_at":       evt.OccurredAt.UTC().Format(time.RFC3339Nano),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}

// Connect parses a redis:// URL (or a bare host:port) and verifies the
// server answers within timeout.
func Connect(ctx context.Context, redisURL string, timeout time.Duration) (*redis.Client, error) {
	var client *redis.Client
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	} else {
		client = redis.NewClient(opts)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
