package events

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisStreamSink_Write(t *testing.T) {
	_, client := setupMiniredis(t)
	sink := NewRedisStreamSink(client, "roster:events", 100)
	ctx := context.Background()

	require.NoError(t, sink.Write(ctx, testEvent(1)))
	require.NoError(t, sink.Write(ctx, testEvent(2)))

	msgs, err := client.XRange(ctx, "roster:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	first := msgs[0].Values
	assert.Equal(t, "evt-1", first["id"])
	assert.Equal(t, "signup", first["type"])
	assert.Equal(t, "Chess Club", first["activity"])
	assert.Equal(t, "s1@mergington.edu", first["email"])
	assert.Equal(t, "3", first["participant_count"])
	assert.Equal(t, testEvent(1).OccurredAt.Format(time.RFC3339Nano), first["occurred_at"])
}

func TestRedisStreamSink_ServerDown(t *testing.T) {
	mr, client := setupMiniredis(t)
	sink := NewRedisStreamSink(client, "roster:events", 0)
	mr.Close()

	err := sink.Write(context.Background(), testEvent(1))
	assert.Error(t, err)
}

func TestRedisStreamSink_ThroughDispatcher(t *testing.T) {
	_, client := setupMiniredis(t)
	d := NewDispatcher(8, []Sink{NewRedisStreamSink(client, "roster:events", 100)})
	d.Start(context.Background())

	for i := 0; i < 3; i++ {
		d.Publish(testEvent(i))
	}
	d.Stop()

	n, err := client.XLen(context.Background(), "roster:events").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), "redis://"+mr.Addr()+"/0", time.Second)
	require.NoError(t, err)
	client.Close()

	client, err = Connect(context.Background(), mr.Addr(), time.Second)
	require.NoError(t, err)
	client.Close()
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Connect(context.Background(), "redis://"+addr, 200*time.Millisecond)
	assert.Error(t, err)
}
