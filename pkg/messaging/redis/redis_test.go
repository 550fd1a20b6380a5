package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-console/pkg/messaging"
)

func TestPublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b, err := NewRedisBroker(ctx, Config{URL: "redis://" + mr.Addr()}, nil)
	require.NoError(t, err)
	defer b.Close()

	ch, err := b.Subscribe(ctx, "omms:events")
	require.NoError(t, err)

	msg, err := messaging.NewMessage("status_changed", map[string]string{"id": "RX-1"})
	require.NoError(t, err)
	require.NoError(t, b.Publish(ctx, "omms:events", msg))

	select {
	case raw := <-ch:
		got, err := messaging.Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, "status_changed", got.Type)
		assert.JSONEq(t, `{"id":"RX-1"}`, string(got.Payload))
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}

	cancel()
	select {
	case _, ok := <-ch:
		for ok {
			_, ok = <-ch
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not closed after cancel")
	}
}

func TestNewRedisBrokerErrors(t *testing.T) {
	_, err := NewRedisBroker(context.Background(), Config{URL: "not a url"}, nil)
	assert.ErrorContains(t, err, "failed to parse Redis URL")

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	_, err = NewRedisBroker(context.Background(), Config{URL: "redis://" + addr}, nil)
	assert.ErrorContains(t, err, "failed to connect to Redis")
}

func TestPublishTripsBreaker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	b := NewFromClient(client, nil)
	defer b.Close()
	mr.Close()

	var err error
	for i := 0; i < 6; i++ {
		err = b.Publish(context.Background(), "omms:events", "x")
		require.Error(t, err)
	}
	assert.Equal(t, "open", b.cb.State())
	assert.ErrorContains(t, err, "circuit breaker is open")
}
