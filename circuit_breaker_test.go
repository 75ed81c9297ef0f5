package hotrod

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/pior/hotrod/ops"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCircuitBreaker(t *testing.T) {
	settings := gobreaker.Settings{
		Name:        "test",
		MaxRequests: 1,
		Interval:    time.Second,
		Timeout:     time.Second,
	}

	cb := gobreaker.NewCircuitBreaker[bool](settings)
	require.NotNil(t, cb)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_Execute_Success(t *testing.T) {
	settings := gobreaker.Settings{Name: "test", Timeout: time.Second}
	cb := gobreaker.NewCircuitBreaker[bool](settings)

	result, err := cb.Execute(func() (bool, error) { return true, nil })

	require.NoError(t, err)
	assert.True(t, result)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_Execute_Failure(t *testing.T) {
	settings := gobreaker.Settings{
		Name:    "test",
		Timeout: time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 2
		},
	}
	cb := gobreaker.NewCircuitBreaker[bool](settings)

	for i := 0; i < 2; i++ {
		_, err := cb.Execute(func() (bool, error) { return false, fmt.Errorf("failure") })
		require.Error(t, err)
		assert.Equal(t, gobreaker.StateClosed, cb.State())
	}

	_, err := cb.Execute(func() (bool, error) { return false, fmt.Errorf("failure") })
	require.Error(t, err)
	assert.Equal(t, gobreaker.StateOpen, cb.State())
}

func TestNewCircuitBreakerConfig(t *testing.T) {
	factory := NewCircuitBreakerConfig(3, time.Minute, 10*time.Second)

	cb := factory("127.0.0.1:11222")
	require.NotNil(t, cb)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestClient_WithCircuitBreaker(t *testing.T) {
	servers := ServersFromAddr("127.0.0.1:11222")

	client, err := NewClient(servers, Config{
		MaxSize:           1,
		NewCircuitBreaker: NewCircuitBreakerConfig(3, time.Minute, 10*time.Second),
	})
	require.NoError(t, err)
	defer client.Close()

	assert.NotNil(t, client)
}

func TestClient_WithoutCircuitBreaker(t *testing.T) {
	servers := ServersFromAddr("127.0.0.1:11222")

	client, err := NewClient(servers, Config{
		MaxSize:           1,
		NewCircuitBreaker: nil,
	})
	require.NoError(t, err)
	defer client.Close()

	assert.NotNil(t, client)
}

func TestCircuitBreakerState_String(t *testing.T) {
	tests := []struct {
		state    gobreaker.State
		expected string
	}{
		{gobreaker.StateClosed, "closed"},
		{gobreaker.StateHalfOpen, "half-open"},
		{gobreaker.StateOpen, "open"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.state.String())
		})
	}
}

func TestAllPoolStats_WithCircuitBreaker(t *testing.T) {
	servers := ServersFromAddr("127.0.0.1:1", "127.0.0.1:2")

	client, err := NewClient(servers, Config{
		MaxSize:           2,
		NewCircuitBreaker: NewCircuitBreakerConfig(3, time.Minute, time.Second),
		ConnectTimeout:    50 * time.Millisecond,
	})
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_ = client.Put(ctx, []byte("test"), []byte("value"), ops.DefaultExpiration)

	stats := client.AllPoolStats()
	for _, s := range stats {
		assert.Equal(t, gobreaker.StateClosed, s.CircuitBreakerState)
	}
}
