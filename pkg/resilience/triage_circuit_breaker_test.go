package resilience

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRemote = errors.New("remote failure")

func testConfig() *CircuitBreakerConfig {
	cfg := DefaultCircuitBreakerConfig("test")
	cfg.ConsecutiveFailures = 2
	cfg.Timeout = 20 * time.Millisecond
	cfg.MaxRequests = 1
	return cfg
}

func TestCircuitBreakerTripsAfterConsecutiveFailures(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker(testConfig(), func(name, from, to string) {
		transitions = append(transitions, from+"->"+to)
	})

	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error { return errRemote })
		require.ErrorIs(t, err, errRemote)
	}

	assert.Equal(t, "open", cb.State())
	assert.Equal(t, []string{"closed->open"}, transitions)

	err := cb.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestCircuitBreakerRecoversThroughHalfOpen(t *testing.T) {
	cb := NewCircuitBreaker(testConfig(), nil)
	for i := 0; i < 3; i++ {
		_ = cb.Execute(func() error { return errRemote })
	}
	require.Equal(t, "open", cb.State())

	time.Sleep(30 * time.Millisecond)

	require.NoError(t, cb.Execute(func() error { return nil }))
	assert.Equal(t, "closed", cb.State())
}

func TestExecuteValue(t *testing.T) {
	cb := NewCircuitBreaker(nil, nil)

	got, err := ExecuteValue(cb, func() (string, error) { return "CATEGORIA: Produtivo", nil })
	require.NoError(t, err)
	assert.Equal(t, "CATEGORIA: Produtivo", got)

	got, err = ExecuteValue(cb, func() (string, error) { return "ignored", errRemote })
	assert.ErrorIs(t, err, errRemote)
	assert.Empty(t, got)

	stats := cb.Stats()
	assert.Equal(t, "default", stats.Name)
	assert.Equal(t, uint32(2), stats.Requests)
	assert.Equal(t, uint32(1), stats.TotalFailures)
}
