package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker(Settings{
		Name:        "backend",
		MaxFailures: 2,
		Timeout:     time.Minute,
		OnStateChange: func(_, from, to string) {
			transitions = append(transitions, from+"->"+to)
		},
	})
	boom := errors.New("connection refused")

	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, "closed", cb.State())
	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, "open", cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.False(t, called)
	assert.True(t, IsOpen(err))
	assert.Equal(t, []string{"closed->open"}, transitions)
}

func TestBreakerSuccessResetsFailures(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "backend", MaxFailures: 2})
	boom := errors.New("timeout")

	_ = cb.Execute(func() error { return boom })
	assert.NoError(t, cb.Execute(func() error { return nil }))
	_ = cb.Execute(func() error { return boom })
	assert.Equal(t, "closed", cb.State())
	assert.False(t, IsOpen(boom))
}
