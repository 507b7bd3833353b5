package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPerKey_Burst(t *testing.T) {
	rl := NewPerKey(1, 2, 100, time.Hour)
	require.True(t, rl.Allow("a"))
	require.True(t, rl.Allow("a"))
	require.False(t, rl.Allow("a"))
	require.True(t, rl.Allow("b"), "keys are limited independently")
}

func TestPerKey_IdleKeysForgotten(t *testing.T) {
	ttl := 20 * time.Millisecond
	rl := NewPerKey(1, 1, 10, ttl)
	require.True(t, rl.Allow("a"))
	require.False(t, rl.Allow("a"))

	time.Sleep(ttl + 10*time.Millisecond)
	require.True(t, rl.Allow("a"))
}
