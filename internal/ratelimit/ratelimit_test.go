package ratelimit_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medialogapp/medialog-server/internal/ratelimit"
)

func TestAllowWithinBurst(t *testing.T) {
	krl := ratelimit.New(1, 3)

	for range 3 {
		assert.True(t, krl.Allow("u1"))
	}
	assert.False(t, krl.Allow("u1"))
}

func TestKeysAreIndependent(t *testing.T) {
	krl := ratelimit.New(1, 1)

	assert.True(t, krl.Allow("u1"))
	assert.False(t, krl.Allow("u1"))

	// A different user has its own bucket.
	assert.True(t, krl.Allow("u2"))
}

func TestConcurrentKeyCreation(t *testing.T) {
	krl := ratelimit.New(1, 1)

	var wg sync.WaitGroup
	allowed := make([]bool, 16)
	for i := range allowed {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed[i] = krl.Allow("u1")
		}()
	}
	wg.Wait()

	// All goroutines hit the same bucket: exactly one token existed.
	count := 0
	for _, ok := range allowed {
		if ok {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
