package middleware

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

// TestRateLimiterConcurrentAccess verifies the rate limiter is safe under concurrent access.
// Run with: go test -race -count=1 ./internal/middleware/ -run TestRateLimiterConcurrentAccess
func TestRateLimiterConcurrentAccess(t *testing.T) {
	limiter := NewRateLimiter(100, 100, "test-concurrent")
	defer limiter.Stop()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	// 50 goroutines each making 20 requests against one shared key
	now := time.Now()
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(goroutineID int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if allowed, _ := limiter.reserve("192.168.1.1", now); allowed {
					mu.Lock()
					granted++
					mu.Unlock()
				}
				// and a spread of other keys to stress map growth
				limiter.reserve("10.0.0."+strconv.Itoa(goroutineID%10), now)
			}
		}(i)
	}
	wg.Wait()

	if granted != 100 {
		t.Errorf("granted %d requests at a single instant, want exactly the burst of 100", granted)
	}
}

// TestRateLimiterConcurrentWithCleanup verifies no race between request handling and eviction.
func TestRateLimiterConcurrentWithCleanup(t *testing.T) {
	limiter := NewRateLimiter(5, 5, "test-cleanup-race")
	defer limiter.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				limiter.reserve("10.0.0."+strconv.Itoa(id%10), time.Now())
				if j%10 == 0 {
					limiter.evictIdle(time.Now().Add(time.Hour))
				}
			}
		}(i)
	}
	wg.Wait()
}
