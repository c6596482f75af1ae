package rest

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRateLimiter_SameIPSharesLimiter(t *testing.T) {
	r := newRateLimiter(1, 1)

	l := r.limiterFor("10.0.0.1")
	require.Same(t, l, r.limiterFor("10.0.0.1"))
	require.NotSame(t, l, r.limiterFor("10.0.0.2"))

	require.True(t, l.Allow())
	require.False(t, r.limiterFor("10.0.0.1").Allow())
}

func TestRateLimiter_BoundedByClientCount(t *testing.T) {
	r := newRateLimiterSized(rate.Inf, 1, 3, time.Hour)

	for i := 0; i < 50; i++ {
		r.limiterFor(fmt.Sprintf("10.0.0.%d", i))
	}
	require.Equal(t, 3, r.bucket.Len())

	// самые давние клиенты вытеснены
	_, ok := r.bucket.Peek("10.0.0.0")
	require.False(t, ok)
	_, ok = r.bucket.Peek("10.0.0.49")
	require.True(t, ok)
}

func TestRateLimiter_IdleClientsExpire(t *testing.T) {
	r := newRateLimiterSized(1, 1, 10, 20*time.Millisecond)

	first := r.limiterFor("10.0.0.1")
	require.Eventually(t, func() bool { return r.bucket.Len() == 0 }, time.Second, 5*time.Millisecond)
	require.NotSame(t, first, r.limiterFor("10.0.0.1"))
}
