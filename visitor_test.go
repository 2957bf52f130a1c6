package storefront

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestVisitors_AcquireAndSweep(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	v := newVisitors()
	v.now = func() time.Time { return now }

	a, created := v.acquire("a")
	assert.True(t, created)
	again, created := v.acquire("a")
	assert.False(t, created)
	assert.Same(t, a, again)

	now = now.Add(20 * time.Minute)
	v.acquire("b")

	assert.Equal(t, 1, v.sweep(10*time.Minute))
	assert.Equal(t, 1, v.len())

	_, created = v.acquire("a")
	assert.True(t, created)
}
