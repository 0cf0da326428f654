package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStory_IsExpired(t *testing.T) {
	now := time.Now()

	fresh := Story{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, fresh.IsExpired(now))

	stale := Story{ExpiresAt: now.Add(-time.Minute)}
	assert.True(t, stale.IsExpired(now))

	boundary := Story{ExpiresAt: now}
	assert.True(t, boundary.IsExpired(now))
}
