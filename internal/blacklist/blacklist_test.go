package blacklist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAddAndContains(t *testing.T) {
	b := New(time.Minute)

	b.Add(1, "token-a", time.Hour)

	assert.True(t, b.Contains(1, "token-a"))
	assert.False(t, b.Contains(1, "token-b"))
	assert.False(t, b.Contains(2, "token-a"))
}

// もう期限切れのトークンは追跡しない
func TestAdd_NonPositiveTTLIsNoop(t *testing.T) {
	b := New(time.Minute)

	b.Add(1, "token-a", 0)
	b.Add(1, "token-b", -time.Second)

	assert.False(t, b.Contains(1, "token-a"))
	assert.False(t, b.Contains(1, "token-b"))
}

func TestEntriesExpire(t *testing.T) {
	b := New(time.Minute)

	b.Add(1, "token-a", 20*time.Millisecond)
	assert.True(t, b.Contains(1, "token-a"))

	time.Sleep(40 * time.Millisecond)
	assert.False(t, b.Contains(1, "token-a"))
}
