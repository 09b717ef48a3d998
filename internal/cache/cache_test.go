package cache

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"document-qa/internal/models"
)

func TestAnswerCache_GetPut(t *testing.T) {
	c, err := New(8)
	require.NoError(t, err)

	_, ok := c.Get("what is the price?")
	assert.False(t, ok)

	resp := models.Response{Answer: "ten dollars", Confidence: 0.9}
	c.Put("what is the price?", resp)

	got, ok := c.Get("what is the price?")
	require.True(t, ok)
	assert.Equal(t, resp, got)
}

func TestAnswerCache_NormalizesKeys(t *testing.T) {
	c, err := New(8)
	require.NoError(t, err)

	c.Put("  What Is The Price?  ", models.Response{Answer: "ten", Confidence: 0.9})

	got, ok := c.Get("what is the price?")
	require.True(t, ok)
	assert.Equal(t, "ten", got.Answer)
}

func TestAnswerCache_EvictsOldestAtCapacity(t *testing.T) {
	c, err := New(2)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		c.Put(fmt.Sprintf("question %d", i), models.Response{Answer: "a", Confidence: 0.9})
	}

	assert.Equal(t, 2, c.Len())
	_, ok := c.Get("question 0")
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok = c.Get("question 2")
	assert.True(t, ok)
}
