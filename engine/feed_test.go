package engine

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecentWindowBounds(t *testing.T) {
	f := NewFeed(30)
	for tick := 0; tick <= 10; tick++ {
		f.Post("bot", fmt.Sprintf("msg-%d", tick), StanceNeutral, tick)
	}

	got := f.Recent(10, 3)
	require.Len(t, got, 4)
	for i, a := range got {
		assert.Equal(t, 7+i, a.Tick)
		assert.GreaterOrEqual(t, a.Tick, 7)
	}
}

func TestRecentPreservesInsertionOrder(t *testing.T) {
	f := NewFeed(30)
	f.Post("a", "first", StanceBull, 5)
	f.Post("b", "second", StanceBear, 5)

	got := f.Recent(5, 10)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Text)
	assert.Equal(t, "second", got[1].Text)
}

func TestPostTruncatesText(t *testing.T) {
	f := NewFeed(30)
	a := f.Post("bot", strings.Repeat("x", 500), StanceBull, 0)
	assert.Len(t, a.Text, maxAnnouncementLen)
}

func TestPostTruncatesOnRuneBoundary(t *testing.T) {
	f := NewFeed(30)
	// 94 three-byte runes; a byte cut at 280 would land mid-rune
	a := f.Post("bot", strings.Repeat("世", 94), StanceBull, 0)
	assert.True(t, utf8.ValidString(a.Text))
	assert.Len(t, a.Text, 279)
}

func TestFeedPrunesOldEntries(t *testing.T) {
	f := NewFeed(5)
	for tick := 0; tick < pruneThreshold+100; tick++ {
		f.Post("bot", "m", StanceNeutral, tick)
	}

	// growth stays bounded near the window, not the post count
	assert.Less(t, f.Len(), pruneThreshold)

	current := pruneThreshold + 99
	got := f.Recent(current, 5)
	require.Len(t, got, 6)
	assert.Equal(t, current-5, got[0].Tick)
}
