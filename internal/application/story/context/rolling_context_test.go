package context

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotEmptyBeforeFirstChapter(t *testing.T) {
	rc := NewRollingStoryContext("a brave little fox")
	assert.Empty(t, rc.SnapshotForPrompt())
}

func TestSnapshotContainsRecentChapters(t *testing.T) {
	rc := NewRollingStoryContext("the moon garden")
	rc.AppendChapter("Mira found a silver key in the garden.")

	snap := rc.SnapshotForPrompt()
	assert.Contains(t, snap, "Chapter 1:")
	assert.Contains(t, snap, "silver key")

	rc.AppendChapter("The key opened a door in the oak tree.")
	snap = rc.SnapshotForPrompt()
	assert.Contains(t, snap, "Chapter 1:")
	assert.Contains(t, snap, "Chapter 2:")
}

func TestCompactMovesOlderChaptersIntoSummary(t *testing.T) {
	rc := NewRollingStoryContext("the lighthouse cat")
	rc.AppendChapter("Chapter one text about the cat.")
	rc.AppendChapter("Chapter two text about the storm.")
	rc.AppendChapter("Chapter three text about the rescue.")

	// 只保留最近两章节选，更早的并入摘要
	require.Len(t, rc.RecentChapters, rollingStoryRecentKeep)
	assert.Contains(t, rc.Summary, "Chapter one text")

	snap := rc.SnapshotForPrompt()
	assert.Contains(t, snap, "Chapter one text")
	assert.Contains(t, snap, "Chapter 2:")
	assert.Contains(t, snap, "Chapter 3:")
	assert.NotContains(t, snap, "Chapter 1:")
}

func TestAppendChapterIgnoresBlankText(t *testing.T) {
	rc := NewRollingStoryContext("theme")
	rc.AppendChapter("   ")
	rc.AppendChapter("")

	assert.Zero(t, rc.ChapterCount)
	assert.Empty(t, rc.SnapshotForPrompt())
}

func TestAppendChapterTruncatesLongText(t *testing.T) {
	rc := NewRollingStoryContext("theme")
	rc.AppendChapter(strings.Repeat("很", rollingStoryChapterMaxRunes*3))

	require.Len(t, rc.RecentChapters, 1)
	assert.LessOrEqual(t, len([]rune(rc.RecentChapters[0])), rollingStoryChapterMaxRunes)
}

func TestSummaryBounded(t *testing.T) {
	rc := NewRollingStoryContext("theme")
	for i := 0; i < 20; i++ {
		rc.AppendChapter(strings.Repeat("w ", 300))
	}
	assert.LessOrEqual(t, len([]rune(rc.Summary)), rollingStorySummaryMaxRunes)
	assert.Equal(t, 20, rc.ChapterCount)
}

func TestNilReceiverIsSafe(t *testing.T) {
	var rc *RollingStoryContext
	assert.Empty(t, rc.SnapshotForPrompt())
	rc.AppendChapter("text")
}
