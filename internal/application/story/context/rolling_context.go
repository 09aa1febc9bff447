package context

import (
	"fmt"
	"strings"

	"ether-stories-api/internal/application/story/storyutil"
)

const (
	rollingStoryRecentKeep      = 2
	rollingStorySummaryMaxRunes = 2000
	rollingStoryChapterMaxRunes = 600
)

// RollingStoryContext 跨章节叙事状态：
// - Summary：较早章节的压缩摘要（滚动追加，长度受限）
// - RecentChapters：最近几章的开头节选（保持短期叙事连续性）
// 只追加，不回写已生成章节。
type RollingStoryContext struct {
	Theme          string   `json:"theme"`
	Summary        string   `json:"summary"`
	RecentChapters []string `json:"recent_chapters"`
	ChapterCount   int      `json:"chapter_count"`
}

func NewRollingStoryContext(theme string) *RollingStoryContext {
	return &RollingStoryContext{Theme: strings.TrimSpace(theme)}
}

// SnapshotForPrompt 输出给提示词用的前文摘要；首章为空。
func (c *RollingStoryContext) SnapshotForPrompt() string {
	if c == nil {
		return ""
	}
	var b strings.Builder
	if s := strings.TrimSpace(c.Summary); s != "" {
		b.WriteString(s)
	}
	recent := formatRecentChapters(c.RecentChapters, c.ChapterCount)
	if recent != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(recent)
	}
	return strings.TrimSpace(b.String())
}

// AppendChapter 把刚生成的章节并入滚动状态
func (c *RollingStoryContext) AppendChapter(text string) {
	if c == nil {
		return
	}
	t := strings.TrimSpace(text)
	if t == "" {
		return
	}
	t = storyutil.TruncateByRunes(t, rollingStoryChapterMaxRunes)

	c.ChapterCount++
	c.RecentChapters = append(c.RecentChapters, t)
	c.compact()
}

// compact 滚动压缩：较早章节并入 Summary，只保留最近 N 章节选。
func (c *RollingStoryContext) compact() {
	if c == nil || len(c.RecentChapters) <= rollingStoryRecentKeep {
		return
	}

	older := c.RecentChapters[:len(c.RecentChapters)-rollingStoryRecentKeep]
	c.RecentChapters = c.RecentChapters[len(c.RecentChapters)-rollingStoryRecentKeep:]

	c.Summary = appendToSummary(c.Summary, older)
	c.Summary = storyutil.TruncateByRunes(c.Summary, rollingStorySummaryMaxRunes)
}

func formatRecentChapters(chapters []string, total int) string {
	if len(chapters) == 0 {
		return ""
	}
	var b strings.Builder
	base := total - len(chapters)
	for i := range chapters {
		t := strings.TrimSpace(chapters[i])
		if t == "" {
			continue
		}
		_, _ = fmt.Fprintf(&b, "Chapter %d: %s\n", base+i+1, t)
	}
	return strings.TrimSpace(b.String())
}

func appendToSummary(summary string, older []string) string {
	var b strings.Builder
	s := strings.TrimSpace(summary)
	if s != "" {
		b.WriteString(s)
		b.WriteString("\n")
	}
	for i := range older {
		t := strings.TrimSpace(older[i])
		if t == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(t)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
