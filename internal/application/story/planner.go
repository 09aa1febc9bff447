package story

import (
	"fmt"
	"strings"

	"ether-stories-api/internal/domain/entity"
	appErrors "ether-stories-api/pkg/errors"
)

const (
	// 朗读语速常量：目标总词数 = 时长(分钟) × 每分钟词数
	WordsPerMinute = 150

	MinDurationMinutes = 1
	MaxDurationMinutes = 10
)

// Planner 把请求的叙述时长映射为有序章节规划。
// 除章节内容外完全确定：相同输入得到相同章节数与词数分配。
type Planner struct{}

func NewPlanner() *Planner {
	return &Planner{}
}

// Plan 生成章节规划：
// - 章节数 N = ceil(时长/2)，随时长单调增长（1-2 分钟 1 章，10 分钟 5 章）
// - 总词数按章节均分，余数全部加到最后一章
func (p *Planner) Plan(durationMinutes int, theme string) ([]entity.ChapterSpec, error) {
	if durationMinutes < MinDurationMinutes || durationMinutes > MaxDurationMinutes {
		return nil, appErrors.ErrInvalidRequest.WithDetail(
			fmt.Sprintf("duration_minutes must be within [%d,%d], got %d", MinDurationMinutes, MaxDurationMinutes, durationMinutes))
	}
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return nil, appErrors.ErrInvalidRequest.WithDetail("theme is required")
	}

	chapterCount := (durationMinutes + 1) / 2
	totalWords := durationMinutes * WordsPerMinute
	perChapter := totalWords / chapterCount
	remainder := totalWords % chapterCount

	specs := make([]entity.ChapterSpec, 0, chapterCount)
	for i := 0; i < chapterCount; i++ {
		words := perChapter
		if i == chapterCount-1 {
			words += remainder
		}
		specs = append(specs, entity.ChapterSpec{
			Index:           i,
			TargetWordCount: words,
			SceneHint:       sceneHint(theme, i, chapterCount),
		})
	}
	return specs, nil
}

// sceneHint 给每章一个确定性的场景提示，引导开端/发展/收束的叙事弧线
func sceneHint(theme string, index, count int) string {
	switch {
	case count == 1:
		return fmt.Sprintf("A short, self-contained adventure about %s, from a gentle opening to a cozy ending", theme)
	case index == 0:
		return fmt.Sprintf("Introduce the world and main character of a story about %s", theme)
	case index == count-1:
		return fmt.Sprintf("Bring the story about %s to a warm, reassuring conclusion", theme)
	default:
		return fmt.Sprintf("Continue the adventure about %s with a new discovery or gentle challenge (part %d of %d)", theme, index+1, count)
	}
}
