package story_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ether-stories-api/internal/application/story"
	appErrors "ether-stories-api/pkg/errors"
)

func TestPlannerContiguousIndicesAndWordSum(t *testing.T) {
	planner := story.NewPlanner()

	for d := 1; d <= 10; d++ {
		specs, err := planner.Plan(d, "a brave little fox")
		require.NoError(t, err, "duration %d", d)
		require.NotEmpty(t, specs, "duration %d", d)

		total := 0
		for i, spec := range specs {
			assert.Equal(t, i, spec.Index, "duration %d: indices must be contiguous from 0", d)
			assert.Positive(t, spec.TargetWordCount, "duration %d", d)
			assert.NotEmpty(t, spec.SceneHint, "duration %d", d)
			total += spec.TargetWordCount
		}
		assert.Equal(t, d*story.WordsPerMinute, total, "duration %d: word counts must sum to the target total", d)
	}
}

func TestPlannerChapterCountGrowsWithDuration(t *testing.T) {
	planner := story.NewPlanner()

	cases := map[int]int{
		1:  1,
		2:  1,
		3:  2,
		5:  3,
		7:  4,
		10: 5,
	}
	for duration, want := range cases {
		specs, err := planner.Plan(duration, "the moon garden")
		require.NoError(t, err)
		assert.Len(t, specs, want, "duration %d", duration)
	}
}

func TestPlannerRemainderOnLastChapter(t *testing.T) {
	planner := story.NewPlanner()

	specs, err := planner.Plan(3, "a snail who dreams of flying")
	require.NoError(t, err)
	require.Len(t, specs, 2)

	// 450 词均分两章，无余数时各章相等
	assert.Equal(t, 225, specs[0].TargetWordCount)
	assert.Equal(t, 225, specs[1].TargetWordCount)

	specs, err = planner.Plan(5, "a snail who dreams of flying")
	require.NoError(t, err)
	require.Len(t, specs, 3)

	// 750 / 3 = 250，余数 0；7 分钟 → 1050 / 4 = 262 余 2，余数落在最后一章
	specs, err = planner.Plan(7, "a snail who dreams of flying")
	require.NoError(t, err)
	require.Len(t, specs, 4)
	assert.Equal(t, 262, specs[0].TargetWordCount)
	assert.Equal(t, 262, specs[1].TargetWordCount)
	assert.Equal(t, 262, specs[2].TargetWordCount)
	assert.Equal(t, 264, specs[3].TargetWordCount)
}

func TestPlannerInvalidRequests(t *testing.T) {
	planner := story.NewPlanner()

	for _, d := range []int{-1, 0, 11, 100} {
		specs, err := planner.Plan(d, "valid theme")
		assert.Nil(t, specs, "duration %d", d)
		require.Error(t, err, "duration %d", d)
		assert.True(t, appErrors.IsCode(err, appErrors.CodeInvalidRequest), "duration %d", d)
	}

	specs, err := planner.Plan(3, "   ")
	assert.Nil(t, specs)
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.CodeInvalidRequest))
}

func TestPlannerDeterministic(t *testing.T) {
	planner := story.NewPlanner()

	first, err := planner.Plan(6, "the lighthouse cat")
	require.NoError(t, err)
	second, err := planner.Plan(6, "the lighthouse cat")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
