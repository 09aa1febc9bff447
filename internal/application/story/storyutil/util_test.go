package storyutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateByRunes(t *testing.T) {
	assert.Equal(t, "", TruncateByRunes("hello", 0))
	assert.Equal(t, "", TruncateByRunes("hello", -1))
	assert.Equal(t, "hello", TruncateByRunes("hello", 5))
	assert.Equal(t, "hel", TruncateByRunes("hello", 3))
	// 多字节字符按 rune 截断，不能切在字节中间
	assert.Equal(t, "你好", TruncateByRunes("你好世界", 2))
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 0, CountWords("   \n\t"))
	assert.Equal(t, 3, CountWords("one two three"))
	assert.Equal(t, 3, CountWords("  one\ttwo\nthree  "))
}

func TestFirstSentences(t *testing.T) {
	text := "The fox ran. The owl watched! Where did they go? Nobody knew."

	assert.Equal(t, "The fox ran.", FirstSentences(text, 1))
	assert.Equal(t, "The fox ran. The owl watched!", FirstSentences(text, 2))
	assert.Equal(t, "The fox ran. The owl watched! Where did they go?", FirstSentences(text, 3))

	// 句子不足时返回全文
	assert.Equal(t, text, FirstSentences(text, 10))
	assert.Equal(t, "", FirstSentences("", 3))
	assert.Equal(t, "", FirstSentences("some text.", 0))
	assert.Equal(t, "no terminal punctuation", FirstSentences("no terminal punctuation", 2))
}
