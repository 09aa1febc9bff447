// Package storyutil 提供 story 应用层内部共享的工具函数。
package storyutil

import (
	"strings"
	"unicode/utf8"
)

// TruncateByRunes 按 rune 数量截断字符串。
func TruncateByRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}

// CountWords 统计空白分隔的词数
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// FirstSentences 取开头若干句，用于插图提示词的章节摘录。
func FirstSentences(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || s == "" {
		return ""
	}
	count := 0
	for i, r := range s {
		if r == '.' || r == '!' || r == '?' {
			count++
			if count == max {
				return strings.TrimSpace(s[:i+1])
			}
		}
	}
	return s
}
