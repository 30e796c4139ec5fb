package game

import (
	"strings"

	"github.com/google/uuid"
)

func GenID() string {
	id, err := uuid.NewV7()
	if err != nil {
		panic("Failed to generate UUID: " + err.Error())
	}

	return id.String()
}

// Mask 将词语中除空格以外的字符替换为下划线，保留单词边界
func Mask(word string) string {
	var b strings.Builder
	b.Grow(len(word))

	for _, r := range word {
		if r == ' ' {
			b.WriteRune(' ')
		} else {
			b.WriteRune('_')
		}
	}

	return b.String()
}

// MatchesWord 去除首尾空白后忽略大小写比较
func MatchesWord(guess, word string) bool {
	guess = strings.TrimSpace(guess)
	word = strings.TrimSpace(word)

	if guess == "" || word == "" {
		return false
	}

	return strings.EqualFold(guess, word)
}
