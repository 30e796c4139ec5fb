package game

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestMask(t *testing.T) {
	assert.Equal(t, "___ _____", Mask("ice cream"))
	assert.Equal(t, "_____", Mask("apple"))
	assert.Equal(t, "__", Mask("猫咪"))
	assert.Equal(t, "", Mask(""))
}

func TestMask_PreservesStructure(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[a-zA-Zé ]{0,20}`).Draw(t, "word")
		masked := Mask(word)

		if utf8.RuneCountInString(masked) != utf8.RuneCountInString(word) {
			t.Fatalf("length changed: %q -> %q", word, masked)
		}

		wr, mr := []rune(word), []rune(masked)
		for i := range wr {
			if (wr[i] == ' ') != (mr[i] == ' ') {
				t.Fatalf("space at %d not preserved: %q -> %q", i, word, masked)
			}
			if wr[i] != ' ' && mr[i] != '_' {
				t.Fatalf("rune %d not masked: %q", i, masked)
			}
		}
	})
}

func TestMatchesWord(t *testing.T) {
	tests := []struct {
		guess string
		word  string
		want  bool
	}{
		{"Ice Cream ", "ice cream", true},
		{"  ICE CREAM", "ice cream", true},
		{"ice  cream", "ice cream", false},
		{"icecream", "ice cream", false},
		{"", "ice cream", false},
		{"apple", "", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchesWord(tt.guess, tt.word), "%q vs %q", tt.guess, tt.word)
	}
}

func TestMatchesWord_CaseAndWhitespaceInsensitive(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		word := rapid.StringMatching(`[a-z]{1,10}( [a-z]{1,10})?`).Draw(t, "word")
		pad := strings.Repeat(" ", rapid.IntRange(0, 3).Draw(t, "pad"))

		if !MatchesWord(pad+strings.ToUpper(word)+pad, word) {
			t.Fatalf("%q should match", word)
		}
	})
}

func TestGenID(t *testing.T) {
	a, b := GenID(), GenID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}
