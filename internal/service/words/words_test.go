package words

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNew_TrimsAndDeduplicates(t *testing.T) {
	b, err := New([]string{" apple ", "Apple", "", "ice cream", "banana"})
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "ice cream", "banana"}, b.Words())
}

func TestNew_Empty(t *testing.T) {
	_, err := New([]string{" ", ""})
	assert.ErrorIs(t, err, ErrEmptyBank)
}

func TestLoad_TextFile(t *testing.T) {
	path := writeFile(t, "word_list.txt", "# fruit\napple\n\nbanana\nice cream\n")

	b, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "banana", "ice cream"}, b.Words())
}

func TestLoad_YAMLSequence(t *testing.T) {
	path := writeFile(t, "words.yaml", "- apple\n- banana\n")

	b, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, b.Len())
}

func TestLoad_YAMLCategories(t *testing.T) {
	path := writeFile(t, "words.yml", "animals:\n  - cat\n  - dog\nfood:\n  - ice cream\n")

	b, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "dog", "ice cream"}, b.Words())
}

func TestLoad_YAMLScalarRejected(t *testing.T) {
	path := writeFile(t, "words.yaml", "just a string\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestLoad_EmptyFile(t *testing.T) {
	path := writeFile(t, "word_list.txt", "# nothing here\n")

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrEmptyBank)
}

func TestRandomN_DistinctMembers(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		list := rapid.SliceOfNDistinct(
			rapid.StringMatching(`[a-z]{1,8}`), 1, 30, strings.ToLower,
		).Draw(t, "words")
		n := rapid.IntRange(0, 40).Draw(t, "n")

		b, err := New(list)
		if err != nil {
			t.Fatalf("New: %v", err)
		}

		picked := b.RandomN(n)

		want := n
		if n > b.Len() {
			want = b.Len()
		}
		if len(picked) != want {
			t.Fatalf("RandomN(%d) returned %d words, want %d", n, len(picked), want)
		}

		seen := map[string]bool{}
		for _, w := range picked {
			if seen[w] {
				t.Fatalf("duplicate word %q", w)
			}
			seen[w] = true
			if !contains(b.Words(), w) {
				t.Fatalf("word %q not in bank", w)
			}
		}
	})
}

func TestRandom_FromBank(t *testing.T) {
	b, err := New([]string{"a", "b", "c"})
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		assert.Contains(t, b.Words(), b.Random())
	}
}

func contains(list []string, w string) bool {
	for _, x := range list {
		if x == w {
			return true
		}
	}
	return false
}
