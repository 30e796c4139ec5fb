// Package words 提供只读词库及随机抽词
package words

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrEmptyBank = errors.New("词库为空")

// Bank 加载后不再修改，可被所有房间并发使用
type Bank struct {
	words []string
}

func New(list []string) (*Bank, error) {
	seen := make(map[string]struct{}, len(list))
	words := make([]string, 0, len(list))

	for _, w := range list {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}

		key := strings.ToLower(w)
		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		words = append(words, w)
	}

	if len(words) == 0 {
		return nil, ErrEmptyBank
	}

	return &Bank{words: words}, nil
}

// Load 按扩展名选择解析方式：yaml/yml 为词列表或 分类 -> 词列表，其余按行读取
func Load(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取词库 %s 失败: %w", path, err)
	}

	var list []string

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		list, err = parseYAML(data)
	default:
		list, err = parseLines(data)
	}

	if err != nil {
		return nil, fmt.Errorf("解析词库 %s 失败: %w", path, err)
	}

	bank, err := New(list)
	if err != nil {
		return nil, fmt.Errorf("词库 %s: %w", path, err)
	}

	return bank, nil
}

func parseLines(data []byte) ([]string, error) {
	var list []string

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		list = append(list, line)
	}

	return list, scanner.Err()
}

func parseYAML(data []byte) ([]string, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}

	if len(node.Content) == 0 {
		return nil, nil
	}

	root := node.Content[0]

	switch root.Kind {
	case yaml.SequenceNode:
		var list []string
		if err := root.Decode(&list); err != nil {
			return nil, err
		}
		return list, nil

	case yaml.MappingNode:
		// 保持分类在文件中的顺序
		var list []string
		for i := 0; i+1 < len(root.Content); i += 2 {
			var category []string
			if err := root.Content[i+1].Decode(&category); err != nil {
				return nil, fmt.Errorf("分类 %q: %w", root.Content[i].Value, err)
			}
			list = append(list, category...)
		}
		return list, nil

	default:
		return nil, errors.New("词库必须是列表或 分类 -> 列表 的映射")
	}
}

func (b *Bank) Len() int {
	return len(b.words)
}

func (b *Bank) Words() []string {
	return slices.Clone(b.words)
}

func (b *Bank) Random() string {
	return b.words[rand.IntN(len(b.words))]
}

// RandomN 返回 n 个互不相同的词，n 超过词库大小时返回打乱后的全部词
func (b *Bank) RandomN(n int) []string {
	if n <= 0 {
		return nil
	}

	if n >= len(b.words) {
		all := slices.Clone(b.words)
		rand.Shuffle(len(all), func(i, j int) {
			all[i], all[j] = all[j], all[i]
		})
		return all
	}

	picked := make([]string, 0, n)
	for _, i := range rand.Perm(len(b.words))[:n] {
		picked = append(picked, b.words[i])
	}

	return picked
}
