package layout

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
	"gopkg.in/yaml.v3"

	"github.com/glesirok/treemapper/pkg/path"
)

// Tag 目标路径的版面分类
type Tag string

const (
	TagValue     Tag = "VALUE"
	TagBlock     Tag = "BLOCK"
	TagBlockItem Tag = "BLOCK_ITEM"
	TagTable     Tag = "TABLE"
	TagTableRow  Tag = "TABLE_ROW"
)

// ParseTag 解析分类名，不区分大小写
func ParseTag(s string) (Tag, error) {
	tag := Tag(strings.ToUpper(strings.TrimSpace(s)))
	switch tag {
	case TagValue, TagBlock, TagBlockItem, TagTable, TagTableRow:
		return tag, nil
	}
	return "", fmt.Errorf("unknown layout tag: %s", s)
}

// Rule 一条分类规则
// Pattern 支持：
//   - [work][*]          方括号路径，下标等同于 [*]
//   - work.*             点分路径
//   - @^\[skills\]@      正则（以 @ 包裹），匹配通配化后的方括号文本
type Rule struct {
	Pattern string
	Tag     Tag

	path *path.Path
	re   *regexp2.Regexp
}

// Table 目标路径 -> 分类 的对照表，未命中时使用 Default
type Table struct {
	Default Tag
	rules   []*Rule
}

func NewTable(def Tag) *Table {
	return &Table{Default: def}
}

// Add 追加规则，正则规则按添加顺序匹配
func (t *Table) Add(pattern string, tag Tag) error {
	rule := &Rule{Pattern: pattern, Tag: tag}

	switch {
	case len(pattern) > 2 && strings.HasPrefix(pattern, "@") && strings.HasSuffix(pattern, "@"):
		re, err := regexp2.Compile(strings.Trim(pattern, "@"), regexp2.None)
		if err != nil {
			return fmt.Errorf("invalid regex pattern '%s': %w", pattern, err)
		}
		rule.re = re

	case strings.HasPrefix(pattern, "["):
		p, err := path.Parse(pattern)
		if err != nil {
			return fmt.Errorf("parse layout path: %w", err)
		}
		rule.path = p.Generalize()

	default:
		p, err := path.ParseDotted(pattern)
		if err != nil {
			return fmt.Errorf("parse layout path: %w", err)
		}
		rule.path = p.Generalize()
	}

	t.rules = append(t.rules, rule)
	return nil
}

// Rules 返回规则列表
func (t *Table) Rules() []*Rule {
	out := make([]*Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Classify 返回目标路径的分类
func (t *Table) Classify(destination string) (Tag, error) {
	p, err := path.Parse(destination)
	if err != nil {
		return "", fmt.Errorf("parse destination path: %w", err)
	}
	tag, _ := t.match(p)
	return tag, nil
}

// match 返回分类以及命中的前缀片段数
// 优先级：最长的路径前缀规则 > 按顺序的正则规则 > 默认分类（前缀为整条路径）
func (t *Table) match(p *path.Path) (Tag, int) {
	general := p.Generalize()

	var best *Rule
	for _, rule := range t.rules {
		if rule.path == nil || !general.HasPrefix(rule.path) {
			continue
		}
		if best == nil || rule.path.Len() > best.path.Len() {
			best = rule
		}
	}
	if best != nil {
		return best.Tag, best.path.Len()
	}

	text := general.String()
	for _, rule := range t.rules {
		if rule.re == nil {
			continue
		}
		m, err := rule.re.FindStringMatch(text)
		if err != nil || m == nil {
			continue
		}
		return rule.Tag, matchedSegments(text, m.Index, m.Length, p.Len())
	}

	return t.Default, p.Len()
}

// matchedSegments 正则从开头匹配到片段边界时，返回匹配覆盖的片段数，否则视为整条路径
func matchedSegments(text string, index, length, whole int) int {
	end := index + length
	if index != 0 || end == 0 || text[end-1] != ']' {
		return whole
	}
	return strings.Count(text[:end], "[")
}

// UnmarshalYAML 解析
//
//	default: VALUE
//	paths:
//	  "[work]": BLOCK
//	  "@^\\[skills\\]@": TABLE
func (t *Table) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Default string    `yaml:"default"`
		Paths   yaml.Node `yaml:"paths"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	t.Default = TagValue
	t.rules = nil
	if raw.Default != "" {
		tag, err := ParseTag(raw.Default)
		if err != nil {
			return fmt.Errorf("layout default: %w", err)
		}
		t.Default = tag
	}

	if raw.Paths.Kind == 0 {
		return nil
	}
	if raw.Paths.Kind != yaml.MappingNode {
		return fmt.Errorf("layout paths must be a mapping (line %d)", raw.Paths.Line)
	}

	for i := 0; i+1 < len(raw.Paths.Content); i += 2 {
		keyNode := raw.Paths.Content[i]
		valueNode := raw.Paths.Content[i+1]

		tag, err := ParseTag(valueNode.Value)
		if err != nil {
			return fmt.Errorf("layout path '%s' (line %d): %w", keyNode.Value, keyNode.Line, err)
		}
		if err := t.Add(keyNode.Value, tag); err != nil {
			return fmt.Errorf("layout path '%s' (line %d): %w", keyNode.Value, keyNode.Line, err)
		}
	}

	return nil
}
