package path

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse 解析方括号路径
// 支持语法：
//   - [basics][name]
//   - [work][*][position]  通配符
//   - [work][0][position]  下标
func Parse(pathStr string) (*Path, error) {
	if pathStr == "" {
		return nil, &ParseError{Text: pathStr, Reason: "empty path"}
	}

	segments := []Segment{}
	for i := 0; i < len(pathStr); {
		if pathStr[i] != '[' {
			return nil, &ParseError{Text: pathStr, Pos: i, Reason: "expected '['"}
		}

		end := strings.IndexAny(pathStr[i+1:], "[]")
		if end == -1 || pathStr[i+1+end] != ']' {
			return nil, &ParseError{Text: pathStr, Pos: i, Reason: "no closing bracket"}
		}

		key := pathStr[i+1 : i+1+end]
		if key == "" {
			return nil, &ParseError{Text: pathStr, Pos: i, Reason: "empty segment"}
		}

		segments = append(segments, newSegment(key))
		i += end + 2
	}

	return &Path{Segments: segments}, nil
}

// ParseDotted 解析内部使用的点分形式，如 "work.*.position"
func ParseDotted(pathStr string) (*Path, error) {
	if pathStr == "" {
		return nil, &ParseError{Text: pathStr, Reason: "empty path"}
	}

	parts := splitPath(pathStr)
	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		if strings.ContainsAny(part, "[]") {
			return nil, &ParseError{Text: pathStr, Reason: fmt.Sprintf("invalid segment '%s'", part)}
		}
		segments = append(segments, newSegment(part))
	}

	if len(segments) == 0 {
		return nil, &ParseError{Text: pathStr, Reason: "no segments"}
	}

	return &Path{Segments: segments}, nil
}

// splitPath 按 . 分割，忽略空片段
func splitPath(pathStr string) []string {
	var parts []string
	var current strings.Builder

	for _, ch := range pathStr {
		if ch == '.' {
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
			continue
		}
		current.WriteRune(ch)
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}

// newSegment 根据键文本判断片段类型
// 只有规范的非负十进制数（0、1、12，不含 01、-1、+1）才视为下标
func newSegment(key string) Segment {
	if key == Wildcard {
		return Segment{Type: SegmentTypeWildcard, Field: key}
	}

	if idx, err := strconv.Atoi(key); err == nil && idx >= 0 && strconv.Itoa(idx) == key {
		return Segment{Type: SegmentTypeIndex, Field: key, Index: idx}
	}

	return Segment{Type: SegmentTypeField, Field: key}
}

// String 返回方括号形式
func (p *Path) String() string {
	var b strings.Builder
	for _, seg := range p.Segments {
		b.WriteByte('[')
		b.WriteString(seg.Field)
		b.WriteByte(']')
	}
	return b.String()
}

// Dotted 返回点分形式
func (p *Path) Dotted() string {
	keys := p.Keys()
	return strings.Join(keys, ".")
}

// Keys 返回片段键文本列表
func (p *Path) Keys() []string {
	keys := make([]string, len(p.Segments))
	for i, seg := range p.Segments {
		keys[i] = seg.Field
	}
	return keys
}

func (p *Path) Len() int {
	return len(p.Segments)
}

// Depth 通配符片段个数
func (p *Path) Depth() int {
	depth := 0
	for _, seg := range p.Segments {
		if seg.Type == SegmentTypeWildcard {
			depth++
		}
	}
	return depth
}

// Sub 返回 [from, to) 片段组成的新路径
func (p *Path) Sub(from, to int) *Path {
	segments := make([]Segment, to-from)
	copy(segments, p.Segments[from:to])
	return &Path{Segments: segments}
}

// HasPrefix 判断 prefix 的片段是否逐一匹配 p 的开头
func (p *Path) HasPrefix(prefix *Path) bool {
	if len(prefix.Segments) > len(p.Segments) {
		return false
	}
	for i, seg := range prefix.Segments {
		if p.Segments[i].Field != seg.Field {
			return false
		}
	}
	return true
}

// FirstWildcard 返回第一个通配符的位置，没有则返回 -1
func (p *Path) FirstWildcard() int {
	for i, seg := range p.Segments {
		if seg.Type == SegmentTypeWildcard {
			return i
		}
	}
	return -1
}

// SplitAtFirstWildcard 在第一个通配符处拆分为 (前缀, 后缀)，通配符本身不包含在两者中
func (p *Path) SplitAtFirstWildcard() (prefix, suffix *Path, ok bool) {
	idx := p.FirstWildcard()
	if idx == -1 {
		return nil, nil, false
	}
	return p.Sub(0, idx), p.Sub(idx+1, len(p.Segments)), true
}

// ReplaceFirstWildcard 将最左侧的通配符替换为 literal，其余通配符保持不变
func (p *Path) ReplaceFirstWildcard(literal string) (*Path, error) {
	idx := p.FirstWildcard()
	if idx == -1 {
		return nil, fmt.Errorf("%w in '%s'", ErrWildcardNotFound, p.String())
	}

	replaced := p.Sub(0, len(p.Segments))
	replaced.Segments[idx] = newSegment(literal)
	return replaced, nil
}

// Generalize 将所有下标片段还原为通配符，如 [work][0][x] -> [work][*][x]
func (p *Path) Generalize() *Path {
	general := p.Sub(0, len(p.Segments))
	for i, seg := range general.Segments {
		if seg.Type == SegmentTypeIndex {
			general.Segments[i] = newSegment(Wildcard)
		}
	}
	return general
}

// CountWildcards 统计路径文本中的 [*] 个数
func CountWildcards(pathStr string) int {
	return strings.Count(pathStr, "["+Wildcard+"]")
}
