package path

import (
	"errors"
	"fmt"
)

// Wildcard 通配符片段文本，[*] 表示数组中的每个元素
const Wildcard = "*"

// Segment 表示路径的一个片段
type Segment struct {
	Type  SegmentType
	Field string // 原始键文本，如 "name"、"0"、"*"
	Index int    // 仅 SegmentTypeIndex 有效
}

type SegmentType int

const (
	SegmentTypeField    SegmentType = iota // [name] 普通键
	SegmentTypeIndex                       // [0] 数组下标
	SegmentTypeWildcard                    // [*] 通配符
)

// Path 表示解析后的完整路径
// Path 一经创建不再修改，所有变换都返回新的 Path
type Path struct {
	Segments []Segment
}

// DefaultMaxIndex 写入时允许的最大下标
const DefaultMaxIndex = 1 << 20

var (
	ErrInvalidPath       = errors.New("invalid path")
	ErrWildcardNotFound  = errors.New("wildcard not found")
	ErrNotFound          = errors.New("path not found")
	ErrNotContainer      = errors.New("not a container")
	ErrWildcardSegment   = errors.New("wildcard segment cannot be resolved")
	ErrContainerMismatch = errors.New("container mismatch")
	ErrIndexOutOfRange   = errors.New("index out of range")
)

// ParseError 路径文本格式错误
type ParseError struct {
	Text   string
	Pos    int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid path '%s' at offset %d: %s", e.Text, e.Pos, e.Reason)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidPath
}
