package engine

import (
	"fmt"
	"strconv"

	"github.com/glesirok/treemapper/pkg/path"
)

// MapEntry 一条已解析的映射及其派生信息
// MapEntry 不可变，替换通配符或设置数量都会返回新的 MapEntry
type MapEntry struct {
	source        *path.Path
	destination   *path.Path
	depth         int
	resolvedCount int
}

// NewMapEntry 创建映射项，两侧通配符个数必须一致
func NewMapEntry(source, destination *path.Path) (MapEntry, error) {
	sourceDepth, destinationDepth := source.Depth(), destination.Depth()
	if sourceDepth != destinationDepth {
		return MapEntry{}, &DepthMismatchError{
			Source:           source.String(),
			Destination:      destination.String(),
			SourceDepth:      sourceDepth,
			DestinationDepth: destinationDepth,
		}
	}

	return MapEntry{
		source:      source,
		destination: destination,
		depth:       sourceDepth,
	}, nil
}

func (e MapEntry) Source() *path.Path      { return e.source }
func (e MapEntry) Destination() *path.Path { return e.destination }
func (e MapEntry) Depth() int              { return e.depth }
func (e MapEntry) IsArray() bool           { return e.depth > 0 }

// ResolvedCount 第一个通配符父节点的元素个数，未解析时为 0
func (e MapEntry) ResolvedCount() int { return e.resolvedCount }

// WithResolvedCount 返回设置了元素个数的副本
func (e MapEntry) WithResolvedCount(count int) MapEntry {
	e.resolvedCount = count
	return e
}

// Expand 将两侧最左侧的通配符替换为下标 index，深度减一
func (e MapEntry) Expand(index int) (MapEntry, error) {
	literal := strconv.Itoa(index)

	source, err := e.source.ReplaceFirstWildcard(literal)
	if err != nil {
		return MapEntry{}, fmt.Errorf("expand source: %w", err)
	}
	destination, err := e.destination.ReplaceFirstWildcard(literal)
	if err != nil {
		return MapEntry{}, fmt.Errorf("expand destination: %w", err)
	}

	e.source = source
	e.destination = destination
	e.depth--
	return e, nil
}

// Pair 转换为文本形式
func (e MapEntry) Pair() Pair {
	return Pair{Source: e.source.String(), Destination: e.destination.String()}
}
