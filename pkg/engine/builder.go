package engine

import (
	"errors"
	"fmt"

	"github.com/glesirok/treemapper/pkg/path"
)

// MapEntrySetBuilder 从映射表构建 MapEntrySet
type MapEntrySetBuilder struct{}

// Build 解析每条映射，两侧深度不一致时立即失败
// 非数组项和数组项各自保持输入顺序
func (b *MapEntrySetBuilder) Build(m Map) (*MapEntrySet, error) {
	var nonArrays, arrays []MapEntry

	for _, pair := range m {
		source, err := path.Parse(pair.Source)
		if err != nil {
			return nil, fmt.Errorf("parse source path: %w", err)
		}
		destination, err := path.Parse(pair.Destination)
		if err != nil {
			return nil, fmt.Errorf("parse destination path: %w", err)
		}

		entry, err := NewMapEntry(source, destination)
		if err != nil {
			var mismatch *DepthMismatchError
			if errors.As(err, &mismatch) {
				mismatch.Source = pair.Source
				mismatch.Destination = pair.Destination
				mismatch.Map = m
			}
			return nil, err
		}

		if entry.IsArray() {
			arrays = append(arrays, entry)
		} else {
			nonArrays = append(nonArrays, entry)
		}
	}

	return NewMapEntrySet(append(nonArrays, arrays...)...), nil
}
