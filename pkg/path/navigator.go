package path

import (
	"fmt"
	"reflect"
)

// Navigator 负责在解码后的数据树（map / slice / 标量）中读写节点
// 读取不会修改传入的树
type Navigator struct {
	// MaxIndex 写入时允许的最大下标，<= 0 时使用 DefaultMaxIndex
	MaxIndex int
}

func (n *Navigator) maxIndex() int {
	if n.MaxIndex > 0 {
		return n.MaxIndex
	}
	return DefaultMaxIndex
}

// Get 根据路径读取节点，空路径返回根节点
func (n *Navigator) Get(root any, path *Path) (any, error) {
	node := root
	for i, seg := range path.Segments {
		child, err := n.child(node, seg)
		if err != nil {
			return nil, fmt.Errorf("read '%s' at %s: %w", seg.Field, path.Sub(0, i).String(), err)
		}
		node = child
	}
	return node, nil
}

// IsReadable 判断路径在树中是否可读
func (n *Navigator) IsReadable(root any, path *Path) bool {
	_, err := n.Get(root, path)
	return err == nil
}

// child 读取单个片段
func (n *Navigator) child(node any, seg Segment) (any, error) {
	if seg.Type == SegmentTypeWildcard {
		return nil, ErrWildcardSegment
	}

	switch v := node.(type) {
	case map[string]any:
		if value, ok := v[seg.Field]; ok {
			return value, nil
		}
		return nil, ErrNotFound

	case map[any]any:
		if value, ok := v[seg.Field]; ok {
			return value, nil
		}
		if seg.Type == SegmentTypeIndex {
			if value, ok := v[seg.Index]; ok {
				return value, nil
			}
		}
		return nil, ErrNotFound

	case []any:
		if seg.Type != SegmentTypeIndex || seg.Index >= len(v) {
			return nil, ErrNotFound
		}
		return v[seg.Index], nil

	case nil:
		return nil, ErrNotContainer
	}

	return n.reflectChild(reflect.ValueOf(node), seg)
}

// reflectChild 处理其他类型的 map 和 slice，如 []string、map[string]string
func (n *Navigator) reflectChild(rv reflect.Value, seg Segment) (any, error) {
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, ErrNotFound
		}
		value := rv.MapIndex(reflect.ValueOf(seg.Field).Convert(rv.Type().Key()))
		if !value.IsValid() {
			return nil, ErrNotFound
		}
		return value.Interface(), nil

	case reflect.Slice, reflect.Array:
		if seg.Type != SegmentTypeIndex || seg.Index >= rv.Len() {
			return nil, ErrNotFound
		}
		return rv.Index(seg.Index).Interface(), nil
	}

	return nil, ErrNotContainer
}

// ListLen 若 value 是连续、从 0 开始的序列（Go 的 slice / array）则返回其长度
// 键值映射和标量都不是序列
func ListLen(value any) (int, bool) {
	switch v := value.(type) {
	case []any:
		return len(v), true
	case nil:
		return 0, false
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len(), true
	}
	return 0, false
}

// Set 将 value 写入路径，沿途按需创建容器，返回（可能新建的）根节点
// 键片段创建 map[string]any，下标片段创建 []any 并以 nil 补齐
func (n *Navigator) Set(root any, path *Path, value any) (any, error) {
	return n.setRecursive(root, path, 0, value)
}

func (n *Navigator) setRecursive(node any, path *Path, segmentIdx int, value any) (any, error) {
	if segmentIdx >= len(path.Segments) {
		return value, nil
	}

	seg := path.Segments[segmentIdx]
	if seg.Type == SegmentTypeWildcard {
		return nil, fmt.Errorf("write %s: %w", path.String(), ErrWildcardSegment)
	}
	if seg.Type == SegmentTypeIndex && seg.Index > n.maxIndex() {
		return nil, fmt.Errorf("write %s: index %d exceeds limit %d: %w",
			path.String(), seg.Index, n.maxIndex(), ErrIndexOutOfRange)
	}

	switch v := node.(type) {
	case map[string]any:
		child, err := n.setRecursive(v[seg.Field], path, segmentIdx+1, value)
		if err != nil {
			return nil, err
		}
		v[seg.Field] = child
		return v, nil

	case []any:
		if seg.Type != SegmentTypeIndex {
			return nil, fmt.Errorf("write key '%s' into list at %s: %w",
				seg.Field, path.Sub(0, segmentIdx).String(), ErrContainerMismatch)
		}
		for len(v) <= seg.Index {
			v = append(v, nil)
		}
		child, err := n.setRecursive(v[seg.Index], path, segmentIdx+1, value)
		if err != nil {
			return nil, err
		}
		v[seg.Index] = child
		return v, nil
	}

	// nil 或标量：按片段类型新建容器，后写覆盖
	if seg.Type == SegmentTypeIndex {
		return n.setRecursive(make([]any, 0, seg.Index+1), path, segmentIdx, value)
	}
	return n.setRecursive(map[string]any{}, path, segmentIdx, value)
}

// Clone 深拷贝并统一容器类型：map 转为 map[string]any，slice / array 转为 []any
// 写入路径只需处理这两种容器，非字符串键按 fmt.Sprint 转为字符串
func Clone(value any) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			out[k] = Clone(child)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			out[fmt.Sprint(k)] = Clone(child)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = Clone(child)
		}
		return out
	case []byte:
		return append([]byte(nil), v...)
	case nil:
		return nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = Clone(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = Clone(rv.Index(i).Interface())
		}
		return out
	}
	return value
}
