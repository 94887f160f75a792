package engine

import (
	"reflect"

	"github.com/glesirok/treemapper/pkg/path"
)

// Validator 在展开前后检查映射表与数据树的结构一致性
// 不在第一个错误处停止，扫描整张表后一次性汇总
type Validator struct {
	navigator *path.Navigator
}

// Validate 检查映射表
//   - 两侧都必须是字符串
//   - 两侧都带通配符时个数必须相同（尚未展开但一致，视为通过）
//   - 其余情况源路径必须在数据树中可读
func (v *Validator) Validate(m RawMap, tree any) error {
	if len(m) == 0 || isEmptyTree(tree) {
		return &EmptyInputError{MapEmpty: len(m) == 0, TreeEmpty: isEmptyTree(tree)}
	}

	var (
		invalid      []*InvalidEntryError
		unreadable   []*UnreadableEntryError
		invalidArray []*InvalidArrayEntryError
	)

	for _, pair := range m {
		source, sourceOK := pair.Source.(string)
		destination, destinationOK := pair.Destination.(string)
		if !sourceOK || !destinationOK {
			invalid = append(invalid, &InvalidEntryError{Source: pair.Source, Destination: pair.Destination})
			continue
		}

		sourceDepth, destinationDepth := path.CountWildcards(source), path.CountWildcards(destination)
		if sourceDepth > 0 && destinationDepth > 0 {
			if sourceDepth != destinationDepth {
				invalidArray = append(invalidArray, &InvalidArrayEntryError{
					Source:           source,
					Destination:      destination,
					SourceDepth:      sourceDepth,
					DestinationDepth: destinationDepth,
				})
			}
			continue
		}

		if err := v.readable(source, tree); err != nil {
			unreadable = append(unreadable, &UnreadableEntryError{Source: source, Destination: destination, Err: err})
		}
	}

	if len(invalid) == 0 && len(unreadable) == 0 && len(invalidArray) == 0 {
		return nil
	}

	return &UnableToMapError{
		Invalid:      invalid,
		Unreadable:   unreadable,
		InvalidArray: invalidArray,
		Map:          m,
		Tree:         tree,
	}
}

func (v *Validator) readable(source string, tree any) error {
	p, err := path.Parse(source)
	if err != nil {
		return err
	}
	_, err = v.navigator.Get(tree, p)
	return err
}

// isEmptyTree nil、空字符串、空 map / slice 视为空
func isEmptyTree(tree any) bool {
	switch v := tree.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}

	rv := reflect.ValueOf(tree)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	}
	return false
}
