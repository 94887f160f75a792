package engine

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/glesirok/treemapper/pkg/path"
)

// Translator 按具体映射表把源数据树中的值复制到新建的目标树
type Translator struct {
	navigator *path.Navigator
	log       logr.Logger
}

// Translate 按映射表顺序逐条读写，路径冲突时后写覆盖
// 读取到的容器会被深拷贝，源数据树不会被修改
func (t *Translator) Translate(m Map, tree any) (any, error) {
	var out any
	written := make(map[string]string, len(m))

	for _, pair := range m {
		source, err := path.Parse(pair.Source)
		if err != nil {
			return nil, fmt.Errorf("parse source path: %w", err)
		}
		destination, err := path.Parse(pair.Destination)
		if err != nil {
			return nil, fmt.Errorf("parse destination path: %w", err)
		}

		value, err := t.navigator.Get(tree, source)
		if err != nil {
			return nil, &UnreadableEntryError{Source: pair.Source, Destination: pair.Destination, Err: err}
		}

		out, err = t.navigator.Set(out, destination, path.Clone(value))
		if err != nil {
			return nil, fmt.Errorf("write '%s': %w", pair.Destination, err)
		}

		if previous, ok := written[pair.Destination]; ok {
			t.log.V(1).Info("destination overwritten",
				"destination", pair.Destination, "previousSource", previous, "source", pair.Source)
		}
		written[pair.Destination] = pair.Source
	}

	if out == nil {
		out = map[string]any{}
	}
	return out, nil
}
