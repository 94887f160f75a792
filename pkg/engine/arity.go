package engine

import (
	"fmt"

	"github.com/glesirok/treemapper/pkg/path"
)

// ArityResolver 计算映射项第一个通配符父节点的元素个数
type ArityResolver struct {
	navigator *path.Navigator
}

// Resolve 只看第一个通配符，更深的通配符留给后续轮次
func (r *ArityResolver) Resolve(entry MapEntry, tree any) (int, error) {
	parent, _, ok := entry.Source().SplitAtFirstWildcard()
	if !ok {
		return 0, fmt.Errorf("resolve '%s': %w", entry.Source().String(), path.ErrWildcardNotFound)
	}

	value, err := r.navigator.Get(tree, parent)
	if err != nil {
		return 0, &UnresolvedParentError{
			Destination: entry.Destination().String(),
			Source:      entry.Source().String(),
			Parent:      parent.String(),
			Tree:        tree,
			Err:         err,
		}
	}

	count, ok := path.ListLen(value)
	if !ok {
		return 0, &NotAListError{
			Parent: parent.String(),
			Value:  value,
			Tree:   tree,
		}
	}

	return count, nil
}
