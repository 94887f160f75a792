package engine

import (
	"fmt"

	"github.com/go-logr/logr"
)

// Normalizer 将带通配符的映射展开为具体下标的映射
type Normalizer struct {
	builder  *MapEntrySetBuilder
	resolver *ArityResolver
	log      logr.Logger
	maxDepth int
}

// Normalize 每轮去掉一层通配符，轮数等于初始最大深度
func (n *Normalizer) Normalize(m Map, tree any) (Map, error) {
	set, err := n.builder.Build(m)
	if err != nil {
		return nil, err
	}

	rounds := set.HighestDepth()
	if n.maxDepth > 0 && rounds > n.maxDepth {
		return nil, &DepthLimitError{Depth: rounds, Limit: n.maxDepth}
	}

	for round := 1; round <= rounds; round++ {
		expanded, err := n.expand(set, tree)
		if err != nil {
			return nil, fmt.Errorf("normalize round %d: %w", round, err)
		}

		n.log.V(1).Info("normalization round",
			"round", round, "highestDepth", set.HighestDepth(), "entries", len(expanded))

		if set, err = n.builder.Build(expanded); err != nil {
			return nil, fmt.Errorf("normalize round %d: %w", round, err)
		}
	}

	return set.Flatten(), nil
}

// Round 执行单轮展开，没有通配符时原样返回（扁平化后）
func (n *Normalizer) Round(m Map, tree any) (Map, error) {
	set, err := n.builder.Build(m)
	if err != nil {
		return nil, err
	}
	if len(set.Arrays()) == 0 {
		return set.Flatten(), nil
	}
	return n.expand(set, tree)
}

// expand 解析每个数组项的元素个数，按下标展开第一个通配符
// 输出顺序：非数组项，然后各数组项按原顺序、组内下标升序
func (n *Normalizer) expand(set *MapEntrySet, tree any) (Map, error) {
	nonArrays := set.NonArrays()
	arrays := set.Arrays()

	counted := make([]MapEntry, 0, len(arrays))
	total := 0
	for _, entry := range arrays {
		count, err := n.resolver.Resolve(entry, tree)
		if err != nil {
			return nil, err
		}
		counted = append(counted, entry.WithResolvedCount(count))
		total += count
	}

	entries := make([]MapEntry, 0, len(nonArrays)+total)
	entries = append(entries, nonArrays...)
	for _, entry := range counted {
		for j := 0; j < entry.ResolvedCount(); j++ {
			expanded, err := entry.Expand(j)
			if err != nil {
				return nil, err
			}
			entries = append(entries, expanded)
		}
	}

	return mergeEntries(entries, func(dropped, kept Pair) {
		n.log.V(1).Info("duplicate source after expansion",
			"source", dropped.Source, "droppedDestination", dropped.Destination, "destination", kept.Destination)
	}), nil
}
