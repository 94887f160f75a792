package engine

// MapEntrySet 有序、不可变的映射项集合
type MapEntrySet struct {
	entries []MapEntry
}

// NewMapEntrySet 复制 entries 创建集合
func NewMapEntrySet(entries ...MapEntry) *MapEntrySet {
	owned := make([]MapEntry, len(entries))
	copy(owned, entries)
	return &MapEntrySet{entries: owned}
}

func (s *MapEntrySet) Len() int {
	return len(s.entries)
}

// Entries 返回所有映射项的副本
func (s *MapEntrySet) Entries() []MapEntry {
	out := make([]MapEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Arrays 深度大于 0 的映射项，保持原有顺序
func (s *MapEntrySet) Arrays() []MapEntry {
	return s.filter(func(e MapEntry) bool { return e.IsArray() })
}

// NonArrays 深度为 0 的映射项，保持原有顺序
func (s *MapEntrySet) NonArrays() []MapEntry {
	return s.filter(func(e MapEntry) bool { return !e.IsArray() })
}

func (s *MapEntrySet) filter(keep func(MapEntry) bool) []MapEntry {
	var out []MapEntry
	for _, e := range s.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// HighestDepth 所有映射项中最大的深度
func (s *MapEntrySet) HighestDepth() int {
	highest := 0
	for _, e := range s.entries {
		if e.Depth() > highest {
			highest = e.Depth()
		}
	}
	return highest
}

// Flatten 转换为映射表：先输出非数组项，再输出数组项
func (s *MapEntrySet) Flatten() Map {
	ordered := make([]MapEntry, 0, len(s.entries))
	ordered = append(ordered, s.NonArrays()...)
	ordered = append(ordered, s.Arrays()...)
	return mergeEntries(ordered, nil)
}

// mergeEntries 按给定顺序输出映射表
// 源路径重复时保留第一次出现的位置，目标路径取最后一次的值，被替换的映射交给 replaced（可为 nil）
func mergeEntries(entries []MapEntry, replaced func(dropped, kept Pair)) Map {
	out := make(Map, 0, len(entries))
	positions := make(map[string]int, len(entries))
	for _, e := range entries {
		pair := e.Pair()
		if pos, ok := positions[pair.Source]; ok {
			if replaced != nil && out[pos].Destination != pair.Destination {
				replaced(out[pos], pair)
			}
			out[pos].Destination = pair.Destination
			continue
		}
		positions[pair.Source] = len(out)
		out = append(out, pair)
	}
	return out
}
