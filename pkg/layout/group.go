package layout

import (
	"fmt"
	"sort"

	"github.com/glesirok/treemapper/pkg/engine"
	"github.com/glesirok/treemapper/pkg/path"
)

// Group 按分类重组后的一组映射
//   - VALUE：单条映射，Key 为目标路径
//   - BLOCK / TABLE：Key 为具体前缀，前缀后紧跟下标的映射归入 Items，其余归入 Entries
type Group struct {
	Tag     Tag        `json:"tag" yaml:"tag"`
	Key     string     `json:"key" yaml:"key"`
	Entries engine.Map `json:"entries,omitempty" yaml:"entries,omitempty"`
	Items   []*Item    `json:"items,omitempty" yaml:"items,omitempty"`
	Columns []string   `json:"columns,omitempty" yaml:"columns,omitempty"`
}

// Item BLOCK 的一个元素（BLOCK_ITEM）或 TABLE 的一行（TABLE_ROW）
type Item struct {
	Tag     Tag        `json:"tag" yaml:"tag"`
	Index   int        `json:"index" yaml:"index"`
	Entries engine.Map `json:"entries" yaml:"entries"`
}

// FirstColumn 表格的第一列，非表格或没有列时为空
func (g *Group) FirstColumn() string {
	if g.Tag != TagTable || len(g.Columns) == 0 {
		return ""
	}
	return g.Columns[0]
}

// Group 按目标路径的分类重组具体映射表，组按首次出现的顺序输出，组内元素按下标升序
func (t *Table) Group(m engine.Map) ([]*Group, error) {
	var groups []*Group
	byKey := make(map[string]*Group)

	for _, pair := range m {
		p, err := path.Parse(pair.Destination)
		if err != nil {
			return nil, fmt.Errorf("parse destination path: %w", err)
		}

		tag, prefixLen := containerOf(t.match(p))
		if tag == TagValue {
			groups = append(groups, &Group{Tag: TagValue, Key: pair.Destination, Entries: engine.Map{pair}})
			continue
		}

		key := p.Sub(0, prefixLen).String()
		g, ok := byKey[key]
		if !ok {
			g = &Group{Tag: tag, Key: key}
			byKey[key] = g
			groups = append(groups, g)
		}
		g.add(pair, p.Sub(prefixLen, p.Len()))
	}

	for _, g := range groups {
		sort.SliceStable(g.Items, func(i, j int) bool {
			return g.Items[i].Index < g.Items[j].Index
		})
	}

	return groups, nil
}

// containerOf BLOCK_ITEM / TABLE_ROW 规则（如 [work][*]）声明其父路径为 BLOCK / TABLE
func containerOf(tag Tag, prefixLen int) (Tag, int) {
	switch tag {
	case TagBlockItem:
		return TagBlock, max(prefixLen-1, 0)
	case TagTableRow:
		return TagTable, max(prefixLen-1, 0)
	}
	return tag, prefixLen
}

func (g *Group) add(pair engine.Pair, rest *path.Path) {
	if rest.Len() == 0 || rest.Segments[0].Type != path.SegmentTypeIndex {
		g.Entries = append(g.Entries, pair)
		return
	}

	item := g.item(rest.Segments[0].Index)
	item.Entries = append(item.Entries, pair)

	if g.Tag == TagTable {
		column := rest.Sub(1, rest.Len()).String()
		for _, existing := range g.Columns {
			if existing == column {
				return
			}
		}
		g.Columns = append(g.Columns, column)
	}
}

func (g *Group) item(index int) *Item {
	for _, item := range g.Items {
		if item.Index == index {
			return item
		}
	}

	tag := TagBlockItem
	if g.Tag == TagTable {
		tag = TagTableRow
	}
	item := &Item{Tag: tag, Index: index}
	g.Items = append(g.Items, item)
	return item
}
