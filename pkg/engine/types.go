package engine

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Pair 表示一条映射：源路径 -> 目标路径
type Pair struct {
	Source      string
	Destination string
}

// Map 有序的映射表，Go 的 map 无序，因此用切片保存
type Map []Pair

// Raw 转换为未校验的 RawMap
func (m Map) Raw() RawMap {
	raw := make(RawMap, len(m))
	for i, pair := range m {
		raw[i] = RawPair{Source: pair.Source, Destination: pair.Destination}
	}
	return raw
}

// MarshalJSON 按顺序输出 JSON 对象
func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, pair := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(pair.Source)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(pair.Destination)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML 按顺序输出 YAML mapping，键值都强制为字符串
func (m Map) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, pair := range m {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: pair.Source, Style: yaml.DoubleQuotedStyle},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: pair.Destination, Style: yaml.DoubleQuotedStyle},
		)
	}
	return node, nil
}

// RawPair 未校验的映射，两侧可能不是字符串（来自用户配置）
type RawPair struct {
	Source      any
	Destination any
}

// RawMap 未校验的有序映射表，由 Validator 检查
type RawMap []RawPair

// Strings 转换为 Map，遇到第一个非字符串的一侧即失败
func (m RawMap) Strings() (Map, error) {
	out := make(Map, 0, len(m))
	for i, pair := range m {
		source, ok := pair.Source.(string)
		if !ok {
			return nil, fmt.Errorf("pair %d: source %v is not a string", i, pair.Source)
		}
		destination, ok := pair.Destination.(string)
		if !ok {
			return nil, fmt.Errorf("pair %d: destination %v is not a string", i, pair.Destination)
		}
		out = append(out, Pair{Source: source, Destination: destination})
	}
	return out, nil
}
