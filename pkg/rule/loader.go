package rule

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/glesirok/treemapper/pkg/engine"
	"github.com/glesirok/treemapper/pkg/layout"
)

// Config 表示映射配置文件
type Config struct {
	Map    engine.RawMap
	Layout *layout.Table
}

type fileConfig struct {
	Map    yaml.Node     `yaml:"map"`
	Layout *layout.Table `yaml:"layout"`
}

// LoadFromFile 从文件加载映射配置（YAML 或 JSON）
func LoadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	cfg, err := Load(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filePath, err)
	}
	return cfg, nil
}

// Load 解析映射配置
// map 通过 yaml.Node 解码以保留书写顺序
func Load(data []byte) (*Config, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal yaml: %w", err)
	}

	m, err := decodeMap(&file.Map)
	if err != nil {
		return nil, err
	}

	cfg := &Config{Map: m, Layout: file.Layout}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeMap 按顺序读取映射对
// 非字符串的键或值按原始类型保留，交给 engine.Validator 报告
func decodeMap(node *yaml.Node) (engine.RawMap, error) {
	if node.Kind == 0 {
		return nil, fmt.Errorf("map section is required")
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("map section must be a mapping (line %d)", node.Line)
	}

	m := make(engine.RawMap, 0, len(node.Content)/2)
	seen := make(map[string]int, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode := node.Content[i]
		valueNode := node.Content[i+1]

		source, err := decodeSide(keyNode)
		if err != nil {
			return nil, fmt.Errorf("map key (line %d): %w", keyNode.Line, err)
		}
		destination, err := decodeSide(valueNode)
		if err != nil {
			return nil, fmt.Errorf("map value (line %d): %w", valueNode.Line, err)
		}

		if s, ok := source.(string); ok {
			if line, dup := seen[s]; dup {
				return nil, fmt.Errorf("duplicate source path '%s' (lines %d and %d)", s, line, keyNode.Line)
			}
			seen[s] = keyNode.Line
		}

		m = append(m, engine.RawPair{Source: source, Destination: destination})
	}

	return m, nil
}

// decodeSide 字符串标量返回 string，其他节点解码为通用值
func decodeSide(node *yaml.Node) (any, error) {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!str" {
		return node.Value, nil
	}

	var value any
	if err := node.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}

// Validate 校验配置的合法性
// 单条映射的结构问题由 engine.Validator 结合数据树检查
func Validate(cfg *Config) error {
	if len(cfg.Map) == 0 {
		return fmt.Errorf("map section is empty")
	}
	return nil
}
