package engine

import (
	"fmt"

	"github.com/go-logr/logr"

	"github.com/glesirok/treemapper/pkg/path"
)

// DefaultMaxDepth 默认允许的最大通配符嵌套层数
const DefaultMaxDepth = 32

// Engine 执行映射表的校验、展开与转换
// Engine 不持有可变状态，多个 goroutine 可以共用同一个 Engine
type Engine struct {
	navigator  *path.Navigator
	validator  *Validator
	normalizer *Normalizer
	translator *Translator
	log        logr.Logger
}

// Option 配置 Engine
type Option func(*options)

type options struct {
	log      logr.Logger
	maxDepth int
	maxIndex int
}

// WithLogger 设置日志，展开的每一轮以 V(1) 级别输出
func WithLogger(log logr.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithMaxDepth 设置最大通配符嵌套层数，<= 0 表示不限制
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// WithMaxIndex 设置写入目标树时允许的最大下标，<= 0 时使用 path.DefaultMaxIndex
func WithMaxIndex(index int) Option {
	return func(o *options) {
		o.maxIndex = index
	}
}

func NewEngine(opts ...Option) *Engine {
	o := options{log: logr.Discard(), maxDepth: DefaultMaxDepth, maxIndex: path.DefaultMaxIndex}
	for _, opt := range opts {
		opt(&o)
	}

	navigator := &path.Navigator{MaxIndex: o.maxIndex}
	return &Engine{
		navigator: navigator,
		validator: &Validator{navigator: navigator},
		normalizer: &Normalizer{
			builder:  &MapEntrySetBuilder{},
			resolver: &ArityResolver{navigator: navigator},
			log:      o.log,
			maxDepth: o.maxDepth,
		},
		translator: &Translator{navigator: navigator, log: o.log},
		log:        o.log,
	}
}

// Validate 结构校验，见 Validator
func (e *Engine) Validate(m RawMap, tree any) error {
	return e.validator.Validate(m, tree)
}

// Normalize 将所有通配符展开为具体下标
func (e *Engine) Normalize(m Map, tree any) (Map, error) {
	return e.normalizer.Normalize(m, tree)
}

// NormalizeRound 只展开一层通配符
func (e *Engine) NormalizeRound(m Map, tree any) (Map, error) {
	return e.normalizer.Round(m, tree)
}

// Translate 按具体映射表生成目标树
func (e *Engine) Translate(m Map, tree any) (any, error) {
	return e.translator.Translate(m, tree)
}

// Prepare 校验 -> 展开 -> 再次校验，返回具体映射表
func (e *Engine) Prepare(raw RawMap, tree any) (Map, error) {
	if err := e.validator.Validate(raw, tree); err != nil {
		return nil, fmt.Errorf("validate map: %w", err)
	}

	m, err := raw.Strings()
	if err != nil {
		return nil, err
	}

	normalized, err := e.normalizer.Normalize(m, tree)
	if err != nil {
		return nil, fmt.Errorf("normalize map: %w", err)
	}

	// 所有数组都为空时展开结果可以是空表，这不是错误
	if len(normalized) > 0 {
		if err := e.validator.Validate(normalized.Raw(), tree); err != nil {
			return nil, fmt.Errorf("validate normalized map: %w", err)
		}
	}

	e.log.V(1).Info("map prepared", "pairs", len(raw), "normalizedPairs", len(normalized))
	return normalized, nil
}

// Run 完整流程：Prepare 后执行转换
func (e *Engine) Run(raw RawMap, tree any) (any, error) {
	normalized, err := e.Prepare(raw, tree)
	if err != nil {
		return nil, err
	}

	out, err := e.translator.Translate(normalized, tree)
	if err != nil {
		return nil, fmt.Errorf("translate: %w", err)
	}
	return out, nil
}
