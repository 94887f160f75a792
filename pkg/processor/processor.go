package processor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/glesirok/treemapper/pkg/engine"
	"github.com/glesirok/treemapper/pkg/loader"
	"github.com/glesirok/treemapper/pkg/logger"
	"github.com/glesirok/treemapper/pkg/rule"
)

// Action 处理动作
type Action string

const (
	ActionValidate  Action = "validate"
	ActionNormalize Action = "normalize"
	ActionTranslate Action = "translate"
	ActionLayout    Action = "layout"
)

// Options 处理选项
type Options struct {
	Format    loader.Format // 输出格式
	DryRun    bool          // 只输出到 Stdout，不写文件
	KeepGoing bool          // 目录模式下某个文件失败后继续处理其余文件
	Jobs      int           // 目录模式并发数，<= 0 时为 1
	Stdout    io.Writer
}

// Processor 批量对数据文件应用映射
type Processor struct {
	config *rule.Config
	engine *engine.Engine
	opts   Options

	mu sync.Mutex // 保护 Stdout
}

// NewProcessor 创建处理器
func NewProcessor(mapFile string, eng *engine.Engine, opts Options) (*Processor, error) {
	cfg, err := rule.LoadFromFile(mapFile)
	if err != nil {
		return nil, fmt.Errorf("load map: %w", err)
	}

	return New(cfg, eng, opts), nil
}

// New 使用已加载的配置创建处理器
func New(cfg *rule.Config, eng *engine.Engine, opts Options) *Processor {
	if opts.Format == "" {
		opts.Format = loader.FormatJSON
	}
	if opts.Jobs <= 0 {
		opts.Jobs = 1
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}

	return &Processor{config: cfg, engine: eng, opts: opts}
}

// Apply 对一棵数据树执行动作，返回待输出的结果（validate 没有输出）
func (p *Processor) Apply(action Action, tree any) (any, error) {
	switch action {
	case ActionValidate:
		_, err := p.engine.Prepare(p.config.Map, tree)
		return nil, err

	case ActionNormalize:
		return p.engine.Prepare(p.config.Map, tree)

	case ActionTranslate:
		return p.engine.Run(p.config.Map, tree)

	case ActionLayout:
		if p.config.Layout == nil {
			return nil, fmt.Errorf("layout section is required for action %s", action)
		}
		normalized, err := p.engine.Prepare(p.config.Map, tree)
		if err != nil {
			return nil, err
		}
		return p.config.Layout.Group(normalized)

	default:
		return nil, fmt.Errorf("unknown action: %s", action)
	}
}

// ProcessFile 处理单个数据文件，outputPath 为空或 dry-run 时输出到 Stdout
func (p *Processor) ProcessFile(ctx context.Context, action Action, inputPath, outputPath string) error {
	log := logger.FromContext(ctx).WithValues("input", inputPath, "action", string(action))

	tree, err := loader.LoadFile(inputPath)
	if err != nil {
		return err
	}

	result, err := p.Apply(action, tree)
	if err != nil {
		return err
	}

	if action == ActionValidate {
		log.V(1).Info("map is valid")
		return nil
	}

	var buf bytes.Buffer
	if err := loader.Encode(&buf, result, p.opts.Format); err != nil {
		return err
	}

	if p.opts.DryRun || outputPath == "" {
		return p.print(inputPath, buf.Bytes())
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	log.Info("processed", "output", outputPath)
	return nil
}

// print 写到 Stdout，多个文件时带标题
func (p *Processor) print(inputPath string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.opts.DryRun {
		if _, err := fmt.Fprintf(p.opts.Stdout, "=== Dry-run: %s ===\n", inputPath); err != nil {
			return err
		}
	}
	_, err := p.opts.Stdout.Write(data)
	return err
}

// ProcessDirectory 处理目录下所有 .json / .yaml / .yml / .toml 文件
// 输出文件保持相对路径，扩展名改为输出格式
func (p *Processor) ProcessDirectory(ctx context.Context, action Action, inputDir, outputDir string) error {
	if !p.opts.DryRun && outputDir != "" {
		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	files, err := collectFiles(inputDir)
	if err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	log.V(1).Info("processing directory", "input", inputDir, "files", len(files), "jobs", p.opts.Jobs)

	var (
		mu   sync.Mutex
		errs error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Jobs)

	for _, file := range files {
		if gctx.Err() != nil {
			break
		}

		file := file
		g.Go(func() error {
			outputPath := ""
			if outputDir != "" {
				outputPath = p.outputPath(inputDir, outputDir, file)
			}

			err := p.ProcessFile(gctx, action, file, outputPath)
			if err == nil {
				return nil
			}

			err = fmt.Errorf("process %s: %w", file, err)
			if !p.opts.KeepGoing {
				return err
			}

			log.Error(err, "skipping file", "input", file)
			mu.Lock()
			errs = multierr.Append(errs, err)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return errs
}

// outputPath 计算输出路径：outputDir + 相对路径，扩展名替换为输出格式
func (p *Processor) outputPath(inputDir, outputDir, file string) string {
	rel, err := filepath.Rel(inputDir, file)
	if err != nil {
		rel = filepath.Base(file)
	}
	rel = strings.TrimSuffix(rel, filepath.Ext(rel)) + p.opts.Format.Extension()
	return filepath.Join(outputDir, rel)
}

// collectFiles 按字典序列出目录下的数据文件
func collectFiles(inputDir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !loader.IsDataFile(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", inputDir, err)
	}
	return files, nil
}
