package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/glesirok/treemapper/pkg/engine"
	"github.com/glesirok/treemapper/pkg/loader"
	"github.com/glesirok/treemapper/pkg/logger"
	"github.com/glesirok/treemapper/pkg/path"
	"github.com/glesirok/treemapper/pkg/processor"
)

type flags struct {
	mapFile   string
	input     string
	output    string
	format    string
	dryRun    bool
	keepGoing bool
	jobs      int
	maxDepth  int
	maxIndex  int
	debug     bool
}

func (f *flags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.mapFile, "map", "m", "", "Mapping file with a map section and an optional layout section (required)")
	fs.StringVarP(&f.input, "input", "i", "", "Input data file or directory (required)")
	fs.StringVarP(&f.output, "output", "o", "", "Output file/directory (optional, defaults to stdout)")
	fs.StringVarP(&f.format, "format", "f", "json", "Output format: json or yaml")
	fs.BoolVar(&f.dryRun, "dry-run", false, "Dry-run mode: print results without writing files")
	fs.BoolVar(&f.keepGoing, "keep-going", false, "Directory mode: keep processing after a file fails")
	fs.IntVarP(&f.jobs, "jobs", "j", 1, "Directory mode: number of files processed concurrently")
	fs.IntVar(&f.maxDepth, "max-depth", engine.DefaultMaxDepth, "Maximum wildcard nesting depth (0 disables the limit)")
	fs.IntVar(&f.maxIndex, "max-index", path.DefaultMaxIndex, "Maximum list index written to the destination tree")
	fs.BoolVar(&f.debug, "debug", false, "Enable debug logging and detailed error dumps")
}

func main() {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:   "treemapper",
		Short: "Map data trees with bracket-path rules",
		Long: `treemapper translates JSON, YAML and TOML data trees into a new shape
using a mapping file of "[source][*][path]": "[destination][*][path]" pairs.
Wildcards are expanded against each input before translation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f.register(rootCmd.PersistentFlags())
	rootCmd.MarkPersistentFlagRequired("map")
	rootCmd.MarkPersistentFlagRequired("input")

	rootCmd.AddCommand(
		newActionCmd(f, processor.ActionValidate, "Check that the mapping can be applied to the input"),
		newActionCmd(f, processor.ActionNormalize, "Print the wildcard-free mapping for the input"),
		newActionCmd(f, processor.ActionTranslate, "Build the destination tree from the input"),
		newActionCmd(f, processor.ActionLayout, "Group the wildcard-free mapping by the layout section"),
	)

	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var detailer engine.Detailer
		if f.debug && errors.As(err, &detailer) {
			fmt.Fprintln(os.Stderr, detailer.Details())
		}
		os.Exit(1)
	}
}

func newActionCmd(f *flags, action processor.Action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(action),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), f, action)
		},
	}
}

func run(ctx context.Context, f *flags, action processor.Action) error {
	level := int8(0)
	if f.debug {
		level = -1
	}
	log := logger.Get(level)
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithLogger(ctx, log)

	format, err := loader.ParseFormat(f.format)
	if err != nil {
		return err
	}
	if format == loader.FormatTOML {
		return fmt.Errorf("toml is supported as input only")
	}

	eng := engine.NewEngine(
		engine.WithLogger(*log),
		engine.WithMaxDepth(f.maxDepth),
		engine.WithMaxIndex(f.maxIndex),
	)

	// 创建处理器
	proc, err := processor.NewProcessor(f.mapFile, eng, processor.Options{
		Format:    format,
		DryRun:    f.dryRun,
		KeepGoing: f.keepGoing,
		Jobs:      f.jobs,
	})
	if err != nil {
		return fmt.Errorf("create processor: %w", err)
	}

	// 判断输入类型
	info, err := os.Stat(f.input)
	if err != nil {
		return fmt.Errorf("stat input: %w", err)
	}

	if info.IsDir() {
		// 目录模式
		if err := proc.ProcessDirectory(ctx, action, f.input, f.output); err != nil {
			return err
		}
		if !f.dryRun && f.output != "" {
			fmt.Println("✓ All files processed successfully")
		}
		return nil
	}

	// 文件模式
	if err := proc.ProcessFile(ctx, action, f.input, f.output); err != nil {
		return err
	}
	switch {
	case action == processor.ActionValidate:
		fmt.Printf("✓ Valid: %s\n", f.input)
	case !f.dryRun && f.output != "":
		fmt.Printf("✓ Processed: %s → %s\n", f.input, f.output)
	}
	return nil
}
