package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ByLCY/linefold/config"
	"github.com/ByLCY/linefold/dsl"
	"github.com/ByLCY/linefold/layout"
	"github.com/ByLCY/linefold/renderer"
	canvasrenderer "github.com/ByLCY/linefold/renderer/canvas"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app 保存各子命令共享的配置与日志。
type app struct {
	configPath string
	verbose    bool
	cfg        config.Config
	logger     *log.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{
		cfg: config.Default(),
		logger: log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           log.InfoLevel,
		}),
	}
	root := &cobra.Command{
		Use:           "linefold",
		Short:         "linefold 将排版 DSL 断行、对齐并渲染为 PDF",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "TOML 配置文件路径")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "输出调试日志")

	root.AddCommand(a.renderCommand())
	root.AddCommand(a.linesCommand())
	root.AddCommand(a.fontsCommand())
	return root
}

func (a *app) setup() error {
	if a.configPath != "" {
		cfg, err := config.Load(a.configPath)
		if err != nil {
			return err
		}
		a.cfg = cfg
	}
	level, err := a.cfg.LogLevel()
	if err != nil {
		return err
	}
	if a.verbose {
		level = log.DebugLevel
	}
	a.logger.SetLevel(level)
	return nil
}

// newRenderer 创建 canvas 渲染器；配置中的字体以 built-in:<name> 引用。
func (a *app) newRenderer(baseDir string) *canvasrenderer.Renderer {
	if a.cfg.Render.BaseDir != "" {
		baseDir = a.cfg.Render.BaseDir
	}
	fonts := make(map[string]canvasrenderer.Resource, len(a.cfg.Render.Fonts))
	for name, path := range a.cfg.Render.Fonts {
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		fonts[name] = canvasrenderer.Resource{Path: path}
	}
	return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		BaseDir: baseDir,
		Fonts:   fonts,
		Logger:  a.logger,
	})
}

// run 串联解析、布局与渲染。
func run(inputPath, outputPath, debugPath string, opts layout.BuildOptions, data any, r renderer.Renderer) error {
	if r == nil {
		return fmt.Errorf("renderer 不能为空")
	}
	file, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("无法打开 DSL 文件 %s: %w", inputPath, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析 DSL 失败: %w", err)
	}

	if opts.Typesetter == nil {
		ts, ok := r.(layout.Typesetter)
		if !ok {
			return fmt.Errorf("renderer 未实现排版接口")
		}
		opts.Typesetter = ts
	}
	result, err := layout.Build(doc, data, opts)
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}

	if debugPath != "" {
		if err := layout.WriteDebugJSON(result, debugPath); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	pdfBytes, err := r.Render(result)
	if err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(outputPath, pdfBytes, 0o644); err != nil {
		return fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	return nil
}
