package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/linefold/fonts"
	"github.com/ByLCY/linefold/layout"
)

func (a *app) renderCommand() *cobra.Command {
	var (
		output        string
		debug         string
		debugRawUnits bool
		dataJSON      string
	)
	cmd := &cobra.Command{
		Use:   "render <file.linefold>",
		Short: "排版 DSL 文件并输出 PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			var data any
			if dataJSON != "" {
				if err := json.Unmarshal([]byte(dataJSON), &data); err != nil {
					return fmt.Errorf("解析 data JSON 失败: %w", err)
				}
			}
			if output == "" {
				output = strings.TrimSuffix(input, filepath.Ext(input)) + ".pdf"
			}

			r := a.newRenderer(filepath.Dir(input))
			opts := a.cfg.BuildOptions(r, a.logger)
			opts.Debug = layout.DebugOptions{RawUnits: debugRawUnits}
			if err := run(input, output, debug, opts, data, r); err != nil {
				return fmt.Errorf("生成 PDF 失败: %w", err)
			}
			a.logger.Info("pdf written", "path", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "out", "o", "", "PDF 输出路径（默认与输入同名）")
	cmd.Flags().StringVar(&debug, "debug", "", "布局调试 JSON 输出路径")
	cmd.Flags().BoolVar(&debugRawUnits, "debug-raw-units", false, "在调试 JSON 中输出 debug.rawUnits 影子字段")
	cmd.Flags().StringVar(&dataJSON, "data", "", "绑定到 DSL 的 JSON 数据")
	return cmd
}

// linesCommand 对一段纯文本断行并打印每一行的片段坐标，便于检查对齐效果。
func (a *app) linesCommand() *cobra.Command {
	var (
		req      layout.TextRequest
		font     string
		sizePt   float64
		asJSON   bool
		procName string
	)
	cmd := &cobra.Command{
		Use:   "lines [text]",
		Short: "对文本断行并打印各行（未给出文本时读取标准输入）",
		RunE: func(cmd *cobra.Command, args []string) error {
			content := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("读取标准输入失败: %w", err)
				}
				content = strings.TrimRight(string(b), "\n")
			}
			req.Content = content
			req.Font = layout.FontResource{Src: "embed:" + font}
			req.Size = sizePt * layout.PtToMm

			r := a.newRenderer("")
			opts := a.cfg.BuildOptions(r, a.logger)
			if procName != "" {
				opts.Processor = layout.ProcessorMode(procName)
			}
			tb, err := layout.ComposeText(req, opts)
			if err != nil {
				return err
			}
			if asJSON {
				return layout.EncodeDebugJSON(cmd.OutOrStdout(), tb)
			}
			printLines(cmd.OutOrStdout(), tb)
			return nil
		},
	}
	f := cmd.Flags()
	f.Float64VarP(&req.Width, "width", "w", 80, "行宽（mm）")
	f.StringVarP(&req.Align, "align", "a", "", "对齐方式 left/right/center/justify")
	f.StringVar(&req.Wrap, "wrap", "", "换行方式 anywhere/break-word/normal/nowrap")
	f.IntVar(&req.Segments, "segments", 1, "每行等分的段数")
	f.BoolVar(&req.OverflowX, "overflow", false, "允许内容越过行尾")
	f.StringVar(&req.LineHeight, "line-height", "", "行高，例如 1.2x 或 6mm")
	f.StringVar(&font, "font", fonts.Default, "内嵌字体名称")
	f.Float64Var(&sizePt, "size", 12, "字号（pt）")
	f.StringVar(&procName, "processor", "", "断行器 auto/full/fast（覆盖配置）")
	f.BoolVar(&asJSON, "json", false, "以 JSON 输出")
	return cmd
}

func printLines(w io.Writer, tb layout.TextBox) {
	fmt.Fprintf(w, "width=%.2fmm align=%s processor=%s lines=%d\n", tb.Width, tb.Align, tb.Processor, len(tb.Lines))
	for i, line := range tb.Lines {
		fmt.Fprintf(w, "%3d  %7.2f  %s\n", i+1, line.Width, line.Content)
		for _, frag := range line.Fragments {
			fmt.Fprintf(w, "       %-5s x=%7.2f w=%6.2f %s\n", frag.Kind, frag.X, frag.Width, frag.Content)
		}
	}
}

func (a *app) fontsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "fonts",
		Short: "列出可通过 embed:<name> 使用的内嵌字体",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range fonts.Names() {
				marker := " "
				if name == fonts.Default {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, name)
			}
		},
	}
}

