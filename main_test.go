package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestLinesCommand(t *testing.T) {
	out, err := execute(t, "lines", "--width", "30", "--align", "justify",
		"Lines are broken greedily and justified except the last one.")
	if err != nil {
		t.Fatalf("lines 执行失败: %v", err)
	}
	if !strings.Contains(out, "align=justify processor=full") {
		t.Fatalf("缺少段落摘要:\n%s", out)
	}
	if !strings.Contains(out, "text  x=") {
		t.Fatalf("缺少片段输出:\n%s", out)
	}

	out, err = execute(t, "lines", "--json", "short")
	if err != nil {
		t.Fatalf("lines --json 执行失败: %v", err)
	}
	if !strings.Contains(out, `"processor": "fast"`) {
		t.Fatalf("JSON 输出错误:\n%s", out)
	}

	if _, err := execute(t, "lines", "--processor", "turbo", "x"); err == nil {
		t.Fatalf("未知断行器应当报错")
	}
}

func TestFontsCommand(t *testing.T) {
	out, err := execute(t, "fonts")
	if err != nil {
		t.Fatalf("fonts 执行失败: %v", err)
	}
	if !strings.Contains(out, "* lmroman10-regular") {
		t.Fatalf("默认字体应被标记:\n%s", out)
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "doc.linefold")
	src := `doc Demo v1 {
  page A5 portrait margin 10mm {
    flow {
      text align center { "Hello ${name}" }
    }
  }
}`
	if err := os.WriteFile(input, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := filepath.Join(dir, "linefold.toml")
	if err := os.WriteFile(cfg, []byte("[layout]\nalign = \"justify\"\n[log]\nlevel = \"warn\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	debug := filepath.Join(dir, "out", "layout.json")
	if _, err := execute(t, "--config", cfg, "render", input, "--debug", debug, "--data", `{"name":"linefold"}`); err != nil {
		t.Fatalf("render 执行失败: %v", err)
	}
	pdf, err := os.ReadFile(filepath.Join(dir, "doc.pdf"))
	if err != nil || !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("未生成 PDF: %v", err)
	}
	js, err := os.ReadFile(debug)
	if err != nil {
		t.Fatalf("未生成调试 JSON: %v", err)
	}
	if !strings.Contains(string(js), "Hello linefold") || !strings.Contains(string(js), `"align": "center"`) {
		t.Fatalf("调试 JSON 内容错误:\n%s", js)
	}

	if _, err := execute(t, "render", input, "--data", "{"); err == nil {
		t.Fatalf("非法 data JSON 应当报错")
	}
}

func TestRenderExample(t *testing.T) {
	out := filepath.Join(t.TempDir(), "paragraphs.pdf")
	if _, err := execute(t, "render", filepath.Join("examples", "paragraphs.linefold"), "-o", out,
		"--data", `{"user":{"name":"Ada"},"date":"2026-10-19"}`); err != nil {
		t.Fatalf("示例文档渲染失败: %v", err)
	}
	pdf, err := os.ReadFile(out)
	if err != nil || !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("未生成 PDF: %v", err)
	}
}
