package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ByLCY/linefold/layout"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "linefold.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("默认配置应当合法: %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[layout]
processor = "full"
align = "justify"

[render]
base_dir = "assets"
[render.fonts]
Brand = "fonts/brand.ttf"

[log]
level = "debug"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if cfg.Layout.Processor != "full" || cfg.Layout.Align != "justify" {
		t.Fatalf("layout 配置错误: %+v", cfg.Layout)
	}
	if cfg.Layout.Wrap != "anywhere" {
		t.Fatalf("未声明的键应保留默认值，wrap=%q", cfg.Layout.Wrap)
	}
	if cfg.Render.BaseDir != "assets" || cfg.Render.Fonts["Brand"] != "fonts/brand.ttf" {
		t.Fatalf("render 配置错误: %+v", cfg.Render)
	}
	if level, _ := cfg.LogLevel(); level != log.DebugLevel {
		t.Fatalf("日志级别错误: %v", level)
	}

	opts := cfg.BuildOptions(nil, nil)
	if opts.Processor != layout.ProcessorFull || opts.Align != "justify" {
		t.Fatalf("BuildOptions 转换错误: %+v", opts)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "[layout]\nspacing = 2\n", "layout.spacing"},
		{"processor", "[layout]\nprocessor = \"turbo\"\n", "turbo"},
		{"align", "[layout]\nalign = \"diagonal\"\n", "layout.align"},
		{"wrap", "[layout]\nwrap = \"sometimes\"\n", "layout.wrap"},
		{"log level", "[log]\nlevel = \"loud\"\n", "log.level"},
		{"syntax", "[layout\n", "读取配置"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("期望包含 %q 的错误，实际: %v", tt.want, err)
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("缺失的配置文件应当报错")
	}
}
