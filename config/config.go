// Package config 读取 linefold 的 TOML 配置文件。
//
// 配置示例：
//
//	[layout]
//	processor = "auto"   # auto / full / fast
//	align = "justify"
//	wrap = "anywhere"
//
//	[render]
//	base_dir = "assets"
//	[render.fonts]
//	Brand = "fonts/brand.ttf"
//
//	[log]
//	level = "info"
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/ByLCY/linefold/layout"
	"github.com/ByLCY/linefold/layout/inline"
)

type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Render RenderConfig `toml:"render"`
	Log    LogConfig    `toml:"log"`
}

// LayoutConfig 是未在文档中声明时使用的排版默认值。
type LayoutConfig struct {
	Processor string `toml:"processor"`
	Align     string `toml:"align"`
	Wrap      string `toml:"wrap"`
}

type RenderConfig struct {
	BaseDir string            `toml:"base_dir"`
	Fonts   map[string]string `toml:"fonts"` // built-in:<name> 对应的字体文件
}

type LogConfig struct {
	Level string `toml:"level"`
}

func Default() Config {
	return Config{
		Layout: LayoutConfig{Processor: string(layout.ProcessorAuto), Align: "left", Wrap: "anywhere"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load 读取 path 并覆盖默认值。未知的键视为错误。
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("读取配置 %s 失败: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("配置 %s 包含未知的键: %s", path, strings.Join(keys, ", "))
	}
	return cfg, cfg.Validate()
}

var wrapModes = map[string]bool{"": true, "anywhere": true, "break-word": true, "normal": true, "nowrap": true}

// Validate 检查所有取值，返回合并后的错误。
func (c Config) Validate() error {
	var errs []error
	if _, err := layout.ParseProcessorMode(c.Layout.Processor); err != nil {
		errs = append(errs, err)
	}
	if _, err := inline.ParseAlignment(c.Layout.Align); err != nil {
		errs = append(errs, fmt.Errorf("layout.align: %w", err))
	}
	if !wrapModes[strings.ToLower(c.Layout.Wrap)] {
		errs = append(errs, fmt.Errorf("layout.wrap: 未知的换行方式 %q", c.Layout.Wrap))
	}
	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c Config) LogLevel() (log.Level, error) {
	if c.Log.Level == "" {
		return log.InfoLevel, nil
	}
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// BuildOptions 把排版默认值转换为 layout.BuildOptions。
func (c Config) BuildOptions(ts layout.Typesetter, logger *log.Logger) layout.BuildOptions {
	return layout.BuildOptions{
		Typesetter: ts,
		Logger:     logger,
		Processor:  layout.ProcessorMode(strings.ToLower(c.Layout.Processor)),
		Align:      c.Layout.Align,
		Wrap:       c.Layout.Wrap,
	}
}
