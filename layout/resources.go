package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ByLCY/linefold/dsl"
	"github.com/ByLCY/linefold/fonts"
)

const defaultFontName = "Body"

func collectResources(doc *dsl.Document) (ResourceSet, error) {
	res := ResourceSet{
		Fonts:  map[string]FontResource{},
		Colors: map[string]Color{},
		Images: map[string]ImageResource{},
		Styles: map[string]Style{},
	}
	raw := map[string]Style{}

	for _, section := range doc.Sections {
		if section.Resources == nil || section.Resources.Block == nil {
			continue
		}
		for _, stmt := range section.Resources.Block.Statements {
			cmd := stmt.Command
			if cmd == nil {
				continue
			}
			switch cmd.Name {
			case "font":
				if font := parseFontResource(cmd); font.Name != "" {
					res.Fonts[font.Name] = font
				}
			case "color":
				name, value := parseColorResource(cmd)
				if name == "" || value == "" {
					continue
				}
				c, err := parseColor(value)
				if err != nil {
					return res, fmt.Errorf("color %s: %w", name, err)
				}
				res.Colors[name] = c
			case "image":
				if img := parseImageResource(cmd); img.Name != "" {
					res.Images[img.Name] = img
				}
			case "style":
				if style := parseStyleResource(cmd); style.Name != "" {
					raw[style.Name] = style
				}
			}
		}
	}

	if _, ok := res.Fonts[defaultFontName]; !ok {
		res.Fonts[defaultFontName] = FontResource{
			Name:   defaultFontName,
			Src:    "embed:" + fonts.Default,
			Family: defaultFontName,
		}
	}

	styles, err := resolveStyles(raw)
	if err != nil {
		return res, err
	}
	res.Styles = styles
	return res, nil
}

func collectMeta(doc *dsl.Document) DocumentMeta {
	meta := DocumentMeta{Creator: "linefold"}
	for _, section := range doc.Sections {
		if section.Meta == nil || section.Meta.Block == nil {
			continue
		}
		for _, stmt := range section.Meta.Block.Statements {
			a := stmt.Assignment
			if a == nil {
				continue
			}
			switch strings.ToLower(a.Key) {
			case "title":
				meta.Title = valueToString(a.Value)
			case "author":
				meta.Author = valueToString(a.Value)
			case "subject":
				meta.Subject = valueToString(a.Value)
			case "creator":
				meta.Creator = valueToString(a.Value)
			case "keywords":
				meta.Keywords = valueToStringSlice(a.Value)
			}
		}
	}
	return meta
}

// assignments 将 block 中的赋值展开为字符串表。
func assignments(block *dsl.Block) map[string]string {
	out := map[string]string{}
	if block == nil {
		return out
	}
	for _, stmt := range block.Statements {
		if stmt.Assignment == nil {
			continue
		}
		if v := valueToString(stmt.Assignment.Value); v != "" {
			out[stmt.Assignment.Key] = v
		}
	}
	return out
}

func parseFontResource(cmd *dsl.Command) FontResource {
	name := cmd.Arg(0)
	if name == "" {
		return FontResource{}
	}
	props := assignments(cmd.Block)
	return FontResource{
		Name:     name,
		Family:   name,
		Src:      props["src"],
		Style:    props["style"],
		Fallback: props["fallback"],
	}
}

func parseImageResource(cmd *dsl.Command) ImageResource {
	name := cmd.Arg(0)
	if name == "" {
		return ImageResource{}
	}
	props := assignments(cmd.Block)
	img := ImageResource{
		Name:   name,
		Src:    props["src"],
		Width:  parseLength(props["width"]),
		Height: parseLength(props["height"]),
	}
	if v, err := strconv.Atoi(props["dpi"]); err == nil {
		img.DPI = v
	}
	return img
}

// parseStyleResource 解析 `style Name [extends Parent] { key: value }`。
func parseStyleResource(cmd *dsl.Command) Style {
	name := cmd.Arg(0)
	if name == "" {
		return Style{}
	}
	style := Style{Name: name, Props: assignments(cmd.Block)}
	if strings.EqualFold(cmd.Arg(1), "extends") {
		style.Extends = cmd.Arg(2)
	}
	return style
}

// resolveStyles 展开 extends 继承链，检测未定义与循环继承。
func resolveStyles(styles map[string]Style) (map[string]Style, error) {
	resolved := map[string]Style{}
	visiting := map[string]bool{}

	var visit func(name string) (Style, error)
	visit = func(name string) (Style, error) {
		if style, ok := resolved[name]; ok {
			return style, nil
		}
		style, ok := styles[name]
		if !ok {
			return Style{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return Style{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true
		defer delete(visiting, name)

		props := map[string]string{}
		if style.Extends != "" {
			parent, err := visit(style.Extends)
			if err != nil {
				return Style{}, err
			}
			for k, v := range parent.Props {
				props[k] = v
			}
		}
		for k, v := range style.Props {
			props[k] = v
		}
		style.Props = props
		resolved[name] = style
		return style, nil
	}

	for name := range styles {
		if _, err := visit(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

// parseColorResource 支持 `color Name #hex` 与 `color Name = #hex`。
func parseColorResource(cmd *dsl.Command) (string, string) {
	if len(cmd.Args) < 2 {
		return cmd.Arg(0), ""
	}
	return cmd.Arg(0), cmd.Arg(len(cmd.Args) - 1)
}

func resolveFontResource(name string, res ResourceSet) (FontResource, error) {
	if font, ok := res.Fonts[name]; ok {
		return font, nil
	}
	if font, ok := res.Fonts[defaultFontName]; ok {
		return font, nil
	}
	return FontResource{}, fmt.Errorf("字体 %s 未定义，且没有可用的默认字体", name)
}

var pagePresets = map[string][2]float64{
	"A3": {297, 420},
	"A4": {210, 297},
	"A5": {148, 210},
}

func resolvePageSize(spec dsl.PageSpec) (float64, float64, error) {
	base, ok := pagePresets[strings.ToUpper(spec.Size)]
	if !ok {
		return 0, 0, fmt.Errorf("暂不支持的纸张尺寸：%s", spec.Size)
	}
	width, height := base[0], base[1]
	for _, token := range spec.Params {
		if token.Value == "landscape" {
			width, height = height, width
		}
	}
	return width, height, nil
}

// resolveMargin 解析 `margin v1 [v2 [v3 [v4]]]`，默认四边 20mm。
// 1 个值：四边相同；2 个值：上下、左右；3 个值：上、右、下，左为 0；4 个值：上右下左。
func resolveMargin(params []*dsl.Lexeme) Margin {
	margin := Margin{Top: 20, Right: 20, Bottom: 20, Left: 20}
	for i, token := range params {
		if token.Value != "margin" {
			continue
		}
		var vals []float64
		for _, p := range params[i+1:] {
			if len(vals) == 4 || !isLength(p.Value) {
				break
			}
			vals = append(vals, parseLength(p.Value))
		}
		switch len(vals) {
		case 1:
			v := vals[0]
			margin = Margin{Top: v, Right: v, Bottom: v, Left: v}
		case 2:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}
		case 3:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2]}
		case 4:
			margin = Margin{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
		}
	}
	return margin
}

func firstPage(doc *dsl.Document) *dsl.PageSection {
	for _, section := range doc.Sections {
		if section.Page != nil {
			return section.Page
		}
	}
	return nil
}
