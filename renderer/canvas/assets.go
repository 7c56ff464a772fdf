package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/linefold/fonts"
	"github.com/ByLCY/linefold/layout"
)

// assetStore 按 src 前缀解析一类资源：built-in:/builtin: 取注入的字节，
// embed: 交给 embed 函数，其余视为相对 baseDir 的路径。
type assetStore struct {
	kind    string
	baseDir string
	blobs   map[string][]byte
	embed   func(name string) ([]byte, error)
}

func newAssetStore(kind, baseDir string, res map[string]Resource, embed func(string) ([]byte, error), logger *log.Logger) *assetStore {
	s := &assetStore{kind: kind, baseDir: baseDir, blobs: make(map[string][]byte, len(res)), embed: embed}
	for name, r := range res {
		if name == "" {
			continue
		}
		if len(r.Bytes) > 0 {
			s.blobs[name] = r.Bytes
			continue
		}
		if r.Path == "" {
			continue
		}
		// 读取失败只记录，真正引用时才报错
		data, err := os.ReadFile(r.Path)
		if err != nil {
			logger.Warn("resource not loaded", "kind", kind, "name", name, "path", r.Path, "err", err)
			continue
		}
		s.blobs[name] = data
	}
	return s
}

func builtinName(src string) (string, bool) {
	for _, prefix := range []string{"built-in:", "builtin:"} {
		if name, ok := strings.CutPrefix(src, prefix); ok {
			return name, true
		}
	}
	return "", false
}

func (s *assetStore) load(src string) ([]byte, error) {
	if name, ok := builtinName(src); ok {
		if blob, ok := s.blobs[name]; ok {
			return blob, nil
		}
		return nil, fmt.Errorf("找不到内置%s资源 built-in:%s", s.kind, name)
	}
	if name, ok := strings.CutPrefix(src, "embed:"); ok {
		if s.embed == nil {
			return nil, fmt.Errorf("%s资源 %s 未找到（embed 仅支持内置字体）", s.kind, src)
		}
		return s.embed(name)
	}
	if s.baseDir == "" && !filepath.IsAbs(src) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用%s路径：%s（请改用 built-in: 或 embed:）", s.kind, src)
	}
	path := src
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取%s %s 失败: %w", s.kind, src, err)
	}
	return data, nil
}

func newFontStore(baseDir string, res map[string]Resource, logger *log.Logger) *assetStore {
	return newAssetStore("字体", baseDir, res, fonts.Load, logger)
}

func newImageStore(baseDir string, res map[string]Resource, logger *log.Logger) *assetStore {
	return newAssetStore("图片", baseDir, res, nil, logger)
}

func (r *Renderer) loadFontBytes(font layout.FontResource) ([]byte, error) {
	if font.Src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", font.Name)
	}
	return r.fontStore.load(font.Src)
}

// decodeImage 解码 png/jpeg/gif/webp。
func (r *Renderer) decodeImage(src string) (image.Image, error) {
	data, err := r.imageStore.load(src)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("解码图片 %s 失败: %w", src, err)
	}
	return img, nil
}
