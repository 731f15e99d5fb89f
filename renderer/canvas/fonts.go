package canvasrenderer

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"go.uber.org/multierr"

	"github.com/ByLCY/pagefill/fonts"
	"github.com/ByLCY/pagefill/layout"
)

// FontResource 把字体族名与字形集合映射到字体文件。
// Src 可以是 "builtin:<name>"，也可以是相对 BaseDir 的路径。
type FontResource struct {
	Name  string `json:"name"`
	Style string `json:"style,omitempty"`
	Src   string `json:"src"`
}

// Fonts 缓存已加载的字体族，可被多个 goroutine 共享。
type Fonts struct {
	baseDir   string
	resources []FontResource

	mu             sync.Mutex
	families       map[string]*fontFamilyEntry
	fallbackFamily *canvas.FontFamily
}

type fontFamilyEntry struct {
	family *canvas.FontFamily
	style  canvas.FontStyle
}

// NewFonts 创建字体缓存；字体文件在第一次使用时才读取。
func NewFonts(baseDir string, resources []FontResource) *Fonts {
	return &Fonts{
		baseDir:   baseDir,
		resources: resources,
		families:  map[string]*fontFamilyEntry{},
	}
}

// Face 返回 f 对应的字体面（字号单位 pt）。找不到或无法解析的字体回退到内置 Go 字体。
func (fs *Fonts) Face(f layout.Format, col layout.Color) (*canvas.FontFace, error) {
	family, style, err := fs.ensureFamily(f.Font, f.Style)
	if err != nil {
		return nil, err
	}
	return family.Face(f.Size, colorFromLayout(col), style, canvas.FontNormal), nil
}

// Preload 严格加载格式表引用的全部字体，不使用回退字体，用于配置检查。
func (fs *Fonts) Preload(formats layout.FormatTable) error {
	var err error
	seen := map[string]bool{}
	for _, key := range formats.Keys() {
		f := formats[key]
		k := fontCacheKey(f.Font, f.Style)
		if seen[k] {
			continue
		}
		seen[k] = true
		if _, _, loadErr := fs.loadFamily(f.Font, f.Style); loadErr != nil {
			err = multierr.Append(err, fmt.Errorf("format %q: %w", key, loadErr))
		}
	}
	return err
}

func (fs *Fonts) ensureFamily(name, styleSet string) (*canvas.FontFamily, canvas.FontStyle, error) {
	key := fontCacheKey(name, styleSet)
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if entry, ok := fs.families[key]; ok {
		return entry.family, entry.style, nil
	}
	family, style, err := fs.loadFamily(name, styleSet)
	if err != nil {
		fallback, fbErr := fs.fallback()
		if fbErr != nil {
			return nil, canvas.FontRegular, err
		}
		fs.families[key] = &fontFamilyEntry{family: fallback, style: canvas.FontRegular}
		return fallback, canvas.FontRegular, nil
	}
	fs.families[key] = &fontFamilyEntry{family: family, style: style}
	return family, style, nil
}

func (fs *Fonts) loadFamily(name, styleSet string) (*canvas.FontFamily, canvas.FontStyle, error) {
	data, err := fs.loadFontBytes(name, styleSet)
	if err != nil {
		return nil, canvas.FontRegular, err
	}
	style := parseFontStyle(styleSet)
	family := canvas.NewFontFamily(name)
	if err := family.LoadFont(data, 0, style); err != nil {
		return nil, canvas.FontRegular, fmt.Errorf("加载字体 %s 失败: %w", name, err)
	}
	return family, style, nil
}

// loadFontBytes 先查找字形集合完全匹配的资源，再退回同名的常规字形。
func (fs *Fonts) loadFontBytes(name, styleSet string) ([]byte, error) {
	var regular *FontResource
	for i := range fs.resources {
		res := &fs.resources[i]
		if !strings.EqualFold(res.Name, name) {
			continue
		}
		if res.Style == styleSet {
			return fs.readSource(res.Src)
		}
		if res.Style == "" && regular == nil {
			regular = res
		}
	}
	if regular != nil {
		if fonts.IsBuiltin(regular.Src) {
			return fonts.Load(fonts.Variant(regular.Src, styleSet))
		}
		return fs.readSource(regular.Src)
	}
	if fonts.IsBuiltin(name) {
		return fonts.Load(fonts.Variant(name, styleSet))
	}
	return nil, fmt.Errorf("字体 %s（%s）未配置", name, styleLabel(styleSet))
}

func (fs *Fonts) readSource(src string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("字体资源缺少 src")
	}
	if fonts.IsBuiltin(src) {
		return fonts.Load(src)
	}
	path := src
	if !filepath.IsAbs(path) {
		path = filepath.Join(fs.baseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return data, nil
}

func (fs *Fonts) fallback() (*canvas.FontFamily, error) {
	if fs.fallbackFamily != nil {
		return fs.fallbackFamily, nil
	}
	family := canvas.NewFontFamily("pagefill-fallback")
	if err := family.LoadFont(fonts.Regular(), 0, canvas.FontRegular); err != nil {
		return nil, err
	}
	fs.fallbackFamily = family
	return family, nil
}

func parseFontStyle(styleSet string) canvas.FontStyle {
	style := canvas.FontRegular
	if strings.Contains(styleSet, "B") {
		style = canvas.FontBold
	}
	if strings.Contains(styleSet, "I") {
		style |= canvas.FontItalic
	}
	return style
}

func styleLabel(styleSet string) string {
	if styleSet == "" {
		return "regular"
	}
	return styleSet
}

func fontCacheKey(name, styleSet string) string {
	return strings.ToLower(name) + "|" + styleSet
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}
