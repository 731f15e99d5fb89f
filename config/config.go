package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rupor-github/gencfg"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/pagefill/layout"
	canvasrenderer "github.com/ByLCY/pagefill/renderer/canvas"
)

//go:embed sample.yaml
var Sample []byte

type (
	FontConfig struct {
		Name  string `yaml:"name" validate:"required"`
		Style string `yaml:"style,omitempty" validate:"omitempty,oneof=B I BI"`
		Src   string `yaml:"src" validate:"required"`
	}

	GapConfig struct {
		Above Length `yaml:"above"`
		Below Length `yaml:"below"`
	}

	SpacingConfig struct {
		Paragraph GapConfig `yaml:"paragraph"`
		Line      GapConfig `yaml:"line"`
	}

	ListConfig struct {
		Type       string   `yaml:"type" validate:"required,oneof=bullet number"`
		Level      int      `yaml:"level" validate:"gte=0"`
		Numbering  []string `yaml:"numbering,omitempty"`
		BulletChar string   `yaml:"bullet-char,omitempty"`
	}

	FormatConfig struct {
		Font    string        `yaml:"font" validate:"required"`
		Style   string        `yaml:"style,omitempty" validate:"omitempty,oneof=B I BI"`
		Size    Length        `yaml:"size"`
		Color   string        `yaml:"color,omitempty" validate:"omitempty,hexcolor"`
		Spacing SpacingConfig `yaml:"spacing"`
		Indent  Length        `yaml:"indent"`
		List    *ListConfig   `yaml:"list,omitempty"`
	}

	HoleConfig struct {
		Name     string `yaml:"name" validate:"required"`
		Type     string `yaml:"type" validate:"required"`
		X        Length `yaml:"x"`
		Y        Length `yaml:"y"`
		Width    Length `yaml:"width"`
		Height   Length `yaml:"height"`
		Priority int    `yaml:"priority"`
		Format   string `yaml:"format,omitempty"`
	}

	TemplateConfig struct {
		Name     string       `yaml:"name" validate:"required"`
		Size     string       `yaml:"size,omitempty"`
		Width    Length       `yaml:"width"`
		Height   Length       `yaml:"height"`
		Overflow string       `yaml:"overflow,omitempty"`
		Holes    []HoleConfig `yaml:"holes" validate:"required,dive"`
	}

	RenderConfig struct {
		MaxDPI     float64 `yaml:"max-dpi" validate:"gte=0"`
		NumberBase int     `yaml:"number-base" validate:"gte=0"`
		Title      string  `yaml:"title,omitempty"`
		Author     string  `yaml:"author,omitempty"`
		Subject    string  `yaml:"subject,omitempty"`
		Creator    string  `yaml:"creator,omitempty"`
	}

	Config struct {
		Version   int                     `yaml:"version" validate:"eq=1"`
		Fonts     []FontConfig            `yaml:"fonts" validate:"dive"`
		Formats   map[string]FormatConfig `yaml:"formats" validate:"required,dive"`
		Templates []TemplateConfig        `yaml:"templates" validate:"required,dive"`
		Render    RenderConfig            `yaml:"render"`
		Logging   LoggingConfig           `yaml:"logging"`

		// BaseDir 是配置文件所在目录，用于解析相对的字体与图片路径。
		BaseDir string `yaml:"-"`
	}
)

// Length 是配置中的长度，接受 "12pt"、"4mm"、"1in" 或纯数字（pt）。
type Length struct {
	layout.Length
}

func (l *Length) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: length must be a scalar", node.Line)
	}
	v, err := layout.ParseLength(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	l.Length = v
	return nil
}

func (l Length) MarshalYAML() (any, error) { return l.String(), nil }

// Pt 返回以 pt 表示的长度。
func (l Length) Pt() float64 { return l.Points() }

// Load 读取并校验配置文件。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read configuration: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.BaseDir = filepath.Dir(path)
	return cfg, nil
}

// Parse 解码 YAML（只接受已定义的字段），先做结构校验，再做语义校验。
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if err := gencfg.Validate(cfg); err != nil {
		return nil, err
	}
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// check 汇总全部语义错误，而不是在第一个错误处停下。
func (c *Config) check() error {
	var err error
	if _, ferr := c.FormatTable(); ferr != nil {
		err = multierr.Append(err, ferr)
	}
	names := map[string]bool{}
	for _, t := range c.Templates {
		if names[t.Name] {
			err = multierr.Append(err, fmt.Errorf("template %q: defined more than once", t.Name))
		}
		names[t.Name] = true
	}
	for _, t := range c.Templates {
		if _, _, serr := t.pageSize(); serr != nil {
			err = multierr.Append(err, fmt.Errorf("template %q: %w", t.Name, serr))
		}
		if t.Overflow != "" && !names[t.Overflow] {
			err = multierr.Append(err, fmt.Errorf("template %q: overflow template %q is not defined", t.Name, t.Overflow))
		}
		holes := map[string]bool{}
		for _, h := range t.Holes {
			if holes[h.Name] {
				err = multierr.Append(err, fmt.Errorf("template %q: hole %q defined more than once", t.Name, h.Name))
			}
			holes[h.Name] = true
			if h.Width.Pt() <= 0 || h.Height.Pt() <= 0 {
				err = multierr.Append(err, fmt.Errorf("template %q: hole %q must have positive width and height", t.Name, h.Name))
			}
			if h.Format != "" {
				if _, ok := c.Formats[h.Format]; !ok {
					err = multierr.Append(err, fmt.Errorf("template %q: hole %q: %w", t.Name, h.Name, &layout.UnknownFormatError{Key: h.Format}))
				}
			}
		}
	}
	return err
}

func (t TemplateConfig) pageSize() (float64, float64, error) {
	if t.Size != "" {
		if !t.Width.IsZero() || !t.Height.IsZero() {
			return 0, 0, fmt.Errorf("size and width/height are mutually exclusive")
		}
		return layout.PageSize(t.Size)
	}
	w, h := t.Width.Pt(), t.Height.Pt()
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("page size is required (size or width/height)")
	}
	return w, h, nil
}

// FormatTable 把配置中的格式转换为排版使用的格式表（单位 pt）并校验。
func (c *Config) FormatTable() (layout.FormatTable, error) {
	table := make(layout.FormatTable, len(c.Formats))
	var err error
	for key, fc := range c.Formats {
		f := layout.Format{
			Name:  key,
			Font:  fc.Font,
			Style: fc.Style,
			Size:  fc.Size.Pt(),
			Spacing: layout.Spacing{
				Paragraph: layout.Gap{Above: fc.Spacing.Paragraph.Above.Pt(), Below: fc.Spacing.Paragraph.Below.Pt()},
				Line:      layout.Gap{Above: fc.Spacing.Line.Above.Pt(), Below: fc.Spacing.Line.Below.Pt()},
			},
			Indent: fc.Indent.Pt(),
		}
		if fc.Color != "" {
			col, cerr := layout.ParseColor(fc.Color)
			if cerr != nil {
				err = multierr.Append(err, fmt.Errorf("format %q: %w", key, cerr))
			}
			f.Color = col
		}
		if fc.List != nil {
			f.List = &layout.ListFormat{
				Type:       layout.ListType(fc.List.Type),
				Level:      fc.List.Level,
				Numbering:  fc.List.Numbering,
				BulletChar: fc.List.BulletChar,
			}
		}
		table[key] = f
	}
	err = multierr.Append(err, table.Validate())
	if err != nil {
		return nil, err
	}
	return table, nil
}

// FontResources 返回供 canvas 字体缓存使用的字体列表。
func (c *Config) FontResources() []canvasrenderer.FontResource {
	out := make([]canvasrenderer.FontResource, 0, len(c.Fonts))
	for _, f := range c.Fonts {
		out = append(out, canvasrenderer.FontResource{Name: f.Name, Style: f.Style, Src: f.Src})
	}
	return out
}

// DocumentInfo 返回写入 PDF 的文档信息。
func (c *Config) DocumentInfo() canvasrenderer.Info {
	creator := c.Render.Creator
	if creator == "" {
		creator = "pagefill"
	}
	return canvasrenderer.Info{
		Title:   c.Render.Title,
		Subject: c.Render.Subject,
		Author:  c.Render.Author,
		Creator: creator,
	}
}
