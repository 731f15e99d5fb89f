package fill

import (
	"errors"
	"fmt"
	"image"

	"github.com/ByLCY/pagefill/layout"
)

var (
	// ErrUnknownTemplate 表示模板仓库中找不到指定名称的模板。
	ErrUnknownTemplate = errors.New("unknown template")
	// ErrNoHandler 表示洞的类型没有注册处理器。
	ErrNoHandler = errors.New("no handler for hole type")
)

// Contents 是分配给一个洞的内容。文字洞使用 Text 或 Tokens（溢出时携带的
// 剩余 token），图片洞使用 Image、ImageData 或 ImagePath 之一。
type Contents struct {
	Text      string         `yaml:"text,omitempty" json:"text,omitempty"`
	Tokens    []layout.Token `yaml:"-" json:"tokens,omitempty"`
	ImagePath string         `yaml:"image,omitempty" json:"image,omitempty"`
	ImageData []byte         `yaml:"-" json:"-"`
	Image     image.Image    `yaml:"-" json:"-"`
}

// Empty 报告内容是否为空。
func (c Contents) Empty() bool {
	return c.Text == "" && len(c.Tokens) == 0 && c.ImagePath == "" && len(c.ImageData) == 0 && c.Image == nil
}

// PageData 描述一页要填充的内容。Repeat 中的位置会在每个溢出页上重复出现，
// 并覆盖同名洞的溢出内容。
type PageData struct {
	Template  string              `yaml:"template" json:"template"`
	Locations map[string]Contents `yaml:"locations" json:"locations"`
	Repeat    map[string]Contents `yaml:"repeat,omitempty" json:"repeat,omitempty"`
}

// Repository 按名称查找模板，查找失败必须返回错误。
type Repository interface {
	Template(name string) (*layout.Template, error)
}

// Lister 是可以枚举全部模板的仓库，NewContext 借此预先校验格式引用。
type Lister interface {
	Names() []string
}

// Templates 是基于 map 的简单模板仓库。
type Templates map[string]*layout.Template

func (t Templates) Template(name string) (*layout.Template, error) {
	tpl, ok := t[name]
	if !ok || tpl == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	return tpl, nil
}

func (t Templates) Names() []string {
	names := make([]string, 0, len(t))
	for k := range t {
		names = append(names, k)
	}
	return names
}
