package fill

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ByLCY/pagefill/layout"
	"github.com/ByLCY/pagefill/markup"
	"github.com/ByLCY/pagefill/renderer"
)

// Context 携带一次填充所需的全部协作者，只由一个 FillPages 调用独占使用。
type Context struct {
	Formats   layout.FormatTable
	Metrics   layout.Metrics
	Templates Repository
	Handlers  *Registry
	Doc       renderer.Document
	Log       *zap.Logger

	// Data 是 ${path} 占位符的绑定数据。
	Data any
	// BaseDir 用于解析相对的图片路径。
	BaseDir string
	// MaxDPI 大于 0 时，超过该分辨率的图片会先缩小再绘制。
	MaxDPI float64
	// NumberBase 是 text-parsed 洞中有序列表的默认起始序号。
	NumberBase int

	page *PageReport
}

// NewContext 创建填充上下文并在开始前校验格式表：整张表的合法性，以及
// 仓库中全部文字洞引用的格式 key（仓库实现 Lister 时）。
func NewContext(formats layout.FormatTable, metrics layout.Metrics, templates Repository, doc renderer.Document) (*Context, error) {
	var err error
	if metrics == nil {
		err = multierr.Append(err, errors.New("fill: metrics is required"))
	}
	if templates == nil {
		err = multierr.Append(err, errors.New("fill: template repository is required"))
	}
	if doc == nil {
		err = multierr.Append(err, errors.New("fill: document is required"))
	}
	if len(formats) == 0 {
		err = multierr.Append(err, errors.New("fill: format table is empty"))
	}
	err = multierr.Append(err, formats.Validate())
	if lister, ok := templates.(Lister); ok {
		err = multierr.Append(err, requireHoleFormats(formats, templates, lister))
	}
	if err != nil {
		return nil, err
	}
	return &Context{
		Formats:   formats,
		Metrics:   metrics,
		Templates: templates,
		Handlers:  NewRegistry(),
		Doc:       doc,
		Log:       zap.NewNop(),
	}, nil
}

func requireHoleFormats(formats layout.FormatTable, repo Repository, lister Lister) error {
	names := lister.Names()
	sort.Strings(names)
	var err error
	for _, name := range names {
		tpl, tplErr := repo.Template(name)
		if tplErr != nil {
			err = multierr.Append(err, tplErr)
			continue
		}
		if tpl.Overflow != "" {
			if _, ovErr := repo.Template(tpl.Overflow); ovErr != nil {
				err = multierr.Append(err, fmt.Errorf("template %q: overflow: %w", name, ovErr))
			}
		}
		for _, h := range tpl.Holes {
			if h.Type != layout.HoleText && h.Type != layout.HoleTextParsed {
				continue
			}
			keys := []string{holeFormatKey(h)}
			if h.Type == layout.HoleTextParsed {
				keys = markup.Options{ParagraphKey: holeFormatKey(h)}.Keys()
			}
			if reqErr := formats.Require(keys...); reqErr != nil {
				err = multierr.Append(err, fmt.Errorf("template %q hole %q: %w", name, h.Name, reqErr))
			}
		}
	}
	return err
}

// holeFormatKey 返回洞的默认段落格式，未指定时使用 "paragraph"。
func holeFormatKey(h layout.Hole) string {
	if h.Format != "" {
		return h.Format
	}
	return markup.KeyParagraph
}

func (fc *Context) logger() *zap.Logger {
	if fc.Log == nil {
		return zap.NewNop()
	}
	return fc.Log
}

// Record 把一个洞的填充结果记入当前页的报告，供调试输出使用。
func (fc *Context) Record(h HoleReport) {
	if fc.page != nil {
		fc.page.Holes = append(fc.page.Holes, h)
	}
}
