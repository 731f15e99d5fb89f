package layout

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

// ErrUnknownFormat 在格式表缺少被引用的 key 时返回（可用 errors.Is 判断）。
var ErrUnknownFormat = errors.New("unknown format")

// UnknownFormatError 携带缺失的格式 key。
type UnknownFormatError struct {
	Key string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown format %q", e.Key)
}

func (e *UnknownFormatError) Is(target error) bool { return target == ErrUnknownFormat }

// ListType 区分无序列表与有序列表。
type ListType string

const (
	ListBullet ListType = "bullet"
	ListNumber ListType = "number"
)

// Spacing 记录段落级与行级的上下间距（pt）。
type Spacing struct {
	Paragraph Gap `json:"paragraph"`
	Line      Gap `json:"line"`
}

// Gap 是一对上/下间距。
type Gap struct {
	Above float64 `json:"above"`
	Below float64 `json:"below"`
}

// ListFormat 只存在于列表格式上。
type ListFormat struct {
	Type       ListType `json:"type"`
	Level      int      `json:"level"`
	Numbering  []string `json:"numbering,omitempty"`
	BulletChar string   `json:"bulletChar,omitempty"`
}

// Format 是某个格式 key 解析后的排版属性，所有长度单位为 pt。
type Format struct {
	Name    string      `json:"name"`
	Font    string      `json:"font"`
	Style   string      `json:"style,omitempty"` // 字形集合：""、"B"、"I"、"BI"
	Size    float64     `json:"size"`
	Color   Color       `json:"color"`
	Spacing Spacing     `json:"spacing"`
	Indent  float64     `json:"indent"`
	List    *ListFormat `json:"list,omitempty"`
}

// Bold 报告字形集合是否包含粗体。
func (f Format) Bold() bool { return strings.Contains(f.Style, "B") }

// Italic 报告字形集合是否包含斜体。
func (f Format) Italic() bool { return strings.Contains(f.Style, "I") }

// withFlags 将字符样式标记并入字形集合，结果按 "B"、"I" 顺序规范化。
func (f Format) withFlags(flags CharStyle) Format {
	bold := f.Bold() || flags&Bold != 0
	italic := f.Italic() || flags&Italic != 0
	f.Style = ""
	if bold {
		f.Style += "B"
	}
	if italic {
		f.Style += "I"
	}
	return f
}

// Marker 返回列表段落首行前绘制的标记文本。
func (f Format) Marker(t Token) string {
	if f.List == nil {
		return ""
	}
	switch t.Kind {
	case TokenBullet:
		return f.List.BulletChar
	case TokenNumber:
		if t.Ordinal >= 0 && t.Ordinal < len(f.List.Numbering) {
			return f.List.Numbering[t.Ordinal]
		}
		return fmt.Sprintf("%d.", t.Ordinal+1)
	}
	return ""
}

// FormatTable 以格式 key 索引 Format。不存在隐式默认值：
// 引用不存在的 key 一律返回 UnknownFormatError。
type FormatTable map[string]Format

// Resolve 把 StyleRef 解析为具体 Format。
func (t FormatTable) Resolve(ref StyleRef) (Format, error) {
	f, ok := t[ref.Key]
	if !ok {
		return Format{}, &UnknownFormatError{Key: ref.Key}
	}
	if f.Name == "" {
		f.Name = ref.Key
	}
	return f.withFlags(ref.Flags), nil
}

// Require 检查所有 keys 均存在，缺失的 key 会被全部报告。
func (t FormatTable) Require(keys ...string) error {
	var err error
	for _, k := range keys {
		if _, ok := t[k]; !ok {
			err = multierr.Append(err, &UnknownFormatError{Key: k})
		}
	}
	return err
}

// Keys 返回排序后的全部格式 key。
func (t FormatTable) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate 在排版开始前一次性校验整张格式表，返回聚合后的全部错误。
func (t FormatTable) Validate() error {
	var err error
	for _, key := range t.Keys() {
		f := t[key]
		fail := func(format string, args ...any) {
			err = multierr.Append(err, fmt.Errorf("format %q: %s", key, fmt.Sprintf(format, args...)))
		}
		if strings.TrimSpace(f.Font) == "" {
			fail("font is required")
		}
		if f.Size <= 0 {
			fail("size must be positive, got %g", f.Size)
		}
		if strings.Trim(f.Style, "BI") != "" {
			fail("unsupported style-set %q", f.Style)
		}
		if f.Indent < 0 {
			fail("indent must not be negative")
		}
		for _, g := range []Gap{f.Spacing.Paragraph, f.Spacing.Line} {
			if g.Above < 0 || g.Below < 0 {
				fail("spacing must not be negative")
				break
			}
		}
		if f.List != nil {
			switch f.List.Type {
			case ListBullet:
				if f.List.BulletChar == "" {
					fail("bullet list requires bullet-char")
				}
			case ListNumber:
			default:
				fail("unknown list type %q", f.List.Type)
			}
			if f.List.Level < 0 {
				fail("list level must not be negative")
			}
		}
	}
	return err
}
