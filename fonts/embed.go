package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// builtin 列出内置的 Go 字体（TTF 字节）。
var builtin = map[string][]byte{
	"goregular":    goregular.TTF,
	"gobold":       gobold.TTF,
	"goitalic":     goitalic.TTF,
	"gobolditalic": gobolditalic.TTF,
	"gomono":       gomono.TTF,
}

// Prefix 标记内置字体来源，例如 "builtin:goregular"。
const Prefix = "builtin:"

// IsBuiltin 报告 src 是否引用内置字体。
func IsBuiltin(src string) bool { return strings.HasPrefix(src, Prefix) }

// Load 返回内置字体的字节数据，name 可写为 "builtin:goregular" 或 "goregular"。
func Load(name string) ([]byte, error) {
	key := strings.ToLower(strings.TrimPrefix(name, Prefix))
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("内置字体 %s 不存在（可用：%s）", name, strings.Join(Names(), ", "))
	}
	return data, nil
}

// Names 返回全部内置字体名称。
func Names() []string {
	out := make([]string, 0, len(builtin))
	for k := range builtin {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// goFamily 是带粗体、斜体变体的内置字体。
var goFamily = map[string]bool{"goregular": true, "gobold": true, "goitalic": true, "gobolditalic": true}

// Variant 返回内置 Go 字体中与字形集合（"B"、"I"、"BI"）对应的来源。
// 不属于该字体族的来源原样返回。
func Variant(src, styleSet string) string {
	if !goFamily[strings.ToLower(strings.TrimPrefix(src, Prefix))] {
		return src
	}
	bold, italic := strings.Contains(styleSet, "B"), strings.Contains(styleSet, "I")
	switch {
	case bold && italic:
		return Prefix + "gobolditalic"
	case bold:
		return Prefix + "gobold"
	case italic:
		return Prefix + "goitalic"
	}
	return Prefix + "goregular"
}

// Regular 是找不到字体时使用的回退字体。
func Regular() []byte { return goregular.TTF }
