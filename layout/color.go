package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseColor 解析 "#rgb"、"#rrggbb" 或 "#rrggbbaa"（忽略透明度）。
func ParseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	if len(hex) == 3 {
		hex = strings.Repeat(hex[0:1], 2) + strings.Repeat(hex[1:2], 2) + strings.Repeat(hex[2:3], 2)
	}
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	var c Color
	for i, dst := range []*int{&c.R, &c.G, &c.B} {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
		}
		*dst = int(v)
	}
	return c, nil
}

// Hex 返回 "#rrggbb" 形式。
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// pagePresets 以毫米记录常用纸张尺寸（纵向）。
var pagePresets = map[string][2]float64{
	"A3":     {297, 420},
	"A4":     {210, 297},
	"A5":     {148, 210},
	"LETTER": {215.9, 279.4},
	"LEGAL":  {215.9, 355.6},
}

// PageSize 解析 "A4"、"a5 landscape" 之类的纸张名称，返回宽高（pt）。
func PageSize(value string) (width, height float64, err error) {
	fields := strings.Fields(strings.ToUpper(value))
	if len(fields) == 0 {
		return 0, 0, fmt.Errorf("缺少纸张尺寸")
	}
	base, ok := pagePresets[fields[0]]
	if !ok {
		return 0, 0, fmt.Errorf("暂不支持的纸张尺寸：%s", fields[0])
	}
	width, height = ToPt(base[0]), ToPt(base[1])
	for _, f := range fields[1:] {
		switch f {
		case "LANDSCAPE":
			width, height = height, width
		case "PORTRAIT":
		default:
			return 0, 0, fmt.Errorf("未知的纸张参数：%s", f)
		}
	}
	return width, height, nil
}
