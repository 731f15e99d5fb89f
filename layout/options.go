package layout

// Metrics 提供字体度量，所有返回值单位为 pt。
// 对于同一 Format 与已安装的字体集合，结果必须确定。
type Metrics interface {
	// WordWidth 返回单词在 f 下的宽度。
	WordWidth(text string, f Format) float64
	// LineHeight 返回 f 的自然行高（不含行间距）。
	LineHeight(f Format) float64
	// StringWidth 返回任意字符串（可含空格）的宽度。
	StringWidth(text string, f Format) float64
}

// LineAdvance 返回拆分与绘制共用的行高：自然行高加上行级上下间距。
func LineAdvance(m Metrics, f Format) float64 {
	return m.LineHeight(f) + f.Spacing.Line.Above + f.Spacing.Line.Below
}
