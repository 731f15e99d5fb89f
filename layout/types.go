package layout

// 该文件定义模板、洞（hole）与排版结果，供拆分、组装、渲染与调试 JSON 共用。
// 坐标约定：原点在左下角，y 向上增长，单位为 pt。

// HoleType 标识洞的内容类型，决定由哪个处理器填充。
type HoleType string

const (
	HoleImage      HoleType = "image"
	HoleText       HoleType = "text"
	HoleTextParsed HoleType = "text-parsed"
)

// Hole 是模板上一个具名的矩形区域。
// Priority 仅决定绘制顺序（升序，越大越靠上层），与排版是否放得下无关。
type Hole struct {
	Name     string   `json:"name"`
	Type     HoleType `json:"type"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Priority int      `json:"priority"`
	Format   string   `json:"format,omitempty"`
}

// Top 返回洞上边缘的 y 坐标。
func (h Hole) Top() float64 { return h.Y + h.Height }

// Template 是一个具名页面布局。Overflow 为空表示放不下的内容被丢弃。
type Template struct {
	Name     string  `json:"name"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Holes    []Hole  `json:"holes"`
	Overflow string  `json:"overflow,omitempty"`
}

// Hole 按名称查找洞。
func (t *Template) Hole(name string) (Hole, bool) {
	for _, h := range t.Holes {
		if h.Name == name {
			return h, true
		}
	}
	return Hole{}, false
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// LineSpan 以半开区间 [Start, End) 描述 Selected 中的一行。
type LineSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Result 是拆分器的输出。Selected ++ Remaining 恒等于输入序列。
type Result struct {
	Selected  []Token    `json:"selected"`
	Remaining []Token    `json:"remaining,omitempty"`
	Lines     []LineSpan `json:"lines"`
	// LineHeight 为本洞统一使用的行高（已包含行级上下间距），LineAbove 为其中的行上间距。
	LineHeight float64 `json:"lineHeight"`
	LineAbove  float64 `json:"lineAbove"`
	// Height 为 Selected 实际占用的高度（行高与段落间距之和）。
	Height float64 `json:"height"`
}

// Run 是一行内样式相同的一段连续文字。
type Run struct {
	Text   string `json:"text"`
	Format Format `json:"format"`
}

// Line 是一行已排好的文字。
type Line struct {
	Runs []Run `json:"runs"`
}

// Paragraph 携带段落格式与按顺序排列的行；Marker 只在首行前绘制。
type Paragraph struct {
	Format Format `json:"format"`
	Marker string `json:"marker,omitempty"`
	Lines  []Line `json:"lines"`
}

// Block 是一个洞内组装完成的段落集合。
type Block struct {
	Paragraphs []Paragraph `json:"paragraphs"`
	LineHeight float64     `json:"lineHeight"`
	LineAbove  float64     `json:"lineAbove"`
}

// Overflow 记录某个洞未消费的 token，需要带到下一页同名洞中。
type Overflow struct {
	Hole   string  `json:"hole"`
	Tokens []Token `json:"tokens"`
}
