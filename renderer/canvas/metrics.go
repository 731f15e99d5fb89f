package canvasrenderer

import "github.com/ByLCY/pagefill/layout"

// Metrics 用 canvas 字体面实现 layout.Metrics。
// canvas 的宽度与行高单位为 mm，这里统一换算为 pt。
type Metrics struct {
	Fonts *Fonts
}

var _ layout.Metrics = (*Metrics)(nil)

// NewMetrics 基于字体缓存创建度量提供者。
func NewMetrics(fs *Fonts) *Metrics { return &Metrics{Fonts: fs} }

func (m *Metrics) WordWidth(text string, f layout.Format) float64 {
	return m.StringWidth(text, f)
}

func (m *Metrics) StringWidth(text string, f layout.Format) float64 {
	face, err := m.Fonts.Face(f, layout.Color{})
	if err != nil {
		return 0
	}
	return layout.ToPt(face.TextWidth(text))
}

func (m *Metrics) LineHeight(f layout.Format) float64 {
	face, err := m.Fonts.Face(f, layout.Color{})
	if err != nil {
		return f.Size
	}
	h := layout.ToPt(face.Metrics().LineHeight)
	if h <= 0 {
		return f.Size
	}
	return h
}
