package renderer

import (
	"fmt"

	"github.com/ByLCY/pagefill/layout"
)

// DrawBlock 把组装好的段落按顺序写入 sink。
//
// 纵向推进与拆分时的预留完全一致：每段先扣除段前距，每行扣除统一行高
// （已含行间距），段后再扣除段后距，因此绘制结果不会超出洞的高度。
// 列表标记绘制在缩进左侧的预留边距中，只出现在段落首行。
func DrawBlock(sink Sink, hole layout.Hole, block layout.Block, m layout.Metrics) error {
	if sink == nil {
		return fmt.Errorf("renderer: sink 不能为空")
	}
	sink.BeginText()
	defer sink.EndText()

	y := hole.Top()
	for _, para := range block.Paragraphs {
		y -= para.Format.Spacing.Paragraph.Above
		x := hole.X + para.Format.Indent
		for i, line := range para.Lines {
			baseline := y - block.LineAbove - para.Format.Size
			if i == 0 {
				if para.Marker != "" {
					gap := m.StringWidth(" ", para.Format)
					mw := m.StringWidth(para.Marker, para.Format)
					sink.SetPosition(x-mw-gap, baseline)
					if err := drawRun(sink, para.Marker, para.Format); err != nil {
						return err
					}
				}
				sink.SetPosition(x, baseline)
			} else {
				sink.MoveBy(0, -block.LineHeight)
			}
			for _, run := range line.Runs {
				if err := drawRun(sink, run.Text, run.Format); err != nil {
					return err
				}
			}
			y -= block.LineHeight
		}
		y -= para.Format.Spacing.Paragraph.Below
	}
	return nil
}

func drawRun(sink Sink, text string, f layout.Format) error {
	if err := sink.SetFont(f); err != nil {
		return err
	}
	sink.SetColor(f.Color)
	return sink.DrawRun(text)
}

// FitImage 在洞内按比例缩放图片并居中，返回绘制区域（pt）。
func FitImage(hole layout.Hole, pxWidth, pxHeight int) (x, y, w, h float64) {
	if pxWidth <= 0 || pxHeight <= 0 || hole.Width <= 0 || hole.Height <= 0 {
		return hole.X, hole.Y, 0, 0
	}
	scale := hole.Width / float64(pxWidth)
	if s := hole.Height / float64(pxHeight); s < scale {
		scale = s
	}
	w = float64(pxWidth) * scale
	h = float64(pxHeight) * scale
	x = hole.X + (hole.Width-w)/2
	y = hole.Y + (hole.Height-h)/2
	return x, y, w, h
}
