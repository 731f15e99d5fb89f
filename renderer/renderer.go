package renderer

import (
	"image"

	"github.com/ByLCY/pagefill/layout"
)

// Sink 接收排版引擎按顺序发出的绘制操作，坐标单位为 pt，原点在左下角。
// 引擎严格按段落/行的组装顺序调用，不会重排或合并。
type Sink interface {
	BeginText()
	// SetPosition 设置下一行的行首（基线）位置。
	SetPosition(x, y float64)
	SetFont(f layout.Format) error
	SetColor(c layout.Color)
	// DrawRun 在当前位置绘制文字，并把笔位置推进文字宽度。
	DrawRun(text string) error
	// MoveBy 相对上一次的行首移动，语义与 PDF 的 Td 相同。
	MoveBy(dx, dy float64)
	EndText()
	DrawImage(img image.Image, x, y, w, h float64) error
}

// Document 是按页组织的 Sink，Finish 返回最终文件字节（例如 PDF）。
type Document interface {
	Sink
	BeginPage(width, height float64) error
	EndPage() error
	Finish() ([]byte, error)
}
