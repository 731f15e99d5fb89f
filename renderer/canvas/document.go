package canvasrenderer

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/pagefill/layout"
	"github.com/ByLCY/pagefill/renderer"
)

// ErrNoPages 表示 Finish 时文档中没有任何页面。
var ErrNoPages = errors.New("缺少可渲染的页面")

// Info 是写入 PDF 的文档信息。
type Info struct {
	Title    string
	Subject  string
	Keywords string
	Author   string
	Creator  string
}

// Document draws sink operations onto tdewolff/canvas pages and writes a PDF.
// Coordinates arrive in points with a lower-left origin, which matches the
// canvas default coordinate system once converted to millimetres.
type Document struct {
	fonts *Fonts
	info  Info

	buf    bytes.Buffer
	writer *pdf.PDF
	page   *canvas.Canvas
	ctx    *canvas.Context
	pages  int

	inText       bool
	lineX, lineY float64
	penX         float64
	format       layout.Format
	color        layout.Color
}

var _ renderer.Document = (*Document)(nil)

// NewDocument creates an empty PDF document sharing the given font cache.
func NewDocument(fs *Fonts, info Info) *Document {
	return &Document{fonts: fs, info: info}
}

// Pages reports how many pages have been started.
func (d *Document) Pages() int { return d.pages }

func (d *Document) BeginPage(width, height float64) error {
	if d.page != nil {
		return fmt.Errorf("上一页尚未结束")
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("页面尺寸无效: %gx%g", width, height)
	}
	wmm, hmm := layout.ToMm(width), layout.ToMm(height)
	if d.writer == nil {
		d.writer = pdf.New(&d.buf, wmm, hmm, nil)
		d.writer.SetInfo(d.info.Title, d.info.Subject, d.info.Keywords, d.info.Author, d.info.Creator)
	} else {
		d.writer.NewPage(wmm, hmm)
	}
	d.page = canvas.New(wmm, hmm)
	d.ctx = canvas.NewContext(d.page)
	d.pages++
	return nil
}

func (d *Document) EndPage() error {
	if d.page == nil {
		return fmt.Errorf("没有进行中的页面")
	}
	d.page.RenderTo(d.writer)
	d.page, d.ctx = nil, nil
	d.inText = false
	return nil
}

func (d *Document) Finish() ([]byte, error) {
	if d.writer == nil {
		return nil, ErrNoPages
	}
	if d.page != nil {
		if err := d.EndPage(); err != nil {
			return nil, err
		}
	}
	if err := d.writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return d.buf.Bytes(), nil
}

func (d *Document) BeginText() { d.inText = true }

func (d *Document) EndText() { d.inText = false }

func (d *Document) SetPosition(x, y float64) {
	d.lineX, d.lineY = x, y
	d.penX = x
}

func (d *Document) MoveBy(dx, dy float64) {
	d.lineX += dx
	d.lineY += dy
	d.penX = d.lineX
}

func (d *Document) SetFont(f layout.Format) error {
	if _, err := d.fonts.Face(f, d.color); err != nil {
		return err
	}
	d.format = f
	return nil
}

func (d *Document) SetColor(c layout.Color) { d.color = c }

func (d *Document) DrawRun(text string) error {
	if d.ctx == nil {
		return fmt.Errorf("绘制文字前必须先开始页面")
	}
	if !d.inText {
		return fmt.Errorf("绘制文字前必须先调用 BeginText")
	}
	face, err := d.fonts.Face(d.format, d.color)
	if err != nil {
		return err
	}
	line := canvas.NewTextLine(face, text, canvas.Left)
	d.ctx.DrawText(layout.ToMm(d.penX), layout.ToMm(d.lineY), line)
	d.penX += layout.ToPt(face.TextWidth(text))
	return nil
}

func (d *Document) DrawImage(img image.Image, x, y, w, h float64) error {
	if d.ctx == nil {
		return fmt.Errorf("绘制图片前必须先开始页面")
	}
	if img == nil || w <= 0 || h <= 0 {
		return nil
	}
	px := img.Bounds().Dx()
	if px <= 0 {
		return nil
	}
	dpmm := float64(px) / layout.ToMm(w)
	d.ctx.DrawImage(layout.ToMm(x), layout.ToMm(y), img, canvas.DPMM(dpmm))
	return nil
}
