package renderer

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/ByLCY/pagefill/layout"
)

// OpKind 标识一次记录下来的绘制操作。
type OpKind string

const (
	OpBeginPage   OpKind = "begin-page"
	OpEndPage     OpKind = "end-page"
	OpBeginText   OpKind = "begin-text"
	OpSetPosition OpKind = "set-position"
	OpSetFont     OpKind = "set-font"
	OpSetColor    OpKind = "set-color"
	OpDrawRun     OpKind = "draw-run"
	OpMoveBy      OpKind = "move-by"
	OpEndText     OpKind = "end-text"
	OpDrawImage   OpKind = "draw-image"
)

// Op 是一次绘制操作的快照，坐标单位为 pt。
type Op struct {
	Kind  OpKind        `json:"kind"`
	X     float64       `json:"x,omitempty"`
	Y     float64       `json:"y,omitempty"`
	W     float64       `json:"w,omitempty"`
	H     float64       `json:"h,omitempty"`
	Text  string        `json:"text,omitempty"`
	Font  string        `json:"font,omitempty"`
	Style string        `json:"style,omitempty"`
	Size  float64       `json:"size,omitempty"`
	Color *layout.Color `json:"color,omitempty"`
}

// Recorder 是只记录操作的 Document，Finish 返回 JSON 形式的操作列表。
type Recorder struct {
	Ops []Op
}

var _ Document = (*Recorder)(nil)

func (r *Recorder) add(op Op) { r.Ops = append(r.Ops, op) }

func (r *Recorder) BeginPage(width, height float64) error {
	r.add(Op{Kind: OpBeginPage, W: width, H: height})
	return nil
}

func (r *Recorder) EndPage() error {
	r.add(Op{Kind: OpEndPage})
	return nil
}

func (r *Recorder) Finish() ([]byte, error) {
	data, err := json.MarshalIndent(r.Ops, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("序列化绘制记录失败: %w", err)
	}
	return data, nil
}

func (r *Recorder) BeginText() { r.add(Op{Kind: OpBeginText}) }

func (r *Recorder) EndText() { r.add(Op{Kind: OpEndText}) }

func (r *Recorder) SetPosition(x, y float64) { r.add(Op{Kind: OpSetPosition, X: x, Y: y}) }

func (r *Recorder) MoveBy(dx, dy float64) { r.add(Op{Kind: OpMoveBy, X: dx, Y: dy}) }

func (r *Recorder) SetFont(f layout.Format) error {
	r.add(Op{Kind: OpSetFont, Font: f.Font, Style: f.Style, Size: f.Size})
	return nil
}

func (r *Recorder) SetColor(c layout.Color) { r.add(Op{Kind: OpSetColor, Color: &c}) }

func (r *Recorder) DrawRun(text string) error {
	r.add(Op{Kind: OpDrawRun, Text: text})
	return nil
}

func (r *Recorder) DrawImage(img image.Image, x, y, w, h float64) error {
	r.add(Op{Kind: OpDrawImage, X: x, Y: y, W: w, H: h})
	return nil
}

// Texts 返回按顺序绘制的全部文字。
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Ops {
		if op.Kind == OpDrawRun {
			out = append(out, op.Text)
		}
	}
	return out
}

// Count 返回指定类型操作的数量。
func (r *Recorder) Count(kind OpKind) int {
	n := 0
	for _, op := range r.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}
