package layout

import "strings"

// Assemble 将拆分结果按段落分组。段落边界与 Split 使用的规则一致：
// 序列开头、new-paragraph 之后，以及列表标记处。每行内样式相同的相邻
// 单词合并为一个 Run；跟在其它 Run 后面的 Run 自带前导空格。
// 若 r 还有剩余 token，返回以洞名标识的 Overflow。
func Assemble(hole string, r Result, formats FormatTable) (Block, *Overflow, error) {
	block := Block{LineHeight: r.LineHeight, LineAbove: r.LineAbove}
	var cur *Paragraph
	flush := func() {
		if cur != nil {
			block.Paragraphs = append(block.Paragraphs, *cur)
		}
	}

	for _, span := range r.Lines {
		if span.Start < span.End && startsParagraph(r.Selected, span.Start) {
			flush()
			f, err := formats.Resolve(Style(r.Selected[span.Start].Style.Key))
			if err != nil {
				return Block{}, nil, err
			}
			cur = &Paragraph{Format: f}
		}
		if cur == nil {
			// Lines 总是从段首开始，这里只为防御非法输入
			cur = &Paragraph{}
		}

		line := Line{}
		var words []string
		var style StyleRef
		emit := func() error {
			if len(words) == 0 {
				return nil
			}
			f, err := formats.Resolve(style)
			if err != nil {
				return err
			}
			text := strings.Join(words, " ")
			if len(line.Runs) > 0 {
				text = " " + text
			}
			line.Runs = append(line.Runs, Run{Text: text, Format: f})
			words = words[:0]
			return nil
		}
		for i := span.Start; i < span.End; i++ {
			t := r.Selected[i]
			switch t.Kind {
			case TokenWord:
				if len(words) > 0 && t.Style != style {
					if err := emit(); err != nil {
						return Block{}, nil, err
					}
				}
				style = t.Style
				words = append(words, t.Text)
			case TokenBullet, TokenNumber:
				cur.Marker = cur.Format.Marker(t)
			}
		}
		if err := emit(); err != nil {
			return Block{}, nil, err
		}
		cur.Lines = append(cur.Lines, line)
	}
	flush()

	var overflow *Overflow
	if len(r.Remaining) > 0 {
		overflow = &Overflow{Hole: hole, Tokens: r.Remaining}
	}
	return block, overflow, nil
}
