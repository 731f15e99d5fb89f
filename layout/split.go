package layout

import "fmt"

const fitEpsilon = 1e-9

// splitter 保存一次贪心拆分的游标状态。
type splitter struct {
	tokens  []Token
	formats FormatTable
	metrics Metrics
	width   float64
	height  float64
	advance float64

	lineStart int
	lineWidth float64
	lineWords int

	para    Format
	pending float64 // 当前段落尚未计入的段落间距
	used    float64
	lines   []LineSpan
}

// Split 把 tokens 贪心地拆成放得进 width×height 区域的前缀（Selected）
// 与剩余后缀（Remaining）。
//
// 行宽以单词宽度加单个空格累计，超出 width 时在单词前折行；单个超宽单词
// 独占一行且不被截断。new-line/new-paragraph 无条件折行，new-page 折行并
// 结束本洞的消费。行高取第一个 token 的格式（含行级上下间距），每一段的
// 段落间距按该段自身格式预留，与绘制时保持一致。
func Split(tokens []Token, width, height float64, formats FormatTable, metrics Metrics) (Result, error) {
	if len(tokens) == 0 {
		return Result{}, nil
	}
	if metrics == nil {
		return Result{}, fmt.Errorf("layout: 缺少字体度量 Metrics")
	}
	first, err := formats.Resolve(tokens[0].Style)
	if err != nil {
		return Result{}, err
	}
	s := &splitter{
		tokens:  tokens,
		formats: formats,
		metrics: metrics,
		width:   width,
		height:  height,
		advance: LineAdvance(metrics, first),
	}
	stop, err := s.run()
	if err != nil {
		return Result{}, err
	}
	res := Result{
		Selected:   tokens[:stop:stop],
		Lines:      s.lines,
		LineHeight: s.advance,
		LineAbove:  first.Spacing.Line.Above,
		Height:     s.used,
	}
	if stop < len(tokens) {
		res.Remaining = tokens[stop:]
	}
	return res, nil
}

// run 返回 Selected 的长度。
func (s *splitter) run() (int, error) {
	for i, t := range s.tokens {
		if startsParagraph(s.tokens, i) {
			if i > s.lineStart && !s.completeLine(i) {
				return s.lineStart, nil
			}
			f, err := s.formats.Resolve(Style(t.Style.Key))
			if err != nil {
				return 0, err
			}
			s.para = f
			s.pending = f.Spacing.Paragraph.Above + f.Spacing.Paragraph.Below
		}

		switch t.Kind {
		case TokenWord:
			f, err := s.formats.Resolve(t.Style)
			if err != nil {
				return 0, err
			}
			w := s.metrics.WordWidth(t.Text, f)
			add := w
			if s.lineWords > 0 {
				add += s.metrics.StringWidth(" ", f)
			}
			limit := s.width - s.para.Indent
			if s.lineWords > 0 && s.lineWidth+add > limit+fitEpsilon {
				if !s.completeLine(i) {
					return s.lineStart, nil
				}
				s.lineWidth = w
				s.lineWords = 1
				continue
			}
			s.lineWidth += add
			s.lineWords++
		case TokenNewLine, TokenNewParagraph:
			if !s.completeLine(i + 1) {
				return s.lineStart, nil
			}
		case TokenNewPage:
			if !s.completeLine(i + 1) {
				return s.lineStart, nil
			}
			return i + 1, nil
		case TokenBullet, TokenNumber:
			// 标记绘制在预留的左边距中，不参与行宽累计
			if _, err := s.formats.Resolve(t.Style); err != nil {
				return 0, err
			}
		default:
			return 0, fmt.Errorf("layout: 未知 token 类型 %s", t.Kind)
		}
	}
	if s.lineStart < len(s.tokens) && !s.completeLine(len(s.tokens)) {
		return s.lineStart, nil
	}
	return len(s.tokens), nil
}

// completeLine 结束 [lineStart, end) 这一行。若加上该行后总高度超出
// 区域高度则返回 false，且不修改任何状态。
func (s *splitter) completeLine(end int) bool {
	h := s.used + s.advance + s.pending
	if h > s.height+fitEpsilon {
		return false
	}
	s.used = h
	s.pending = 0
	s.lines = append(s.lines, LineSpan{Start: s.lineStart, End: end})
	s.lineStart = end
	s.lineWidth = 0
	s.lineWords = 0
	return true
}
