package markup

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/pagefill/layout"
)

// ErrMalformed 表示标记文本无法解析或结构非法。
var ErrMalformed = errors.New("malformed markup")

// TokenizeError 携带出错位置附近的原文片段。
type TokenizeError struct {
	Fragment string
	Pos      lexer.Position
	Err      error
}

func (e *TokenizeError) Error() string {
	return fmt.Sprintf("tokenize %d:%d: %v (near %q)", e.Pos.Line, e.Pos.Column, e.Err, e.Fragment)
}

func (e *TokenizeError) Unwrap() error { return e.Err }

const (
	KeyParagraph = "paragraph"
	KeyBullet    = "bullet"
	KeyNumber    = "number"
	maxHeading   = 3
)

// Options 控制 token 的样式 key 与编号起点。
type Options struct {
	// ParagraphKey 替代默认的 "paragraph"。
	ParagraphKey string
	// NumberBase 是有序列表第一个条目的序号（未指定 start 属性时）。
	NumberBase int
}

func (o Options) paragraphKey() string {
	if o.ParagraphKey != "" {
		return o.ParagraphKey
	}
	return KeyParagraph
}

// Keys 返回顶层（非嵌套列表）可能出现的全部格式 key。
func (o Options) Keys() []string {
	keys := []string{o.paragraphKey()}
	for i := 1; i <= maxHeading; i++ {
		keys = append(keys, headingKey(i))
	}
	return append(keys, KeyBullet, KeyNumber)
}

// BaseKeys 是默认选项下可达的格式 key。
var BaseKeys = Options{}.Keys()

func headingKey(level int) string { return "heading-" + strconv.Itoa(level) }

// listKey 第一层列表使用 bullet/number，更深层级追加层级后缀。
func listKey(ordered bool, depth int) string {
	key := KeyBullet
	if ordered {
		key = KeyNumber
	}
	if depth > 1 {
		key += "-" + strconv.Itoa(depth)
	}
	return key
}

type list struct {
	ordered bool
	next    int
}

type walker struct {
	src   string
	opts  Options
	out   []layout.Token
	flags layout.CharStyle
	// key 为当前块的格式 key；为空表示不在任何块内。
	key      string
	implicit bool
	lists    []*list
}

// Tokenize 把标记文本转换为有序 token 序列。支持 <p>、<h1>-<h3>、
// <b>/<strong>、<i>/<em>、<ul>/<ol>/<li>、<br/> 与 <pagebreak/>；
// 未知标签或结构错误一律返回 *TokenizeError，不会静默丢弃内容。
func Tokenize(src string, opts Options) ([]layout.Token, error) {
	doc, err := Parse(src)
	if err != nil {
		return nil, wrapParseError(src, err)
	}
	w := &walker{src: src, opts: opts}
	for _, n := range doc.Nodes {
		if err := w.node(n); err != nil {
			return nil, err
		}
	}
	w.closeImplicit()
	return w.out, nil
}

func (w *walker) node(n *Node) error {
	if n.Text != nil {
		w.text(*n.Text)
		return nil
	}
	return w.element(n.Element)
}

func (w *walker) element(e *Element) error {
	name := strings.ToLower(e.Name)
	if !e.Empty && !strings.EqualFold(e.Name, e.End) {
		return w.fail(e.Pos, fmt.Errorf("%w: <%s> closed by </%s>", ErrMalformed, e.Name, e.End))
	}
	switch name {
	case "p":
		key := w.key
		if key == "" || w.implicit {
			key = w.opts.paragraphKey()
		}
		return w.block(key, e.Children)
	case "h1", "h2", "h3":
		return w.block(headingKey(int(name[1]-'0')), e.Children)
	case "b", "strong":
		return w.inline(layout.Bold, e.Children)
	case "i", "em":
		return w.inline(layout.Italic, e.Children)
	case "br":
		if len(e.Children) > 0 {
			return w.fail(e.Pos, fmt.Errorf("%w: <br> must be empty", ErrMalformed))
		}
		w.emit(layout.NewLine(w.style()))
		return nil
	case "pagebreak":
		if len(e.Children) > 0 {
			return w.fail(e.Pos, fmt.Errorf("%w: <pagebreak> must be empty", ErrMalformed))
		}
		w.closeImplicit()
		w.emit(layout.NewPage(w.style()))
		return nil
	case "ul", "ol":
		return w.list(e, name == "ol")
	case "li":
		return w.fail(e.Pos, fmt.Errorf("%w: <li> outside of a list", ErrMalformed))
	default:
		return w.fail(e.Pos, fmt.Errorf("%w: unknown tag <%s>", ErrMalformed, e.Name))
	}
}

func (w *walker) block(key string, children []*Node) error {
	w.closeImplicit()
	outer := w.key
	w.key = key
	start := len(w.out)
	for _, c := range children {
		if err := w.node(c); err != nil {
			return err
		}
	}
	w.endBlock(start)
	w.key = outer
	return nil
}

func (w *walker) inline(flag layout.CharStyle, children []*Node) error {
	outer := w.flags
	w.flags |= flag
	defer func() { w.flags = outer }()
	for _, c := range children {
		if err := w.node(c); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) list(e *Element, ordered bool) error {
	w.closeImplicit()
	l := &list{ordered: ordered, next: w.opts.NumberBase}
	if v, ok := e.Attr("start"); ok && ordered {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return w.fail(e.Pos, fmt.Errorf("%w: bad start %q", ErrMalformed, v))
		}
		// start 是第一个可见编号，序号从 0 计。
		l.next = n - 1
	}
	w.lists = append(w.lists, l)
	defer func() { w.lists = w.lists[:len(w.lists)-1] }()

	depth := len(w.lists)
	for _, c := range e.Children {
		if c.Text != nil {
			if strings.TrimSpace(*c.Text) != "" {
				return w.fail(e.Pos, fmt.Errorf("%w: text directly inside <%s>", ErrMalformed, e.Name))
			}
			continue
		}
		item := c.Element
		if !strings.EqualFold(item.Name, "li") {
			return w.fail(item.Pos, fmt.Errorf("%w: <%s> inside <%s>", ErrMalformed, item.Name, e.Name))
		}
		if !item.Empty && !strings.EqualFold(item.Name, item.End) {
			return w.fail(item.Pos, fmt.Errorf("%w: <li> closed by </%s>", ErrMalformed, item.End))
		}
		key := listKey(ordered, depth)
		if ordered {
			w.emit(layout.Number(layout.Style(key), l.next))
			l.next++
		} else {
			w.emit(layout.Bullet(layout.Style(key)))
		}
		if err := w.block(key, item.Children); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) text(raw string) {
	fields := strings.FieldsFunc(html.UnescapeString(raw), func(r rune) bool {
		return unicode.IsSpace(r) && r != '\u00a0'
	})
	if len(fields) == 0 {
		return
	}
	if w.key == "" {
		w.key = w.opts.paragraphKey()
		w.implicit = true
	}
	style := w.style()
	for _, f := range fields {
		w.emit(layout.Word(norm.NFC.String(f), style))
	}
}

func (w *walker) style() layout.StyleRef {
	key := w.key
	if key == "" {
		key = w.opts.paragraphKey()
	}
	return layout.Style(key).With(w.flags)
}

func (w *walker) emit(t layout.Token) { w.out = append(w.out, t) }

// endBlock 在块产生了内容且尚未以段落结束时补一个 new-paragraph。
func (w *walker) endBlock(start int) {
	if len(w.out) == start {
		return
	}
	if last := w.out[len(w.out)-1]; last.Kind == layout.TokenNewParagraph || last.Kind == layout.TokenNewPage {
		return
	}
	w.emit(layout.NewParagraph(layout.Style(w.key)))
}

// closeImplicit 结束由顶层裸文本开启的隐式段落。
func (w *walker) closeImplicit() {
	if !w.implicit {
		return
	}
	w.implicit = false
	w.endBlock(0)
	w.key = ""
}

func (w *walker) fail(pos lexer.Position, err error) error {
	return &TokenizeError{Fragment: fragment(w.src, pos.Offset), Pos: pos, Err: err}
}

func wrapParseError(src string, err error) error {
	var perr participle.Error
	if errors.As(err, &perr) {
		pos := perr.Position()
		return &TokenizeError{
			Fragment: fragment(src, pos.Offset),
			Pos:      pos,
			Err:      fmt.Errorf("%w: %s", ErrMalformed, perr.Message()),
		}
	}
	return &TokenizeError{Fragment: fragment(src, 0), Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
}

func fragment(src string, offset int) string {
	const width = 24
	if offset < 0 || offset > len(src) {
		offset = 0
	}
	end := offset + width
	if end > len(src) {
		end = len(src)
	}
	return src[offset:end]
}
