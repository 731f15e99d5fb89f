package layout

import (
	"fmt"
	"strings"
)

// TokenKind 区分 token 的种类：单词、显式换行/分段/分页以及列表标记。
type TokenKind int

const (
	TokenWord TokenKind = iota
	TokenNewLine
	TokenNewParagraph
	TokenNewPage
	TokenBullet
	TokenNumber
)

func (k TokenKind) String() string {
	switch k {
	case TokenWord:
		return "word"
	case TokenNewLine:
		return "new-line"
	case TokenNewParagraph:
		return "new-paragraph"
	case TokenNewPage:
		return "new-page"
	case TokenBullet:
		return "bullet"
	case TokenNumber:
		return "number"
	default:
		return fmt.Sprintf("token(%d)", int(k))
	}
}

// CharStyle 是字符级样式标记（粗体、斜体）的位集合。
type CharStyle uint8

const (
	Bold CharStyle = 1 << iota
	Italic
)

func (c CharStyle) String() string {
	var b strings.Builder
	if c&Bold != 0 {
		b.WriteString("B")
	}
	if c&Italic != 0 {
		b.WriteString("I")
	}
	return b.String()
}

// StyleRef 引用格式表中的一个 key，并附带字符样式标记。
type StyleRef struct {
	Key   string    `json:"key"`
	Flags CharStyle `json:"flags,omitempty"`
}

// Style 构造不带字符样式的 StyleRef。
func Style(key string) StyleRef { return StyleRef{Key: key} }

// With 返回叠加了 flags 的新 StyleRef。
func (s StyleRef) With(flags CharStyle) StyleRef {
	s.Flags |= flags
	return s
}

func (s StyleRef) String() string {
	if s.Flags == 0 {
		return s.Key
	}
	return s.Key + "+" + s.Flags.String()
}

// Token 是排版流中的最小单元。Token 按值传递，生成后不再修改；
// 它没有身份，唯一有意义的是在序列中的位置。
type Token struct {
	Kind    TokenKind `json:"kind"`
	Text    string    `json:"text,omitempty"`
	Style   StyleRef  `json:"style"`
	Ordinal int       `json:"ordinal,omitempty"`
}

func Word(text string, style StyleRef) Token {
	return Token{Kind: TokenWord, Text: text, Style: style}
}

func NewLine(style StyleRef) Token { return Token{Kind: TokenNewLine, Style: style} }

func NewParagraph(style StyleRef) Token { return Token{Kind: TokenNewParagraph, Style: style} }

func NewPage(style StyleRef) Token { return Token{Kind: TokenNewPage, Style: style} }

func Bullet(style StyleRef) Token { return Token{Kind: TokenBullet, Style: style} }

func Number(style StyleRef, ordinal int) Token {
	return Token{Kind: TokenNumber, Style: style, Ordinal: ordinal}
}

// IsBreak 报告 token 是否强制结束当前行。
func (t Token) IsBreak() bool {
	return t.Kind == TokenNewLine || t.Kind == TokenNewParagraph || t.Kind == TokenNewPage
}

// IsMarker 报告 token 是否为列表标记（bullet/number）。
func (t Token) IsMarker() bool {
	return t.Kind == TokenBullet || t.Kind == TokenNumber
}

func (t Token) String() string {
	switch t.Kind {
	case TokenWord:
		return fmt.Sprintf("%q[%s]", t.Text, t.Style)
	case TokenNumber:
		return fmt.Sprintf("number(%d)[%s]", t.Ordinal, t.Style)
	default:
		return fmt.Sprintf("%s[%s]", t.Kind, t.Style)
	}
}

// startsParagraph 判断 tokens[i] 是否开启一个新段落：
// 序列开头、紧跟 new-paragraph 之后，或者一个不在段首的列表标记。
// 拆分器与段落组装器共用这一规则，以保证两者的高度计算一致。
func startsParagraph(tokens []Token, i int) bool {
	if i == 0 {
		return true
	}
	prev := tokens[i-1]
	if prev.Kind == TokenNewParagraph || prev.Kind == TokenNewPage {
		return true
	}
	return tokens[i].IsMarker()
}
