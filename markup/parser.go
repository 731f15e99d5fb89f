package markup

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	// 文本模式下只识别 "<" 与 "</"，进入标签模式后再切分标签名与属性。
	markupLexer = lexer.MustStateful(lexer.Rules{
		"Root": {
			{Name: "EndTagOpen", Pattern: `</`, Action: lexer.Push("Tag")},
			{Name: "TagOpen", Pattern: `<`, Action: lexer.Push("Tag")},
			{Name: "Text", Pattern: `[^<]+`},
		},
		"Tag": {
			{Name: "Whitespace", Pattern: `\s+`},
			{Name: "TagClose", Pattern: `>`, Action: lexer.Pop()},
			{Name: "Slash", Pattern: `/`},
			{Name: "Equals", Pattern: `=`},
			{Name: "String", Pattern: `"[^"]*"|'[^']*'`},
			{Name: "Ident", Pattern: `[A-Za-z][A-Za-z0-9-]*`},
		},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(markupLexer),
		participle.Elide("Whitespace"),
	)
)

// Document is the root AST node of a markup fragment.
type Document struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Nodes []*Node        `parser:"@@*"`
}

// Node is either an element or a run of character data.
type Node struct {
	Element *Element `parser:"  @@"`
	Text    *string  `parser:"| @Text"`
}

// Element is a tag with its children. Self-closing tags (`<br/>`) have
// Empty set and no End.
type Element struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"'<' @Ident"`
	Attrs    []*Attr        `parser:"@@*"`
	Empty    bool           `parser:"( @'/' '>'"`
	Children []*Node        `parser:"| '>' @@*"`
	End      string         `parser:"  '</' @Ident '>' )"`
}

// Attr is a `key="value"` pair; the value is optional.
type Attr struct {
	Key   string `parser:"@Ident"`
	Value string `parser:"( '=' @String )?"`
}

// Attr returns the unquoted value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if strings.EqualFold(a.Key, name) {
			v := a.Value
			if len(v) >= 2 {
				v = v[1 : len(v)-1]
			}
			return v, true
		}
	}
	return "", false
}

// Parse parses a markup fragment.
func Parse(src string) (*Document, error) {
	return documentParser.ParseString("", src)
}
