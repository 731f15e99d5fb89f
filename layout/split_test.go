package layout

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

// stubMetrics 是测试用的最小度量实现：每个字符宽 perRune，空格宽 space，
// widths 可为个别单词指定宽度。行高固定为字号的 lineFactor 倍。
type stubMetrics struct {
	perRune    float64
	space      float64
	lineFactor float64
	widths     map[string]float64
}

func (m stubMetrics) WordWidth(text string, f Format) float64 {
	if w, ok := m.widths[text]; ok {
		return w
	}
	return float64(utf8.RuneCountInString(text)) * m.perRune
}

func (m stubMetrics) StringWidth(text string, f Format) float64 {
	if text == " " {
		return m.space
	}
	total := 0.0
	for i, w := range strings.Split(text, " ") {
		if i > 0 {
			total += m.space
		}
		total += m.WordWidth(w, f)
	}
	return total
}

func (m stubMetrics) LineHeight(f Format) float64 {
	factor := m.lineFactor
	if factor == 0 {
		factor = 1
	}
	return f.Size * factor
}

func testFormats() FormatTable {
	return FormatTable{
		"paragraph": {Font: "body", Size: 12},
		"heading-1": {Font: "body", Style: "B", Size: 18},
		"bullet": {Font: "body", Size: 12, Indent: 10,
			List: &ListFormat{Type: ListBullet, Level: 1, BulletChar: "•"}},
		"number": {Font: "body", Size: 12, Indent: 10,
			List: &ListFormat{Type: ListNumber, Level: 1}},
	}
}

func words(n int, style StyleRef) []Token {
	out := make([]Token, n)
	for i := range out {
		out[i] = Word(fmt.Sprintf("w%02d", i), style)
	}
	return out
}

func concat(a, b []Token) []Token {
	out := append([]Token{}, a...)
	return append(out, b...)
}

func checkConservation(t *testing.T, in []Token, r Result) {
	t.Helper()
	got := concat(r.Selected, r.Remaining)
	if len(in) == 0 && len(got) == 0 {
		return
	}
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("selected ++ remaining differs from input:\n got=%v\nwant=%v", got, in)
	}
}

func lineWidth(m Metrics, formats FormatTable, tokens []Token) float64 {
	total := 0.0
	n := 0
	for _, tok := range tokens {
		if tok.Kind != TokenWord {
			continue
		}
		f, _ := formats.Resolve(tok.Style)
		if n > 0 {
			total += m.StringWidth(" ", f)
		}
		total += m.WordWidth(tok.Text, f)
		n++
	}
	return total
}

func wordCount(tokens []Token) int {
	n := 0
	for _, tok := range tokens {
		if tok.Kind == TokenWord {
			n++
		}
	}
	return n
}

// 20 个宽 15 的单词放入 100 宽的洞：每行最多 6 个单词，没有剩余。
func TestSplitTwentyWordsScenario(t *testing.T) {
	m := stubMetrics{perRune: 5} // "w00" 宽 15
	in := words(20, Style("paragraph"))
	r, err := Split(in, 100, 200, testFormats(), m)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	checkConservation(t, in, r)
	if len(r.Remaining) != 0 {
		t.Fatalf("expected no remaining, got %d tokens", len(r.Remaining))
	}
	wantLines := []int{6, 6, 6, 2}
	if len(r.Lines) != len(wantLines) {
		t.Fatalf("expected %d lines, got %d", len(wantLines), len(r.Lines))
	}
	for i, span := range r.Lines {
		if got := wordCount(r.Selected[span.Start:span.End]); got != wantLines[i] {
			t.Fatalf("line %d has %d words, want %d", i, got, wantLines[i])
		}
	}
}

// 单个宽 500 的单词放入 100 宽的洞：独占一行，不截断。
func TestSplitOverlongWordScenario(t *testing.T) {
	m := stubMetrics{perRune: 5, widths: map[string]float64{"huge": 500}}
	in := []Token{Word("huge", Style("paragraph"))}
	r, err := Split(in, 100, 200, testFormats(), m)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	if len(r.Selected) != 1 || len(r.Remaining) != 0 {
		t.Fatalf("expected the word to be selected alone, got sel=%d rem=%d", len(r.Selected), len(r.Remaining))
	}
	if len(r.Lines) != 1 {
		t.Fatalf("expected a single line, got %d", len(r.Lines))
	}
}

func TestSplitOverlongWordStartsOwnLine(t *testing.T) {
	m := stubMetrics{perRune: 5, space: 5, widths: map[string]float64{"huge": 500}}
	p := Style("paragraph")
	in := []Token{Word("ab", p), Word("huge", p), Word("cd", p)}
	r, err := Split(in, 100, 200, testFormats(), m)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	want := []LineSpan{{0, 1}, {1, 2}, {2, 3}}
	if !reflect.DeepEqual(r.Lines, want) {
		t.Fatalf("lines = %v, want %v", r.Lines, want)
	}
}

func TestSplitCountsSeparatingSpace(t *testing.T) {
	// 两个 45 宽的单词加 10 宽空格 = 100，恰好放得下；第三个则折行。
	m := stubMetrics{space: 10, widths: map[string]float64{"a": 45, "b": 45, "c": 1}}
	p := Style("paragraph")
	in := []Token{Word("a", p), Word("b", p), Word("c", p)}
	r, err := Split(in, 100, 100, testFormats(), m)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	want := []LineSpan{{0, 2}, {2, 3}}
	if !reflect.DeepEqual(r.Lines, want) {
		t.Fatalf("lines = %v, want %v", r.Lines, want)
	}
}

func TestSplitHeightCutsAtLineStart(t *testing.T) {
	m := stubMetrics{perRune: 5}
	in := words(20, Style("paragraph"))
	// 行高 12，高度 30 只能放两行
	r, err := Split(in, 100, 30, testFormats(), m)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	checkConservation(t, in, r)
	if len(r.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(r.Lines))
	}
	if len(r.Selected) != 12 {
		t.Fatalf("expected 12 selected tokens, got %d", len(r.Selected))
	}
	if r.Remaining[0] != in[12] {
		t.Fatalf("remaining must start at the first line that did not fit")
	}
	if r.Height != 24 {
		t.Fatalf("expected used height 24, got %g", r.Height)
	}
}

func TestSplitNothingFitsWhenHoleTooShort(t *testing.T) {
	m := stubMetrics{perRune: 5}
	in := words(3, Style("paragraph"))
	r, err := Split(in, 100, 5, testFormats(), m)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	if len(r.Selected) != 0 || len(r.Remaining) != 3 {
		t.Fatalf("expected everything to remain, got sel=%d rem=%d", len(r.Selected), len(r.Remaining))
	}
}

func TestSplitForcedBreaks(t *testing.T) {
	m := stubMetrics{perRune: 5}
	p := Style("paragraph")
	in := []Token{Word("a", p), NewLine(p), Word("b", p), NewParagraph(p), NewLine(p), Word("c", p)}
	r, err := Split(in, 100, 100, testFormats(), m)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	want := []LineSpan{{0, 2}, {2, 4}, {4, 5}, {5, 6}}
	if !reflect.DeepEqual(r.Lines, want) {
		t.Fatalf("lines = %v, want %v", r.Lines, want)
	}
}

func TestSplitNewPageEndsConsumption(t *testing.T) {
	m := stubMetrics{perRune: 5}
	p := Style("paragraph")
	in := []Token{Word("a", p), Word("b", p), NewPage(p), Word("c", p), Word("d", p)}
	r, err := Split(in, 100, 1000, testFormats(), m)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	checkConservation(t, in, r)
	if len(r.Selected) != 3 {
		t.Fatalf("expected selection to end after new-page, got %d tokens", len(r.Selected))
	}
	if len(r.Remaining) != 2 || r.Remaining[0].Text != "c" {
		t.Fatalf("unexpected remaining %v", r.Remaining)
	}
}

func TestSplitMarkersExcludedFromWidth(t *testing.T) {
	m := stubMetrics{widths: map[string]float64{"item": 80}}
	b := Style("bullet")
	formats := testFormats()
	// indent 10：可用宽度 90，标记本身不计宽度
	in := []Token{Bullet(b), Word("item", b), NewParagraph(b)}
	r, err := Split(in, 100, 100, formats, m)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	if len(r.Lines) != 1 {
		t.Fatalf("expected marker and word on one line, got %v", r.Lines)
	}
}

func TestSplitIndentNarrowsLine(t *testing.T) {
	m := stubMetrics{widths: map[string]float64{"x": 45}}
	b := Style("bullet")
	in := []Token{Bullet(b), Word("x", b), Word("x", b)}
	// 缩进 10 后可用宽度 90，两个单词（空格宽 0）恰好放下
	r, err := Split(in, 100, 100, testFormats(), m)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	if len(r.Lines) != 1 {
		t.Fatalf("expected one line at exact fit, got %v", r.Lines)
	}
	r, err = Split(in, 99, 100, testFormats(), m)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	if len(r.Lines) != 2 {
		t.Fatalf("expected indent to force a wrap, got %v", r.Lines)
	}
}

func TestSplitMarkerMidLineStartsParagraph(t *testing.T) {
	m := stubMetrics{perRune: 1}
	p, n := Style("paragraph"), Style("number")
	in := []Token{Word("intro", p), Number(n, 0), Word("one", n)}
	r, err := Split(in, 1000, 1000, testFormats(), m)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	want := []LineSpan{{0, 1}, {1, 3}}
	if !reflect.DeepEqual(r.Lines, want) {
		t.Fatalf("lines = %v, want %v", r.Lines, want)
	}
}

func TestSplitReservesSpacing(t *testing.T) {
	formats := testFormats()
	f := formats["paragraph"]
	f.Spacing = Spacing{Paragraph: Gap{Above: 3, Below: 3}, Line: Gap{Above: 1, Below: 1}}
	formats["paragraph"] = f
	m := stubMetrics{perRune: 1}
	p := Style("paragraph")
	in := []Token{Word("a", p), NewParagraph(p), Word("b", p), NewParagraph(p), Word("c", p)}
	// 每行 14，每段 6：两段 = 40，三段 = 60
	r, err := Split(in, 100, 45, formats, m)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	if r.LineHeight != 14 {
		t.Fatalf("line height must include line spacing, got %g", r.LineHeight)
	}
	if len(r.Lines) != 2 || r.Height != 40 {
		t.Fatalf("expected 2 lines using 40pt, got %d lines using %g", len(r.Lines), r.Height)
	}
	if len(r.Remaining) != 1 {
		t.Fatalf("expected the third paragraph to remain, got %v", r.Remaining)
	}
}

func TestSplitUnknownFormat(t *testing.T) {
	m := stubMetrics{perRune: 1}
	in := []Token{Word("a", Style("paragraph")), Word("b", Style("missing"))}
	_, err := Split(in, 100, 100, testFormats(), m)
	if err == nil {
		t.Fatalf("expected UnknownFormat error")
	}
	var ufe *UnknownFormatError
	if !errors.As(err, &ufe) || ufe.Key != "missing" {
		t.Fatalf("expected UnknownFormatError for key missing, got %v", err)
	}
}

func TestSplitEmptyInput(t *testing.T) {
	r, err := Split(nil, 100, 100, testFormats(), stubMetrics{})
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	if len(r.Selected) != 0 || len(r.Remaining) != 0 || len(r.Lines) != 0 {
		t.Fatalf("expected empty result, got %+v", r)
	}
}

// mixedInput 构造一段混合了样式、标记与显式换行的 token 序列。
func mixedInput(n int) []Token {
	p, h, b := Style("paragraph"), Style("heading-1"), Style("bullet")
	var out []Token
	for i := 0; i < n; i++ {
		switch i % 11 {
		case 0:
			out = append(out, Word("Title", h), NewParagraph(h))
		case 3:
			out = append(out, Bullet(b), Word("item", b), NewParagraph(b))
		case 5:
			out = append(out, NewLine(p))
		case 7:
			out = append(out, Word(strings.Repeat("x", 30), p))
		default:
			out = append(out, Word(strings.Repeat("y", i%6+1), p.With(CharStyle(i%3))))
		}
	}
	return out
}

func TestSplitProperties(t *testing.T) {
	m := stubMetrics{perRune: 3, space: 2}
	formats := testFormats()
	in := mixedInput(120)
	for _, dims := range []struct{ w, h float64 }{{60, 40}, {100, 120}, {30, 500}, {200, 13}, {10, 10}} {
		r, err := Split(in, dims.w, dims.h, formats, m)
		if err != nil {
			t.Fatalf("Split(%v) error: %v", dims, err)
		}
		checkConservation(t, in, r)
		if float64(len(r.Lines))*r.LineHeight > dims.h+1e-9 {
			t.Fatalf("height bound violated for %v: %d lines × %g", dims, len(r.Lines), r.LineHeight)
		}
		if r.Height > dims.h+1e-9 {
			t.Fatalf("used height %g exceeds %g", r.Height, dims.h)
		}
		for _, span := range r.Lines {
			line := r.Selected[span.Start:span.End]
			if wordCount(line) > 1 && lineWidth(m, formats, line) > dims.w+1e-9 {
				t.Fatalf("width bound violated for %v in line %v", dims, line)
			}
		}
	}
}

func TestSplitResplitMatchesContinuousPass(t *testing.T) {
	m := stubMetrics{perRune: 3, space: 2}
	formats := testFormats()
	in := mixedInput(60)
	full, err := Split(in, 80, 1e9, formats, m)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	first, err := Split(in, 80, 60, formats, m)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	if len(first.Remaining) == 0 {
		t.Fatalf("test needs overflow to be meaningful")
	}
	second, err := Split(first.Remaining, 80, 1e9, formats, m)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	offset := len(first.Selected)
	tail := full.Lines[len(first.Lines):]
	if len(tail) != len(second.Lines) {
		t.Fatalf("re-split produced %d lines, continuous pass has %d", len(second.Lines), len(tail))
	}
	for i, span := range second.Lines {
		want := LineSpan{Start: tail[i].Start - offset, End: tail[i].End - offset}
		if span != want {
			t.Fatalf("line %d = %v, want %v", i, span, want)
		}
	}
}

func TestSplitProgressUntilExhausted(t *testing.T) {
	m := stubMetrics{perRune: 3, space: 2}
	formats := testFormats()
	rest := mixedInput(90)
	for steps := 0; len(rest) > 0; steps++ {
		if steps > len(mixedInput(90)) {
			t.Fatalf("splitting did not terminate")
		}
		r, err := Split(rest, 50, 40, formats, m)
		if err != nil {
			t.Fatalf("Split error: %v", err)
		}
		if len(r.Remaining) >= len(rest) {
			t.Fatalf("no progress at step %d", steps)
		}
		rest = r.Remaining
	}
}
