package layout

import (
	"errors"
	"testing"

	"go.uber.org/multierr"
)

func TestAssembleGroupsParagraphsAndRuns(t *testing.T) {
	m := stubMetrics{perRune: 1, space: 1}
	p, h, b := Style("paragraph"), Style("heading-1"), Style("bullet")
	in := []Token{
		Word("Intro", h), NewParagraph(h),
		Word("plain", p), Word("bold", p.With(Bold)), Word("text", p.With(Bold)), Word("end", p), NewParagraph(p),
		Bullet(b), Word("first", b), NewParagraph(b),
	}
	r, err := Split(in, 1000, 1000, testFormats(), m)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	block, overflow, err := Assemble("body", r, testFormats())
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if overflow != nil {
		t.Fatalf("unexpected overflow %+v", overflow)
	}
	if len(block.Paragraphs) != 3 {
		t.Fatalf("expected 3 paragraphs, got %d", len(block.Paragraphs))
	}
	heading := block.Paragraphs[0]
	if heading.Format.Name != "heading-1" || !heading.Format.Bold() {
		t.Fatalf("unexpected heading format %+v", heading.Format)
	}
	body := block.Paragraphs[1]
	if len(body.Lines) != 1 {
		t.Fatalf("expected body on one line, got %d", len(body.Lines))
	}
	runs := body.Lines[0].Runs
	want := []string{"plain", " bold text", " end"}
	if len(runs) != len(want) {
		t.Fatalf("expected %d runs, got %+v", len(want), runs)
	}
	for i, run := range runs {
		if run.Text != want[i] {
			t.Fatalf("run %d = %q, want %q", i, run.Text, want[i])
		}
	}
	if !runs[1].Format.Bold() || runs[0].Format.Bold() {
		t.Fatalf("character style not applied to runs: %+v", runs)
	}
	list := block.Paragraphs[2]
	if list.Marker != "•" {
		t.Fatalf("expected bullet marker, got %q", list.Marker)
	}
	if list.Format.Indent != 10 {
		t.Fatalf("expected list indent, got %g", list.Format.Indent)
	}
}

func TestAssembleMarkerOnlyOnFirstLine(t *testing.T) {
	m := stubMetrics{perRune: 10}
	n := Style("number")
	in := []Token{Number(n, 2), Word("aaaa", n), Word("bbbb", n), Word("cccc", n)}
	r, err := Split(in, 60, 1000, testFormats(), m)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	block, _, err := Assemble("list", r, testFormats())
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if len(block.Paragraphs) != 1 {
		t.Fatalf("expected one paragraph, got %d", len(block.Paragraphs))
	}
	para := block.Paragraphs[0]
	if para.Marker != "3." {
		t.Fatalf("expected marker 3., got %q", para.Marker)
	}
	if len(para.Lines) != 3 {
		t.Fatalf("expected 3 wrapped lines, got %d", len(para.Lines))
	}
}

func TestAssembleReportsOverflow(t *testing.T) {
	m := stubMetrics{perRune: 5}
	in := words(20, Style("paragraph"))
	r, err := Split(in, 100, 30, testFormats(), m)
	if err != nil {
		t.Fatalf("Split error: %v", err)
	}
	block, overflow, err := Assemble("story", r, testFormats())
	if err != nil {
		t.Fatalf("Assemble error: %v", err)
	}
	if overflow == nil || overflow.Hole != "story" {
		t.Fatalf("expected overflow for hole story, got %+v", overflow)
	}
	if len(overflow.Tokens) != 8 {
		t.Fatalf("expected 8 overflow tokens, got %d", len(overflow.Tokens))
	}
	if block.LineHeight != 12 {
		t.Fatalf("block must carry the hole line height, got %g", block.LineHeight)
	}
}

func TestMarkerCustomNumbering(t *testing.T) {
	f := Format{List: &ListFormat{Type: ListNumber, Numbering: []string{"a)", "b)"}}}
	if got := f.Marker(Number(Style("number"), 1)); got != "b)" {
		t.Fatalf("custom numbering = %q, want b)", got)
	}
	if got := f.Marker(Number(Style("number"), 5)); got != "6." {
		t.Fatalf("numbering beyond custom list = %q, want 6.", got)
	}
}

func TestResolveMergesCharacterStyle(t *testing.T) {
	formats := testFormats()
	f, err := formats.Resolve(Style("heading-1").With(Italic))
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if f.Style != "BI" {
		t.Fatalf("expected style-set BI, got %q", f.Style)
	}
	if _, err := formats.Resolve(Style("nope")); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestFormatTableValidate(t *testing.T) {
	if err := testFormats().Validate(); err != nil {
		t.Fatalf("valid table rejected: %v", err)
	}
	bad := FormatTable{
		"a": {Font: "", Size: 0},
		"b": {Font: "body", Size: 10, List: &ListFormat{Type: ListBullet}},
		"c": {Font: "body", Size: 10, Style: "X"},
	}
	err := bad.Validate()
	if err == nil {
		t.Fatalf("expected validation errors")
	}
	if n := len(multierr.Errors(err)); n != 4 {
		t.Fatalf("expected 4 aggregated errors, got %d: %v", n, err)
	}
}

func TestFormatTableRequire(t *testing.T) {
	err := testFormats().Require("paragraph", "heading-2", "heading-3")
	if n := len(multierr.Errors(err)); n != 2 {
		t.Fatalf("expected 2 missing keys, got %d: %v", n, err)
	}
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
