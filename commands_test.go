package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ByLCY/pagefill/config"
	"github.com/ByLCY/pagefill/fill"
	"github.com/ByLCY/pagefill/renderer"
	canvasrenderer "github.com/ByLCY/pagefill/renderer/canvas"
)

func sampleConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Parse(config.Sample)
	if err != nil {
		t.Fatalf("sample config: %v", err)
	}
	return cfg
}

func TestGenerateSampleDocument(t *testing.T) {
	cfg := sampleConfig(t)
	fonts := canvasrenderer.NewFonts(".", cfg.FontResources())
	doc := canvasrenderer.NewDocument(fonts, cfg.DocumentInfo())
	fc, err := newFillContext(cfg, fonts, doc)
	if err != nil {
		t.Fatalf("newFillContext error: %v", err)
	}
	fc.Log = zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	fc.Data = map[string]any{"number": "42"}

	var body strings.Builder
	body.WriteString("<h1>Terms</h1>")
	for i := 0; i < 120; i++ {
		body.WriteString("<p>Paragraph with <b>several</b> words that will need to wrap across the hole width.</p>")
	}
	body.WriteString("<ul><li>first</li><li>second</li></ul>")
	pages := []fill.PageData{{
		Template: "letter",
		Locations: map[string]fill.Contents{
			"title": {Text: "Invoice ${number}"},
			"body":  {Text: body.String()},
		},
		Repeat: map[string]fill.Contents{"footer": {Text: "ACME Ltd."}},
	}}

	pdf, report, err := fill.Generate(context.Background(), pages, fc)
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if len(report.Pages) < 2 {
		t.Fatalf("expected body to overflow onto continuation pages, got %d page(s)", len(report.Pages))
	}
	for _, p := range report.Pages[1:] {
		if p.Template != "continuation" {
			t.Fatalf("overflow pages must use the continuation template, got %s", p.Template)
		}
	}
	if len(report.Discarded) != 0 {
		t.Fatalf("nothing should be discarded: %+v", report.Discarded)
	}

	out := filepath.Join(t.TempDir(), "layout.json")
	if err := fill.WriteDebugJSON(report, out); err != nil {
		t.Fatalf("WriteDebugJSON error: %v", err)
	}
	if data, err := os.ReadFile(out); err != nil || !bytes.Contains(data, []byte(`"continuation"`)) {
		t.Fatalf("unexpected debug output: %v", err)
	}
}

func TestCheckHoleTypes(t *testing.T) {
	cfg := sampleConfig(t)
	cfg.Templates[0].Holes[0].Type = "barcode"
	fonts := canvasrenderer.NewFonts(".", cfg.FontResources())
	fc, err := newFillContext(cfg, fonts, &renderer.Recorder{})
	if err != nil {
		t.Fatalf("newFillContext error: %v", err)
	}
	err = checkHoleTypes(fc)
	if err == nil || !strings.Contains(err.Error(), `"barcode"`) {
		t.Fatalf("expected unknown hole type to be reported, got %v", err)
	}
	if err := fonts.Preload(fc.Formats); err != nil {
		t.Fatalf("sample fonts must load: %v", err)
	}
}

func TestParseData(t *testing.T) {
	v, err := parseData(`{"a":[1,2]}`)
	if err != nil {
		t.Fatalf("parseData error: %v", err)
	}
	if m, ok := v.(map[string]any); !ok || len(m["a"].([]any)) != 2 {
		t.Fatalf("unexpected data %#v", v)
	}
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(`{"name":"Ada"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if v, err := parseData("@" + path); err != nil || v.(map[string]any)["name"] != "Ada" {
		t.Fatalf("parseData @file = %v, %v", v, err)
	}
	if _, err := parseData("{broken"); err == nil {
		t.Fatalf("expected error for malformed JSON")
	}
	if v, err := parseData(""); err != nil || v != nil {
		t.Fatalf("empty data should be nil")
	}
}
