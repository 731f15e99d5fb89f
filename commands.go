package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ByLCY/pagefill/config"
	"github.com/ByLCY/pagefill/fill"
	"github.com/ByLCY/pagefill/renderer"
	canvasrenderer "github.com/ByLCY/pagefill/renderer/canvas"
)

var errNoConfig = errors.New("configuration is required (--config FILE)")

// newFillContext 根据配置构建字体、模板与填充上下文。
func newFillContext(cfg *config.Config, fonts *canvasrenderer.Fonts, doc renderer.Document) (*fill.Context, error) {
	formats, err := cfg.FormatTable()
	if err != nil {
		return nil, err
	}
	templates, err := cfg.TemplateSet()
	if err != nil {
		return nil, err
	}
	fc, err := fill.NewContext(formats, canvasrenderer.NewMetrics(fonts), templates, doc)
	if err != nil {
		return nil, err
	}
	fc.MaxDPI = cfg.Render.MaxDPI
	fc.NumberBase = cfg.Render.NumberBase
	return fc, nil
}

func runFill(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if env.Cfg == nil {
		return errNoConfig
	}
	pagesPath := cmd.String("pages")
	pages, err := config.LoadPages(pagesPath)
	if err != nil {
		return err
	}
	data, err := parseData(cmd.String("data"))
	if err != nil {
		return err
	}

	fonts := canvasrenderer.NewFonts(env.Cfg.BaseDir, env.Cfg.FontResources())
	doc := canvasrenderer.NewDocument(fonts, env.Cfg.DocumentInfo())
	fc, err := newFillContext(env.Cfg, fonts, doc)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	fc.Log = env.Log
	fc.Data = data
	fc.BaseDir = filepath.Dir(pagesPath)

	pdf, report, err := fill.Generate(ctx, pages, fc)
	if err != nil {
		return fmt.Errorf("生成 PDF 失败: %w", err)
	}
	out := cmd.String("out")
	if err := atomic.WriteFile(out, bytes.NewReader(pdf)); err != nil {
		return fmt.Errorf("unable to write %s: %w", out, err)
	}
	if path := cmd.String("debug"); path != "" {
		if err := fill.WriteDebugJSON(report, path); err != nil {
			return fmt.Errorf("unable to write debug layout: %w", err)
		}
		env.Log.Info("Layout debug written", zap.String("file", path))
	}
	env.Log.Info("PDF generated",
		zap.String("file", out),
		zap.Int("pages", len(report.Pages)),
		zap.Int("discarded", len(report.Discarded)))
	return nil
}

// parseData 解析 --data：内联 JSON，或以 @ 开头的 JSON 文件路径。
func parseData(value string) (any, error) {
	if value == "" {
		return nil, nil
	}
	raw := []byte(value)
	if path, ok := strings.CutPrefix(value, "@"); ok {
		var err error
		if raw, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("unable to read data: %w", err)
		}
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("解析 data JSON 失败: %w", err)
	}
	return data, nil
}

func runCheck(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if env.Cfg == nil {
		return errNoConfig
	}
	fonts := canvasrenderer.NewFonts(env.Cfg.BaseDir, env.Cfg.FontResources())
	fc, err := newFillContext(env.Cfg, fonts, &renderer.Recorder{})
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	err = fonts.Preload(fc.Formats)
	err = multierr.Append(err, checkHoleTypes(fc))
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	env.Log.Info("Configuration is valid",
		zap.Int("formats", len(fc.Formats)),
		zap.Int("templates", len(env.Cfg.Templates)))
	return nil
}

// checkHoleTypes 报告没有注册处理器的洞类型。
func checkHoleTypes(fc *fill.Context) error {
	lister, ok := fc.Templates.(fill.Lister)
	if !ok {
		return nil
	}
	var err error
	for _, name := range lister.Names() {
		tpl, terr := fc.Templates.Template(name)
		if terr != nil {
			err = multierr.Append(err, terr)
			continue
		}
		for _, h := range tpl.Holes {
			if _, herr := fc.Handlers.Lookup(h.Type); herr != nil {
				err = multierr.Append(err, fmt.Errorf("template %q hole %q: %w", name, h.Name, herr))
			}
		}
	}
	return err
}

func outputConfiguration(ctx context.Context, cmd *cli.Command) error {
	env := envFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}
	fname := cmd.Args().Get(0)
	if fname == "" {
		_, err := os.Stdout.Write(config.Sample)
		return err
	}
	if err := atomic.WriteFile(fname, bytes.NewReader(config.Sample)); err != nil {
		return fmt.Errorf("unable to write configuration: %w", err)
	}
	env.Log.Info("Sample configuration written", zap.String("file", fname))
	return nil
}
