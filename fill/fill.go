package fill

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ByLCY/pagefill/layout"
)

// Report 汇总一次填充的结果。
type Report struct {
	RunID     string       `json:"runId"`
	Pages     []PageReport `json:"pages"`
	Discarded []Discard    `json:"discarded,omitempty"`
}

// PageReport 记录一页使用的模板与各洞的填充情况。
type PageReport struct {
	Index    int          `json:"index"`
	Template string       `json:"template"`
	Overflow bool         `json:"overflow,omitempty"` // 由溢出产生的页
	Holes    []HoleReport `json:"holes"`
}

// HoleReport 记录一个洞的填充结果，文字洞带 Block，图片洞带 Placement。
type HoleReport struct {
	Hole      string          `json:"hole"`
	Type      layout.HoleType `json:"type"`
	Selected  int             `json:"selected,omitempty"`
	Remaining int             `json:"remaining,omitempty"`
	Height    float64         `json:"height,omitempty"`
	Block     *layout.Block   `json:"block,omitempty"`
	Image     *Placement      `json:"image,omitempty"`
}

// Placement 是图片在页面上的绘制区域（pt）。
type Placement struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// 溢出内容被丢弃的原因。
const (
	ReasonNoOverflowTemplate = "no-overflow-template"
	ReasonNoMatchingHole     = "no-matching-hole"
	ReasonNoProgress         = "no-progress"
	ReasonRepeated           = "overridden-by-repeat"
)

// Discard 记录一段被永久丢弃的溢出内容。
type Discard struct {
	Page     int    `json:"page"`
	Template string `json:"template"`
	Hole     string `json:"hole"`
	Tokens   int    `json:"tokens"`
	Reason   string `json:"reason"`
}

// work 是待填充的一页；carried 记录从上一页带入的各洞 token 数。
type work struct {
	data     PageData
	carried  map[string]int
	overflow bool
}

// FillPages 按顺序填充 pages，并把每页放不下的内容级联到溢出模板的同名洞中，
// 直到内容耗尽或没有溢出目标。
//
// 级联逐页迭代：溢出页在当前页之后、下一个调用方页之前处理。
// 携带内容的洞如果在溢出页上没有任何进展（剩余 token 数未减少），其内容
// 会被丢弃，从而保证级联一定终止。丢弃不是错误，会记入 Report.Discarded。
// 找不到模板或处理器是致命错误，此时不返回部分结果。
func FillPages(ctx context.Context, pages []PageData, fc *Context) (*Report, error) {
	if fc == nil {
		return nil, errors.New("fill: context is required")
	}
	runID := uuid.NewString()
	log := fc.logger().With(zap.String("run", runID))
	report := &Report{RunID: runID}

	// 溢出页总是紧接着产生它的页处理，因此最多只有一个待处理的溢出页。
	var pending *work
	next := 0
	for pending != nil || next < len(pages) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var w work
		if pending != nil {
			w, pending = *pending, nil
		} else {
			w = work{data: pages[next]}
			next++
		}

		tpl, err := fc.Templates.Template(w.data.Template)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", len(report.Pages)+1, err)
		}
		page := PageReport{Index: len(report.Pages), Template: tpl.Name, Overflow: w.overflow}
		overflow, err := fc.fillPage(ctx, tpl, w.data.Locations, &page, log)
		if err != nil {
			return nil, fmt.Errorf("page %d (%s): %w", page.Index+1, tpl.Name, err)
		}
		report.Pages = append(report.Pages, page)
		log.Info("Page filled",
			zap.Int("page", page.Index+1),
			zap.String("template", tpl.Name),
			zap.Int("overflow", len(overflow)))

		if len(overflow) == 0 {
			continue
		}
		discard := func(hole string, tokens int, reason string) {
			report.Discarded = append(report.Discarded, Discard{
				Page: page.Index, Template: tpl.Name, Hole: hole, Tokens: tokens, Reason: reason,
			})
			log.Warn("Overflow discarded",
				zap.Int("page", page.Index+1),
				zap.String("hole", hole),
				zap.Int("tokens", tokens),
				zap.String("reason", reason))
		}
		if tpl.Overflow == "" {
			for _, name := range sortedKeys(overflow) {
				discard(name, len(overflow[name].Tokens), ReasonNoOverflowTemplate)
			}
			continue
		}
		target, err := fc.Templates.Template(tpl.Overflow)
		if err != nil {
			return nil, fmt.Errorf("page %d (%s): overflow: %w", page.Index+1, tpl.Name, err)
		}

		locations := map[string]Contents{}
		carried := map[string]int{}
		for _, name := range sortedKeys(overflow) {
			c := overflow[name]
			n := len(c.Tokens)
			switch {
			case !hasHole(target, name):
				discard(name, n, ReasonNoMatchingHole)
			case w.carried != nil && w.carried[name] > 0 && n >= w.carried[name]:
				discard(name, n, ReasonNoProgress)
			default:
				if _, repeated := w.data.Repeat[name]; repeated {
					discard(name, n, ReasonRepeated)
					continue
				}
				locations[name] = c
				carried[name] = n
			}
		}
		if len(carried) == 0 {
			continue
		}
		for name, c := range w.data.Repeat {
			if hasHole(target, name) {
				locations[name] = c
			}
		}
		pending = &work{
			data:     PageData{Template: target.Name, Locations: locations, Repeat: w.data.Repeat},
			carried:  carried,
			overflow: true,
		}
	}
	return report, nil
}

// fillPage 按优先级升序（同优先级按名称）填充模板上的洞，返回各洞的剩余内容。
func (fc *Context) fillPage(ctx context.Context, tpl *layout.Template, locations map[string]Contents, page *PageReport, log *zap.Logger) (map[string]Contents, error) {
	if err := fc.Doc.BeginPage(tpl.Width, tpl.Height); err != nil {
		return nil, err
	}
	fc.page = page
	defer func() { fc.page = nil }()

	for name := range locations {
		if !hasHole(tpl, name) {
			log.Warn("Location has no matching hole", zap.String("template", tpl.Name), zap.String("hole", name))
		}
	}

	overflow := map[string]Contents{}
	for _, hole := range orderedHoles(tpl.Holes) {
		c, ok := locations[hole.Name]
		if !ok || c.Empty() {
			continue
		}
		h, err := fc.Handlers.Lookup(hole.Type)
		if err != nil {
			return nil, fmt.Errorf("hole %q: %w", hole.Name, err)
		}
		rest, err := h.Fill(ctx, hole, c, fc)
		if err != nil {
			return nil, err
		}
		if rest != nil && !rest.Empty() {
			overflow[hole.Name] = *rest
		}
	}
	if err := fc.Doc.EndPage(); err != nil {
		return nil, err
	}
	return overflow, nil
}

// Generate 填充全部页面并返回文档的最终字节。
func Generate(ctx context.Context, pages []PageData, fc *Context) ([]byte, *Report, error) {
	report, err := FillPages(ctx, pages, fc)
	if err != nil {
		return nil, nil, err
	}
	data, err := fc.Doc.Finish()
	if err != nil {
		return nil, nil, err
	}
	return data, report, nil
}

func orderedHoles(holes []layout.Hole) []layout.Hole {
	out := append([]layout.Hole(nil), holes...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func hasHole(tpl *layout.Template, name string) bool {
	_, ok := tpl.Hole(name)
	return ok
}

func sortedKeys(m map[string]Contents) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
