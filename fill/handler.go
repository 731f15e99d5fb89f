package fill

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/ByLCY/pagefill/binding"
	"github.com/ByLCY/pagefill/layout"
	"github.com/ByLCY/pagefill/markup"
	"github.com/ByLCY/pagefill/renderer"
)

// Handler 填充一种类型的洞。返回的 Contents 为未能放下、需要带到溢出页
// 同名洞中的内容；全部放下时返回 nil。
type Handler interface {
	Fill(ctx context.Context, hole layout.Hole, c Contents, fc *Context) (*Contents, error)
}

// HandlerFunc 让普通函数满足 Handler。
type HandlerFunc func(ctx context.Context, hole layout.Hole, c Contents, fc *Context) (*Contents, error)

func (f HandlerFunc) Fill(ctx context.Context, hole layout.Hole, c Contents, fc *Context) (*Contents, error) {
	return f(ctx, hole, c, fc)
}

// Registry 按洞类型查找处理器。
type Registry struct {
	handlers map[layout.HoleType]Handler
}

// NewRegistry 返回注册了 image、text、text-parsed 三种内置处理器的表。
func NewRegistry() *Registry {
	r := &Registry{handlers: map[layout.HoleType]Handler{}}
	r.Register(layout.HoleImage, HandlerFunc(fillImage))
	r.Register(layout.HoleText, textHandler(false))
	r.Register(layout.HoleTextParsed, textHandler(true))
	return r
}

// Register 注册或替换某个洞类型的处理器。
func (r *Registry) Register(t layout.HoleType, h Handler) {
	r.handlers[t] = h
}

// Lookup 返回洞类型的处理器，未注册时返回 ErrNoHandler。
func (r *Registry) Lookup(t layout.HoleType) (Handler, error) {
	if r != nil {
		if h, ok := r.handlers[t]; ok {
			return h, nil
		}
	}
	return nil, fmt.Errorf("%w %q", ErrNoHandler, t)
}

// Types 返回已注册的洞类型。
func (r *Registry) Types() []layout.HoleType {
	out := make([]layout.HoleType, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func textHandler(parsed bool) HandlerFunc {
	return func(ctx context.Context, hole layout.Hole, c Contents, fc *Context) (*Contents, error) {
		tokens, err := holeTokens(hole, c, fc, parsed)
		if err != nil {
			return nil, err
		}
		if len(tokens) == 0 {
			return nil, nil
		}
		res, err := layout.Split(tokens, hole.Width, hole.Height, fc.Formats, fc.Metrics)
		if err != nil {
			return nil, fmt.Errorf("hole %q: %w", hole.Name, err)
		}
		block, overflow, err := layout.Assemble(hole.Name, res, fc.Formats)
		if err != nil {
			return nil, fmt.Errorf("hole %q: %w", hole.Name, err)
		}
		if err := renderer.DrawBlock(fc.Doc, hole, block, fc.Metrics); err != nil {
			return nil, fmt.Errorf("hole %q: %w", hole.Name, err)
		}

		fc.logger().Debug("Hole filled",
			zap.String("hole", hole.Name),
			zap.Int("selected", len(res.Selected)),
			zap.Int("remaining", len(res.Remaining)),
			zap.Float64("height", res.Height))
		fc.Record(HoleReport{
			Hole:      hole.Name,
			Type:      hole.Type,
			Selected:  len(res.Selected),
			Remaining: len(res.Remaining),
			Height:    res.Height,
			Block:     &block,
		})

		if overflow == nil {
			return nil, nil
		}
		return &Contents{Tokens: overflow.Tokens}, nil
	}
}

// holeTokens 优先使用溢出携带的 token，否则对文字做数据绑定后再切分。
func holeTokens(hole layout.Hole, c Contents, fc *Context, parsed bool) ([]layout.Token, error) {
	if len(c.Tokens) > 0 {
		return c.Tokens, nil
	}
	text := binding.Interpolate(c.Text, fc.Data)
	key := holeFormatKey(hole)
	if !parsed {
		return markup.Plain(text, key), nil
	}
	tokens, err := markup.Tokenize(text, markup.Options{ParagraphKey: key, NumberBase: fc.NumberBase})
	if err != nil {
		return nil, fmt.Errorf("hole %q: %w", hole.Name, err)
	}
	return tokens, nil
}
