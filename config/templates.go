package config

import (
	"fmt"
	"sort"

	"github.com/ByLCY/pagefill/fill"
	"github.com/ByLCY/pagefill/layout"
)

// TemplateSet 是由配置构建的模板仓库。
type TemplateSet struct {
	byName map[string]*layout.Template
}

var (
	_ fill.Repository = (*TemplateSet)(nil)
	_ fill.Lister     = (*TemplateSet)(nil)
)

// TemplateSet 把配置中的模板转换为 pt 单位的 layout.Template。
func (c *Config) TemplateSet() (*TemplateSet, error) {
	set := &TemplateSet{byName: make(map[string]*layout.Template, len(c.Templates))}
	for _, tc := range c.Templates {
		w, h, err := tc.pageSize()
		if err != nil {
			return nil, fmt.Errorf("template %q: %w", tc.Name, err)
		}
		tpl := &layout.Template{Name: tc.Name, Width: w, Height: h, Overflow: tc.Overflow}
		for _, hc := range tc.Holes {
			tpl.Holes = append(tpl.Holes, layout.Hole{
				Name:     hc.Name,
				Type:     layout.HoleType(hc.Type),
				X:        hc.X.Pt(),
				Y:        hc.Y.Pt(),
				Width:    hc.Width.Pt(),
				Height:   hc.Height.Pt(),
				Priority: hc.Priority,
				Format:   hc.Format,
			})
		}
		set.byName[tc.Name] = tpl
	}
	return set, nil
}

func (s *TemplateSet) Template(name string) (*layout.Template, error) {
	tpl, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", fill.ErrUnknownTemplate, name)
	}
	return tpl, nil
}

func (s *TemplateSet) Names() []string {
	names := make([]string, 0, len(s.byName))
	for k := range s.byName {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
