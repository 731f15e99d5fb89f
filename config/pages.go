package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/ByLCY/pagefill/fill"
)

// LoadPages 读取页面数据文件：一个 {template, locations, repeat} 列表。
func LoadPages(path string) ([]fill.PageData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read page data: %w", err)
	}
	pages, err := ParsePages(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pages, nil
}

// ParsePages 解码页面数据并检查每一页都指定了模板。
func ParsePages(data []byte) ([]fill.PageData, error) {
	var pages []fill.PageData
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&pages); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode page data: %w", err)
	}
	var err error
	for i, p := range pages {
		if p.Template == "" {
			err = multierr.Append(err, fmt.Errorf("page %d: template is required", i+1))
		}
		if len(p.Locations) == 0 {
			err = multierr.Append(err, fmt.Errorf("page %d: no locations", i+1))
		}
	}
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, errors.New("page data is empty")
	}
	return pages, nil
}
