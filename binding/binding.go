package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// exprPattern 匹配 ${path} 与 ${path|default}。
var exprPattern = regexp.MustCompile(`\$\{([^}|]+)(?:\|([^}]*))?\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 路径不存在时使用 | 后的默认值；没有默认值则保留原占位符。
func Interpolate(text string, data any) string {
	out, _ := interpolate(text, data, false)
	return out
}

// InterpolateStrict 与 Interpolate 相同，但路径不存在且无默认值时返回错误。
func InterpolateStrict(text string, data any) (string, error) {
	return interpolate(text, data, true)
}

func interpolate(text string, data any, strict bool) (string, error) {
	if !strings.Contains(text, "${") {
		return text, nil
	}
	var missing []string
	out := exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		path := strings.TrimSpace(groups[1])
		hasDefault := strings.Contains(match, "|")
		if val, ok := Lookup(data, path); ok && val != nil {
			return fmt.Sprint(val)
		}
		if hasDefault {
			return groups[2]
		}
		missing = append(missing, path)
		return match
	})
	if strict && len(missing) > 0 {
		return out, fmt.Errorf("binding: 数据中不存在路径 %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// Lookup 按 a.b[0].c 形式的路径在 JSON 解码出的数据中取值。
func Lookup(data any, path string) (any, bool) {
	if data == nil || path == "" {
		return nil, false
	}
	current := data
	for _, segment := range strings.Split(path, ".") {
		name, indexes, ok := parseSegment(segment)
		if !ok {
			return nil, false
		}
		if name != "" {
			m, isMap := current.(map[string]any)
			if !isMap {
				return nil, false
			}
			if current, ok = m[name]; !ok {
				return nil, false
			}
		}
		for _, idx := range indexes {
			arr, isArr := current.([]any)
			if !isArr || idx < 0 || idx >= len(arr) {
				return nil, false
			}
			current = arr[idx]
		}
	}
	return current, true
}

// parseSegment 拆出 name[1][2] 中的名称与下标。
func parseSegment(segment string) (string, []int, bool) {
	i := strings.IndexByte(segment, '[')
	if i == -1 {
		return segment, nil, true
	}
	name, rest := segment[:i], segment[i:]
	var indexes []int
	for rest != "" {
		end := strings.IndexByte(rest, ']')
		if rest[0] != '[' || end == -1 {
			return "", nil, false
		}
		idx, err := strconv.Atoi(rest[1:end])
		if err != nil {
			return "", nil, false
		}
		indexes = append(indexes, idx)
		rest = rest[end+1:]
	}
	return name, indexes, true
}
