package fill

import (
	"bytes"
	"encoding/json"

	"github.com/natefinch/atomic"
)

// WriteDebugJSON 将填充报告（每页每洞的段落、行与溢出）输出为 JSON，便于调试或可视化。
func WriteDebugJSON(report *Report, path string) error {
	if report == nil {
		return nil
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(path, bytes.NewReader(data))
}
