package layout

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON 将合成描述输出为 JSON，便于调试或可视化。
func WriteDebugJSON(comp *Composition, path string) error {
	if comp == nil {
		return nil
	}
	data, err := json.MarshalIndent(comp, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
