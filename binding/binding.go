package binding

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// 占位符形如 ${path.to.value}，路径语法与 Resolve 一致。
var placeholderPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path} 占位符替换为 data 内对应的值。
// data 为 nil 或路径取不到值时，占位符原样保留。
func Interpolate(text string, data any) string {
	if data == nil {
		return text
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		path := strings.TrimSpace(match[2 : len(match)-1])
		if path == "" {
			return match
		}
		if val, ok := lookup(data, path); ok {
			return fmt.Sprint(val)
		}
		return match
	})
}

// Resolve 按路径从 data 中取值，语法与占位符一致。
// 空路径返回 data 本身。
func Resolve(data any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}
	if strings.TrimSpace(path) == "" {
		return data, true
	}
	return lookup(data, path)
}

// TableData 表示从外部 JSON 解析出的表格内容。
type TableData struct {
	Columns []string   // 表头，可为空
	Rows    [][]string // 正文行
}

// ResolveTable 将取到的值整理为表格内容。
// 支持两种形态：单纯的二维字符串数组，以及 {"columns": [...], "data": [[...]]}。
func ResolveTable(value any) (TableData, bool) {
	switch v := value.(type) {
	case map[string]interface{}:
		td := TableData{}
		if cols, ok := v["columns"]; ok {
			td.Columns = toStringSlice(cols)
		}
		if rows, ok := v["data"]; ok {
			td.Rows = toRows(rows)
		}
		if td.Columns == nil && td.Rows == nil {
			return TableData{}, false
		}
		return td, true
	case []interface{}:
		rows := toRows(value)
		if rows == nil {
			return TableData{}, false
		}
		return TableData{Rows: rows}, true
	default:
		return TableData{}, false
	}
}

func toRows(value any) [][]string {
	arr, ok := value.([]interface{})
	if !ok {
		return nil
	}
	rows := make([][]string, 0, len(arr))
	for _, item := range arr {
		cells, ok := item.([]interface{})
		if !ok {
			return nil
		}
		row := make([]string, 0, len(cells))
		for _, cell := range cells {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows
}

func toStringSlice(value any) []string {
	arr, ok := value.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, item := range arr {
		out = append(out, fmt.Sprint(item))
	}
	return out
}

// lookup 沿点号路径逐段下钻。段内允许连续下标，如 rows[0][1]。
func lookup(data any, path string) (any, bool) {
	current := data
	for _, seg := range strings.Split(path, ".") {
		key := seg
		var idxs []int
		if br := strings.IndexByte(seg, '['); br >= 0 {
			var ok bool
			if idxs, ok = parseIndexes(seg[br:]); !ok {
				return nil, false
			}
			key = seg[:br]
		}
		if key != "" {
			m, ok := current.(map[string]interface{})
			if !ok {
				return nil, false
			}
			if current, ok = m[key]; !ok {
				return nil, false
			}
		}
		for _, idx := range idxs {
			arr, ok := current.([]interface{})
			if !ok || idx < 0 || idx >= len(arr) {
				return nil, false
			}
			current = arr[idx]
		}
	}
	return current, true
}

// parseIndexes 解析形如 [0][1] 的下标串，任何多余字符都视为路径非法。
func parseIndexes(s string) ([]int, bool) {
	var out []int
	for s != "" {
		if s[0] != '[' {
			return nil, false
		}
		end := strings.IndexByte(s, ']')
		if end < 0 {
			return nil, false
		}
		n, err := strconv.Atoi(s[1:end])
		if err != nil {
			return nil, false
		}
		out = append(out, n)
		s = s[end+1:]
	}
	return out, true
}
