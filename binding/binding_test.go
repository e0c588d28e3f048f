package binding_test

import (
	"encoding/json"
	"testing"

	"github.com/Luo-mary/fresco/binding"
)

// sampleDoc 模拟 json.Unmarshal 之后的数据文档。
func sampleDoc(t *testing.T) any {
	t.Helper()
	const raw = `{
		"title": "春季促销",
		"promo": {"url": "https://example.com/p/42"},
		"rows": [["尺寸", "300x168"], ["价格", "¥ 99"]],
		"table": {"columns": ["项目", "说明"], "data": [["A", "1"], ["B", "2"]]}
	}`
	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("unmarshal sample doc: %v", err)
	}
	return doc
}

func TestInterpolate(t *testing.T) {
	doc := sampleDoc(t)

	if got := binding.Interpolate("活动：${title}", doc); got != "活动：春季促销" {
		t.Fatalf("interpolate title, got %q", got)
	}
	if got := binding.Interpolate("${promo.url}", doc); got != "https://example.com/p/42" {
		t.Fatalf("interpolate nested path, got %q", got)
	}
	if got := binding.Interpolate("${rows[0][1]}", doc); got != "300x168" {
		t.Fatalf("interpolate indexed path, got %q", got)
	}
	// 路径不存在时保留原占位符
	if got := binding.Interpolate("${missing.key}", doc); got != "${missing.key}" {
		t.Fatalf("missing path should keep placeholder, got %q", got)
	}
	if got := binding.Interpolate("纯文本", nil); got != "纯文本" {
		t.Fatalf("nil data should return text unchanged, got %q", got)
	}
}

func TestResolve(t *testing.T) {
	doc := sampleDoc(t)

	if _, ok := binding.Resolve(nil, "rows"); ok {
		t.Fatalf("resolve with nil data should fail")
	}
	// 空路径返回文档本身
	if val, ok := binding.Resolve(doc, ""); !ok || val == nil {
		t.Fatalf("empty path should return the document")
	}
	val, ok := binding.Resolve(doc, "table.columns")
	if !ok {
		t.Fatalf("resolve table.columns failed")
	}
	cols, ok := val.([]interface{})
	if !ok || len(cols) != 2 {
		t.Fatalf("unexpected columns value: %#v", val)
	}
}

func TestResolveTableBareRows(t *testing.T) {
	doc := sampleDoc(t)
	val, ok := binding.Resolve(doc, "rows")
	if !ok {
		t.Fatalf("resolve rows failed")
	}

	td, ok := binding.ResolveTable(val)
	if !ok {
		t.Fatalf("resolve bare rows failed")
	}
	if len(td.Columns) != 0 {
		t.Fatalf("bare rows should not carry columns, got %v", td.Columns)
	}
	if len(td.Rows) != 2 || td.Rows[0][0] != "尺寸" || td.Rows[1][1] != "¥ 99" {
		t.Fatalf("unexpected rows: %v", td.Rows)
	}
}

func TestResolveTableColumnsData(t *testing.T) {
	doc := sampleDoc(t)
	val, ok := binding.Resolve(doc, "table")
	if !ok {
		t.Fatalf("resolve table failed")
	}

	td, ok := binding.ResolveTable(val)
	if !ok {
		t.Fatalf("resolve columns/data shape failed")
	}
	if len(td.Columns) != 2 || td.Columns[0] != "项目" {
		t.Fatalf("unexpected columns: %v", td.Columns)
	}
	if len(td.Rows) != 2 || td.Rows[1][0] != "B" {
		t.Fatalf("unexpected rows: %v", td.Rows)
	}
}

func TestResolveTableRejectsScalars(t *testing.T) {
	if _, ok := binding.ResolveTable("not a table"); ok {
		t.Fatalf("scalar should not resolve as table")
	}
	if _, ok := binding.ResolveTable(map[string]interface{}{"other": 1}); ok {
		t.Fatalf("map without columns/data should not resolve as table")
	}
	// 行内元素不是数组时判定失败
	if _, ok := binding.ResolveTable([]interface{}{"flat"}); ok {
		t.Fatalf("rows of scalars should not resolve as table")
	}
}
