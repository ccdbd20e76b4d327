package Transformer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/GrainArc/SampleMap/models"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "classes.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadClassCSV(t *testing.T) {
	path := writeCSV(t, "ID,LULC_Type,color_palette\n1,Water,#0000FF\n2,Forest,#008000\n")
	rows, err := ReadClassCSV(path)
	if err != nil {
		t.Fatalf("ReadClassCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("行数不符: %d", len(rows))
	}
	if rows[0].ID != 1 || rows[0].Name != "Water" || rows[0].Color != "#0000FF" {
		t.Fatalf("首行不符: %+v", rows[0])
	}
	// 行序必须与文件一致
	if rows[1].Name != "Forest" {
		t.Fatalf("行序不符: %+v", rows)
	}
}

func TestReadClassCSVWithBOM(t *testing.T) {
	path := writeCSV(t, "\xEF\xBB\xBFID,LULC_Type,color_palette\n1,Water,#0000FF\n")
	rows, err := ReadClassCSV(path)
	if err != nil {
		t.Fatalf("带BOM的CSV应能解析: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Water" {
		t.Fatalf("解析结果不符: %+v", rows)
	}
}

func TestReadClassCSVMissingColumn(t *testing.T) {
	path := writeCSV(t, "ID,LULC_Type\n1,Water\n")
	_, err := ReadClassCSV(path)
	if err == nil {
		t.Fatal("缺列应报错")
	}
	if _, ok := err.(*models.ConfigError); !ok {
		t.Fatalf("错误类型应为ConfigError: %T", err)
	}
}

func TestReadClassCSVBadRow(t *testing.T) {
	path := writeCSV(t, "ID,LULC_Type,color_palette\n1,Water,#0000FF\nxx,Forest,#008000\n")
	_, err := ReadClassCSV(path)
	cfgErr, ok := err.(*models.ConfigError)
	if !ok {
		t.Fatalf("错误类型应为ConfigError: %T %v", err, err)
	}
	// 第3行(文件行号)的ID无法解析
	if len(cfgErr.Rows) != 1 || cfgErr.Rows[0] != 3 {
		t.Fatalf("应报出文件第3行: %v", cfgErr.Rows)
	}
}

func TestReadClassCSVMissingFile(t *testing.T) {
	if _, err := ReadClassCSV(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("文件不存在应报错")
	}
}
