package methods

import (
	"os"
	"path/filepath"
	"testing"
)

func TestZipFolderAndUnzip(t *testing.T) {
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "out")
	if err := os.MkdirAll(srcDir, os.ModePerm); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "samples.geojson"), []byte(`{"type":"FeatureCollection"}`), 0644); err != nil {
		t.Fatal(err)
	}

	if err := ZipFolder(srcDir, "bundle"); err != nil {
		t.Fatalf("ZipFolder: %v", err)
	}
	zipPath := filepath.Join(srcDir, "bundle.zip")
	if _, err := os.Stat(zipPath); err != nil {
		t.Fatalf("压缩包未生成: %v", err)
	}

	// 移到独立目录再解压，避免解压目录与源目录重叠
	moved := filepath.Join(dir, "bundle.zip")
	if err := os.Rename(zipPath, moved); err != nil {
		t.Fatal(err)
	}
	unpath, err := Unzip(moved)
	if err != nil {
		t.Fatalf("Unzip: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(unpath, "samples.geojson"))
	if err != nil {
		t.Fatalf("解压内容缺失: %v", err)
	}
	if string(data) != `{"type":"FeatureCollection"}` {
		t.Fatalf("解压内容不符: %s", data)
	}
}

func TestUnzipUnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.7z")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Unzip(path); err == nil {
		t.Fatal("不支持的格式应报错")
	}
}

func TestFindShpFile(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.MkdirAll(sub, os.ModePerm); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "train.SHP"), []byte("stub"), 0644); err != nil {
		t.Fatal(err)
	}

	found, err := FindShpFile(dir)
	if err != nil {
		t.Fatalf("FindShpFile: %v", err)
	}
	if filepath.Base(found) != "train.SHP" {
		t.Fatalf("找到的文件不符: %s", found)
	}

	if _, err = FindShpFile(t.TempDir()); err == nil {
		t.Fatal("无shp文件时应报错")
	}
}
