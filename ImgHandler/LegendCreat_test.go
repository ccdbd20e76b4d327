package ImgHandler

import (
	"bytes"
	"image/png"
	"testing"
)

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#FF8000")
	if err != nil {
		t.Fatalf("ParseHexColor: %v", err)
	}
	if c.R != 255 || c.G != 128 || c.B != 0 || c.A != 255 {
		t.Fatalf("颜色不符: %+v", c)
	}

	for _, bad := range []string{"", "#FFF", "#ZZZZZZ", "FF8000FF"} {
		if _, err = ParseHexColor(bad); err == nil {
			t.Fatalf("非法颜色 %q 应报错", bad)
		}
	}
}

func TestCreateLegendWithoutFont(t *testing.T) {
	items := []LegendItem{
		{Property: "Water", Color: "#0000FF", GeoType: "Polygon"},
		{Property: "Forest", Color: "#008000", GeoType: "Point"},
	}
	// 字体缺失时仍应产出PNG
	data, err := CreateLegend(items, "")
	if err != nil {
		t.Fatalf("CreateLegend: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("输出应为合法PNG: %v", err)
	}
	if img.Bounds().Dy() < len(items)*legendRowHeight {
		t.Fatalf("图例高度不足: %v", img.Bounds())
	}
}

func TestCreateLegendEmpty(t *testing.T) {
	if _, err := CreateLegend(nil, ""); err == nil {
		t.Fatal("空图例应报错")
	}
}

func TestCreateLegendBadColor(t *testing.T) {
	if _, err := CreateLegend([]LegendItem{{Property: "x", Color: "bad"}}, ""); err == nil {
		t.Fatal("非法颜色应报错")
	}
}
