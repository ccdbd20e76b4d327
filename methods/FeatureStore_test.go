package methods

import (
	"testing"

	"github.com/GrainArc/SampleMap/models"
	"github.com/paulmach/orb"
)

func testTable() []models.LulcClass {
	return []models.LulcClass{
		{ID: 1, Name: "Water", Color: "#0000FF"},
		{ID: 2, Name: "Forest", Color: "#008000"},
	}
}

func pointGeom(t *testing.T, x, y float64) models.SampleGeometry {
	t.Helper()
	g, err := models.NewSampleGeometry(orb.Point{x, y})
	if err != nil {
		t.Fatalf("构造点几何失败: %v", err)
	}
	return g
}

func ringGeom(t *testing.T, pts ...orb.Point) models.SampleGeometry {
	t.Helper()
	g, err := models.NewSampleGeometry(orb.Polygon{orb.Ring(pts)})
	if err != nil {
		t.Fatalf("构造面几何失败: %v", err)
	}
	return g
}

func TestLoadClassTableAndCapture(t *testing.T) {
	fs := NewFeatureStore(models.NewSession())
	if err := fs.LoadClassTable(testTable()); err != nil {
		t.Fatalf("LoadClassTable: %v", err)
	}

	f := fs.CaptureDrawnFeature(pointGeom(t, 10.0, -5.0), "Water")
	if f == nil {
		t.Fatal("捕获被意外去重")
	}
	if f.FeatureID != 1 || f.LulcClass != "Water" || f.Color != "#0000FF" ||
		f.LulcID != 1 || f.Source != models.SourceDigitized {
		t.Fatalf("捕获结果不符: %+v", f)
	}

	sum := fs.Summarize()
	if sum.TotalSamples != 1 || sum.DigitizedTotal != 1 || sum.ActiveClasses != 1 {
		t.Fatalf("统计不符: %+v", sum)
	}
	if len(sum.Classes) != 2 || sum.Classes[0].LulcClass != "Water" {
		t.Fatalf("类别顺序应与表序一致: %+v", sum.Classes)
	}
}

func TestLoadClassTableInvalidColor(t *testing.T) {
	fs := NewFeatureStore(models.NewSession())
	rows := append(testTable(), models.LulcClass{ID: 3, Name: "Bare", Color: "#ZZZZZZ"})
	err := fs.LoadClassTable(rows)
	if err == nil {
		t.Fatal("非法颜色应当报错")
	}
	cfgErr, ok := err.(*models.ConfigError)
	if !ok {
		t.Fatalf("错误类型应为ConfigError: %T", err)
	}
	if len(cfgErr.Rows) != 1 || cfgErr.Rows[0] != 3 {
		t.Fatalf("应指出出错行3: %v", cfgErr.Rows)
	}
	if fs.Session.Table != nil {
		t.Fatal("加载失败不应替换分类表")
	}
}

func TestCaptureDedup(t *testing.T) {
	fs := NewFeatureStore(models.NewSession())
	g := pointGeom(t, 1, 2)
	if fs.CaptureDrawnFeature(g, "Water") == nil {
		t.Fatal("首次捕获不应去重")
	}
	if fs.CaptureDrawnFeature(g, "Water") != nil {
		t.Fatal("相同几何应被去重")
	}
	if len(fs.Session.Features) != 1 {
		t.Fatalf("去重后应只有1个要素, 实际 %d", len(fs.Session.Features))
	}

	// 坐标不同则正常捕获
	if fs.CaptureDrawnFeature(pointGeom(t, 1, 3), "Water") == nil {
		t.Fatal("不同几何不应去重")
	}
	if len(fs.Session.Features) != 2 {
		t.Fatalf("应有2个要素, 实际 %d", len(fs.Session.Features))
	}
}

func TestDeleteMissingFeature(t *testing.T) {
	fs := NewFeatureStore(models.NewSession())
	fs.CaptureDrawnFeature(pointGeom(t, 1, 1), "Forest")
	if fs.DeleteFeature(99) {
		t.Fatal("删除不存在的要素不应返回true")
	}
	if len(fs.Session.Features) != 1 || fs.Session.Features[0].FeatureID != 1 {
		t.Fatalf("集合不应变化: %+v", fs.Session.Features)
	}
}

func TestClearAllResetsCounter(t *testing.T) {
	fs := NewFeatureStore(models.NewSession())
	fs.CaptureDrawnFeature(pointGeom(t, 1, 1), "Water")
	fs.CaptureDrawnFeature(pointGeom(t, 2, 2), "Water")
	fs.ClearAll()

	if len(fs.Session.Features) != 0 || fs.Session.Counter != 0 || fs.Session.LastCaptured != nil {
		t.Fatalf("ClearAll后状态不符: %+v", fs.Session)
	}
	f := fs.CaptureDrawnFeature(pointGeom(t, 1, 1), "Water")
	if f == nil || f.FeatureID != 1 {
		t.Fatalf("清空后首个要素ID应为1: %+v", f)
	}
}

func TestCounterNeverReused(t *testing.T) {
	fs := NewFeatureStore(models.NewSession())
	fs.CaptureDrawnFeature(pointGeom(t, 1, 1), "Water")
	fs.CaptureDrawnFeature(pointGeom(t, 2, 2), "Water")
	fs.CaptureDrawnFeature(pointGeom(t, 3, 3), "Water")

	if !fs.DeleteFeature(2) {
		t.Fatal("删除要素2失败")
	}
	f := fs.CaptureDrawnFeature(pointGeom(t, 4, 4), "Water")
	if f.FeatureID != 4 {
		t.Fatalf("删除后新要素ID应为4而非3, 实际 %d", f.FeatureID)
	}
}

func TestIngestIdempotent(t *testing.T) {
	fs := NewFeatureStore(models.NewSession())
	if err := fs.LoadClassTable(testTable()); err != nil {
		t.Fatal(err)
	}
	samples := []models.ExternalSample{
		{Geometry: pointGeom(t, 1, 1), ClassName: "Water"},
		{Geometry: pointGeom(t, 2, 2), ClassName: "Swamp"}, // 表中不存在
	}
	if n := fs.IngestExternalFeatures(samples); n != 2 {
		t.Fatalf("首次导入应为2, 实际 %d", n)
	}
	if n := fs.IngestExternalFeatures(samples); n != 0 {
		t.Fatalf("重复导入应为0, 实际 %d", n)
	}

	features := fs.Session.Features
	if features[0].LulcID != 1 || features[0].Color != "#0000FF" || features[0].Source != models.SourceUploaded {
		t.Fatalf("已匹配样本属性不符: %+v", features[0])
	}
	if features[1].LulcID != models.LulcIDUnresolved || features[1].Color != models.FallbackColor {
		t.Fatalf("未匹配样本应使用哨兵ID与回退色: %+v", features[1])
	}
}

func TestReloadTableRefreshesUploaded(t *testing.T) {
	fs := NewFeatureStore(models.NewSession())
	if err := fs.LoadClassTable(testTable()); err != nil {
		t.Fatal(err)
	}
	fs.IngestExternalFeatures([]models.ExternalSample{
		{Geometry: pointGeom(t, 1, 1), ClassName: "Water"},
	})

	// 换一张颜色不同的表，uploaded要素应跟随新表
	if err := fs.LoadClassTable([]models.LulcClass{{ID: 7, Name: "Water", Color: "#00FFFF"}}); err != nil {
		t.Fatal(err)
	}
	f := fs.Session.Features[0]
	if f.LulcID != 7 || f.Color != "#00FFFF" {
		t.Fatalf("uploaded要素未按新表刷新: %+v", f)
	}

	// 类别名从表里消失时退回中性色
	if err := fs.LoadClassTable([]models.LulcClass{{ID: 1, Name: "Forest", Color: "#008000"}}); err != nil {
		t.Fatal(err)
	}
	f = fs.Session.Features[0]
	if f.LulcID != models.LulcIDUnresolved || f.Color != models.FallbackColor {
		t.Fatalf("缺失类别应回退: %+v", f)
	}
}

func TestDefaultClassFallback(t *testing.T) {
	fs := NewFeatureStore(models.NewSession())
	f := fs.CaptureDrawnFeature(pointGeom(t, 1, 1), "Forest")
	if f.LulcID != 3 || f.Color != "#008000" {
		t.Fatalf("未加载分类表时应使用内置五类: %+v", f)
	}
	f = fs.CaptureDrawnFeature(pointGeom(t, 2, 2), "Unknown")
	if f.LulcID != models.LulcIDUnresolved || f.Color != models.FallbackColor {
		t.Fatalf("内置类之外应使用哨兵与回退色: %+v", f)
	}
}

func TestExportGeoJSONRoundTrip(t *testing.T) {
	fs := NewFeatureStore(models.NewSession())
	if err := fs.LoadClassTable(testTable()); err != nil {
		t.Fatal(err)
	}
	fs.CaptureDrawnFeature(pointGeom(t, 10, -5), "Water")
	fs.CaptureDrawnFeature(ringGeom(t,
		orb.Point{0, 0}, orb.Point{1, 0}, orb.Point{1, 1}, orb.Point{0, 0}), "Forest")

	fc := fs.ExportGeoJSON()
	if len(fc.Features) != 2 {
		t.Fatalf("导出要素数不符: %d", len(fc.Features))
	}

	// 导出的GeoJSON重新作为外部源导入，(几何, 类别)对应一致
	samples, err := ExtractSamples(fc, "LULC_Class")
	if err != nil {
		t.Fatalf("ExtractSamples: %v", err)
	}
	fs2 := NewFeatureStore(models.NewSession())
	if err = fs2.LoadClassTable(testTable()); err != nil {
		t.Fatal(err)
	}
	if n := fs2.IngestExternalFeatures(samples); n != 2 {
		t.Fatalf("回灌数量不符: %d", n)
	}
	for i, f := range fs2.Session.Features {
		orig := fs.Session.Features[i]
		if !f.Geometry.Equal(orig.Geometry) {
			t.Fatalf("要素%d几何不一致", i)
		}
		if f.LulcClass != orig.LulcClass {
			t.Fatalf("要素%d类别不一致: %s vs %s", i, f.LulcClass, orig.LulcClass)
		}
		if f.Source != models.SourceUploaded {
			t.Fatalf("回灌来源应为uploaded: %s", f.Source)
		}
	}
}

func TestExportEECollection(t *testing.T) {
	fs := NewFeatureStore(models.NewSession())
	if err := fs.LoadClassTable(testTable()); err != nil {
		t.Fatal(err)
	}
	fs.CaptureDrawnFeature(pointGeom(t, 10, -5), "Water")

	ee, err := fs.ExportEECollection()
	if err != nil {
		t.Fatalf("ExportEECollection: %v", err)
	}
	if ee.Type != "FeatureCollection" {
		t.Fatalf("类型不符: %s", ee.Type)
	}
	want := map[string]string{
		"LULC_ID":     "Integer",
		"LULC_Class":  "String",
		"Class_Color": "String",
		"feature_id":  "Integer",
	}
	for col, typ := range want {
		if ee.Columns[col] != typ {
			t.Fatalf("列 %s 类型不符: %s", col, ee.Columns[col])
		}
	}
	if len(ee.Features) != 1 {
		t.Fatalf("要素数不符: %d", len(ee.Features))
	}
	p := ee.Features[0].Properties
	if p.LulcID != 1 || p.LulcClass != "Water" || p.Color != "#0000FF" || p.FeatureID != 1 {
		t.Fatalf("属性不符: %+v", p)
	}
}

func TestSummarizeTotalsMatchFeatureCount(t *testing.T) {
	fs := NewFeatureStore(models.NewSession())
	if err := fs.LoadClassTable(testTable()); err != nil {
		t.Fatal(err)
	}
	fs.IngestExternalFeatures([]models.ExternalSample{
		{Geometry: pointGeom(t, 1, 1), ClassName: "Water"},
		{Geometry: pointGeom(t, 2, 2), ClassName: "Forest"},
	})
	fs.CaptureDrawnFeature(pointGeom(t, 3, 3), "Water")

	sum := fs.Summarize()
	if sum.TotalSamples != len(fs.Session.Features) {
		t.Fatalf("总数 %d 应等于要素数 %d", sum.TotalSamples, len(fs.Session.Features))
	}
	if sum.UploadedTotal != 2 || sum.DigitizedTotal != 1 || sum.ActiveClasses != 2 {
		t.Fatalf("统计不符: %+v", sum)
	}
}
