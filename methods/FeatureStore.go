package methods

import (
	"fmt"
	"regexp"

	"github.com/GrainArc/SampleMap/models"
	"github.com/paulmach/orb/geojson"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// FeatureStore 要素存储服务，持有并修改单个会话的采样集合
type FeatureStore struct {
	Session *models.Session
}

func NewFeatureStore(s *models.Session) *FeatureStore {
	return &FeatureStore{Session: s}
}

// LoadClassTable 校验并启用新的分类表。
// 列缺失或颜色不合法时返回ConfigError并列出全部出错行，状态不变。
// 成功后对来源为uploaded的既有要素重新匹配类别ID与颜色
func (fs *FeatureStore) LoadClassTable(rows []models.LulcClass) error {
	var badRows []int
	seenID := make(map[int]bool)
	seenName := make(map[string]bool)
	for _, row := range rows {
		if !hexColorPattern.MatchString(row.Color) {
			badRows = append(badRows, row.ID)
			continue
		}
		if seenID[row.ID] || seenName[row.Name] {
			badRows = append(badRows, row.ID)
			continue
		}
		seenID[row.ID] = true
		seenName[row.Name] = true
	}
	if len(badRows) > 0 {
		return &models.ConfigError{Msg: "分类表存在非法颜色或重复ID/名称", Rows: badRows}
	}

	fs.Session.Table = &models.ClassTable{Classes: rows}
	fs.refreshUploaded()
	return nil
}

// IngestExternalFeatures 导入外部训练样本，按输入顺序追加。
// 每个会话只生效一次，重复调用直接忽略，防止页面重渲染造成重复导入
func (fs *FeatureStore) IngestExternalFeatures(samples []models.ExternalSample) int {
	s := fs.Session
	if s.TrainingLoaded {
		return 0
	}
	for _, sample := range samples {
		s.Counter++
		f := &models.Feature{
			FeatureID: s.Counter,
			Geometry:  sample.Geometry,
			LulcClass: sample.ClassName,
			Source:    models.SourceUploaded,
		}
		if cls, ok := s.Table.Lookup(sample.ClassName); ok {
			f.LulcID = cls.ID
			f.Color = cls.Color
		} else {
			f.LulcID = models.LulcIDUnresolved
			f.Color = models.FallbackColor
		}
		s.Features = append(s.Features, f)
	}
	s.TrainingLoaded = true
	return len(samples)
}

// CaptureDrawnFeature 捕获一次勾绘。与最近一次捕获的几何完全相同时视为
// 重复事件，不产生新要素。返回nil表示被去重
func (fs *FeatureStore) CaptureDrawnFeature(geom models.SampleGeometry, className string) *models.Feature {
	s := fs.Session
	if s.LastCaptured != nil && geom.Equal(*s.LastCaptured) {
		return nil
	}

	s.Counter++
	f := &models.Feature{
		FeatureID: s.Counter,
		Geometry:  geom,
		LulcClass: className,
		Source:    models.SourceDigitized,
	}
	// 未加载分类表时退回内置五类
	cls, ok := s.Table.Lookup(className)
	if !ok && s.Table == nil {
		cls, ok = lookupDefault(className)
	}
	if ok {
		f.LulcID = cls.ID
		f.Color = cls.Color
	} else {
		f.LulcID = models.LulcIDUnresolved
		f.Color = models.FallbackColor
	}

	s.Features = append(s.Features, f)
	last := geom
	s.LastCaptured = &last
	return f
}

func lookupDefault(name string) (models.LulcClass, bool) {
	for _, c := range models.DefaultClasses() {
		if c.Name == name {
			return c, true
		}
	}
	return models.LulcClass{}, false
}

// DeleteFeature 按要素ID删除，不存在时不报错。计数器不回退
func (fs *FeatureStore) DeleteFeature(featureID int) bool {
	s := fs.Session
	for i, f := range s.Features {
		if f.FeatureID == featureID {
			s.Features = append(s.Features[:i], s.Features[i+1:]...)
			return true
		}
	}
	return false
}

// ClearAll 清空采样集合并重置计数器。分类表和视图状态保留
func (fs *FeatureStore) ClearAll() {
	s := fs.Session
	s.Features = nil
	s.Counter = 0
	s.LastCaptured = nil
	s.TrainingLoaded = false
}

// refreshUploaded 分类表变化后，对uploaded要素重新推导ID与颜色。
// 表中找不到的类别保留中性回退色和未匹配哨兵ID
func (fs *FeatureStore) refreshUploaded() {
	s := fs.Session
	if s.Table == nil {
		return
	}
	for _, f := range s.Features {
		if f.Source != models.SourceUploaded {
			continue
		}
		if cls, ok := s.Table.Lookup(f.LulcClass); ok {
			f.LulcID = cls.ID
			f.Color = cls.Color
		} else {
			f.LulcID = models.LulcIDUnresolved
			f.Color = models.FallbackColor
		}
	}
}

// ClassRows 当前生效的类别列表，未加载分类表时为内置五类
func (fs *FeatureStore) ClassRows() []models.LulcClass {
	if fs.Session.Table != nil {
		return fs.Session.Table.Classes
	}
	return models.DefaultClasses()
}

// ClassSummary 单个类别的样本统计
type ClassSummary struct {
	LulcClass string `json:"LULC_Class"`
	Color     string `json:"Color"`
	Uploaded  int    `json:"Uploaded"`
	Digitized int    `json:"Digitized"`
	Total     int    `json:"Total"`
}

// Summary 按类别的统计汇总
type Summary struct {
	Classes        []ClassSummary `json:"Classes"`
	TotalSamples   int            `json:"TotalSamples"`
	UploadedTotal  int            `json:"UploadedTotal"`
	DigitizedTotal int            `json:"DigitizedTotal"`
	ActiveClasses  int            `json:"ActiveClasses"`
}

// Summarize 按分类表行序统计各类别的uploaded/digitized/总数，为当前状态的纯函数
func (fs *FeatureStore) Summarize() Summary {
	fs.refreshUploaded()
	var out Summary
	for _, cls := range fs.ClassRows() {
		row := ClassSummary{LulcClass: cls.Name, Color: cls.Color}
		for _, f := range fs.Session.Features {
			if f.LulcClass != cls.Name {
				continue
			}
			if f.Source == models.SourceUploaded {
				row.Uploaded++
			} else {
				row.Digitized++
			}
			row.Total++
		}
		if row.Total > 0 {
			out.ActiveClasses++
		}
		out.TotalSamples += row.Total
		out.UploadedTotal += row.Uploaded
		out.DigitizedTotal += row.Digitized
		out.Classes = append(out.Classes, row)
	}
	return out
}

// ExportGeoJSON 导出全量要素为GeoJSON FeatureCollection
func (fs *FeatureStore) ExportGeoJSON() *geojson.FeatureCollection {
	fs.refreshUploaded()
	fc := geojson.NewFeatureCollection()
	for _, f := range fs.Session.Features {
		fc.Append(f.ToGeoJSON())
	}
	return fc
}

// EEProperties 另一种导出格式的属性集，数值字段一律为普通整数
type EEProperties struct {
	LulcID    int    `json:"LULC_ID"`
	LulcClass string `json:"LULC_Class"`
	Color     string `json:"Class_Color"`
	FeatureID int    `json:"feature_id"`
}

type EEFeature struct {
	Type       string            `json:"type"`
	Geometry   *geojson.Geometry `json:"geometry"`
	Properties EEProperties      `json:"properties"`
}

// EECollection 带类型化列清单的表格式导出
type EECollection struct {
	Type     string            `json:"type"`
	Columns  map[string]string `json:"columns"`
	Features []EEFeature       `json:"features"`
}

// ExportEECollection 导出为带列清单的FeatureCollection
func (fs *FeatureStore) ExportEECollection() (*EECollection, error) {
	fs.refreshUploaded()
	out := &EECollection{
		Type: "FeatureCollection",
		Columns: map[string]string{
			"LULC_ID":     "Integer",
			"LULC_Class":  "String",
			"Class_Color": "String",
			"feature_id":  "Integer",
		},
		Features: make([]EEFeature, 0, len(fs.Session.Features)),
	}
	for _, f := range fs.Session.Features {
		geom := f.Geometry.Orb()
		if geom == nil {
			return nil, &models.ExportError{Raw: f, Err: fmt.Errorf("要素 %d 几何为空", f.FeatureID)}
		}
		out.Features = append(out.Features, EEFeature{
			Type:     "Feature",
			Geometry: geojson.NewGeometry(geom),
			Properties: EEProperties{
				LulcID:    f.LulcID,
				LulcClass: f.LulcClass,
				Color:     f.Color,
				FeatureID: f.FeatureID,
			},
		})
	}
	return out, nil
}
