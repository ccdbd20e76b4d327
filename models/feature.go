package models

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// 样本来源
const (
	SourceDigitized = "digitized" // 地图上手工勾绘
	SourceUploaded  = "uploaded"  // 外部训练数据导入
)

// LulcIDUnresolved 分类表中找不到类别名时的ID哨兵值，不代表任何真实类别
const LulcIDUnresolved = 0

// FallbackColor 未识别类别的中性回退色
const FallbackColor = "#808080"

// UploadedInitColor 训练数据刚导入、尚未匹配分类表时的初始颜色
const UploadedInitColor = "#FF0000"

// 几何种类标签
const (
	GeomPoint   = "Point"
	GeomPolygon = "Polygon"
)

// SampleGeometry 采样几何，点/闭合面两种变体的标签联合。
// 面只保留外环，环至少4个点且首尾相同
type SampleGeometry struct {
	Kind  string
	Point orb.Point
	Ring  orb.Ring
}

// NewSampleGeometry 在系统边界处把任意GeoJSON几何收窄为受支持的两种形状
func NewSampleGeometry(g orb.Geometry) (SampleGeometry, error) {
	switch geom := g.(type) {
	case orb.Point:
		return SampleGeometry{Kind: GeomPoint, Point: geom}, nil
	case orb.Polygon:
		if len(geom) == 0 {
			return SampleGeometry{}, ErrUnsupportedGeometry
		}
		return newRingGeometry(geom[0])
	case orb.Ring:
		return newRingGeometry(geom)
	default:
		return SampleGeometry{}, ErrUnsupportedGeometry
	}
}

func newRingGeometry(ring orb.Ring) (SampleGeometry, error) {
	if len(ring) < 4 {
		return SampleGeometry{}, ErrUnsupportedGeometry
	}
	if !ring[0].Equal(ring[len(ring)-1]) {
		return SampleGeometry{}, ErrUnsupportedGeometry
	}
	r := make(orb.Ring, len(ring))
	copy(r, ring)
	return SampleGeometry{Kind: GeomPolygon, Ring: r}, nil
}

// Orb 还原为orb几何对象
func (g SampleGeometry) Orb() orb.Geometry {
	if g.Kind == GeomPoint {
		return g.Point
	}
	return orb.Polygon{g.Ring}
}

// Equal 按坐标值比较，用于去重最近一次绘制产生的重复事件
func (g SampleGeometry) Equal(o SampleGeometry) bool {
	if g.Kind != o.Kind {
		return false
	}
	if g.Kind == GeomPoint {
		return g.Point.Equal(o.Point)
	}
	if len(g.Ring) != len(o.Ring) {
		return false
	}
	for i := range g.Ring {
		if !g.Ring[i].Equal(o.Ring[i]) {
			return false
		}
	}
	return true
}

// LulcClass 地类，名称与整数ID全表唯一，颜色为 #RRGGBB
type LulcClass struct {
	ID    int    `json:"ID"`
	Name  string `json:"LULC_Type"`
	Color string `json:"color_palette"`
}

// ClassTable 当次会话生效的地类分类表，保持CSV中的行序
type ClassTable struct {
	Classes []LulcClass
}

// Lookup 按类别名查表
func (t *ClassTable) Lookup(name string) (LulcClass, bool) {
	if t == nil {
		return LulcClass{}, false
	}
	for _, c := range t.Classes {
		if c.Name == name {
			return c, true
		}
	}
	return LulcClass{}, false
}

// DefaultClasses 未加载分类表时的内置五类
func DefaultClasses() []LulcClass {
	return []LulcClass{
		{ID: 1, Name: "Urban/Built-up", Color: "#FF0000"},
		{ID: 2, Name: "Agriculture", Color: "#FFA500"},
		{ID: 3, Name: "Forest", Color: "#008000"},
		{ID: 4, Name: "Water", Color: "#0000FF"},
		{ID: 5, Name: "Wetlands", Color: "#800080"},
	}
}

// Feature 一条带地类标签的采样记录
type Feature struct {
	FeatureID int
	Geometry  SampleGeometry
	LulcClass string
	LulcID    int
	Color     string
	Source    string
}

// ToGeoJSON 导出为GeoJSON要素，属性结构与下载文件保持一致
func (f *Feature) ToGeoJSON() *geojson.Feature {
	out := geojson.NewFeature(f.Geometry.Orb())
	out.Properties = geojson.Properties{
		"feature_id":  f.FeatureID,
		"LULC_Class":  f.LulcClass,
		"Class_Color": f.Color,
		"LULC_ID":     f.LulcID,
		"source":      f.Source,
	}
	return out
}

// ExternalSample 外部矢量源里读出的(几何, 类别名)对
type ExternalSample struct {
	Geometry  SampleGeometry
	ClassName string
}
