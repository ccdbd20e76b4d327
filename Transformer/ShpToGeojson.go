package Transformer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	shp "gitee.com/LJ_COOL/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// GbkToUtf8 GBK转UTF-8，解码失败时原样返回
func GbkToUtf8(s string) string {
	gbkDecoder := simplifiedchinese.GBK.NewDecoder()
	utf8String, _, err := transform.String(gbkDecoder, s)
	if err != nil {
		return s
	}
	return utf8String
}

// readCPGEncoding 读取CPG文件获取DBF字符编码，缺失时默认GBK
func readCPGEncoding(shpfilePath string) string {
	base := strings.TrimSuffix(shpfilePath, filepath.Ext(shpfilePath))
	cpgContent, err := os.ReadFile(base + ".cpg")
	if err != nil {
		return "GBK"
	}
	return strings.TrimSpace(string(cpgContent))
}

// ReadPrjWKT 读取PRJ文件里的坐标系WKT，缺失时返回空串(按4326处理)
func ReadPrjWKT(shpfilePath string) string {
	base := strings.TrimSuffix(shpfilePath, filepath.Ext(shpfilePath))
	content, err := os.ReadFile(base + ".prj")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(content))
}

// buildAttributes 读取一条记录的DBF属性，按编码解码字段名与值
func buildAttributes(n int, reader *shp.Reader, fields []shp.Field, encoding string) map[string]interface{} {
	attrs := make(map[string]interface{})
	for k, f := range fields {
		attrValue := reader.ReadAttribute(n, k)
		if strings.EqualFold(encoding, "GBK") {
			attrs[GbkToUtf8(f.String())] = strings.TrimSpace(GbkToUtf8(attrValue))
		} else {
			attrs[f.String()] = strings.TrimSpace(attrValue)
		}
	}
	return attrs
}

// SplitPoints 按parts索引把点序列切分为多个环
func SplitPoints(points []shp.Point, parts []int32) [][]shp.Point {
	var rings [][]shp.Point
	for i, partIndex := range parts {
		start := partIndex
		var end int32
		if i < len(parts)-1 {
			end = parts[i+1]
		} else {
			end = int32(len(points))
		}
		rings = append(rings, points[start:end])
	}
	return rings
}

// IsClockwise 判断环的方向，shp格式中外环为顺时针
func IsClockwise(points []orb.Point) bool {
	sum := 0.0
	for i := 0; i < len(points)-1; i++ {
		p1 := points[i]
		p2 := points[i+1]
		sum += (p2[0] - p1[0]) * (p2[1] + p1[1])
	}
	return sum > 0
}

func toRing(points []shp.Point) orb.Ring {
	ring := make(orb.Ring, 0, len(points)+1)
	for _, p := range points {
		ring = append(ring, orb.Point{p.X, p.Y})
	}
	// 保证闭合
	if len(ring) > 0 && !ring[0].Equal(ring[len(ring)-1]) {
		ring = append(ring, ring[0])
	}
	return ring
}

// assemblePolygons 把一条shp记录的环集合组装为多个面：
// 顺时针环开新面，逆时针环作为前一个面的洞
func assemblePolygons(ringGroups [][]shp.Point) []orb.Polygon {
	var polygons []orb.Polygon
	for _, pts := range ringGroups {
		ring := toRing(pts)
		if len(ring) < 4 {
			continue
		}
		if IsClockwise(ring) || len(polygons) == 0 {
			polygons = append(polygons, orb.Polygon{ring})
		} else {
			last := len(polygons) - 1
			polygons[last] = append(polygons[last], ring)
		}
	}
	return polygons
}

// ConvertSHPToGeoJSON 读取shapefile为GeoJSON要素集，同时返回PRJ中的坐标系WKT。
// 只处理点和面两类记录，线等其他类型跳过
func ConvertSHPToGeoJSON(shpfileFilePath string) (*geojson.FeatureCollection, string, error) {
	reader, err := shp.Open(shpfileFilePath)
	if err != nil {
		return nil, "", fmt.Errorf("打开shp文件失败: %w", err)
	}
	defer reader.Close()

	featureCollection := geojson.NewFeatureCollection()
	fields := reader.Fields()
	encoding := readCPGEncoding(shpfileFilePath)

	for reader.Next() {
		n, p := reader.Shape()

		switch s := p.(type) {
		case *shp.Point:
			appendPointFeature(featureCollection, s.X, s.Y, n, reader, fields, encoding)
		case *shp.PointZ:
			appendPointFeature(featureCollection, s.X, s.Y, n, reader, fields, encoding)
		case *shp.PointM:
			appendPointFeature(featureCollection, s.X, s.Y, n, reader, fields, encoding)
		case *shp.Polygon:
			appendPolygonFeatures(featureCollection, s.Points, s.Parts, n, reader, fields, encoding)
		case *shp.PolygonZ:
			appendPolygonFeatures(featureCollection, s.Points, s.Parts, n, reader, fields, encoding)
		case *shp.PolygonM:
			appendPolygonFeatures(featureCollection, s.Points, s.Parts, n, reader, fields, encoding)
		}
	}

	return featureCollection, ReadPrjWKT(shpfileFilePath), nil
}

func appendPointFeature(fc *geojson.FeatureCollection, x, y float64, n int, reader *shp.Reader, fields []shp.Field, encoding string) {
	feature := geojson.NewFeature(orb.Point{x, y})
	feature.Properties = buildAttributes(n, reader, fields, encoding)
	fc.Append(feature)
}

func appendPolygonFeatures(fc *geojson.FeatureCollection, points []shp.Point, parts []int32, n int, reader *shp.Reader, fields []shp.Field, encoding string) {
	attrs := buildAttributes(n, reader, fields, encoding)
	for _, polygon := range assemblePolygons(SplitPoints(points, parts)) {
		feature := geojson.NewFeature(polygon)
		feature.Properties = attrs
		fc.Append(feature)
	}
}
