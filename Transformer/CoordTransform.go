package Transformer

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/lukeroth/gdal"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var (
	wgs84Ref  gdal.SpatialReference
	wgs84Once sync.Once
	wgs84Err  error
)

// 目标坐标系固定为WGS84经纬度，可复用故不回收
func getWGS84Ref() (gdal.SpatialReference, error) {
	wgs84Once.Do(func() {
		wgs84Ref = gdal.CreateSpatialReference("")
		if wgs84Err = wgs84Ref.FromEPSG(4326); wgs84Err != nil {
			return
		}
		// 数据轴次序固定为(经度,纬度)的传统GIS坐标序，避免转换后出现次序倒置
		wgs84Ref.SetAxisMappingStrategy(gdal.OAMS_TraditionalGisOrder)
	})
	return wgs84Ref, wgs84Err
}

// isWGS84 源坐标系本身就是WGS84经纬度时无需转换
func isWGS84(ref gdal.SpatialReference, wkt string) bool {
	if !ref.IsGeographic() {
		return false
	}
	return strings.Contains(wkt, `"WGS_1984"`) || strings.Contains(wkt, `"WGS 84"`) ||
		strings.Contains(wkt, `AUTHORITY["EPSG","4326"]`)
}

// GeoJsonTransformTo4326 把要素集从srcWkt描述的坐标系重投影到WGS84经纬度。
// srcWkt为空时认为数据已是经纬度，原样返回
func GeoJsonTransformTo4326(original *geojson.FeatureCollection, srcWkt string) (*geojson.FeatureCollection, error) {
	if srcWkt == "" {
		return original, nil
	}

	srcRef := gdal.CreateSpatialReference(srcWkt)
	defer srcRef.Destroy()
	srcRef.SetAxisMappingStrategy(gdal.OAMS_TraditionalGisOrder)
	if isWGS84(srcRef, srcWkt) {
		return original, nil
	}

	dstRef, err := getWGS84Ref()
	if err != nil {
		return nil, fmt.Errorf("构建目标坐标系失败: %w", err)
	}

	out := geojson.NewFeatureCollection()
	for _, feature := range original.Features {
		geom, err := transformGeometry(feature.Geometry, srcRef, dstRef)
		if err != nil {
			return nil, err
		}
		nf := geojson.NewFeature(geom)
		nf.Properties = feature.Properties
		out.Append(nf)
	}
	return out, nil
}

// transformGeometry 单个几何的重投影，经由GDAL的GeoJSON编解码完成
func transformGeometry(g orb.Geometry, srcRef, dstRef gdal.SpatialReference) (orb.Geometry, error) {
	raw, err := json.Marshal(geojson.NewGeometry(g))
	if err != nil {
		return nil, err
	}

	geo := gdal.CreateFromJson(string(raw))
	defer geo.Destroy()
	geo.SetSpatialReference(srcRef)
	if err = geo.TransformTo(dstRef); err != nil {
		return nil, fmt.Errorf("坐标转换失败: %w", err)
	}

	parsed, err := geojson.UnmarshalGeometry([]byte(geo.ToJSON()))
	if err != nil {
		return nil, fmt.Errorf("解析转换结果失败: %w", err)
	}
	return parsed.Geometry(), nil
}

// CollectionBound 要素集的经纬度包络
func CollectionBound(fc *geojson.FeatureCollection) (orb.Bound, bool) {
	var bound orb.Bound
	found := false
	for _, feature := range fc.Features {
		if feature.Geometry == nil {
			continue
		}
		b := feature.Geometry.Bound()
		if !found {
			bound = b
			found = true
		} else {
			bound = bound.Union(b)
		}
	}
	return bound, found
}

// ZoomForBound 按AOI范围估算初始缩放级别
func ZoomForBound(bound orb.Bound) int {
	latDiff := bound.Max[1] - bound.Min[1]
	lonDiff := bound.Max[0] - bound.Min[0]
	maxDiff := latDiff
	if lonDiff > maxDiff {
		maxDiff = lonDiff
	}

	switch {
	case maxDiff > 10:
		return 6
	case maxDiff > 5:
		return 7
	case maxDiff > 2:
		return 8
	case maxDiff > 1:
		return 9
	case maxDiff > 0.5:
		return 10
	case maxDiff > 0.1:
		return 11
	case maxDiff > 0.05:
		return 12
	default:
		return 13
	}
}
