package Transformer

import (
	"testing"

	shp "gitee.com/LJ_COOL/go-shp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func TestSplitPoints(t *testing.T) {
	points := []shp.Point{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 0},
		{X: 5, Y: 5}, {X: 6, Y: 5}, {X: 6, Y: 6}, {X: 5, Y: 5},
	}
	rings := SplitPoints(points, []int32{0, 4})
	if len(rings) != 2 {
		t.Fatalf("应切出2个环: %d", len(rings))
	}
	if len(rings[0]) != 4 || len(rings[1]) != 4 {
		t.Fatalf("环点数不符: %d %d", len(rings[0]), len(rings[1]))
	}
	if rings[1][0].X != 5 {
		t.Fatalf("第二环起点不符: %+v", rings[1][0])
	}
}

func TestIsClockwise(t *testing.T) {
	cw := []orb.Point{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}
	ccw := []orb.Point{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}}
	if !IsClockwise(cw) {
		t.Fatal("顺时针环判断错误")
	}
	if IsClockwise(ccw) {
		t.Fatal("逆时针环判断错误")
	}
}

func TestAssemblePolygons(t *testing.T) {
	// 顺时针外环带一个逆时针洞，再跟一个独立外环
	outer := []shp.Point{{X: 0, Y: 0}, {X: 0, Y: 10}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 0}}
	hole := []shp.Point{{X: 2, Y: 2}, {X: 4, Y: 2}, {X: 4, Y: 4}, {X: 2, Y: 4}, {X: 2, Y: 2}}
	outer2 := []shp.Point{{X: 20, Y: 20}, {X: 20, Y: 30}, {X: 30, Y: 30}, {X: 30, Y: 20}, {X: 20, Y: 20}}

	polygons := assemblePolygons([][]shp.Point{outer, hole, outer2})
	if len(polygons) != 2 {
		t.Fatalf("应组装出2个面: %d", len(polygons))
	}
	if len(polygons[0]) != 2 {
		t.Fatalf("首面应含1个洞: %d 环", len(polygons[0]))
	}
	if len(polygons[1]) != 1 {
		t.Fatalf("第二面不应有洞: %d 环", len(polygons[1]))
	}
}

func TestToRingClosesOpenRing(t *testing.T) {
	open := []shp.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}
	ring := toRing(open)
	if len(ring) != 4 {
		t.Fatalf("未闭合的环应补首点: %d", len(ring))
	}
	if !ring[0].Equal(ring[len(ring)-1]) {
		t.Fatal("补点后应闭合")
	}
}

func TestGbkToUtf8PassThrough(t *testing.T) {
	// 纯ASCII在GBK下不变
	if got := GbkToUtf8("Water"); got != "Water" {
		t.Fatalf("ASCII应原样返回: %q", got)
	}
}

func TestCollectionBound(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	if _, ok := CollectionBound(fc); ok {
		t.Fatal("空集合不应有包络")
	}

	fc.Append(geojson.NewFeature(orb.Point{100, 30}))
	fc.Append(geojson.NewFeature(orb.Point{102, 33}))
	bound, ok := CollectionBound(fc)
	if !ok {
		t.Fatal("应有包络")
	}
	if bound.Min[0] != 100 || bound.Min[1] != 30 || bound.Max[0] != 102 || bound.Max[1] != 33 {
		t.Fatalf("包络不符: %+v", bound)
	}
}

func TestZoomForBound(t *testing.T) {
	cases := []struct {
		lonDiff, latDiff float64
		want             int
	}{
		{20, 1, 6},
		{6, 1, 7},
		{3, 1, 8},
		{1.5, 1, 9},
		{0.8, 0.2, 10},
		{0.3, 0.1, 11},
		{0.08, 0.02, 12},
		{0.01, 0.01, 13},
	}
	for _, c := range cases {
		bound := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{c.lonDiff, c.latDiff}}
		if got := ZoomForBound(bound); got != c.want {
			t.Fatalf("范围(%v,%v)的缩放应为%d, 实际 %d", c.lonDiff, c.latDiff, c.want, got)
		}
	}
}
