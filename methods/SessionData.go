package methods

import (
	"fmt"
	"log"
	"os"

	"github.com/GrainArc/SampleMap/Transformer"
	"github.com/GrainArc/SampleMap/config"
	"github.com/GrainArc/SampleMap/models"
	"github.com/GrainArc/SampleMap/services"
	"github.com/paulmach/orb/geojson"
)

// ExtractSamples 从要素集中抽取(几何, 类别名)对。
// classField字段缺失时整个数据源作废，返回错误由调用方降级为警告
func ExtractSamples(fc *geojson.FeatureCollection, classField string) ([]models.ExternalSample, error) {
	var samples []models.ExternalSample
	for _, feature := range fc.Features {
		value, ok := feature.Properties[classField]
		if !ok {
			return nil, fmt.Errorf("训练数据缺少类别字段 %q", classField)
		}
		geom, err := models.NewSampleGeometry(feature.Geometry)
		if err != nil {
			// 单个要素几何不受支持只做局部跳过
			log.Printf("跳过不支持的训练要素几何: %v", feature.Geometry.GeoJSONType())
			continue
		}
		samples = append(samples, models.ExternalSample{
			Geometry:  geom,
			ClassName: fmt.Sprintf("%v", value),
		})
	}
	return samples, nil
}

// LoadSessionData 会话初始化时的同步加载流程。
// 分类表与AOI为必要数据，失败即返回错误并记入Session.LoadErr；
// 训练数据与底图为可选数据，失败只打警告，不影响其余部分
func LoadSessionData(s *models.Session) error {
	fs := NewFeatureStore(s)

	// 1. 分类表(必要)
	rows, err := Transformer.ReadClassCSV(config.ClassCSV)
	if err != nil {
		s.LoadErr = err
		return err
	}
	if err = fs.LoadClassTable(rows); err != nil {
		s.LoadErr = err
		return err
	}
	log.Printf("已加载 %d 个地类", len(rows))

	// 2. AOI(必要)，重投影到经纬度并据此确定初始视图
	aoi, prjWkt, err := Transformer.ConvertSHPToGeoJSON(config.AOIShp)
	if err != nil {
		s.LoadErr = fmt.Errorf("加载AOI失败: %w", err)
		return s.LoadErr
	}
	aoi, err = Transformer.GeoJsonTransformTo4326(aoi, prjWkt)
	if err != nil {
		s.LoadErr = fmt.Errorf("AOI重投影失败: %w", err)
		return s.LoadErr
	}
	s.AOI = aoi
	if bound, ok := Transformer.CollectionBound(aoi); ok {
		s.View.CenterLon = (bound.Min[0] + bound.Max[0]) / 2
		s.View.CenterLat = (bound.Min[1] + bound.Max[1]) / 2
		s.View.Zoom = Transformer.ZoomForBound(bound)
		s.View.InitialFitDone = false
	}
	log.Printf("已加载AOI: %d 个要素", len(aoi.Features))

	// 3. 训练数据(可选)
	loadTrainingData(s, fs)

	// 4. 底图GeoTIFF(可选)
	loadBasemap(s)

	s.LoadErr = nil
	return nil
}

func loadTrainingData(s *models.Session, fs *FeatureStore) {
	if config.TrainShp == "" {
		return
	}
	if _, err := os.Stat(config.TrainShp); err != nil {
		log.Printf("警告: 训练数据文件不存在, 跳过: %s", config.TrainShp)
		return
	}
	fc, prjWkt, err := Transformer.ConvertSHPToGeoJSON(config.TrainShp)
	if err != nil {
		log.Printf("警告: 训练数据加载失败, 跳过: %v", err)
		return
	}
	fc, err = Transformer.GeoJsonTransformTo4326(fc, prjWkt)
	if err != nil {
		log.Printf("警告: 训练数据重投影失败, 跳过: %v", err)
		return
	}
	samples, err := ExtractSamples(fc, config.TrainField)
	if err != nil {
		log.Printf("警告: %v, 跳过训练数据", err)
		return
	}
	n := fs.IngestExternalFeatures(samples)
	if n > 0 {
		log.Printf("已导入 %d 条训练样本", n)
	}
}

func loadBasemap(s *models.Session) {
	if config.BasemapTif == "" {
		return
	}
	if _, err := os.Stat(config.BasemapTif); err != nil {
		log.Printf("警告: 底图GeoTIFF不存在, 跳过: %s", config.BasemapTif)
		return
	}
	overlay, err := services.NewBasemapService().LoadOverlay(config.BasemapTif)
	if err != nil {
		log.Printf("警告: 底图加载失败, 跳过: %v", err)
		return
	}
	s.Overlay = overlay
	log.Println("已加载自定义底图")
}

// ClearLoadedData 清空全部加载数据并把视图重置为世界视图。
// 与ClearAll不同，分类表和视图定位也一并丢弃
func ClearLoadedData(s *models.Session) {
	s.AOI = nil
	s.Overlay = nil
	s.Table = nil
	s.TrainingLoaded = false
	s.Features = nil
	s.Counter = 0
	s.LastCaptured = nil
	s.View = models.DefaultViewState()
	s.LoadErr = nil
}
