package views

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"

	"github.com/GrainArc/SampleMap/Transformer"
	"github.com/GrainArc/SampleMap/config"
	"github.com/GrainArc/SampleMap/methods"
	"github.com/GrainArc/SampleMap/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
)

// CaptureData 一次勾绘事件
type CaptureData struct {
	Geometry  *geojson.Geometry `json:"geometry"`
	LulcClass string            `json:"LULC_Class"`
}

// Capture 捕获勾绘的要素并打上当前选中的地类标签
func (uc *UserController) Capture(c *gin.Context) {
	var jsonData CaptureData
	if err := c.BindJSON(&jsonData); err != nil || jsonData.Geometry == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求体缺少几何"})
		return
	}

	geom, err := models.NewSampleGeometry(jsonData.Geometry.Geometry())
	if err != nil {
		// 无法识别的几何形状整体拒绝，已有状态不受影响
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s, ok := lockReady(c)
	if !ok {
		return
	}
	defer s.Unlock()

	feature := methods.NewFeatureStore(s).CaptureDrawnFeature(geom, jsonData.LulcClass)
	if feature == nil {
		// 与上一次勾绘完全相同，视为页面重渲染触发的重复事件
		c.JSON(http.StatusOK, gin.H{"duplicate": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("已捕获要素 #%d: %s (%s)", feature.FeatureID, feature.LulcClass, feature.Geometry.Kind),
		"feature": feature.ToGeoJSON(),
	})
}

// ShowFeatures 当前采样集合，GeoJSON格式，供地图回显
func (uc *UserController) ShowFeatures(c *gin.Context) {
	s, ok := lockReady(c)
	if !ok {
		return
	}
	defer s.Unlock()
	c.JSON(http.StatusOK, methods.NewFeatureStore(s).ExportGeoJSON())
}

// FeatureRow 要素表格的一行
type FeatureRow struct {
	LulcID    int    `json:"LULC_ID"`
	LulcClass string `json:"LULC_Class"`
	Color     string `json:"Class_Color"`
	FeatureID int    `json:"feature_id"`
	Source    string `json:"Source"`
	GeomType  string `json:"Geometry_Type"`
	Geometry  string `json:"Geometry"`
}

// FeatureTable 要素表格(WKT几何)，供前端列表展示
func (uc *UserController) FeatureTable(c *gin.Context) {
	s, ok := lockReady(c)
	if !ok {
		return
	}
	defer s.Unlock()

	store := methods.NewFeatureStore(s)
	store.Summarize() // 触发uploaded要素的ID/颜色刷新

	rows := make([]FeatureRow, 0, len(s.Features))
	for _, f := range s.Features {
		rows = append(rows, FeatureRow{
			LulcID:    f.LulcID,
			LulcClass: f.LulcClass,
			Color:     f.Color,
			FeatureID: f.FeatureID,
			Source:    f.Source,
			GeomType:  f.Geometry.Kind,
			Geometry:  wkt.MarshalString(f.Geometry.Orb()),
		})
	}
	c.JSON(http.StatusOK, rows)
}

// DelFeature 按要素ID删除
func (uc *UserController) DelFeature(c *gin.Context) {
	id, err := strconv.Atoi(c.Query("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "非法的要素ID"})
		return
	}
	s, ok := lockReady(c)
	if !ok {
		return
	}
	defer s.Unlock()

	deleted := methods.NewFeatureStore(s).DeleteFeature(id)
	c.JSON(http.StatusOK, gin.H{"deleted": deleted, "id": id})
}

// ClearFeatures 清空采样集合，计数器归零
func (uc *UserController) ClearFeatures(c *gin.Context) {
	s, ok := lockReady(c)
	if !ok {
		return
	}
	defer s.Unlock()

	methods.NewFeatureStore(s).ClearAll()
	c.JSON(http.StatusOK, "OK")
}

// Summary 按地类统计样本数量
func (uc *UserController) Summary(c *gin.Context) {
	s, ok := lockReady(c)
	if !ok {
		return
	}
	defer s.Unlock()
	c.JSON(http.StatusOK, methods.NewFeatureStore(s).Summarize())
}

// marshalExport 序列化导出载荷。失败时按ExportError处理，把原始状态一并返回
func marshalExport(c *gin.Context, payload interface{}, raw interface{}, filename string) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		exportErr := &models.ExportError{Raw: raw, Err: err}
		c.JSON(http.StatusInternalServerError, gin.H{"error": exportErr.Error(), "raw": fmt.Sprintf("%+v", raw)})
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/json", data)
}

// DownloadGeojson 下载GeoJSON格式
func (uc *UserController) DownloadGeojson(c *gin.Context) {
	s, ok := lockReady(c)
	if !ok {
		return
	}
	defer s.Unlock()

	fc := methods.NewFeatureStore(s).ExportGeoJSON()
	marshalExport(c, fc, s.Features, "LULC_digitization_data.geojson")
}

// DownloadEE 下载带列清单的FeatureCollection格式
func (uc *UserController) DownloadEE(c *gin.Context) {
	s, ok := lockReady(c)
	if !ok {
		return
	}
	defer s.Unlock()

	ee, err := methods.NewFeatureStore(s).ExportEECollection()
	if err != nil {
		var exportErr *models.ExportError
		if errors.As(err, &exportErr) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": exportErr.Error(), "raw": fmt.Sprintf("%+v", exportErr.Raw)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	marshalExport(c, ee, s.Features, "LULC_digitization_ee_fc.json")
}

// DownloadAll 两种导出写入临时目录并打包，返回下载地址
func (uc *UserController) DownloadAll(c *gin.Context) {
	s, ok := lockReady(c)
	if !ok {
		return
	}
	defer s.Unlock()

	store := methods.NewFeatureStore(s)
	fc := store.ExportGeoJSON()
	ee, err := store.ExportEECollection()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	bsm := uuid.New().String()
	outDir := filepath.Join("OutFile", bsm)
	if err = os.MkdirAll(outDir, os.ModePerm); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	geoData, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	eeData, err := json.MarshalIndent(ee, "", "  ")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err = os.WriteFile(filepath.Join(outDir, "LULC_digitization_data.geojson"), geoData, 0644); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err = os.WriteFile(filepath.Join(outDir, "LULC_digitization_ee_fc.json"), eeData, 0644); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err = methods.ZipFolder(outDir, "LULC_samples"); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	downloadURL := &url.URL{
		Scheme: "http",
		Host:   c.Request.Host,
		Path:   "/sample/OutFile/" + bsm + "/LULC_samples.zip",
	}
	c.String(http.StatusOK, downloadURL.String())
}

// UploadTraining 上传zip/rar打包的训练shapefile并导入。
// 每个会话只导入一次，重复上传不会产生重复样本
func (uc *UserController) UploadTraining(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少上传文件"})
		return
	}

	bsm := uuid.New().String()
	saveDir := filepath.Join(config.Download, bsm)
	if err = os.MkdirAll(saveDir, os.ModePerm); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	savePath := filepath.Join(saveDir, file.Filename)
	if err = c.SaveUploadedFile(file, savePath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	unpath, err := methods.Unzip(savePath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	shpPath, err := methods.FindShpFile(unpath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fc, prjWkt, err := Transformer.ConvertSHPToGeoJSON(shpPath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	fc, err = Transformer.GeoJsonTransformTo4326(fc, prjWkt)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	classField := c.DefaultPostForm("class_field", config.TrainField)
	samples, err := methods.ExtractSamples(fc, classField)
	if err != nil {
		// 类别字段缺失属于可选数据问题，整个数据源跳过并告知用户
		c.JSON(http.StatusOK, gin.H{"warning": err.Error(), "ingested": 0})
		return
	}

	s, ok := lockReady(c)
	if !ok {
		return
	}
	defer s.Unlock()

	n := methods.NewFeatureStore(s).IngestExternalFeatures(samples)
	if n == 0 {
		c.JSON(http.StatusOK, gin.H{"warning": "本会话已导入过训练数据, 本次忽略", "ingested": 0})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("已导入 %d 条训练样本", n), "ingested": n})
}
