package views

import (
	"encoding/base64"
	"net/http"

	"github.com/GrainArc/SampleMap/ImgHandler"
	"github.com/GrainArc/SampleMap/config"
	"github.com/GrainArc/SampleMap/methods"
	"github.com/GrainArc/SampleMap/models"
	"github.com/gin-gonic/gin"
)

// GetAOI AOI边界，经纬度GeoJSON
func (uc *UserController) GetAOI(c *gin.Context) {
	s, ok := lockReady(c)
	if !ok {
		return
	}
	defer s.Unlock()

	if s.AOI == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "AOI未加载"})
		return
	}
	c.JSON(http.StatusOK, s.AOI)
}

// GetBasemap 自定义底图叠加层，返回地理范围和data-url形式的PNG
func (uc *UserController) GetBasemap(c *gin.Context) {
	s, ok := lockReady(c)
	if !ok {
		return
	}
	defer s.Unlock()

	if s.Overlay == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "自定义底图未加载"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"bounds":  s.Overlay.Bounds,
		"bands":   s.Overlay.Bands,
		"width":   s.Overlay.Width,
		"height":  s.Overlay.Height,
		"overlay": "data:image/png;base64," + base64.StdEncoding.EncodeToString(s.Overlay.PNG),
	})
}

// GetBasemapWebp 叠加图的WebP原图，体积更小
func (uc *UserController) GetBasemapWebp(c *gin.Context) {
	s, ok := lockReady(c)
	if !ok {
		return
	}
	defer s.Unlock()

	if s.Overlay == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "自定义底图未加载"})
		return
	}
	c.Header("Cache-Control", "public, max-age=0")
	c.Data(http.StatusOK, "image/webp", s.Overlay.WebP)
}

// GetClassTable 当前生效的地类列表，供前端类别下拉框使用
func (uc *UserController) GetClassTable(c *gin.Context) {
	s, ok := lockReady(c)
	if !ok {
		return
	}
	defer s.Unlock()
	c.JSON(http.StatusOK, methods.NewFeatureStore(s).ClassRows())
}

// GetLegend 按地类生成图例PNG
func (uc *UserController) GetLegend(c *gin.Context) {
	s, ok := lockReady(c)
	if !ok {
		return
	}
	defer s.Unlock()

	rows := methods.NewFeatureStore(s).ClassRows()
	items := make([]ImgHandler.LegendItem, 0, len(rows))
	for _, cls := range rows {
		items = append(items, ImgHandler.LegendItem{
			Property: cls.Name,
			Color:    cls.Color,
			GeoType:  "Polygon",
		})
	}
	data, err := ImgHandler.CreateLegend(items, config.FontPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", data)
}

// GetViewState 地图视图状态回显
func (uc *UserController) GetViewState(c *gin.Context) {
	s := getSession(c)
	s.Lock()
	defer s.Unlock()
	c.JSON(http.StatusOK, s.View)
}

// SetViewState 保存前端上报的地图中心与缩放
func (uc *UserController) SetViewState(c *gin.Context) {
	var view models.ViewState
	if err := c.BindJSON(&view); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "非法的视图状态"})
		return
	}
	s := getSession(c)
	s.Lock()
	defer s.Unlock()
	s.View = view
	c.JSON(http.StatusOK, "OK")
}

// Reload 重新执行会话数据加载，用于修正配置后的恢复
func (uc *UserController) Reload(c *gin.Context) {
	s := getSession(c)
	s.Lock()
	defer s.Unlock()

	if err := methods.LoadSessionData(s); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, "OK")
}

// ClearLoaded 清空全部已加载数据并重置视图
func (uc *UserController) ClearLoaded(c *gin.Context) {
	s := getSession(c)
	s.Lock()
	defer s.Unlock()

	methods.ClearLoadedData(s)
	c.JSON(http.StatusOK, "OK")
}
