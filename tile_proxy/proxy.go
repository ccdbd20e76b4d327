package tile_proxy

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// 可选的在线底图源，与前端底图下拉框一一对应
var tileSources = map[string]string{
	"esri":            "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
	"google":          "https://mt1.google.com/vt/lyrs=s&x={x}&y={y}&z={z}",
	"osm":             "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
	"cartodb_dark":    "https://basemaps.cartocdn.com/dark_all/{z}/{x}/{y}.png",
	"cartodb_positron": "https://basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png",
}

// TileProxyService 在线底图瓦片代理，带内存缓存
type TileProxyService struct {
	httpClient *http.Client
	cache      *TileCache
}

func NewTileProxyService() *TileProxyService {
	return &TileProxyService{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		cache: NewTileCache(1000, 10*time.Minute), // 1000个瓦片，10分钟过期
	}
}

// Sources 可用的底图源名称
func (s *TileProxyService) Sources() []string {
	names := make([]string, 0, len(tileSources))
	for name := range tileSources {
		names = append(names, name)
	}
	return names
}

// RegisterRoutes 注册路由
func (s *TileProxyService) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/GetSources", s.HandleSources)
	r.GET("/:source/:z/:x/:y", s.HandleTileRequest)
}

func (s *TileProxyService) HandleSources(c *gin.Context) {
	c.JSON(http.StatusOK, s.Sources())
}

// HandleTileRequest 处理瓦片请求
func (s *TileProxyService) HandleTileRequest(c *gin.Context) {
	source := c.Param("source")
	template, ok := tileSources[source]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "未知的底图源: " + source})
		return
	}

	z, err := strconv.Atoi(c.Param("z"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid z"})
		return
	}
	x, err := strconv.Atoi(c.Param("x"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid x"})
		return
	}
	// y参数可能带扩展名
	yStr := c.Param("y")
	yStr = strings.TrimSuffix(yStr, ".png")
	yStr = strings.TrimSuffix(yStr, ".jpg")
	y, err := strconv.Atoi(yStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid y"})
		return
	}
	if z < 0 || z > 22 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid zoom"})
		return
	}

	cacheKey := fmt.Sprintf("%s/%d/%d/%d", source, z, x, y)
	if item, ok := s.cache.Get(cacheKey); ok {
		c.Header("Cache-Control", "public, max-age=600")
		c.Data(http.StatusOK, item.ContentType, item.Data)
		return
	}

	data, contentType, err := s.fetchTile(template, z, x, y)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	s.cache.Set(cacheKey, data, contentType)

	c.Header("Cache-Control", "public, max-age=600")
	c.Data(http.StatusOK, contentType, data)
}

// fetchTile 从上游瓦片服务拉取
func (s *TileProxyService) fetchTile(template string, z, x, y int) ([]byte, string, error) {
	url := strings.NewReplacer(
		"{z}", strconv.Itoa(z),
		"{x}", strconv.Itoa(x),
		"{y}", strconv.Itoa(y),
	).Replace(template)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; SampleMap/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("拉取瓦片失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("上游返回 %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	return data, contentType, nil
}
