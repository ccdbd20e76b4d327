package services

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log"
	"math"
	"sort"

	"github.com/GrainArc/SampleMap/models"
	"github.com/chai2010/webp"
	"github.com/lukeroth/gdal"
)

// BasemapService 自定义底图服务，把GeoTIFF渲染为可叠加到前端地图的图片
type BasemapService struct{}

func NewBasemapService() *BasemapService {
	return &BasemapService{}
}

// LoadOverlay 读取GeoTIFF并生成叠加图。
// 波段数>=3时取前三个波段合成RGB，否则按单波段灰度渲染。
// 8位数据直接使用(NaN置0)，其余数据类型按正值像素的2%/98%分位数拉伸
func (s *BasemapService) LoadOverlay(tifPath string) (*models.OverlayImage, error) {
	ds, err := gdal.Open(tifPath, gdal.ReadOnly)
	if err != nil {
		return nil, fmt.Errorf("打开GeoTIFF失败: %w", err)
	}
	defer ds.Close()

	width := ds.RasterXSize()
	height := ds.RasterYSize()
	bandCount := ds.RasterCount()
	if width <= 0 || height <= 0 || bandCount == 0 {
		return nil, fmt.Errorf("GeoTIFF没有可用像素")
	}

	gt := ds.GeoTransform()
	west := gt[0]
	north := gt[3]
	east := gt[0] + gt[1]*float64(width)
	south := gt[3] + gt[5]*float64(height)

	useBands := 1
	if bandCount >= 3 {
		useBands = 3
	}
	log.Printf("底图GeoTIFF: %d个波段, %dx%d像素, 取%d个波段渲染", bandCount, width, height, useBands)

	stretched := make([][]uint8, useBands)
	for i := 0; i < useBands; i++ {
		band := ds.RasterBand(i + 1)
		buf := make([]float64, width*height)
		if err = band.IO(gdal.Read, 0, 0, width, height, buf, width, height, 0, 0); err != nil {
			return nil, fmt.Errorf("读取波段%d失败: %w", i+1, err)
		}
		if band.RasterDataType() == gdal.Byte {
			stretched[i] = passthroughByte(buf)
		} else {
			stretched[i] = stretchPercentile(buf)
		}
	}

	var img image.Image
	if useBands == 3 {
		rgba := image.NewNRGBA(image.Rect(0, 0, width, height))
		for p := 0; p < width*height; p++ {
			rgba.Pix[p*4] = stretched[0][p]
			rgba.Pix[p*4+1] = stretched[1][p]
			rgba.Pix[p*4+2] = stretched[2][p]
			rgba.Pix[p*4+3] = 255
		}
		img = rgba
	} else {
		gray := image.NewGray(image.Rect(0, 0, width, height))
		copy(gray.Pix, stretched[0])
		img = gray
	}

	var pngBuf bytes.Buffer
	if err = png.Encode(&pngBuf, img); err != nil {
		return nil, fmt.Errorf("编码PNG失败: %w", err)
	}
	var webpBuf bytes.Buffer
	if err = webp.Encode(&webpBuf, img, &webp.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("编码WebP失败: %w", err)
	}

	return &models.OverlayImage{
		PNG:    pngBuf.Bytes(),
		WebP:   webpBuf.Bytes(),
		Bounds: [2][2]float64{{south, west}, {north, east}},
		Bands:  useBands,
		Width:  width,
		Height: height,
	}, nil
}

// passthroughByte 8位数据不拉伸，NaN置0
func passthroughByte(buf []float64) []uint8 {
	out := make([]uint8, len(buf))
	for i, v := range buf {
		if math.IsNaN(v) {
			continue
		}
		if v < 0 {
			v = 0
		} else if v > 255 {
			v = 255
		}
		out[i] = uint8(v)
	}
	return out
}

// stretchPercentile 取正值像素的2%/98%分位数线性拉伸到0~255。
// 没有正值像素时输出全黑
func stretchPercentile(buf []float64) []uint8 {
	valid := make([]float64, 0, len(buf))
	for _, v := range buf {
		if !math.IsNaN(v) && v > 0 {
			valid = append(valid, v)
		}
	}
	out := make([]uint8, len(buf))
	if len(valid) == 0 {
		return out
	}

	p2 := percentile(valid, 2)
	p98 := percentile(valid, 98)
	span := p98 - p2
	if span <= 0 {
		span = 1
	}
	for i, v := range buf {
		if math.IsNaN(v) {
			v = 0
		}
		scaled := (v - p2) / span * 255
		if scaled < 0 {
			scaled = 0
		} else if scaled > 255 {
			scaled = 255
		}
		out[i] = uint8(scaled)
	}
	return out
}

// percentile 线性插值的分位数，values会被排序
func percentile(values []float64, p float64) float64 {
	sort.Float64s(values)
	if len(values) == 1 {
		return values[0]
	}
	pos := p / 100 * float64(len(values)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return values[lo]
	}
	frac := pos - float64(lo)
	return values[lo]*(1-frac) + values[hi]*frac
}
