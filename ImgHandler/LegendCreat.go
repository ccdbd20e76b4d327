package ImgHandler

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log"
	"math"
	"os"
	"strings"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

// LegendItem 图例条目，一个地类对应一行
type LegendItem struct {
	Property string `json:"Property"` // 类别名
	Color    string `json:"Color"`    // #RRGGBB
	GeoType  string `json:"GeoType"`  // Point / Polygon
}

// ParseHexColor 解析 #RRGGBB 颜色串
func ParseHexColor(colorStr string) (color.RGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(colorStr), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("非法颜色: %s", colorStr)
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("非法颜色: %s", colorStr)
	}
	return color.RGBA{b[0], b[1], b[2], 255}, nil
}

// loadFont 从配置路径加载字体，缺失时图例只画色块不写文字
func loadFont(fontPath string) (*truetype.Font, error) {
	if fontPath == "" {
		return nil, fmt.Errorf("未配置字体")
	}
	fontBytes, err := os.ReadFile(fontPath)
	if err != nil {
		return nil, err
	}
	return truetype.Parse(fontBytes)
}

func drawText(img *image.RGBA, x, y int, text string, fontSize float64, fontColor color.Color, ttfFont *truetype.Font) error {
	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(ttfFont)
	c.SetFontSize(fontSize)
	c.SetClip(img.Bounds())
	c.SetDst(img)
	c.SetSrc(image.NewUniform(fontColor))
	c.SetHinting(font.HintingFull)

	pt := freetype.Pt(x, y)
	_, err := c.DrawString(text, pt)
	return err
}

// drawCircle 点符号
func drawCircle(img *image.RGBA, centerX, centerY, radius int, fillColor color.Color, borderColor color.Color) {
	for y := -radius; y <= radius; y++ {
		for x := -radius; x <= radius; x++ {
			if x*x+y*y <= radius*radius {
				img.Set(centerX+x, centerY+y, fillColor)
			}
		}
	}
	for angle := 0.0; angle < 360; angle += 0.5 {
		rad := angle * math.Pi / 180
		x := centerX + int(float64(radius)*math.Cos(rad))
		y := centerY + int(float64(radius)*math.Sin(rad))
		img.Set(x, y, borderColor)
	}
}

// drawPolygonSymbol 面符号，填充矩形加边框
func drawPolygonSymbol(img *image.RGBA, xPos, yPos, width, height int, fillColor color.Color, borderColor color.Color) {
	for dy := 0; dy < height; dy++ {
		for dx := 0; dx < width; dx++ {
			img.Set(xPos+dx, yPos+dy, fillColor)
		}
	}
	for dx := 0; dx < width; dx++ {
		img.Set(xPos+dx, yPos, borderColor)
		img.Set(xPos+dx, yPos+height-1, borderColor)
	}
	for dy := 0; dy < height; dy++ {
		img.Set(xPos, yPos+dy, borderColor)
		img.Set(xPos+width-1, yPos+dy, borderColor)
	}
}

const (
	legendRowHeight  = 28
	legendPadding    = 10
	legendSwatchW    = 32
	legendSwatchH    = 18
	legendFontSize   = 14.0
	legendTextOffset = 8
)

// CreateLegend 按地类生成图例PNG。字体不可用时仅绘制符号
func CreateLegend(items []LegendItem, fontPath string) ([]byte, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("图例为空")
	}

	width := 220
	height := legendPadding*2 + legendRowHeight*len(items)
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	ttfFont, err := loadFont(fontPath)
	if err != nil {
		log.Printf("图例字体不可用, 只绘制符号: %v", err)
		ttfFont = nil
	}

	border := color.RGBA{60, 60, 60, 255}
	for i, item := range items {
		fill, err := ParseHexColor(item.Color)
		if err != nil {
			return nil, err
		}
		rowTop := legendPadding + i*legendRowHeight
		if item.GeoType == "Point" {
			drawCircle(img, legendPadding+legendSwatchW/2, rowTop+legendSwatchH/2, legendSwatchH/2-1, fill, border)
		} else {
			drawPolygonSymbol(img, legendPadding, rowTop, legendSwatchW, legendSwatchH, fill, border)
		}
		if ttfFont != nil {
			textY := rowTop + legendSwatchH - 3
			if err = drawText(img, legendPadding+legendSwatchW+legendTextOffset, textY, item.Property, legendFontSize, color.Black, ttfFont); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err = png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
