package Transformer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/GrainArc/SampleMap/models"
	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// decodeText 探测字节流编码，GBK系编码转为UTF-8
func decodeText(raw []byte) []byte {
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(raw)
	if err != nil {
		return raw
	}
	switch result.Charset {
	case "GBK", "GB2312", "GB-18030", "GB18030":
		reader := transform.NewReader(bytes.NewReader(raw), simplifiedchinese.GB18030.NewDecoder())
		var out bytes.Buffer
		if _, err = out.ReadFrom(reader); err != nil {
			return raw
		}
		return out.Bytes()
	default:
		return raw
	}
}

// ReadClassCSV 读取地类分类表CSV。
// 必须包含 ID / LULC_Type / color_palette 三列，缺列或行不完整
// 均返回ConfigError，属致命错误
func ReadClassCSV(path string) ([]models.LulcClass, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.ConfigError{Msg: fmt.Sprintf("读取分类表失败: %v", err)}
	}

	// 去掉UTF-8 BOM，避免首列名匹配失败
	raw = bytes.TrimPrefix(decodeText(raw), []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, &models.ConfigError{Msg: fmt.Sprintf("解析分类表失败: %v", err)}
	}
	if len(records) == 0 {
		return nil, &models.ConfigError{Msg: "分类表为空"}
	}

	header := records[0]
	colIndex := map[string]int{}
	for i, name := range header {
		colIndex[strings.TrimSpace(name)] = i
	}
	required := []string{"ID", "LULC_Type", "color_palette"}
	var missing []string
	for _, col := range required {
		if _, ok := colIndex[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &models.ConfigError{Msg: fmt.Sprintf("分类表缺少必要列: %s", strings.Join(missing, ", "))}
	}

	var rows []models.LulcClass
	var badRows []int
	for line, record := range records[1:] {
		if len(record) < len(header) {
			badRows = append(badRows, line+2) // 报文件行号
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(record[colIndex["ID"]]))
		if err != nil {
			badRows = append(badRows, line+2)
			continue
		}
		rows = append(rows, models.LulcClass{
			ID:    id,
			Name:  strings.TrimSpace(record[colIndex["LULC_Type"]]),
			Color: strings.TrimSpace(record[colIndex["color_palette"]]),
		})
	}
	if len(badRows) > 0 {
		return nil, &models.ConfigError{Msg: "分类表存在无法解析的行", Rows: badRows}
	}
	return rows, nil
}
