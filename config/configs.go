package config

import (
	"encoding/xml"
	"fmt"
	"os"
)

var MainRouter string
var ClassCSV string
var AOIShp string
var TrainShp string
var TrainField string
var BasemapTif string
var FontPath string
var Download string
var MainConfig Config

type Config struct {
	XMLName    xml.Name `xml:"config"`
	MainRouter string   `xml:"MainRouter"`
	ClassCSV   string   `xml:"ClassCSV"`
	AOIShp     string   `xml:"AOIShp"`
	TrainShp   string   `xml:"TrainShp"`
	TrainField string   `xml:"TrainField"`
	BasemapTif string   `xml:"BasemapTif"`
	FontPath   string   `xml:"FontPath"`
	Download   string   `xml:"download"`
}

// Load 读取配置文件。ClassCSV与AOIShp为必填项，缺失时服务不能启动
func Load(path string) error {
	xmlFile, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("打开配置文件失败: %w", err)
	}
	defer xmlFile.Close()

	xmlDecoder := xml.NewDecoder(xmlFile)
	if err = xmlDecoder.Decode(&MainConfig); err != nil {
		return fmt.Errorf("解析配置文件失败: %w", err)
	}

	if MainConfig.ClassCSV == "" {
		return fmt.Errorf("配置缺少必填项 ClassCSV")
	}
	if MainConfig.AOIShp == "" {
		return fmt.Errorf("配置缺少必填项 AOIShp")
	}
	if MainConfig.MainRouter == "" {
		MainConfig.MainRouter = ":8426"
	}
	if MainConfig.TrainField == "" {
		MainConfig.TrainField = "LULC_Type"
	}
	if MainConfig.Download == "" {
		MainConfig.Download = "./OutFile"
	}

	MainRouter = MainConfig.MainRouter
	ClassCSV = MainConfig.ClassCSV
	AOIShp = MainConfig.AOIShp
	TrainShp = MainConfig.TrainShp
	TrainField = MainConfig.TrainField
	BasemapTif = MainConfig.BasemapTif
	FontPath = MainConfig.FontPath
	Download = MainConfig.Download
	return nil
}
