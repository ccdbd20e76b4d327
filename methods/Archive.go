package methods

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mholt/archiver/v3"
)

// Unzip 解压上传的压缩包到同名目录，返回解压目录
func Unzip(src string) (string, error) {
	dirpath, _ := filepath.Split(src)
	fileName := filepath.Base(src)
	fileExt := filepath.Ext(src)
	unpath := filepath.Join(dirpath, strings.TrimSuffix(fileName, fileExt))

	switch strings.ToLower(fileExt) {
	case ".zip":
		return unpath, unzipZip(src, unpath)
	case ".rar":
		if err := os.MkdirAll(unpath, os.ModePerm); err != nil {
			return "", err
		}
		return unpath, archiver.Unarchive(src, unpath)
	default:
		return "", errors.New("不支持的压缩格式, 仅支持zip和rar")
	}
}

func unzipZip(src, dest string) error {
	if err := os.MkdirAll(dest, os.ModePerm); err != nil {
		return err
	}
	reader, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer reader.Close()

	for _, file := range reader.File {
		if err := extractFile(file, dest); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(zf *zip.File, dest string) error {
	fpath := filepath.Join(dest, zf.Name)

	// 防止解压到目标目录之外
	if !strings.HasPrefix(fpath, filepath.Clean(dest)+string(os.PathSeparator)) {
		return fmt.Errorf("%s: 非法文件路径", fpath)
	}
	if zf.FileInfo().IsDir() {
		return os.MkdirAll(fpath, os.ModePerm)
	}

	if err := os.MkdirAll(filepath.Dir(fpath), os.ModePerm); err != nil {
		return err
	}
	outFile, err := os.OpenFile(fpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, zf.Mode())
	if err != nil {
		return err
	}
	rc, err := zf.Open()
	if err != nil {
		outFile.Close()
		return err
	}
	_, err = io.Copy(outFile, rc)
	rc.Close()
	outFile.Close()
	return err
}

// FindShpFile 在目录里找第一个.shp文件
func FindShpFile(dir string) (string, error) {
	var found string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.EqualFold(filepath.Ext(path), ".shp") {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", errors.New("压缩包中没有shp文件")
	}
	return found, nil
}

// ZipFolder 把目录打包为zip，压缩包放在目录内
func ZipFolder(folderPath string, name string) error {
	zipPath := filepath.Join(folderPath, name+".zip")
	zipFile, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer zipFile.Close()
	zipWriter := zip.NewWriter(zipFile)
	defer zipWriter.Close()

	return filepath.Walk(folderPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if zipPath == path || info.IsDir() {
			return nil
		}
		relPath, err := filepath.Rel(folderPath, path)
		if err != nil {
			return err
		}
		writer, err := zipWriter.Create(relPath)
		if err != nil {
			return err
		}
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(writer, file)
		return err
	})
}
