package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupportedGeometry 绘制事件里出现无法识别的几何类型时返回，状态不做任何修改
var ErrUnsupportedGeometry = errors.New("不支持的几何类型, 仅支持点和闭合面")

// ConfigError 分类表等必要配置不合法，属于致命错误，未修正前服务拒绝进入交互状态
type ConfigError struct {
	Msg  string
	Rows []int // 出错的行ID列表
}

func (e *ConfigError) Error() string {
	if len(e.Rows) == 0 {
		return e.Msg
	}
	ids := make([]string, 0, len(e.Rows))
	for _, id := range e.Rows {
		ids = append(ids, strconv.Itoa(id))
	}
	return fmt.Sprintf("%s: 行ID [%s]", e.Msg, strings.Join(ids, ", "))
}

// ExportError 内部状态无法序列化时返回，携带原始状态供人工排查
type ExportError struct {
	Raw interface{}
	Err error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("导出失败: %v", e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
