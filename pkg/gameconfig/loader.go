// Package gameconfig 加载静态配置表 (<dir>/<Table>.json, 数组形式)
package gameconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
)

// Loader 本地文件 JSON 配置表加载器
type Loader struct {
	dir    string
	logger logger.Logger
}

// NewLoader 创建加载器
func NewLoader(dir string, l logger.Logger) (*Loader, error) {
	if l == nil {
		return nil, fmt.Errorf("logger is required for gameconfig loader")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat data dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("data dir %s is not a directory", dir)
	}
	return &Loader{dir: dir, logger: l.Named("gameconfig")}, nil
}

// Dir 返回数据目录
func (l *Loader) Dir() string { return l.dir }

// Raw 读取表的原始行, 文件不存在时返回空表并记录告警
func (l *Loader) Raw(table string) ([]map[string]any, error) {
	path := filepath.Join(l.dir, table+".json")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Warn("config table not found, initializing as empty",
				"table", table,
				"path", path)
			return []map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to read config table %s: %w", path, err)
	}

	var rows []map[string]any
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config table %s: %w", path, err)
	}
	return rows, nil
}

// Load 读取表并解码为 T, 字段按 json tag 匹配, 实现 encoding.TextUnmarshaler 的字段 (枚举) 从字符串解析
func Load[T any](l *Loader, table string) ([]T, error) {
	rows, err := l.Raw(table)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(rows))
	for i, row := range rows {
		var v T
		if err := decode(row, &v); err != nil {
			return nil, fmt.Errorf("table %s row %d: %w", table, i, err)
		}
		out = append(out, v)
	}
	l.logger.Debug("config table loaded", "table", table, "rows", len(out))
	return out, nil
}

func decode(input map[string]any, output any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           output,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
