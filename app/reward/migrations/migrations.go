// Package migrations 数据库表结构, 语句均可重复执行
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/lk2023060901/xdooria-reward/pkg/database/postgres"
	"github.com/lk2023060901/xdooria-reward/pkg/logger"
)

//go:embed *.sql
var files embed.FS

// Files 按文件名排序的迁移脚本
func Files() ([]string, error) {
	names, err := fs.Glob(files, "*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Apply 依次执行全部迁移脚本
func Apply(ctx context.Context, q postgres.Querier, l logger.Logger) error {
	names, err := Files()
	if err != nil {
		return err
	}
	for _, name := range names {
		sql, err := files.ReadFile(name)
		if err != nil {
			return err
		}
		if _, err := q.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("migration %s failed: %w", name, err)
		}
		l.Info("migration applied", "file", name)
	}
	return nil
}
