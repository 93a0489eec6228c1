package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lk2023060901/xdooria-reward/pkg/config"
	"github.com/spf13/pflag"
)

// EnvPrefix 环境变量前缀, XDOORIA_LOG_LEVEL -> log.level
const EnvPrefix = "XDOORIA"

var configPath string

// LoadConfig 加载配置文件并返回配置管理器
// 配置文件路径优先级: --config 参数 > XDOORIA_CONFIG > <执行目录>/configs/config.yaml
// 配置项优先级: 环境变量 > 配置文件 > 默认值
func LoadConfig(opts ...config.Option) (config.Manager, error) {
	execDir, err := GetExecDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable directory: %w", err)
	}

	if pflag.Lookup("config") == nil {
		pflag.StringVarP(&configPath, "config", "c", "", "path to config file")
	}
	if !pflag.Parsed() {
		pflag.Parse()
	}

	path := ResolveConfigPath(configPath, os.Getenv(EnvPrefix+"_CONFIG"), execDir)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", config.ErrConfigFileNotFound, path)
	}

	mgr := config.NewManager(append([]config.Option{config.WithEnvPrefix(EnvPrefix)}, opts...)...)
	if err := mgr.LoadFile(path); err != nil {
		return nil, err
	}
	configPath = path
	return mgr, nil
}

// ResolveConfigPath 按优先级确定配置文件路径
func ResolveConfigPath(flagValue, envValue, execDir string) string {
	switch {
	case flagValue != "":
		return flagValue
	case envValue != "":
		return envValue
	default:
		return filepath.Join(execDir, "configs", "config.yaml")
	}
}

// GetExecDir 获取可执行文件所在目录 (处理符号链接)
func GetExecDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	realPath, err := filepath.EvalSymlinks(execPath)
	if err != nil {
		return filepath.Dir(execPath), nil
	}
	return filepath.Dir(realPath), nil
}

// GetConfigPath 返回最终使用的配置文件路径
func GetConfigPath() string {
	return configPath
}
