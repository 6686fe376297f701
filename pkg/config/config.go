package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName 默认的配置文件名
const DefaultFileName = "tfinv.yml"

// Config tfinv 的运行配置
// 命令行参数的优先级高于配置文件
type Config struct {
	StateDir string `yaml:"state_dir"` // terraform 工作目录
	LogLevel string `yaml:"log_level"` // debug/info/warn/error
	Format   string `yaml:"format"`    // json/yaml/ini
	Provider string `yaml:"provider"`  // 覆盖默认的 ansible provider 标识
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		StateDir: ".",
		LogLevel: "info",
		Format:   "json",
	}
}

// Load 从 YAML 文件加载配置
// 文件不存在时返回默认配置，不算错误
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if cfg.StateDir == "" {
		cfg.StateDir = "."
	}

	return cfg, nil
}
