// Package config loads the pager's runtime parameters from a YAML file
// via a fresh viper instance, unmarshaled into a mapstructure-tagged
// struct.
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"mempager/mem"
)

// PagerConfig sizes the frame pool, block pool, and simulated page size.
type PagerConfig struct {
	NFrames  int `mapstructure:"nframes"`
	NBlocks  int `mapstructure:"nblocks"`
	PageSize int `mapstructure:"page_size"`
}

// DemoConfig selects the scripted workload cmd/mempager runs.
type DemoConfig struct {
	Trace string `mapstructure:"trace"`
}

// Config is the top-level shape of a mempager YAML file.
type Config struct {
	Pager PagerConfig `mapstructure:"pager"`
	Demo  DemoConfig  `mapstructure:"demo"`
}

// Load reads and parses the YAML file at path. An unset page_size
// defaults to mem.PageSize.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Pager.PageSize == 0 {
		cfg.Pager.PageSize = mem.PageSize
	}
	return cfg, nil
}
