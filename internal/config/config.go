package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/conf"
)

// Config is the on-disk YAML configuration. Every field has a default so a
// missing file yields a usable configuration.
type Config struct {
	DataDir    string          `json:",optional"`
	ReportsDir string          `json:",optional"`
	PageSize   int             `json:",default=10,range=[1:500]"`
	Snapshot   SnapshotConfig  `json:",optional"`
	Staleness  StalenessConfig `json:",optional"`
	Notify     NotifyConfig    `json:",optional"`
	Log        LogConfig       `json:",optional"`
	Report     ReportConfig    `json:",optional"`
}

type SnapshotConfig struct {
	Backend    string      `json:",default=local,options=local|redis"`
	Key        string      `json:",default=problemTrackerDB"`
	QuotaBytes int         `json:",default=5242880"`
	Redis      RedisConfig `json:",optional"`
}

type RedisConfig struct {
	Host   string `json:",optional"`
	Pass   string `json:",optional"`
	TLS    bool   `json:",optional"`
	Prefix string `json:",default=problemtracker:"`
}

type StalenessConfig struct {
	Interval time.Duration `json:",default=60s"`
}

type NotifyConfig struct {
	LinkBase string `json:",default=https://wa.me/"`
	Message  string `json:",optional"`
}

type LogConfig struct {
	Level  string `json:",default=info,options=debug|info|warn|error"`
	Format string `json:",default=console,options=console|json"`
	Path   string `json:",optional"`
}

type ReportConfig struct {
	FontPath string `json:",optional"`
}

// Load reads the YAML file at path. An empty path or a missing file yields
// the defaults. Environment variables in the file are expanded.
func Load(path string) (Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		if _, err := os.Stat(path); err == nil {
			if err := conf.Load(path, &c, conf.UseEnv()); err != nil {
				return Config{}, fmt.Errorf("load config %s: %w", path, err)
			}
			return c.withDefaults(), nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("stat config %s: %w", path, err)
		}
	}
	if err := conf.LoadFromYamlBytes([]byte("{}"), &c); err != nil {
		return Config{}, fmt.Errorf("load default config: %w", err)
	}
	return c.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	if c.PageSize <= 0 {
		c.PageSize = ItemsPerPage
	}
	if c.Snapshot.Key == "" {
		c.Snapshot.Key = SnapshotKey
	}
	if c.Snapshot.Backend == "" {
		c.Snapshot.Backend = "local"
	}
	if c.Snapshot.QuotaBytes <= 0 {
		c.Snapshot.QuotaBytes = DefaultQuotaBytes
	}
	if c.Staleness.Interval <= 0 {
		c.Staleness.Interval = StaleCheckInterval
	}
	if c.Notify.LinkBase == "" {
		c.Notify.LinkBase = DefaultLinkBase
	}
	if c.Notify.Message == "" {
		c.Notify.Message = DefaultNotifyText
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	return c
}

// ResolveDirs fills DataDir, ReportsDir and Log.Path from the given fallbacks
// when the file left them empty.
func (c Config) ResolveDirs(dataDir, reportsDir string) Config {
	if c.DataDir == "" {
		c.DataDir = dataDir
	}
	if c.ReportsDir == "" {
		c.ReportsDir = reportsDir
	}
	if c.Log.Path == "" {
		c.Log.Path = filepath.Join(c.DataDir, LogFileName)
	}
	return c
}
