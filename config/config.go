package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type AppConfig struct {
	Dev       bool             `yaml:"dev"`
	Listen    string           `yaml:"listen"`
	AdminKey  string           `yaml:"admin_key"`
	Redis     Redis            `yaml:"redis"`
	Mysql     MysqlConfig      `yaml:"mysql"`
	Log       LogConfig        `yaml:"log"`
	Aliyun    Aliyun           `yaml:"aliyun"`
	OpenAI    OpenAI           `yaml:"openai"`
	Ollama    Ollama           `yaml:"ollama"`
	Translate TranslateConfig  `yaml:"translate"`
	Quotas    map[string]int64 `yaml:"quotas"`
	Webhook   Webhook          `yaml:"webhook"`
}

type Redis struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
}

func (r Redis) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type MysqlConfig struct {
	DataSourceName  string `yaml:"data_source_name"`
	MaxIdleCount    int    `yaml:"max_idle_count"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"`
}

type Aliyun struct {
	AccessKeyId     string `yaml:"accessKeyId"`
	AccessKeySecret string `yaml:"accessKeySecret"`
}

type OpenAI struct {
	ApiKey          string `yaml:"api_key"`
	Model           string `yaml:"model"`
	BatchModel      string `yaml:"batch_model"`
	ComplexityModel string `yaml:"complexity_model"`
}

type Ollama struct {
	Host  string `yaml:"host"`
	Model string `yaml:"model"`
}

// TranslateConfig tunes the orchestration engine. Zero values are replaced
// with defaults by Load.
type TranslateConfig struct {
	Mode              string `yaml:"mode"`         // "fixed" or "smart"
	FixedEngine       string `yaml:"fixed_engine"` // engine name for fixed mode
	ChunkThreshold    int    `yaml:"chunk_threshold"` // characters (runes), not bytes
	MaxChunkSize      int    `yaml:"max_chunk_size"`  // characters (runes), not bytes
	FastTTLMinutes    int    `yaml:"fast_ttl_minutes"`
	SoftTimeoutSec    int    `yaml:"soft_timeout_sec"`
	HardTimeoutSec    int    `yaml:"hard_timeout_sec"`
	ClaimTimeoutMin   int    `yaml:"claim_timeout_min"`
	ComplexityCallSec int    `yaml:"complexity_call_sec"`
}

func (t TranslateConfig) FastTTL() time.Duration {
	return time.Duration(t.FastTTLMinutes) * time.Minute
}

func (t TranslateConfig) SoftTimeout() time.Duration {
	return time.Duration(t.SoftTimeoutSec) * time.Second
}

func (t TranslateConfig) HardTimeout() time.Duration {
	return time.Duration(t.HardTimeoutSec) * time.Second
}

func (t TranslateConfig) ClaimTimeout() time.Duration {
	return time.Duration(t.ClaimTimeoutMin) * time.Minute
}

func (t TranslateConfig) ComplexityCallTimeout() time.Duration {
	return time.Duration(t.ComplexityCallSec) * time.Second
}

type Webhook struct {
	URL        string `yaml:"url"`
	MaxRetries int    `yaml:"max_retries"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Output string `yaml:"output"`
}

// Load reads the YAML config file and fills in defaults. The config is
// constructed once in cmd and handed to each component; no package globals.
func Load(path string) (*AppConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()

	cfg := &AppConfig{}
	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config file: %w", err)
	}

	if cfg.Listen == "" {
		cfg.Listen = ":3001"
	}
	if cfg.Translate.Mode == "" {
		cfg.Translate.Mode = "smart"
	}
	if cfg.Translate.ChunkThreshold == 0 {
		cfg.Translate.ChunkThreshold = 25000
	}
	if cfg.Translate.MaxChunkSize == 0 {
		cfg.Translate.MaxChunkSize = 8000
	}
	if cfg.Translate.FastTTLMinutes == 0 {
		cfg.Translate.FastTTLMinutes = 60
	}
	if cfg.Translate.SoftTimeoutSec == 0 {
		cfg.Translate.SoftTimeoutSec = 60
	}
	if cfg.Translate.HardTimeoutSec == 0 {
		cfg.Translate.HardTimeoutSec = 120
	}
	if cfg.Translate.ClaimTimeoutMin == 0 {
		cfg.Translate.ClaimTimeoutMin = 10
	}
	if cfg.Translate.ComplexityCallSec == 0 {
		cfg.Translate.ComplexityCallSec = 5
	}
	if cfg.Webhook.MaxRetries == 0 {
		cfg.Webhook.MaxRetries = 3
	}

	return cfg, nil
}
