// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Log        LogConfig        `mapstructure:"log"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Embedding  EmbeddingConfig  `mapstructure:"embedding"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Invocation InvocationConfig `mapstructure:"invocation"`
	Matching   MatchingConfig   `mapstructure:"matching"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig 存储 JWT 相关的配置。
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
	RefreshTokenExpireDays int    `mapstructure:"refresh_token_expire_days"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// KafkaConfig 存储画像向量重建任务所用的 Kafka 配置。
type KafkaConfig struct {
	Brokers     string `mapstructure:"brokers"`
	Topic       string `mapstructure:"topic"`
	GroupID     string `mapstructure:"group_id"`
	MaxAttempts int    `mapstructure:"max_attempts"`
}

// EmbeddingConfig 存储 Embedding 模型相关的配置。
type EmbeddingConfig struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Model      string `mapstructure:"model"`
	Dimensions int    `mapstructure:"dimensions"`
}

// LLMConfig 存储大语言模型相关的配置。
type LLMConfig struct {
	APIKey     string              `mapstructure:"api_key"`
	BaseURL    string              `mapstructure:"base_url"`
	Model      string              `mapstructure:"model"`
	Generation LLMGenerationConfig `mapstructure:"generation"`
}

// LLMGenerationConfig 配置生成相关参数（可选）。
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// InvocationConfig 控制所有模型调用共享的限流闸门与重试计划。
type InvocationConfig struct {
	MinIntervalMS int   `mapstructure:"min_interval_ms"`
	RetryDelaysMS []int `mapstructure:"retry_delays_ms"`
}

// MinInterval 返回两次模型调用之间的最小间隔。
func (c InvocationConfig) MinInterval() time.Duration {
	return time.Duration(c.MinIntervalMS) * time.Millisecond
}

// RetryDelays 按顺序返回限流重试的等待时间。
func (c InvocationConfig) RetryDelays() []time.Duration {
	delays := make([]time.Duration, 0, len(c.RetryDelaysMS))
	for _, ms := range c.RetryDelaysMS {
		delays = append(delays, time.Duration(ms)*time.Millisecond)
	}
	return delays
}

// MatchingConfig 存储匹配流程的相关参数。
type MatchingConfig struct {
	ResultLimit             int     `mapstructure:"result_limit"`
	MinScore                float64 `mapstructure:"min_score"`
	ExplainPacingMS         int     `mapstructure:"explain_pacing_ms"`
	SyncPacingMS            int     `mapstructure:"sync_pacing_ms"`
	AnalysisCacheTTLMinutes int     `mapstructure:"analysis_cache_ttl_minutes"`
}

func (c MatchingConfig) ExplainPacing() time.Duration {
	return time.Duration(c.ExplainPacingMS) * time.Millisecond
}

func (c MatchingConfig) SyncPacing() time.Duration {
	return time.Duration(c.SyncPacingMS) * time.Millisecond
}

func (c MatchingConfig) AnalysisCacheTTL() time.Duration {
	return time.Duration(c.AnalysisCacheTTLMinutes) * time.Minute
}

// setDefaults 注册所有可调参数的默认值，配置文件中未出现的键会回落到这里。
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("jwt.access_token_expire_hours", 24)
	v.SetDefault("jwt.refresh_token_expire_days", 7)
	v.SetDefault("kafka.topic", "profile-embedding")
	v.SetDefault("kafka.group_id", "talent-match-go-consumer")
	v.SetDefault("kafka.max_attempts", 3)
	v.SetDefault("invocation.min_interval_ms", 1000)
	v.SetDefault("invocation.retry_delays_ms", []int{2000, 4000, 8000})
	v.SetDefault("matching.result_limit", 20)
	v.SetDefault("matching.min_score", 0.20)
	v.SetDefault("matching.explain_pacing_ms", 200)
	v.SetDefault("matching.sync_pacing_ms", 100)
	v.SetDefault("matching.analysis_cache_ttl_minutes", 60)
}

// Load 从指定路径读取 YAML 配置文件并解析为 Config。
func Load(configPath string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	var cfg Config
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("读取配置文件失败: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}
	return cfg, nil
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = cfg
}
