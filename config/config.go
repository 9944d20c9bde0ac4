package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Sheets    SheetsConfig    `mapstructure:"sheets"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Line      LineConfig      `mapstructure:"line"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Sync      SyncConfig      `mapstructure:"sync"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

// SheetsConfig 后端表格存储配置
// backend 为 "google" 时走 Google Sheets API，为 "memory" 时使用内存存储（本地开发/测试）
type SheetsConfig struct {
	Backend             string `mapstructure:"backend"`
	SpreadsheetID       string `mapstructure:"spreadsheet_id"`
	ServiceAccountEmail string `mapstructure:"service_account_email"`
	PrivateKey          string `mapstructure:"private_key"`
	MembersSheet        string `mapstructure:"members_sheet"`
	PhoneSheet          string `mapstructure:"phone_sheet"`
	RiskSheet           string `mapstructure:"risk_sheet"`
	LineOASheet         string `mapstructure:"lineoa_sheet"`
	TimeoutSeconds      int    `mapstructure:"timeout_seconds"`
}

// NormalizedPrivateKey 处理私钥中的换行符
// 部署平台的环境变量里换行可能被存成字面量 \n
func (c *SheetsConfig) NormalizedPrivateKey() string {
	key := c.PrivateKey
	if strings.Contains(key, `\n`) {
		key = strings.ReplaceAll(key, `\n`, "\n")
	}
	return key
}

type RedisConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	Password     string `mapstructure:"password"`
	DB           int    `mapstructure:"db"`
	PoolSize     int    `mapstructure:"pool_size"`
	MinIdleConns int    `mapstructure:"min_idle_conns"`
}

// CacheConfig 各数据集的读缓存 TTL（秒）
type CacheConfig struct {
	MembersTTL      int `mapstructure:"members_ttl"`
	PhoneRecordsTTL int `mapstructure:"phone_records_ttl"`
	LineOATTL       int `mapstructure:"lineoa_ttl"`
}

type LineConfig struct {
	ChannelSecret      string `mapstructure:"channel_secret"`
	ChannelAccessToken string `mapstructure:"channel_access_token"`
}

type AuthConfig struct {
	Admin        string `mapstructure:"admin"`
	PasswordHash string `mapstructure:"password_hash"`
	Secret       string `mapstructure:"secret"`
	ExpireHours  int    `mapstructure:"expire_hours"`
	RefreshHours int    `mapstructure:"refresh_hours"`
}

type SyncConfig struct {
	Workers   int `mapstructure:"workers"`
	QueueSize int `mapstructure:"queue_size"`
}

type RateLimitConfig struct {
	WebhookPerMinute int `mapstructure:"webhook_per_minute"`
	APIPerMinute     int `mapstructure:"api_per_minute"`
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	// 工作表名与线上表格保持一致，可按需覆盖
	v.SetDefault("server.port", 9000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("sheets.backend", "google")
	v.SetDefault("sheets.members_sheet", "Members / Subscriptions")
	v.SetDefault("sheets.phone_sheet", "Sheet1")
	v.SetDefault("sheets.risk_sheet", "Sheet2")
	v.SetDefault("sheets.lineoa_sheet", "LineOA")
	v.SetDefault("sheets.timeout_seconds", 30)
	v.SetDefault("cache.members_ttl", 60)
	v.SetDefault("cache.phone_records_ttl", 60)
	v.SetDefault("cache.lineoa_ttl", 30)
	v.SetDefault("auth.expire_hours", 24)
	v.SetDefault("auth.refresh_hours", 168)
	v.SetDefault("sync.workers", 2)
	v.SetDefault("sync.queue_size", 64)
	v.SetDefault("ratelimit.webhook_per_minute", 120)
	v.SetDefault("ratelimit.api_per_minute", 300)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	return &config, nil
}
