package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig 应用基础信息
type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
}

// HTTPConfig HTTP 服务配置
type HTTPConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	AuthEnabled  bool          `mapstructure:"authEnabled"`
	APIKeys      []string      `mapstructure:"apiKeys"`
}

// LumberjackConfig 日志滚动（lumberjack）配置
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig 日志级别与输出配置
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// MetricsConfig Prometheus 指标暴露配置
type MetricsConfig struct {
	Enable bool   `mapstructure:"enable"`
	Path   string `mapstructure:"path"`
}

// RedisConfig 场景库缓存（Redis）配置，未启用时回退到进程内缓存
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"poolSize"`
	MinIdleConns int           `mapstructure:"minIdleConns"`
	DialTimeout  time.Duration `mapstructure:"dialTimeout"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	CacheTTL     time.Duration `mapstructure:"cacheTTL"`
}

// ScenesConfig 场景库配置
type ScenesConfig struct {
	EffectCatalog string `mapstructure:"effectCatalog"`
}

// CloudConfig Govee OpenAPI 配置
type CloudConfig struct {
	BaseURL    string        `mapstructure:"baseURL"`
	APIKey     string        `mapstructure:"apiKey"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RatePerSec float64       `mapstructure:"ratePerSec"`
	Burst      int           `mapstructure:"burst"`
}

// IoTConfig AWS IoT MQTT 透传通道配置
// 证书通过账号登录自动获取（email/password），也可直接指定PEM文件
type IoTConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Email        string        `mapstructure:"email"`
	Password     string        `mapstructure:"password"`
	ClientID     string        `mapstructure:"clientId"`
	CertFile     string        `mapstructure:"certFile"`
	KeyFile      string        `mapstructure:"keyFile"`
	Endpoint     string        `mapstructure:"endpoint"`
	ConnectWait  time.Duration `mapstructure:"connectWait"`
	FramesPerSec float64       `mapstructure:"framesPerSec"`
}

// Config 顶层配置结构
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Scenes  ScenesConfig  `mapstructure:"scenes"`
	Cloud   CloudConfig   `mapstructure:"cloud"`
	IoT     IoTConfig     `mapstructure:"iot"`
}

// Load 从 YAML/TOML/JSON 文件与环境变量加载配置。
// 若 path 为空，则尝试从环境变量 GOVEE_CONFIG 读取；否则回退到 configs/example.yaml。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = v.GetString("GOVEE_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.SetConfigName("example")
		v.SetConfigType("yaml")
	}

	// 默认值
	setDefaults(v)

	// 环境变量覆盖：前缀 GOVEE_，并将点号替换为下划线
	v.SetEnvPrefix("GOVEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 首次运行允许缺少配置文件，依赖默认值与环境变量
		var notFound viper.ConfigFileNotFoundError
		if fmt.Sprintf("%T", err) != fmt.Sprintf("%T", notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "govee-bridge")
	v.SetDefault("app.env", "dev")

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.readTimeout", "5s")
	v.SetDefault("http.writeTimeout", "10s")
	v.SetDefault("http.authEnabled", false)

	v.SetDefault("scenes.effectCatalog", "configs/effects.yaml")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.file.filename", "logs/govee-bridge.log")
	v.SetDefault("logging.file.maxSize", 100)
	v.SetDefault("logging.file.maxBackups", 7)
	v.SetDefault("logging.file.maxAge", 30)
	v.SetDefault("logging.file.compress", true)

	v.SetDefault("metrics.enable", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.poolSize", 10)
	v.SetDefault("redis.minIdleConns", 2)
	v.SetDefault("redis.dialTimeout", "5s")
	v.SetDefault("redis.readTimeout", "3s")
	v.SetDefault("redis.writeTimeout", "3s")
	v.SetDefault("redis.cacheTTL", "30m")

	v.SetDefault("cloud.baseURL", "https://openapi.api.govee.com/router/api/v1")
	v.SetDefault("cloud.timeout", "10s")
	// OpenAPI 限额10000次/天，默认压到约0.1 QPS，burst允许短时突发
	v.SetDefault("cloud.ratePerSec", 0.1)
	v.SetDefault("cloud.burst", 5)

	v.SetDefault("iot.enabled", false)
	v.SetDefault("iot.endpoint", "aqm3wd1qlc3dy-ats.iot.us-east-1.amazonaws.com")
	v.SetDefault("iot.connectWait", "10s")
	// 多包序列发包速率，过快会导致设备丢包重组失败
	v.SetDefault("iot.framesPerSec", 20)
}
