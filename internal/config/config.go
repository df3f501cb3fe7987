package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Prompt   PromptConfig   `mapstructure:"prompt"`
	Realtime RealtimeConfig `mapstructure:"realtime"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Batch    BatchConfig    `mapstructure:"batch"`
}

type ServerConfig struct {
	Port         int             `mapstructure:"port"`
	ReadTimeout  time.Duration   `mapstructure:"readTimeout"`
	WriteTimeout time.Duration   `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration   `mapstructure:"idleTimeout"`
	RateLimit    RateLimitConfig `mapstructure:"rateLimit"`
	Auth         AuthConfig      `mapstructure:"auth"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type AuthConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	JWTSecret string `mapstructure:"jwtSecret"`
}

// StorageConfig selects the profile store backend. The file driver is the
// default; postgres keeps the same single-record semantics in a one-row table.
type StorageConfig struct {
	Driver      string `mapstructure:"driver"` // "file" or "postgres"
	FilePath    string `mapstructure:"filePath"`
	DatabaseURL string `mapstructure:"databaseUrl"`
}

type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type MetricsConfig struct {
	Path string `mapstructure:"path"`
}

// PromptConfig carries the persona fixed points interpolated into the
// assembled instructions. Field values from the customer record are never
// configured here; only the agent identity is.
type PromptConfig struct {
	AgentName         string `mapstructure:"agentName"`
	Organization      string `mapstructure:"organization"`
	Locale            string `mapstructure:"locale"`
	EscalationContact string `mapstructure:"escalationContact"`
}

// CredentialKind tags how the upstream realtime vendor is authenticated.
type CredentialKind string

const (
	CredentialAPIKey  CredentialKind = "api_key"
	CredentialAmbient CredentialKind = "ambient"
)

// Credential is resolved once at startup and passed by value to the
// realtime driver. An empty key selects ambient identity.
type Credential struct {
	Kind   CredentialKind
	APIKey string
}

type RealtimeConfig struct {
	Path   string `mapstructure:"path"`
	APIKey string `mapstructure:"apiKey"`
}

// ResolveCredential maps the configured key onto the tagged credential
// variant, preferring an explicit key over ambient identity.
func (c RealtimeConfig) ResolveCredential() Credential {
	if c.APIKey != "" {
		return Credential{Kind: CredentialAPIKey, APIKey: c.APIKey}
	}
	return Credential{Kind: CredentialAmbient}
}

type RabbitMQConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	ExchangeName string `mapstructure:"exchangeName"`
}

type BatchConfig struct {
	InstructionRefreshSchedule string        `mapstructure:"instructionRefreshSchedule"`
	InstructionRefreshTimeout  time.Duration `mapstructure:"instructionRefreshTimeout"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("server.port", 8765)
	viper.SetDefault("server.readTimeout", 15*time.Second)
	viper.SetDefault("server.writeTimeout", 15*time.Second)
	viper.SetDefault("server.idleTimeout", 60*time.Second)
	viper.SetDefault("server.rateLimit.enabled", true)
	viper.SetDefault("server.rateLimit.rps", 10)
	viper.SetDefault("server.rateLimit.burst", 20)
	viper.SetDefault("server.auth.enabled", false)
	viper.SetDefault("server.auth.jwtSecret", "")
	viper.SetDefault("storage.driver", "file")
	viper.SetDefault("storage.filePath", "data/customer_data.json")
	viper.SetDefault("storage.databaseUrl", "")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")
	viper.SetDefault("metrics.path", "/metrics")
	viper.SetDefault("prompt.agentName", "Claudia")
	viper.SetDefault("prompt.organization", "StoneInk Corporation")
	viper.SetDefault("prompt.locale", "Australia")
	viper.SetDefault("prompt.escalationContact", "supportloan@stoneink.com")
	viper.SetDefault("realtime.path", "/realtime")
	viper.SetDefault("realtime.apiKey", "")
	viper.SetDefault("rabbitmq.enabled", false)
	viper.SetDefault("rabbitmq.host", "localhost")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.username", "guest")
	viper.SetDefault("rabbitmq.password", "guest")
	viper.SetDefault("rabbitmq.exchangeName", "voicecollect")
	viper.SetDefault("batch.instructionRefreshSchedule", "@every 5m")
	viper.SetDefault("batch.instructionRefreshTimeout", 30*time.Second)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file not found, using defaults and environment variables.")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
