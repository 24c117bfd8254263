package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Phacet   PhacetConfig   `mapstructure:"phacet"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Trigger  TriggerConfig  `mapstructure:"trigger"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	// PublicURL is the externally reachable base URL that webhook
	// callback URLs are derived from. Registration fails without it.
	PublicURL string `mapstructure:"public_url"`
}

type DatabaseConfig struct {
	Path           string `mapstructure:"path"`
	MaxConnections int    `mapstructure:"max_connections"`
}

// PhacetConfig points the client at the remote tabular-data API.
type PhacetConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	APIToken string        `mapstructure:"api_token"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// EngineConfig describes the workflow engine callback that filtered
// webhook records are forwarded to.
type EngineConfig struct {
	CallbackURL string        `mapstructure:"callback_url"`
	Secret      string        `mapstructure:"secret"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type AuthConfig struct {
	JWTSecret  string        `mapstructure:"jwt_secret"`
	APIKeyHash string        `mapstructure:"api_key_hash"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

type TriggerConfig struct {
	// KeepRemoteEndpoint skips the remote DELETE on deactivation so the
	// registered endpoint survives; local state is cleared either way.
	KeepRemoteEndpoint bool   `mapstructure:"keep_remote_endpoint"`
	Description        string `mapstructure:"description"`
}

type LoggingConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	FilePath string `mapstructure:"file_path"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
