package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Client configures the room session binary.
type Client struct {
	Endpoint    string `mapstructure:"endpoint"`
	Room        string `mapstructure:"room"`
	Identity    string `mapstructure:"identity"`
	DisplayName string `mapstructure:"display_name"`
	AgentLabel  string `mapstructure:"agent_label"`
	TokenURL    string `mapstructure:"token_url"`
	Token       string `mapstructure:"token"`
	MicAllowed  bool   `mapstructure:"mic_allowed"`
	Bootstrap   string `mapstructure:"bootstrap"`
}

// Tokend configures the token service binary.
type Tokend struct {
	Mode      string        `mapstructure:"mode"`
	Port      int           `mapstructure:"port"`
	APIKey    string        `mapstructure:"api_key"`
	APISecret string        `mapstructure:"api_secret"`
	RoomURL   string        `mapstructure:"room_url"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type Config struct {
	Client Client `mapstructure:"client"`
	Tokend Tokend `mapstructure:"tokend"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("client.room", "support")
	v.SetDefault("client.display_name", "Guest")
	v.SetDefault("client.agent_label", "agent")
	v.SetDefault("client.token_url", "http://localhost:8080")
	v.SetDefault("client.mic_allowed", true)
	v.SetDefault("tokend.mode", "release")
	v.SetDefault("tokend.port", 8080)
	v.SetDefault("tokend.room_url", "wss://localhost:7880")
	v.SetDefault("tokend.token_ttl", "1h")

	v.SetEnvPrefix("roomlink")
	v.AutomaticEnv()
	v.BindEnv("tokend.api_key", "ROOMLINK_API_KEY")
	v.BindEnv("tokend.api_secret", "ROOMLINK_API_SECRET")
	v.BindEnv("client.token", "ROOMLINK_TOKEN")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
