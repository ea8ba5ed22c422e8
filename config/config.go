package config

import (
	"QueueBot/internal/matchmaker"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// PlaceholderToken 示例配置里的占位 token，启动时拒绝
const PlaceholderToken = "SEU_TOKEN_AQUI"

var ErrTokenMissing = errors.New("discord token not configured")

type Config struct {
	Discord struct {
		Token  string
		Prefix string
	}
	Fee      string
	Stakes   []string
	Channels map[string]string // mode -> channel id
	Server   struct {
		Port string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
		Channel  string
	}
	JWT struct {
		Secret string
	}
	Log struct {
		Level string
	}
}

var C Config

// Load 读取 YAML；DISCORD_TOKEN 环境变量优先于文件中的 discord.token
func Load(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("discord.prefix", "!")
	v.SetDefault("server.port", ":3000")
	v.SetDefault("redis.channel", matchmaker.DefaultEventChannel)
	v.SetDefault("log.level", "info")
	if err := v.BindEnv("discord.token", "DISCORD_TOKEN"); err != nil {
		return err
	}
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	C = c
	return nil
}

func (c *Config) Validate() error {
	tok := strings.TrimSpace(c.Discord.Token)
	if tok == "" || tok == PlaceholderToken {
		return ErrTokenMissing
	}
	if _, err := c.FeeAmount(); err != nil {
		return err
	}
	if _, err := c.Catalog(); err != nil {
		return err
	}
	return nil
}

// FeeAmount 固定手续费，必须为正
func (c *Config) FeeAmount() (decimal.Decimal, error) {
	fee, err := matchmaker.ParseStake(c.Fee)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fee %q: %w", c.Fee, err)
	}
	if !fee.IsPositive() {
		return decimal.Zero, fmt.Errorf("fee %s must be positive", fee)
	}
	return fee, nil
}

// Catalog 根据 channels + stakes 构造固定的队列目录
func (c *Config) Catalog() (*matchmaker.Catalog, error) {
	stakes := make([]decimal.Decimal, 0, len(c.Stakes))
	for _, s := range c.Stakes {
		v, err := matchmaker.ParseStake(s)
		if err != nil {
			return nil, fmt.Errorf("stake %q: %w", s, err)
		}
		stakes = append(stakes, v)
	}
	return matchmaker.NewCatalog(c.Channels, stakes)
}
