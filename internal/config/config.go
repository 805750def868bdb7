package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port                          string        `mapstructure:"PORT"`
	DatabasePath                  string        `mapstructure:"DATABASE_PATH"`
	JWTSecret                     string        `mapstructure:"JWT_SECRET"`
	DiscordBotToken               string        `mapstructure:"DISCORD_BOT_TOKEN"`
	DiscordNotificationsChannelID string        `mapstructure:"DISCORD_NOTIFICATIONS_CHANNEL_ID"`
	ListCacheTTL                  time.Duration `mapstructure:"LIST_CACHE_TTL"`
	EarliestListCacheTTL          time.Duration `mapstructure:"EARLIEST_LIST_CACHE_TTL"`
	CapacityCountsInstructors     bool          `mapstructure:"CAPACITY_COUNTS_INSTRUCTORS"`
}

func LoadConfig() *Config {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_PATH", "sugang.db")
	viper.SetDefault("LIST_CACHE_TTL", "10s")
	viper.SetDefault("EARLIEST_LIST_CACHE_TTL", "10m")
	viper.SetDefault("CAPACITY_COUNTS_INSTRUCTORS", false)

	viper.BindEnv("JWT_SECRET")
	viper.BindEnv("DISCORD_BOT_TOKEN")
	viper.BindEnv("DISCORD_NOTIFICATIONS_CHANNEL_ID")
	viper.BindEnv("LIST_CACHE_TTL")
	viper.BindEnv("EARLIEST_LIST_CACHE_TTL")
	viper.BindEnv("CAPACITY_COUNTS_INSTRUCTORS")

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}

	return &config
}
