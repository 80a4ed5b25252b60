package config

import (
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

type MongoConfig struct {
	URI    string `mapstructure:"uri"`
	DBName string `mapstructure:"dbName"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type SweeperConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	Interval       time.Duration `mapstructure:"interval"`
	StallThreshold time.Duration `mapstructure:"stallThreshold"`
	SimulatedWork  time.Duration `mapstructure:"simulatedWork"`
}

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	JWT     JWTConfig     `mapstructure:"jwt"`
	Sweeper SweeperConfig `mapstructure:"sweeper"`
}

// LoadConfig reads configuration from the YAML file and overrides it with
// environment variables. A missing config file is not an error; the env vars
// alone can carry a full configuration.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("mongo.uri", "MONGO_URI")
	viper.BindEnv("mongo.dbName", "MONGO_DBNAME")
	viper.BindEnv("jwt.secret", "JWT_SECRET")
	viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	viper.BindEnv("sweeper.enabled", "SWEEPER_ENABLED")
	viper.BindEnv("sweeper.interval", "SWEEPER_INTERVAL")
	viper.BindEnv("sweeper.stallThreshold", "SWEEPER_STALL_THRESHOLD")
	viper.BindEnv("sweeper.simulatedWork", "SWEEPER_SIMULATED_WORK")

	viper.SetDefault("server.port", "8080")
	viper.SetDefault("jwt.expiration", "24h")
	viper.SetDefault("sweeper.enabled", true)
	viper.SetDefault("sweeper.interval", "30s")
	viper.SetDefault("sweeper.stallThreshold", "48h")
	viper.SetDefault("sweeper.simulatedWork", "30s")

	err = viper.ReadInConfig()
	if err != nil {
		// Only fail on real read errors, not on a missing file.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return
}
