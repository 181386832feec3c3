package config

import (
	"errors"

	"github.com/spf13/viper"
)

// Config is the environment surface of the service. Secrets come from the
// environment; everything else can live in configs/config.yaml.
type Config struct {
	ServerAddress  string   `mapstructure:"server_address"`
	GithubToken    string   `mapstructure:"github_token"`
	GithubUsername string   `mapstructure:"github_username"`
	KakaoAPIKey    string   `mapstructure:"kakao_api_key"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	RequireGeo     bool     `mapstructure:"require_geo"`
	FallbackLat    float64  `mapstructure:"fallback_lat"`
	FallbackLng    float64  `mapstructure:"fallback_lng"`
}

// LoadConfig reads configuration from the given directory and the
// environment. Environment variables override file values. A missing config
// file is fine as long as the environment covers the surface.
func LoadConfig(path string) (Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server_address", "0.0.0.0:8080")
	viper.SetDefault("github_username", "halimcho")
	viper.SetDefault("require_geo", true)
	// Seoul City Hall, the coordinate substituted when geolocation fails.
	viper.SetDefault("fallback_lat", 37.5662952)
	viper.SetDefault("fallback_lng", 126.9779451)

	viper.BindEnv("github_token", "GITHUB_TOKEN")
	viper.BindEnv("github_username", "GITHUB_USERNAME")
	viper.BindEnv("kakao_api_key", "KAKAO_API_KEY")
	viper.BindEnv("server_address", "SERVER_ADDRESS")
	// Comma-separated in the environment; viper's default decode hook
	// splits it into the slice.
	viper.BindEnv("allowed_origins", "ALLOWED_ORIGINS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}
