package config

import (
	"errors"

	"github.com/spf13/viper"
)

// Config holds everything the process reads from config.env or the
// environment. Field names map to env keys via mapstructure tags.
type Config struct {
	DSN  string `mapstructure:"DSN"`
	Port string `mapstructure:"PORT"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Process-wide provider secret, only consulted when a recipient has no
	// secret of their own AND fallback is explicitly enabled. Meant for
	// sandbox/test setups; leave fallback off in production so each
	// recipient's signatures are only ever checked against their own key.
	RazorpayKeySecret     string `mapstructure:"RAZORPAY_KEY_SECRET"`
	RazorpayAllowFallback bool   `mapstructure:"RAZORPAY_ALLOW_FALLBACK"`

	Currency               string `mapstructure:"CURRENCY"`
	ProviderTimeoutSeconds int64  `mapstructure:"PROVIDER_TIMEOUT_SECONDS"`

	SupabaseURL    string `mapstructure:"SUPABASE_URL"`
	SupabaseKey    string `mapstructure:"SUPABASE_SERVICE_KEY"`
	SupabaseBucket string `mapstructure:"SUPABASE_BUCKET"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     string `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPSender   string `mapstructure:"SMTP_SENDER"`
}

// Load reads config.env from the given directory, with real environment
// variables taking precedence so containerized deploys work without a file.
func Load(path string) (Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("CURRENCY", "INR")
	viper.SetDefault("PROVIDER_TIMEOUT_SECONDS", 10)
	viper.SetDefault("RAZORPAY_ALLOW_FALLBACK", false)
	viper.SetDefault("SUPABASE_BUCKET", "avatars")

	if err := viper.ReadInConfig(); err != nil {
		// A missing file is fine when the environment carries the config.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	if cfg.DSN == "" {
		return Config{}, errors.New("DSN is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	return cfg, nil
}
