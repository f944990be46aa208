package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL       string
	Port              string
	IsProduction      bool
	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// Messaging
	AmqpURL       string `mapstructure:"AMQP_URL"`
	EventExchange string `mapstructure:"EVENT_EXCHANGE"`
	EventQueue    string `mapstructure:"EVENT_QUEUE"`

	// Wallet defaults applied to newly provisioned driver wallets.
	WalletMinimumThreshold int64 `mapstructure:"WALLET_MINIMUM_THRESHOLD"`
	WalletDailyCap         int64 `mapstructure:"WALLET_DAILY_CAP"`
	WalletMonthlyCap       int64 `mapstructure:"WALLET_MONTHLY_CAP"`

	// External OAuth Providers
	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURL  string `mapstructure:"GOOGLE_REDIRECT_URL"`
	FrontendBaseURL    string `mapstructure:"FRONTEND_BASE_URL"`
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "sunucar-backend")
	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("EVENT_EXCHANGE", "sunucar.events")
	viper.SetDefault("EVENT_QUEUE", "wallet-service")
	viper.SetDefault("WALLET_MINIMUM_THRESHOLD", 1000)
	viper.SetDefault("WALLET_DAILY_CAP", 100000)
	viper.SetDefault("WALLET_MONTHLY_CAP", 1000000)
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "")
	viper.SetDefault("GOOGLE_REDIRECT_URL", "")
	viper.SetDefault("FRONTEND_BASE_URL", "http://localhost:3000")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.AmqpURL = viper.GetString("AMQP_URL")
	if cfg.AmqpURL == "" {
		log.Println("Warning: AMQP_URL not set. Ride and payment events will not be consumed.")
	}
	cfg.EventExchange = viper.GetString("EVENT_EXCHANGE")
	cfg.EventQueue = viper.GetString("EVENT_QUEUE")

	cfg.WalletMinimumThreshold = viper.GetInt64("WALLET_MINIMUM_THRESHOLD")
	cfg.WalletDailyCap = viper.GetInt64("WALLET_DAILY_CAP")
	cfg.WalletMonthlyCap = viper.GetInt64("WALLET_MONTHLY_CAP")

	cfg.GoogleClientID = viper.GetString("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = viper.GetString("GOOGLE_CLIENT_SECRET")
	cfg.GoogleRedirectURL = viper.GetString("GOOGLE_REDIRECT_URL")
	cfg.FrontendBaseURL = viper.GetString("FRONTEND_BASE_URL")

	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" || cfg.GoogleRedirectURL == "" {
		log.Println("Warning: Google OAuth environment variables not fully set. Google sign-in will not function.")
	}

	return cfg, nil
}
