package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	SessionSecret       string
	DatabaseURL         string
	RedisURL            string
	SupabaseURL         string // e.g. https://<project>.supabase.co — used for storage sign URLs and public URLs
	SupabaseSecretKey   string // must be service_role key (Dashboard → API), not anon key
	InventoryAPIURL     string // external inventory API base, e.g. https://api.mazalbot.com
	InventoryAPIToken   string // static bearer token for the inventory API
	TelegramBotToken    string // verifies Telegram Mini App initData
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	HealthAdminKey      string
	DemoMode            bool // serve a deterministic synthetic inventory when the API fetch fails
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	port := viper.GetString("PORT")
	if port == "" {
		port = "8080"
	}
	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL")
	if env == "test" {
		if u := viper.GetString("DATABASE_URL_TEST"); u != "" {
			dbURL = u
		}
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}

	return &Config{
		Env:                 env,
		Port:                port,
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		SupabaseURL:         viper.GetString("SUPABASE_URL"),
		SupabaseSecretKey:   viper.GetString("SUPABASE_SECRET_KEY"),
		InventoryAPIURL:     inventoryAPIURL(viper.GetString("INVENTORY_API_URL")),
		InventoryAPIToken:   viper.GetString("INVENTORY_API_TOKEN"),
		TelegramBotToken:    viper.GetString("TELEGRAM_BOT_TOKEN"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		DemoMode:            strings.EqualFold(viper.GetString("DEMO_MODE"), "true"),
	}, nil
}

func inventoryAPIURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "https://api.mazalbot.com"
	}
	return strings.TrimRight(s, "/")
}
