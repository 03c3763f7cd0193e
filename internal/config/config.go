package config

import (
	"os"
	"strings"
)

type Config struct {
	Supabase SupabaseConfig
	Cohere   CohereConfig
	GinMode  string
}

type SupabaseConfig struct {
	URL            string
	AnonKey        string
	ServiceRoleKey string
	JWTSecret      string
	DatabaseURL    string
}

type CohereConfig struct {
	APIKey string
}

func New() *Config {
	return &Config{
		Supabase: SupabaseConfig{
			URL:            getEnv("SUPABASE_URL", ""),
			AnonKey:        getEnv("SUPABASE_ANON_KEY", ""),
			ServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
			JWTSecret:      getEnv("SUPABASE_JWT_SECRET", ""),
			DatabaseURL:    getEnv("SUPABASE_DB_URL", ""),
		},
		Cohere: CohereConfig{
			APIKey: getEnv("COHERE_API_KEY", ""),
		},
		GinMode: getEnv("GIN_MODE", "debug"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) GetCORSOrigins() []string {
	origins := getEnv("CORS_ORIGINS", "http://localhost:3000")
	return strings.Split(origins, ",")
}
