package config

import (
	"os"
)

type Config struct {
	Port string

	LogLevel string
	Env      string

	MongoURL  string
	MongoDB   string
	RedisURL  string
	JWTSecret string

	UploadDir string
}

func LoadConfig() (*Config, error) {
	return &Config{
		Port:      GetEnv("PORT", "8080"),
		MongoURL:  GetEnv("MONGO_URL", "mongodb://localhost:27017"),
		MongoDB:   GetEnv("MONGO_DB", "agencydesk"),
		RedisURL:  GetEnv("REDIS_URL", "redis://localhost:6379"),
		JWTSecret: GetEnv("JWT_SECRET", "dev-secret-change-me"),
		UploadDir: GetEnv("UPLOAD_DIR", "./uploads"),
		Env:       GetEnv("ENV", "development"),
		LogLevel:  GetEnv("LOG_LEVEL", "info"),
	}, nil
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
