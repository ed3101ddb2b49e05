package config

import (
	"os"
	"strings"
)

// ServerConfig holds connection and auth settings for the API server
type ServerConfig struct {
	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	Port          string
	CORSOrigins   string

	HostUsername string
	HostPassword string
	JWTSecret    string
}

// LoadServerConfig reads server settings from the environment
func LoadServerConfig() *ServerConfig {
	return &ServerConfig{
		MongoURI:      getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnvOrDefault("MONGO_DB", "gritdb"),
		RedisAddr:     redisAddr(getEnvOrDefault("REDIS_URI", "localhost:6379")),
		Port:          getEnvOrDefault("PORT", "8080"),
		CORSOrigins:   getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*"),
		HostUsername:  getEnvOrDefault("HOST_USERNAME", "admin"),
		HostPassword:  getEnvOrDefault("HOST_PASSWORD", "password123"),
		JWTSecret:     getEnvOrDefault("JWT_SECRET", "super-secret-key-change-in-production"),
	}
}

// redisAddr strips a redis:// scheme so the value can be used as go-redis Addr
func redisAddr(uri string) string {
	return strings.TrimPrefix(uri, "redis://")
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
