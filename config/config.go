package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/yeremiapane/table-ordering/utils"
)

type Config struct {
	ServerPort    string
	GinMode       string
	LogLevel      string
	DBDriver      string
	DBDSN         string
	JWTSecret     string
	JWTTTL        time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CORSOrigin    string
	PublicBaseURL string
	BcryptCost    int
	AdminUsername string
	AdminPassword string
	RateLimit     float64
	RateBurst     int
}

// Load reads .env (if present) and the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Println("Warning: .env file not found")
	}

	return &Config{
		ServerPort:    getEnv("PORT", "8080"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DBDriver:      strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
		DBDSN:         getEnv("DB_DSN", "table_ordering.db"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret-change-me"),
		JWTTTL:        time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CORSOrigin:    getEnv("CORS_ORIGIN", "*"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:5173"), "/"),
		BcryptCost:    getEnvInt("BCRYPT_COST", utils.DefaultBcryptCost),
		AdminUsername: getEnv("ADMIN_USERNAME", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		RateLimit:     getEnvFloat("AUTH_RATE_LIMIT", 5),
		RateBurst:     getEnvInt("AUTH_RATE_BURST", 10),
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.ServerPort)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		utils.ErrorLogger.Warnf("Invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		utils.ErrorLogger.Warnf("Invalid %s=%q, using %v", key, v, def)
		return def
	}
	return f
}
