package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	ServerPort string
	Timezone   string
}

func LoadConfig() (Config, error) {

	err := godotenv.Load()

	return Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "pr_velocity"),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		Timezone:   getEnv("TIMEZONE", "UTC"),
	}, err
}

// Location возвращает канонический часовой пояс для расчёта границ недель.
// Границы бакетов должны быть воспроизводимыми, поэтому пояс задаётся конфигом,
// а не берётся из окружения процесса.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
