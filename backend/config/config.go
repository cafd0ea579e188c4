package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	ServerPort string

	// Live session settings. RTCAppCertificate signs the short-lived
	// join credentials handed out for the media transport.
	RTCAppID          string
	RTCAppCertificate string

	// External AI tutor endpoint. Empty disables the tutor proxy.
	TutorServiceURL string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBName:            getEnv("DB_NAME", "comunidade"),
		JWTSecret:         getEnv("JWT_SECRET", "secret"),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		RTCAppID:          getEnv("RTC_APP_ID", ""),
		RTCAppCertificate: getEnv("RTC_APP_CERTIFICATE", "rtc-secret"),
		TutorServiceURL:   getEnv("TUTOR_SERVICE_URL", ""),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
