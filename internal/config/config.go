package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	SMTP     SMTPConfig
	Meeting  MeetingConfig
	Realtime RealtimeConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
}

type DatabaseConfig struct {
	Connection      string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type MeetingConfig struct {
	BaseURL     string
	TokenSecret string
	MaxTokenTTL time.Duration
	GraceBefore time.Duration
	GraceAfter  time.Duration
}

type RealtimeConfig struct {
	BroadcastTopic string
	PresenceTTL    time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
		},
		Database: DatabaseConfig{
			Connection:      getEnv("DB_CONNECTION_STRING", ""),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 8),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 64),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "StudySync"),
		},
		Meeting: MeetingConfig{
			BaseURL:     getEnv("MEETING_BASE_URL", "https://meet.studysync.app"),
			TokenSecret: getEnv("MEETING_TOKEN_SECRET", ""),
			MaxTokenTTL: getEnvAsDuration("MEETING_MAX_TOKEN_TTL", 4*time.Hour),
			GraceBefore: getEnvAsDuration("ROOM_GRACE_BEFORE", 15*time.Minute),
			GraceAfter:  getEnvAsDuration("ROOM_GRACE_AFTER", 30*time.Minute),
		},
		Realtime: RealtimeConfig{
			BroadcastTopic: getEnv("BROADCAST_TOPIC_NAME", "REALTIME_BROADCAST"),
			PresenceTTL:    getEnvAsDuration("PRESENCE_TTL", 90*time.Second),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
