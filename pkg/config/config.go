package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// SpeechPrivacyOnDevice keeps transcription local; SpeechPrivacyCloud
// allows the cloud recognizer. Consulted before the recognizer is invoked.
const (
	SpeechPrivacyOnDevice = "on_device"
	SpeechPrivacyCloud    = "cloud"
)

type Config struct {
	Port     string
	LogLevel string

	SQLitePath string

	JWTSecret string

	// DeviceUserID is the identity signed in on this device, if any; it
	// drives the background pull scheduler and readout restoration.
	DeviceUserID string

	FirebaseProjectID   string
	FirebaseCredentials string
	FCMTopicPrefix      string

	SyncPullInterval time.Duration

	ReadoutInterval    time.Duration
	ReadoutCapDuration time.Duration
	ReadoutCapCount    int

	SnoozeDuration time.Duration

	SpeechPrivacyMode   string
	SpeechMinConfidence float64
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		SQLitePath: getEnv("SQLITE_PATH", "remindkit.db"),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),

		DeviceUserID: getEnv("DEVICE_USER_ID", ""),

		FirebaseProjectID:   getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		FCMTopicPrefix:      getEnv("FCM_TOPIC_PREFIX", "reminders-"),

		SyncPullInterval: getDuration("SYNC_PULL_INTERVAL", 5*time.Minute),

		ReadoutInterval:    getDuration("READOUT_INTERVAL", 30*time.Second),
		ReadoutCapDuration: getDuration("READOUT_CAP_DURATION", 5*time.Minute),
		ReadoutCapCount:    getInt("READOUT_CAP_COUNT", 0),

		SnoozeDuration: getDuration("SNOOZE_DURATION", 10*time.Minute),

		SpeechPrivacyMode:   getEnv("SPEECH_PRIVACY_MODE", SpeechPrivacyOnDevice),
		SpeechMinConfidence: getFloat("SPEECH_MIN_CONFIDENCE", 0.5),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
