package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort  string
	BaseURL     string
	DatabaseDSN string

	AccessSecret string

	KafkaBroker   string
	KafkaTopic    string
	KafkaGroupID  string
	KafkaUsername string
	KafkaPassword string

	CloudinaryURL string

	// IdentityURL is the external login provider's session-data endpoint.
	IdentityURL string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	MailFrom     string
	MailFromName string

	MetricsAddr string

	AdminEmail    string
	AdminPassword string
	AdminName     string
}

func LoadConfig() Config {
	if os.Getenv("ENV") != "prod" {
		if err := godotenv.Overload(); err != nil {
			log.Println("Warning: env file not found or could not be loaded:", err)
		}
	}

	return Config{
		ServerPort:  getEnv("SERVER_PORT", ":3000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3001"),
		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		AccessSecret: os.Getenv("ACCESS_SECRET"),

		KafkaBroker:   os.Getenv("KAFKA_BROKER"),
		KafkaTopic:    getEnv("KAFKA_TOPIC", "visa.application.events"),
		KafkaGroupID:  os.Getenv("KAFKA_GROUP_ID"),
		KafkaUsername: os.Getenv("KAFKA_USERNAME"),
		KafkaPassword: os.Getenv("KAFKA_PASSWORD"),

		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),

		IdentityURL: getEnv("IDENTITY_URL", "https://demobackend.emergentagent.com/auth/v1/env/oauth/session-data"),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnv("MAIL_FROM", "visa@meowls.gov"),
		MailFromName: getEnv("MAIL_FROM_NAME", "Meowls Immigration"),

		MetricsAddr: os.Getenv("METRICS_ADDR"),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getEnv("ADMIN_NAME", "Immigration Officer"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
