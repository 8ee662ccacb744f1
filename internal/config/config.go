package config

import (
	"os"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// SMTP / outbound mail
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string

	// HeadEmail receives the new-submission mail for every application.
	HeadEmail string

	// Document store (S3/MinIO)
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3Region        string
	S3UseSSL        bool
	DocumentsBucket string
	DocumentsFolder string
	// PublicBaseURL is prepended to object keys to form the stored URLs.
	PublicBaseURL string

	// ResetTokenTTL bounds how long a password-reset link stays valid.
	ResetTokenTTL time.Duration

	// Server
	Port        string
	CORSOrigins string

	// TeachersConfigPath points at the per-course teacher directory file.
	TeachersConfigPath string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "tti_admissions"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		SMTPHost: getEnv("SMTP_HOST", ""),
		SMTPPort: parseInt(getEnv("SMTP_PORT", "587"), 587),
		SMTPUser: getEnv("SMTP_USER", ""),
		SMTPPass: getEnv("SMTP_PASS", ""),
		MailFrom: getEnv("MAIL_FROM", getEnv("SMTP_USER", "")),

		HeadEmail: getEnv("HEAD_EMAIL", ""),

		S3Endpoint:      getEnv("S3_ENDPOINT", "localhost:9000"),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnv("S3_SECRET_KEY", ""),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3UseSSL:        getEnv("S3_USE_SSL", "false") == "true",
		DocumentsBucket: getEnv("S3_DOCUMENTS_BUCKET", "tti-admission-documents"),
		DocumentsFolder: getEnv("S3_DOCUMENTS_FOLDER", "tti/admissions"),
		PublicBaseURL:   getEnv("S3_PUBLIC_BASE_URL", ""),

		ResetTokenTTL: parseDuration(getEnv("RESET_TOKEN_TTL", "30m")),

		Port:        getEnv("PORT", "5530"),
		CORSOrigins: getEnv("CORS_ORIGINS", ""),

		TeachersConfigPath: getEnv("TEACHERS_CONFIG_PATH", "teachers.json"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

func parseInt(s string, fallback int) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return fallback
		}
		n = n*10 + int(r-'0')
	}
	if n == 0 {
		return fallback
	}
	return n
}
