package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/GG-Muniz/FlavorLab-sub000/models"
)

var DB *gorm.DB

// Settings holds everything the ledger service reads from the environment.
type Settings struct {
	Port       string
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBSSLMode  string
	JWTSecret  string
	RedisAddr  string
	LogLevel   string

	HuggingFaceToken string
	AWSRegion        string
	SNSFCMArn        string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Load reads .env when present and then the process environment.
func Load() Settings {
	// a missing .env is fine in containers
	_ = godotenv.Load()

	return Settings{
		Port:             getenv("PORT", "8080"),
		DBHost:           getenv("DB_HOST", "localhost"),
		DBUser:           os.Getenv("DB_USER"),
		DBPassword:       os.Getenv("DB_PASSWORD"),
		DBName:           os.Getenv("DB_NAME"),
		DBPort:           getenv("DB_PORT", "5432"),
		DBSSLMode:        getenv("DB_SSLMODE", "disable"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
		RedisAddr:        os.Getenv("REDIS_ADDRESS"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		HuggingFaceToken: os.Getenv("HUGGINGFACE_TOKEN"),
		AWSRegion:        getenv("AWS_REGION", "ap-south-1"),
		SNSFCMArn:        os.Getenv("SNS_FCM_ARN"),
	}
}

func (s Settings) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		s.DBHost, s.DBUser, s.DBPassword, s.DBName, s.DBPort, s.DBSSLMode)
}

// InitDB opens the database, migrates the ledger tables and stores the handle
// in DB.
func InitDB(s Settings) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(s.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	DB = db
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Meal{},
		&models.CalorieGoal{},
		&models.DailyNote{},
		&models.Alert{},
		&models.UserDevice{},
	)
	if err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}
	return nil
}
