package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Config holds the application's configuration values.
type Config struct {
	AppName   string        `json:"appname"`
	AppEnv    string        `json:"appenv"`
	AppPort   uint16        `json:"appport"`
	GinMode   string        `json:"ginmode"`
	DBHost    string        `json:"dbhost"`
	DBPort    uint16        `json:"dbport"`
	DBName    string        `json:"dbname"`
	DBUser    string        `json:"dbuser"`
	DBPass    string        `json:"dbpass"`
	JWTSecret string        `json:"-"`
	JWTExpiry time.Duration `json:"jwtexpiry"`
	MongoURI  string        `json:"mongouri"`
	MongoDB   string        `json:"mongodb"`
	UploadDir string        `json:"uploaddir"`

	SMTPHost    string `json:"smtphost"`
	SMTPPort    string `json:"smtpport"`
	SMTPUser    string `json:"smtpuser"`
	SMTPPass    string `json:"-"`
	SenderEmail string `json:"senderemail"`
}

var config *Config
var once sync.Once

// LoadConfig loads the environment variables from a .env file, and returns a singleton Config instance.
func LoadConfig() *Config {
	once.Do(func() {
		// A missing .env file is fine; variables may come from the environment.
		if err := godotenv.Load(); err != nil {
			log.Printf("No .env file loaded: %v", err)
		}

		appPort, _ := strconv.ParseUint(os.Getenv("APPPORT"), 10, 16)
		dbPort, _ := strconv.ParseUint(os.Getenv("DBPORT"), 10, 16)

		expiryHours, _ := strconv.Atoi(os.Getenv("JWTEXPIRYHOURS"))
		if expiryHours <= 0 {
			// Tokens live for a week unless configured otherwise.
			expiryHours = 168
		}

		uploadDir := os.Getenv("UPLOADDIR")
		if uploadDir == "" {
			uploadDir = "tmp/uploads"
		}

		config = &Config{
			AppName:   os.Getenv("APPNAME"),
			AppEnv:    os.Getenv("APPENV"),
			AppPort:   uint16(appPort),
			GinMode:   os.Getenv("GINMODE"),
			DBHost:    os.Getenv("DBHOST"),
			DBPort:    uint16(dbPort),
			DBName:    os.Getenv("DBNAME"),
			DBUser:    os.Getenv("DBUSER"),
			DBPass:    os.Getenv("DBPASS"),
			JWTSecret: os.Getenv("JWTSECRET"),
			JWTExpiry: time.Duration(expiryHours) * time.Hour,
			MongoURI:  os.Getenv("MONGOURI"),
			MongoDB:   os.Getenv("MONGODB"),
			UploadDir: uploadDir,

			SMTPHost:    os.Getenv("SMTPHOST"),
			SMTPPort:    os.Getenv("SMTPPORT"),
			SMTPUser:    os.Getenv("SMTPUSER"),
			SMTPPass:    os.Getenv("SMTPPASS"),
			SenderEmail: os.Getenv("SENDEREMAIL"),
		}
	})
	return config
}

// ConnectMySQL establishes a connection to a MySQL database using the configuration values.
func ConnectMySQL() (*gorm.DB, error) {
	cfg := LoadConfig()
	// Build the Data Source Name (DSN) using the configuration values.
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true", cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)

	// TranslateError surfaces duplicate-key violations as gorm.ErrDuplicatedKey
	// regardless of the underlying driver; booking relies on it.
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	return db, nil
}
