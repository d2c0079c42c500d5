// Package repositories provides the data access layer. It owns the database
// handle, schema migration, and the gorm implementations of the store
// interfaces the services consume.
package repositories

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vestra/internal/config"
	"vestra/internal/models"
	"vestra/internal/repositories/cache"
)

// DB is the global database instance used across the application.
var DB *gorm.DB

// CacheService is the global redis-backed cache.
var CacheService *cache.CacheService

// DBConfig holds database connection pool configuration.
type DBConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

var dbConfig = DBConfig{
	MaxIdleConns:    10,
	MaxOpenConns:    100,
	ConnMaxLifetime: time.Hour,
	ConnMaxIdleTime: time.Minute * 30,
}

// InitDB connects to PostgreSQL and Redis, configures pooling, and migrates
// the ledger schema.
func InitDB() error {
	dsn := "host=" + config.GetEnv("DB_HOST", "localhost") +
		" user=" + config.GetEnv("DB_USER", "postgres") +
		" password=" + config.GetEnv("DB_PASSWORD", "postgres") +
		" dbname=" + config.GetEnv("DB_NAME", "vestra") +
		" port=" + config.GetEnv("DB_PORT", "5432") +
		" sslmode=" + config.GetEnv("DB_SSLMODE", "disable")

	logLevel := logger.Warn
	if !config.IsProduction() {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return err
	}
	DB = db

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(config.GetIntEnv("DB_MAX_IDLE_CONNS", dbConfig.MaxIdleConns))
	sqlDB.SetMaxOpenConns(config.GetIntEnv("DB_MAX_OPEN_CONNS", dbConfig.MaxOpenConns))
	sqlDB.SetConnMaxLifetime(config.GetDurationEnv("DB_CONN_MAX_LIFETIME", dbConfig.ConnMaxLifetime))
	sqlDB.SetConnMaxIdleTime(config.GetDurationEnv("DB_CONN_MAX_IDLE_TIME", dbConfig.ConnMaxIdleTime))

	redisCfg := &cache.RedisConfig{
		Host:     config.GetEnv("REDIS_HOST", "localhost"),
		Port:     config.GetEnv("REDIS_PORT", "6379"),
		Password: config.GetEnv("REDIS_PASSWORD", ""),
		DB:       config.GetIntEnv("REDIS_DB", 0),
	}
	CacheService = cache.NewCacheService(cache.NewRedisClient(redisCfg), 24*time.Hour)

	if err := DB.AutoMigrate(
		&models.Wallet{},
		&models.Plan{},
		&models.Investment{},
		&models.Transaction{},
		&models.VerificationCode{},
	); err != nil {
		return err
	}

	log.Println("database initialised")
	return nil
}
