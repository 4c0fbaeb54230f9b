package database

import (
	"context"
	"fmt"
	"time"

	"precast-erp/internal/config"
	"precast-erp/internal/logger"
	"precast-erp/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM and migrates
// the schema.
func NewConnection(cfg config.DBConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Gorm(),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns >= 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table the API uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Client{},
		&model.PBAProduct{},
		&model.Material{},
		&model.Armature{},
		&model.StockItem{},
		&model.StockMovement{},
		&model.DailyReport{},
		&model.ReportProduction{},
		&model.ReportMaterialUsage{},
		&model.ReportArmatureProduction{},
		&model.ReportPersonnel{},
		&model.Order{},
		&model.OrderItem{},
		&model.Quote{},
		&model.Invoice{},
		&model.Payment{},
		&model.DocumentCounter{},
		&model.AuditLog{},
	)
}

// KeepAlive pings the database every interval until ctx is done, so idle
// pooled connections are not dropped by proxies in front of postgres.
func KeepAlive(ctx context.Context, db *gorm.DB, interval time.Duration) {
	if interval <= 0 {
		return
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.LogError("database", "KeepAlive", "resolve sql.DB", nil, err)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			if err := sqlDB.PingContext(pingCtx); err != nil {
				logger.LogError("database", "KeepAlive", "ping", nil, err)
			}
			cancel()
		}
	}
}
