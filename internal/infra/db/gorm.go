package db

import (
	"fmt"

	"github.com/qstina/relove-website/internal/config"
	"github.com/qstina/relove-website/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	// DATABASE_URL があれば最優先で使う
	if cfg.DatabaseURL != "" {
		return gorm.Open(postgres.Open(cfg.DatabaseURL), gcfg)
	}

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresSSLMode,
	)
	return gorm.Open(postgres.Open(dsn), gcfg)
}

// 起動時とテストで同じテーブル一覧を使う
func Models() []any {
	return []any{
		&model.User{},
		&model.Item{},
		&model.CartEntry{},
		&model.CartSelection{},
		&model.CheckoutSession{},
		&model.Order{},
		&model.OrderItem{},
		&model.SellerApplication{},
		&model.AuditLog{},
		&model.OutboxEvent{},
	}
}

// 1ユーザーにつき「有効な申請」と「開いている手続き」は1件まで。
// postgres と sqlite の両方が部分インデックスを持つ
var partialIndexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_seller_applications_active
		ON seller_applications (user_id) WHERE status IN ('pending', 'approved')`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_checkout_sessions_open
		ON checkout_sessions (user_id) WHERE status = 'open'`,
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	for _, stmt := range partialIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
