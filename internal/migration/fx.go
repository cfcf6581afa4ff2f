package migration

import (
	"github.com/smallbiznis/splitpay/internal/config"
	paymentdomain "github.com/smallbiznis/splitpay/internal/payment/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		// The embedded SQL targets postgres; other dialects (sqlite for
		// local experiments) fall back to the model definitions.
		if cfg.DBType != "postgres" {
			return conn.AutoMigrate(
				&paymentdomain.Payment{},
				&paymentdomain.LedgerEntry{},
				&paymentdomain.OutboxEvent{},
			)
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
