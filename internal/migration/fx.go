package migration

import (
	"github.com/pedidofacil/pedidofacil/internal/config"
	invoicedomain "github.com/pedidofacil/pedidofacil/internal/invoice/domain"
	orderdomain "github.com/pedidofacil/pedidofacil/internal/order/domain"
	"github.com/pedidofacil/pedidofacil/internal/seed"
	userdomain "github.com/pedidofacil/pedidofacil/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, settings config.Settings) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// SQLite and MySQL development databases rely on the model
			// definitions instead of the versioned SQL.
			if err := conn.AutoMigrate(
				&userdomain.User{},
				&userdomain.Session{},
				&orderdomain.Order{},
				&invoicedomain.Invoice{},
				&invoicedomain.InvoiceItem{},
			); err != nil {
				return err
			}
		}

		return seed.EnsureDefaultAdmin(conn, settings)
	}),
)
