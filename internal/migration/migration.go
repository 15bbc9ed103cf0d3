package migration

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	authdomain "github.com/rutujak-bora/crm/internal/auth/domain"
	biddomain "github.com/rutujak-bora/crm/internal/bid/domain"
	bidorderdomain "github.com/rutujak-bora/crm/internal/bidorder/domain"
	customerdomain "github.com/rutujak-bora/crm/internal/customer/domain"
	leaddomain "github.com/rutujak-bora/crm/internal/lead/domain"
	margindomain "github.com/rutujak-bora/crm/internal/margin/domain"
	pidomain "github.com/rutujak-bora/crm/internal/proformainvoice/domain"
	podomain "github.com/rutujak-bora/crm/internal/purchaseorder/domain"
	"gorm.io/gorm"
)

//go:embed sql/*.sql
var embeddedMigrations embed.FS

const migrationsDir = "sql"

// Models lists every persisted type, in creation order.
func Models() []any {
	return []any{
		&customerdomain.Customer{},
		&leaddomain.Lead{},
		&pidomain.ProformaInvoice{},
		&podomain.PurchaseOrder{},
		&margindomain.Margin{},
		&authdomain.User{},
		&biddomain.Bid{},
		&bidorderdomain.Order{},
	}
}

// Migrate brings the schema up to date. Postgres runs the versioned SQL
// files; mysql and sqlite are auto-migrated from the models.
func Migrate(conn *gorm.DB, dbType string) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}
	if dbType != "postgres" {
		return conn.AutoMigrate(Models()...)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return err
	}
	return RunMigrations(sqlDB)
}

// RunMigrations applies the embedded SQL files to a postgres database.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Closing the migrator would close the shared *sql.DB.

	return nil
}
