package repo

import (
	"database/sql"
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded schema migrations. Runs over a throwaway
// database/sql connection because golang-migrate does not speak pgxpool.
func Migrate(dsn string, log zerolog.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil { return err }
	db, err := sql.Open("pgx", dsn)
	if err != nil { return err }
	drv, err := pgxmigrate.WithInstance(db, &pgxmigrate.Config{})
	if err != nil { db.Close(); return err }
	m, err := migrate.NewWithInstance("iofs", src, "pgx", drv)
	if err != nil { db.Close(); return err }
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) { return err }
	log.Info().Msg("migrations applied")
	return nil
}
