package migration

import (
	"strings"

	"github.com/go-pg/migrations/v8"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	services "github.com/webtor-io/common-services"
)

const sqlDir = "migrations"

// PGMigration applies the SQL files found in sqlDir together with the Go
// migrations registered on col.
type PGMigration struct {
	db  *services.PG
	col *migrations.Collection
}

func NewPGMigration(db *services.PG, col *migrations.Collection) *PGMigration {
	return &PGMigration{
		db:  db,
		col: col,
	}
}

func (s *PGMigration) Run(a ...string) error {
	db := s.db.Get()
	if db == nil {
		log.Warn("database not initialized, skipping migrations")
		return nil
	}
	if err := s.col.DiscoverSQLMigrations(sqlDir); err != nil {
		return errors.Wrapf(err, "failed to discover migrations in %v", sqlDir)
	}
	if _, _, err := s.col.Run(db, "init"); err != nil {
		return errors.Wrap(err, "failed to init migrations table")
	}
	oldVersion, newVersion, err := s.col.Run(db, a...)
	if err != nil {
		return errors.Wrapf(err, "failed to migrate from %v to %v", oldVersion, newVersion)
	}
	l := log.WithFields(log.Fields{
		"command": strings.Join(a, " "),
		"version": newVersion,
	})
	if newVersion != oldVersion {
		l.WithField("previous", oldVersion).Info("database migrated")
	} else {
		l.Info("database is up to date")
	}
	return nil
}
