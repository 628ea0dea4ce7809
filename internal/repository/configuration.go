package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"change-audit/internal/domain"

	log "github.com/sirupsen/logrus"
)

const queryTimeout = 5 * time.Second

type postgresConfigurationRepository struct {
	db *sql.DB
}

func NewPostgresConfigurationRepository(db *sql.DB) *postgresConfigurationRepository {
	return &postgresConfigurationRepository{db: db}
}

// FindByEntity returns the first configuration row whose logical name matches
// exactly. No ordering is applied, so with duplicate rows the winner is undefined;
// the unique index on logicalname keeps that from happening.
func (r *postgresConfigurationRepository) FindByEntity(ctx context.Context, logicalName string) (*domain.AuditConfiguration, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT logicalname, attributes
	          FROM customauditconfiguration
	          WHERE logicalname = $1
	          LIMIT 1`

	var cfg domain.AuditConfiguration
	var attributes sql.NullString

	err := r.db.QueryRowContext(ctx, query, logicalName).Scan(&cfg.LogicalName, &attributes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConfigurationNotFound
		}
		log.WithError(err).WithField("entity", logicalName).Error("Failed to query audit configuration")
		return nil, fmt.Errorf("failed to query audit configuration: %w", err)
	}

	if attributes.Valid {
		cfg.Attributes = attributes.String
	}

	return &cfg, nil
}
