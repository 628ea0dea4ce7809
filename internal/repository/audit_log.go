package repository

import (
	"context"
	"database/sql"
	"fmt"

	"change-audit/internal/domain"

	log "github.com/sirupsen/logrus"

	_ "github.com/lib/pq"
)

const insertAuditLogQuery = `
	INSERT INTO customauditlog (
		entityname, recordid, fieldname,
		oldvalue, newvalue,
		userid, operation, createdon
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type postgresAuditLogRepository struct {
	db *sql.DB
}

func NewPostgresAuditLogRepository(db *sql.DB) *postgresAuditLogRepository {
	return &postgresAuditLogRepository{db: db}
}

// Insert appends a single audit entry.
func (r *postgresAuditLogRepository) Insert(ctx context.Context, entry domain.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if err := insertEntry(ctx, r.db, entry); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"entity":    entry.EntityName,
			"record_id": entry.RecordID,
			"field":     entry.FieldName,
		}).Error("Failed to insert audit log entry")
		return fmt.Errorf("failed to insert audit log entry: %w", err)
	}

	log.WithFields(log.Fields{
		"entity":    entry.EntityName,
		"record_id": entry.RecordID,
		"field":     entry.FieldName,
	}).Debug("Audit log entry inserted")
	return nil
}

// InsertBatch appends all entries in one transaction: either every entry is
// stored or none is.
func (r *postgresAuditLogRepository) InsertBatch(ctx context.Context, entries []domain.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin audit log transaction: %w", err)
	}

	for _, entry := range entries {
		if err := insertEntry(ctx, tx, entry); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.WithError(rbErr).Error("Failed to roll back audit log transaction")
			}
			log.WithError(err).WithFields(log.Fields{
				"entity":    entry.EntityName,
				"record_id": entry.RecordID,
				"field":     entry.FieldName,
			}).Error("Failed to insert audit log entry in batch")
			return fmt.Errorf("failed to insert audit log entry %q: %w", entry.FieldName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit audit log transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"entity":    entries[0].EntityName,
		"record_id": entries[0].RecordID,
		"count":     len(entries),
	}).Debug("Audit log batch inserted")
	return nil
}

func insertEntry(ctx context.Context, db execer, entry domain.AuditEntry) error {
	_, err := db.ExecContext(ctx, insertAuditLogQuery,
		entry.EntityName,
		entry.RecordID,
		entry.FieldName,
		nullString(entry.OldValue),
		nullString(entry.NewValue),
		entry.UserID.String(),
		entry.Operation,
		entry.CreatedOn,
	)
	return err
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
