package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"change-audit/internal/domain"

	log "github.com/sirupsen/logrus"
)

// AuditSink appends one audit entry per call.
type AuditSink interface {
	Insert(ctx context.Context, entry domain.AuditEntry) error
}

// BatchSink is implemented by sinks that can append several entries atomically.
type BatchSink interface {
	InsertBatch(ctx context.Context, entries []domain.AuditEntry) error
}

var ErrBatchNotSupported = errors.New("audit sink does not support batch writes")

type AuditWriter struct {
	sink    AuditSink
	now     func() time.Time
	metrics Recorder
}

func NewAuditWriter(sink AuditSink, rec Recorder) *AuditWriter {
	return &AuditWriter{
		sink:    sink,
		now:     time.Now,
		metrics: orNoop(rec),
	}
}

// Write appends the entry for a single change. It does not retry.
func (w *AuditWriter) Write(ctx context.Context, change domain.FieldChange, mc domain.MutationContext) error {
	entry := domain.NewAuditEntry(change, mc, w.now())

	err := w.sink.Insert(ctx, entry)
	w.metrics.ObserveWrite(err)
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"entity":    mc.EntityType,
			"record_id": entry.RecordID,
			"field":     change.FieldName,
		}).Error("Failed to write audit entry")
		return fmt.Errorf("%w: field %q: %w", domain.ErrWriteFailure, change.FieldName, err)
	}

	return nil
}

func (w *AuditWriter) SupportsBatch() bool {
	_, ok := w.sink.(BatchSink)
	return ok
}

// WriteBatch appends the entries for all changes in one all-or-nothing call.
// Every entry carries the same timestamp.
func (w *AuditWriter) WriteBatch(ctx context.Context, changes []domain.FieldChange, mc domain.MutationContext) error {
	bs, ok := w.sink.(BatchSink)
	if !ok {
		return ErrBatchNotSupported
	}
	if len(changes) == 0 {
		return nil
	}

	createdOn := w.now()
	entries := make([]domain.AuditEntry, 0, len(changes))
	for _, change := range changes {
		entries = append(entries, domain.NewAuditEntry(change, mc, createdOn))
	}

	err := bs.InsertBatch(ctx, entries)
	for range entries {
		w.metrics.ObserveWrite(err)
	}
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"entity":    mc.EntityType,
			"record_id": mc.RecordID.String(),
			"count":     len(entries),
		}).Error("Failed to write audit batch")
		return fmt.Errorf("%w: batch of %d: %w", domain.ErrWriteFailure, len(entries), err)
	}

	return nil
}
