package service

import (
	"context"
	"errors"
	"iter"
	"slices"

	"change-audit/internal/domain"
	"change-audit/internal/metrics"

	log "github.com/sirupsen/logrus"
)

type InterceptorInterface interface {
	Intercept(ctx context.Context, event *domain.MutationEvent) (Result, error)
}

type PolicySource interface {
	Resolve(ctx context.Context, entityType string) (*domain.AuditPolicy, error)
}

type ChangeWriter interface {
	Write(ctx context.Context, change domain.FieldChange, mc domain.MutationContext) error
}

type batchWriter interface {
	SupportsBatch() bool
	WriteBatch(ctx context.Context, changes []domain.FieldChange, mc domain.MutationContext) error
}

type Options struct {
	// StopOnWriteError aborts the remaining writes of an event after the first failure.
	StopOnWriteError bool
	// AtomicBatch writes all entries of an event in one transaction when the sink allows it.
	AtomicBatch bool
}

// Result counts what happened to one event.
type Result struct {
	Detected int `json:"detected"`
	Written  int `json:"written"`
	Failed   int `json:"failed"`
}

// Interceptor runs the audit pipeline for one mutation at a time. It keeps no
// state between events.
type Interceptor struct {
	resolver PolicySource
	writer   ChangeWriter
	detect   func(newFields, prior domain.FieldMap, policy *domain.AuditPolicy) iter.Seq[domain.FieldChange]
	opts     Options
	metrics  Recorder
}

func NewInterceptor(resolver PolicySource, writer ChangeWriter, opts Options, rec Recorder) *Interceptor {
	return &Interceptor{
		resolver: resolver,
		writer:   writer,
		detect:   Detect,
		opts:     opts,
		metrics:  orNoop(rec),
	}
}

// Intercept resolves the policy of the event's entity, detects changed audited
// fields and writes one audit entry per change.
//
// Invalid events and configuration lookup failures return an error before any
// write. A failed write does not stop the following ones unless
// Options.StopOnWriteError is set; all write errors are joined. Entries already
// written are never removed.
func (i *Interceptor) Intercept(ctx context.Context, event *domain.MutationEvent) (Result, error) {
	if err := event.Validate(); err != nil {
		entity := ""
		if event != nil {
			entity = event.EntityType
		}
		i.metrics.ObserveMutation(entity, metrics.OutcomeInvalid)
		log.WithError(err).Warn("Rejected mutation event")
		return Result{}, err
	}

	logger := log.WithFields(log.Fields{
		"entity":    event.EntityType,
		"record_id": event.RecordID.String(),
		"operation": event.OperationName,
	})

	policy, err := i.resolver.Resolve(ctx, event.EntityType)
	if err != nil {
		i.metrics.ObserveMutation(event.EntityType, metrics.OutcomeLookupFailed)
		logger.WithError(err).Error("Failed to resolve audit policy")
		return Result{}, err
	}
	if policy.IsEmpty() {
		i.metrics.ObserveMutation(event.EntityType, metrics.OutcomeNotConfigured)
		logger.Debug("Entity is not configured for auditing")
		return Result{}, nil
	}

	changes := i.detect(event.NewFields, event.PriorSnapshot, policy)
	mc := event.Context()

	var res Result
	if bw, ok := i.writer.(batchWriter); ok && i.opts.AtomicBatch && bw.SupportsBatch() {
		res, err = i.writeBatch(ctx, bw, changes, mc)
	} else {
		res, err = i.writeEach(ctx, changes, mc)
	}

	switch {
	case err != nil:
		i.metrics.ObserveMutation(event.EntityType, metrics.OutcomeWriteFailed)
		logger.WithError(err).WithFields(log.Fields{
			"detected": res.Detected,
			"written":  res.Written,
			"failed":   res.Failed,
		}).Error("Audit trail incomplete")
	case res.Detected == 0:
		i.metrics.ObserveMutation(event.EntityType, metrics.OutcomeNoChanges)
		logger.Debug("No audited field changed")
	default:
		i.metrics.ObserveMutation(event.EntityType, metrics.OutcomeAudited)
		logger.WithField("written", res.Written).Info("Audit entries written")
	}

	return res, err
}

func (i *Interceptor) writeEach(ctx context.Context, changes iter.Seq[domain.FieldChange], mc domain.MutationContext) (Result, error) {
	var res Result
	var errs []error

	for change := range changes {
		res.Detected++
		i.metrics.ObserveChange()

		if err := i.writer.Write(ctx, change, mc); err != nil {
			res.Failed++
			errs = append(errs, err)
			if i.opts.StopOnWriteError {
				break
			}
			continue
		}
		res.Written++
	}

	return res, errors.Join(errs...)
}

func (i *Interceptor) writeBatch(ctx context.Context, bw batchWriter, changes iter.Seq[domain.FieldChange], mc domain.MutationContext) (Result, error) {
	collected := slices.Collect(changes)
	res := Result{Detected: len(collected)}
	if len(collected) == 0 {
		return res, nil
	}
	for range collected {
		i.metrics.ObserveChange()
	}

	if err := bw.WriteBatch(ctx, collected, mc); err != nil {
		res.Failed = len(collected)
		return res, err
	}
	res.Written = len(collected)
	return res, nil
}
