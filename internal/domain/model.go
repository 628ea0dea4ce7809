package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrInvalidInvocation means the event is missing its record payload or is malformed.
	ErrInvalidInvocation = errors.New("invalid invocation")
	// ErrConfigurationLookup means the configuration store could not be queried.
	ErrConfigurationLookup = errors.New("audit configuration lookup failed")
	// ErrConfigurationNotFound is returned by stores when no configuration row matches.
	ErrConfigurationNotFound = errors.New("audit configuration not found")
	// ErrWriteFailure means an audit entry could not be appended to the sink.
	ErrWriteFailure = errors.New("audit write failed")
)

// Operation names delivered by the host.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// MutationEvent is what the host delivers for one intercepted mutation.
type MutationEvent struct {
	EntityType    string    `json:"entity_type"`
	RecordID      uuid.UUID `json:"record_id"`
	NewFields     FieldMap  `json:"new_fields"`
	PriorSnapshot FieldMap  `json:"prior_snapshot"` // nil when no pre-image was captured
	ActorID       uuid.UUID `json:"actor_id"`
	OperationName string    `json:"operation"`
}

// MutationContext is the metadata every audit entry of one event shares.
type MutationContext struct {
	EntityType    string
	RecordID      uuid.UUID
	ActorID       uuid.UUID
	OperationName string
}

func (e *MutationEvent) Context() MutationContext {
	return MutationContext{
		EntityType:    e.EntityType,
		RecordID:      e.RecordID,
		ActorID:       e.ActorID,
		OperationName: e.OperationName,
	}
}

// Validate checks the parts of the event the pipeline cannot run without.
func (e *MutationEvent) Validate() error {
	if e == nil {
		return fmt.Errorf("%w: missing mutation event", ErrInvalidInvocation)
	}
	if e.EntityType == "" {
		return fmt.Errorf("%w: entity type is required", ErrInvalidInvocation)
	}
	if e.RecordID == uuid.Nil {
		return fmt.Errorf("%w: record id is required", ErrInvalidInvocation)
	}
	return nil
}
